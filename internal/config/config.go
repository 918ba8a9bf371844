package config

// Identity holds identity provider connection parameters.
type Identity struct {
	BaseURL string `env:"BASE_URL"`
	APIKey  string `env:"API_KEY"`
}

// Directory holds remote directory (Redis) connection parameters.
type Directory struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"`
}

// Media holds object storage parameters for user uploads.
type Media struct {
	Region    string `env:"REGION"`
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET_NAME"`
}

// Config holds runtime settings for the ridelink CLI.
type Config struct {
	LocalDSN  string    `env:"LOCAL_DSN"`
	LogLevel  string    `env:"LOG_LEVEL"`
	Identity  Identity  `envPrefix:"IDENTITY_"`
	Directory Directory `envPrefix:"REDIS_"`
	Media     Media     `envPrefix:"S3_"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LocalDSN = "file:ridelink.db"
	c.LogLevel = "info"
	c.Identity = Identity{BaseURL: "https://identitytoolkit.googleapis.com"}
	c.Directory = Directory{Addr: "127.0.0.1:6379"}
	c.Media = Media{Region: "us-east-1", Bucket: "ridelink-media"}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	return cfg, nil
}
