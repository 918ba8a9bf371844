package config

import (
	"flag"
	"os"

	"github.com/ridelinkapp/ridelink/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   DSN of the local account database
//	-r string   address of the remote directory (Redis)
//	-u string   base URL of the identity provider
//	-k string   identity provider API key
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-u", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.LocalDSN, "d", cfg.LocalDSN, "DSN of the local account database")
	fs.StringVar(&cfg.Directory.Addr, "r", cfg.Directory.Addr, "address of the remote directory")
	fs.StringVar(&cfg.Identity.BaseURL, "u", cfg.Identity.BaseURL, "base URL of the identity provider")
	fs.StringVar(&cfg.Identity.APIKey, "k", cfg.Identity.APIKey, "identity provider API key")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
