package main

import (
	"context"
	"log"
	"os"

	"github.com/ridelinkapp/ridelink/internal/cli"
	"github.com/ridelinkapp/ridelink/internal/config"
	"github.com/ridelinkapp/ridelink/internal/flagx"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx, flagx.PositionalArgs(os.Args[1:])); err != nil {
		log.Fatalf("%v", err)
	}
}
