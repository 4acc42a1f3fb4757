// feederserver serves refill forecasts and meal-time reports over HTTP
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/chrissnell/feedercast/internal/app"
	"github.com/chrissnell/feedercast/internal/constants"
	"github.com/chrissnell/feedercast/internal/log"
	"github.com/chrissnell/feedercast/pkg/config"
)

// CLI holds the command-line flags
type CLI struct {
	Version kong.VersionFlag `help:"Show version and exit."`
	Config  string           `help:"Path to the YAML configuration file." type:"path" default:"config.yaml"`
	Debug   bool             `help:"Turn on debugging output (overrides log.debug)."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("feederserver"),
		kong.Description("Serve pet feeder refill forecasts over HTTP."),
		kong.UsageOnError(),
		kong.Vars{"version": constants.Version},
	)

	filename, _ := filepath.Abs(cli.Config)
	provider := config.NewYAMLProvider(filename)
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading config file %s: %v\n", filename, err)
		os.Exit(1)
	}

	// Set up logging
	if err := log.InitWithFile(cli.Debug || cfg.Log.Debug, log.FileOptions{
		Filename:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	application := app.New(provider, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		log.Sync()
		os.Exit(1)
	}
}
