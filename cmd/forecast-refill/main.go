// forecast-refill predicts when the pet feeder will next need refilling
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/chrissnell/feedercast/internal/constants"
	"github.com/chrissnell/feedercast/internal/forecast"
	"github.com/chrissnell/feedercast/internal/log"
	"github.com/chrissnell/feedercast/internal/timestamp"
	"github.com/chrissnell/feedercast/pkg/config"
)

// CLI holds the command-line flags
type CLI struct {
	Version kong.VersionFlag `help:"Show version and exit."`

	CSV        string   `help:"Feeder weight log (CSV)." type:"existingfile" xor:"source" required:""`
	SQLite     string   `name:"sqlite" help:"Feeder weight log (SQLite database)." type:"existingfile" xor:"source" required:""`
	Table      string   `help:"Table holding the readings when --sqlite is used." default:"readings"`
	Column     string   `help:"Name of the weight column." default:"weight_g"`
	Model      string   `help:"Regression model artifact (.json, .yaml or .msgpack)." required:""`
	Scaler     string   `help:"Optional feature scaler artifact."`
	Last       string   `help:"Last known date (YYYY-MM-DD)." required:""`
	Features   string   `help:"Feature set the model was trained on." enum:"interval,calendar" default:"interval"`
	Policy     string   `help:"Full-bowl threshold policy." enum:"fixed,max" default:"fixed"`
	FullWeight float64  `help:"Full-bowl weight in grams for the fixed policy." default:"1000"`
	Layouts    []string `help:"Timestamp layouts to try, in order."`
	Debug      bool     `help:"Turn on debugging output."`
}

// config converts the flags into a refill configuration
func (c *CLI) config() *config.ConfigData {
	cfg := &config.ConfigData{
		Refill: config.RefillData{
			Source: config.SourceData{
				CSV:    c.CSV,
				Column: c.Column,
			},
			Policy:     c.Policy,
			FullWeight: c.FullWeight,
			Features:   c.Features,
			Model:      c.Model,
			Scaler:     c.Scaler,
		},
		Timestamps: config.TimestampData{Layouts: c.Layouts},
	}
	if c.SQLite != "" {
		cfg.Refill.Source.SQLite = &config.SQLiteData{Path: c.SQLite, Table: c.Table}
	}
	cfg.ApplyDefaults()
	return cfg
}

// Run predicts the next refill and writes the result to out
func (c *CLI) Run(ctx context.Context, out io.Writer) error {
	cfg := c.config()
	if err := cfg.Validate(); err != nil {
		return err
	}

	pipeline := forecast.NewPipeline(cfg.Refill, cfg.Timestamps)
	log.Debugf("forecast pipeline: %s", pipeline.Describe())

	result, err := pipeline.Forecast(ctx, c.Last)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "🔄 Predicted next interval: %.2f hours\n", result.IntervalHours)
	fmt.Fprintf(out, "🎉 Next predicted refill at: %s\n", result.NextRefill.Format(timestamp.OutputLayout))
	return nil
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("forecast-refill"),
		kong.Description("Predict the next pet feeder refill from a weight log and a trained model."),
		kong.UsageOnError(),
		kong.Vars{"version": constants.Version},
	)

	if err := log.Init(cli.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cli.Run(context.Background(), os.Stdout); err != nil {
		log.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
