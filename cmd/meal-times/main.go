// meal-times reports a pet's typical meal times and visit durations
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/chrissnell/feedercast/internal/constants"
	"github.com/chrissnell/feedercast/internal/log"
	"github.com/chrissnell/feedercast/internal/meals"
	"github.com/chrissnell/feedercast/pkg/config"
)

// CLI holds the command-line flags
type CLI struct {
	Version kong.VersionFlag `help:"Show version and exit."`

	CSV     string   `help:"Feeder distance log (CSV)." type:"existingfile" xor:"source" required:""`
	SQLite  string   `name:"sqlite" help:"Feeder distance log (SQLite database)." type:"existingfile" xor:"source" required:""`
	Table   string   `help:"Table holding the readings when --sqlite is used." default:"readings"`
	Column  string   `help:"Name of the distance column." default:"distance_cm"`
	Model   string   `help:"Meal-time clustering model artifact (.json, .yaml or .msgpack)." required:""`
	Layouts []string `help:"Timestamp layouts to try, in order."`
	JSON    bool     `name:"json" help:"Print the report as JSON."`
	Debug   bool     `help:"Turn on debugging output."`
}

func (c *CLI) mealsConfig() config.MealsData {
	mc := config.MealsData{
		Source: config.SourceData{CSV: c.CSV, Column: c.Column},
		Model:  c.Model,
	}
	if c.SQLite != "" {
		mc.Source.SQLite = &config.SQLiteData{Path: c.SQLite, Table: c.Table}
	}
	return mc
}

// Run analyzes the visit log and writes the report to out
func (c *CLI) Run(ctx context.Context, out io.Writer) error {
	report, err := meals.Load(ctx, c.mealsConfig(), config.TimestampData{Layouts: c.Layouts})
	if err != nil {
		return err
	}

	if c.JSON {
		return report.WriteJSON(out)
	}
	return report.Render(out)
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("meal-times"),
		kong.Description("Report average meal times and visit durations from a feeder distance log."),
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
