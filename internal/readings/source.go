package readings

import (
	"errors"

	"github.com/chrissnell/feedercast/internal/timestamp"
	"github.com/chrissnell/feedercast/pkg/config"
)

// FromConfig builds the Source described by a configuration block
func FromConfig(sd config.SourceData, n *timestamp.Normalizer) (Source, error) {
	switch {
	case sd.SQLite != nil:
		table := sd.SQLite.Table
		if table == "" {
			table = config.DefaultSQLiteTable
		}
		return NewSQLiteSource(sd.SQLite.Path, table, sd.Column, n), nil
	case sd.CSV != "":
		return NewCSVSource(sd.CSV, sd.Column, n), nil
	default:
		return nil, errors.New("no readings source configured")
	}
}
