package readings

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/chrissnell/feedercast/internal/log"
	"github.com/chrissnell/feedercast/internal/timestamp"
	_ "modernc.org/sqlite"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads readings from a table in a SQLite database, such as the
// one written by the feeder's logging gateway. Timestamps are normalized the
// same way as CSV timestamps.
type SQLiteSource struct {
	Path            string
	Table           string
	TimestampColumn string
	ValueColumn     string
	Normalizer      *timestamp.Normalizer
}

// NewSQLiteSource creates a SQLite source reading the given table and value column
func NewSQLiteSource(path, table, valueColumn string, n *timestamp.Normalizer) *SQLiteSource {
	return &SQLiteSource{
		Path:            path,
		Table:           table,
		TimestampColumn: TimestampColumn,
		ValueColumn:     valueColumn,
		Normalizer:      n,
	}
}

// Load queries the table and returns the cleaned readings
func (s *SQLiteSource) Load(ctx context.Context) ([]Reading, error) {
	for _, ident := range []string{s.Table, s.TimestampColumn, s.ValueColumn} {
		if !identifierPattern.MatchString(ident) {
			return nil, fmt.Errorf("invalid SQLite identifier %q", ident)
		}
	}

	db, err := sql.Open("sqlite", "file:"+s.Path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s, %s FROM %s ORDER BY rowid`, s.TimestampColumn, s.ValueColumn, s.Table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	b := &builder{normalizer: s.Normalizer}
	for rows.Next() {
		var rawTime, rawValue sql.NullString
		if err := rows.Scan(&rawTime, &rawValue); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		if !rawTime.Valid || !rawValue.Valid {
			b.stats.Rows++
			b.stats.Dropped++
			continue
		}
		b.add(rawTime.String, rawValue.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	log.Debugw("loaded readings from SQLite", "path", s.Path, "table", s.Table,
		"rows", b.stats.Rows, "kept", b.stats.Kept, "dropped", b.stats.Dropped)
	return b.result(), nil
}
