package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestYAMLProviderLoadConfig(t *testing.T) {
	path := writeConfig(t, `
refill:
  source:
    csv: data/pet_feeder.csv
  policy: max
  features: calendar
  model: models/interval_regressor.json
  scaler: /opt/models/interval_scaler.json
meals:
  source:
    sqlite:
      path: data/feeder.db
  model: models/meal_time_kmeans.json
timestamps:
  layouts: [iso, dmy-slash]
server:
  port: 8080
  static-dir: ui/build
log:
  debug: true
`)

	cfg, err := NewYAMLProvider(path).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	dir := filepath.Dir(path)
	if cfg.Refill.Source.CSV != filepath.Join(dir, "data/pet_feeder.csv") {
		t.Errorf("refill csv = %q, expected it resolved against the config dir", cfg.Refill.Source.CSV)
	}
	if cfg.Refill.Scaler != "/opt/models/interval_scaler.json" {
		t.Errorf("absolute scaler path changed: %q", cfg.Refill.Scaler)
	}
	if cfg.Refill.Source.Column != DefaultWeightColumn {
		t.Errorf("refill column = %q, want %q", cfg.Refill.Source.Column, DefaultWeightColumn)
	}
	if cfg.Refill.Policy != "max" || cfg.Refill.Features != "calendar" {
		t.Errorf("refill policy/features = %q/%q", cfg.Refill.Policy, cfg.Refill.Features)
	}
	if cfg.Refill.FullWeight != DefaultFullWeight {
		t.Errorf("full weight = %v, want default", cfg.Refill.FullWeight)
	}
	if cfg.Meals.Source.SQLite == nil || cfg.Meals.Source.SQLite.Table != DefaultSQLiteTable {
		t.Errorf("meals sqlite = %+v, want default table", cfg.Meals.Source.SQLite)
	}
	if cfg.Meals.Source.Column != DefaultDistanceColumn {
		t.Errorf("meals column = %q", cfg.Meals.Source.Column)
	}
	if len(cfg.Timestamps.Layouts) != 2 || cfg.Timestamps.Layouts[0] != "iso" {
		t.Errorf("layouts = %v", cfg.Timestamps.Layouts)
	}
	if cfg.Server.Port != 8080 || cfg.Server.ListenAddr != DefaultListenAddr {
		t.Errorf("server = %+v", cfg.Server)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Log.Debug {
		t.Error("expected debug logging")
	}
}

func TestYAMLProviderValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name:    "missing source",
			content: "refill:\n  model: m.json\n",
			errPart: "refill.source",
		},
		{
			name:    "missing model",
			content: "refill:\n  source:\n    csv: a.csv\n",
			errPart: "refill.model",
		},
		{
			name:    "both csv and sqlite",
			content: "refill:\n  source:\n    csv: a.csv\n    sqlite:\n      path: a.db\n  model: m.json\n",
			errPart: "both",
		},
		{
			name:    "meals without model",
			content: "refill:\n  source:\n    csv: a.csv\n  model: m.json\nmeals:\n  source:\n    csv: b.csv\n",
			errPart: "meals.model",
		},
		{
			name:    "cert without key",
			content: "refill:\n  source:\n    csv: a.csv\n  model: m.json\nserver:\n  cert: c.pem\n",
			errPart: "server.cert",
		},
		{
			name:    "unknown field",
			content: "refill:\n  source:\n    csv: a.csv\n  model: m.json\n  modle: x\n",
			errPart: "modle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYAMLProvider(writeConfig(t, tt.content)).LoadConfig()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}

func TestYAMLProviderSections(t *testing.T) {
	p := NewYAMLProvider(writeConfig(t, "refill:\n  source:\n    csv: a.csv\n  model: m.json\n"))

	refill, err := p.GetRefillConfig()
	if err != nil {
		t.Fatalf("GetRefillConfig() error = %v", err)
	}
	if filepath.Base(refill.Model) != "m.json" {
		t.Errorf("model = %q", refill.Model)
	}

	server, err := p.GetServerConfig()
	if err != nil {
		t.Fatalf("GetServerConfig() error = %v", err)
	}
	if server.Port != DefaultPort {
		t.Errorf("port = %d, want %d", server.Port, DefaultPort)
	}

	if !p.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}
}

func TestYAMLProviderMissingFile(t *testing.T) {
	if _, err := NewYAMLProvider(filepath.Join(t.TempDir(), "nope.yaml")).LoadConfig(); err == nil {
		t.Fatal("expected error for missing file")
	}
}
