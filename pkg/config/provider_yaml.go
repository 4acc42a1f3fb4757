package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file. Relative paths
// inside the file are resolved against the directory containing it.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig ConfigYAML
	if err := yaml.UnmarshalStrict(cfgFile, &yamlConfig); err != nil {
		return nil, err
	}

	config := yamlConfig.toConfigData()
	config.ResolvePaths(filepath.Dir(y.filename))
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config == nil {
		return y.LoadConfig()
	}
	return y.config, nil
}

// GetRefillConfig returns the refill forecaster configuration
func (y *YAMLProvider) GetRefillConfig() (*RefillData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &cfg.Refill, nil
}

// GetMealsConfig returns the meal-time report configuration
func (y *YAMLProvider) GetMealsConfig() (*MealsData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &cfg.Meals, nil
}

// GetServerConfig returns the HTTP server configuration
func (y *YAMLProvider) GetServerConfig() (*ServerData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &cfg.Server, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags
type ConfigYAML struct {
	Refill     RefillYAML    `yaml:"refill"`
	Meals      MealsYAML     `yaml:"meals,omitempty"`
	Timestamps TimestampYAML `yaml:"timestamps,omitempty"`
	Server     ServerYAML    `yaml:"server,omitempty"`
	Log        LogYAML       `yaml:"log,omitempty"`
}

type SourceYAML struct {
	CSV    string      `yaml:"csv,omitempty"`
	SQLite *SQLiteYAML `yaml:"sqlite,omitempty"`
	Column string      `yaml:"column,omitempty"`
}

type SQLiteYAML struct {
	Path  string `yaml:"path"`
	Table string `yaml:"table,omitempty"`
}

type RefillYAML struct {
	Source     SourceYAML `yaml:"source"`
	Policy     string     `yaml:"policy,omitempty"`
	FullWeight float64    `yaml:"full-weight,omitempty"`
	Features   string     `yaml:"features,omitempty"`
	Model      string     `yaml:"model"`
	Scaler     string     `yaml:"scaler,omitempty"`
}

type MealsYAML struct {
	Source SourceYAML `yaml:"source"`
	Model  string     `yaml:"model,omitempty"`
}

type TimestampYAML struct {
	Layouts []string `yaml:"layouts,omitempty"`
}

type ServerYAML struct {
	ListenAddr  string   `yaml:"listen-addr,omitempty"`
	Port        int      `yaml:"port,omitempty"`
	Cert        string   `yaml:"cert,omitempty"`
	Key         string   `yaml:"key,omitempty"`
	StaticDir   string   `yaml:"static-dir,omitempty"`
	CORSOrigins []string `yaml:"cors-origins,omitempty"`
}

type LogYAML struct {
	Debug      bool   `yaml:"debug,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max-size-mb,omitempty"`
	MaxBackups int    `yaml:"max-backups,omitempty"`
	MaxAgeDays int    `yaml:"max-age-days,omitempty"`
}

func (s SourceYAML) toSourceData() SourceData {
	sd := SourceData{CSV: s.CSV, Column: s.Column}
	if s.SQLite != nil {
		sd.SQLite = &SQLiteData{Path: s.SQLite.Path, Table: s.SQLite.Table}
	}
	return sd
}

func (c ConfigYAML) toConfigData() *ConfigData {
	return &ConfigData{
		Refill: RefillData{
			Source:     c.Refill.Source.toSourceData(),
			Policy:     c.Refill.Policy,
			FullWeight: c.Refill.FullWeight,
			Features:   c.Refill.Features,
			Model:      c.Refill.Model,
			Scaler:     c.Refill.Scaler,
		},
		Meals: MealsData{
			Source: c.Meals.Source.toSourceData(),
			Model:  c.Meals.Model,
		},
		Timestamps: TimestampData{
			Layouts: c.Timestamps.Layouts,
		},
		Server: ServerData{
			ListenAddr:  c.Server.ListenAddr,
			Port:        c.Server.Port,
			Cert:        c.Server.Cert,
			Key:         c.Server.Key,
			StaticDir:   c.Server.StaticDir,
			CORSOrigins: c.Server.CORSOrigins,
		},
		Log: LogData{
			Debug:      c.Log.Debug,
			File:       c.Log.File,
			MaxSizeMB:  c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAgeDays: c.Log.MaxAgeDays,
		},
	}
}
