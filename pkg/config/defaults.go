package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Defaults
const (
	DefaultWeightColumn   = "weight_g"
	DefaultDistanceColumn = "distance_cm"
	DefaultSQLiteTable    = "readings"
	DefaultPolicy         = "fixed"
	DefaultFullWeight     = 1000.0
	DefaultFeatures       = "interval"
	DefaultListenAddr     = "0.0.0.0"
	DefaultPort           = 5000
)

// ApplyDefaults fills unset optional fields
func (c *ConfigData) ApplyDefaults() {
	c.Refill.Source.applyDefaults(DefaultWeightColumn)
	c.Meals.Source.applyDefaults(DefaultDistanceColumn)

	if c.Refill.Policy == "" {
		c.Refill.Policy = DefaultPolicy
	}
	if c.Refill.FullWeight == 0 {
		c.Refill.FullWeight = DefaultFullWeight
	}
	if c.Refill.Features == "" {
		c.Refill.Features = DefaultFeatures
	}

	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
}

func (s *SourceData) applyDefaults(column string) {
	if s.Column == "" {
		s.Column = column
	}
	if s.SQLite != nil && s.SQLite.Table == "" {
		s.SQLite.Table = DefaultSQLiteTable
	}
}

// Validate checks that the configuration is usable
func (c *ConfigData) Validate() error {
	if err := c.Refill.Source.validate("refill"); err != nil {
		return err
	}
	if c.Refill.Model == "" {
		return errors.New("refill.model must be set")
	}
	if c.Refill.FullWeight < 0 {
		return fmt.Errorf("refill.full-weight must be positive, got %v", c.Refill.FullWeight)
	}

	if c.Meals.Source.CSV != "" || c.Meals.Source.SQLite != nil {
		if err := c.Meals.Source.validate("meals"); err != nil {
			return err
		}
		if c.Meals.Model == "" {
			return errors.New("meals.model must be set when a meals source is configured")
		}
	}

	if (c.Server.Cert == "") != (c.Server.Key == "") {
		return errors.New("server.cert and server.key must be set together")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

func (s SourceData) validate(section string) error {
	switch {
	case s.CSV == "" && s.SQLite == nil:
		return fmt.Errorf("%s.source needs either csv or sqlite", section)
	case s.CSV != "" && s.SQLite != nil:
		return fmt.Errorf("%s.source cannot set both csv and sqlite", section)
	case s.SQLite != nil && s.SQLite.Path == "":
		return fmt.Errorf("%s.source.sqlite.path must be set", section)
	}
	return nil
}

// ResolvePaths makes every relative file path in the configuration relative to dir
func (c *ConfigData) ResolvePaths(dir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}

	for _, s := range []*SourceData{&c.Refill.Source, &c.Meals.Source} {
		resolve(&s.CSV)
		if s.SQLite != nil {
			resolve(&s.SQLite.Path)
		}
	}
	resolve(&c.Refill.Model)
	resolve(&c.Refill.Scaler)
	resolve(&c.Meals.Model)
	resolve(&c.Server.StaticDir)
	resolve(&c.Server.Cert)
	resolve(&c.Server.Key)
	resolve(&c.Log.File)
}
