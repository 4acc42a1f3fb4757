package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetRefillConfig() (*RefillData, error)
	GetMealsConfig() (*MealsData, error)
	GetServerConfig() (*ServerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Refill     RefillData    `json:"refill"`
	Meals      MealsData     `json:"meals,omitempty"`
	Timestamps TimestampData `json:"timestamps,omitempty"`
	Server     ServerData    `json:"server,omitempty"`
	Log        LogData       `json:"log,omitempty"`
}

// SourceData points at a readings log. Exactly one of CSV or SQLite is set.
type SourceData struct {
	CSV    string      `json:"csv,omitempty"`
	SQLite *SQLiteData `json:"sqlite,omitempty"`
	Column string      `json:"column,omitempty"`
}

// SQLiteData locates a readings table in a SQLite database
type SQLiteData struct {
	Path  string `json:"path"`
	Table string `json:"table,omitempty"`
}

// RefillData configures the refill forecaster
type RefillData struct {
	Source     SourceData `json:"source"`
	Policy     string     `json:"policy,omitempty"`
	FullWeight float64    `json:"full_weight,omitempty"`
	Features   string     `json:"features,omitempty"`
	Model      string     `json:"model"`
	Scaler     string     `json:"scaler,omitempty"`
}

// MealsData configures the meal-time report
type MealsData struct {
	Source SourceData `json:"source"`
	Model  string     `json:"model,omitempty"`
}

// TimestampData lists the timestamp layouts to try, in order
type TimestampData struct {
	Layouts []string `json:"layouts,omitempty"`
}

// ServerData holds configuration for the HTTP server
type ServerData struct {
	ListenAddr  string   `json:"listen_addr,omitempty"`
	Port        int      `json:"port,omitempty"`
	Cert        string   `json:"cert,omitempty"`
	Key         string   `json:"key,omitempty"`
	StaticDir   string   `json:"static_dir,omitempty"`
	CORSOrigins []string `json:"cors_origins,omitempty"`
}

// LogData holds logging configuration
type LogData struct {
	Debug      bool   `json:"debug,omitempty"`
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}
