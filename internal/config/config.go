package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Export   ExportConfig   `mapstructure:"export"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// UploadConfig holds attachment upload limits and storage location
type UploadConfig struct {
	StorageDir        string   `mapstructure:"storage_dir"`
	MaxFileSizeMB     int64    `mapstructure:"max_file_size_mb"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MaxFiles          int      `mapstructure:"max_files"`
}

// LedgerConfig holds line-item table bounds
type LedgerConfig struct {
	MinQuantity      int    `mapstructure:"min_quantity"`
	MaxQuantity      int    `mapstructure:"max_quantity"`
	DefaultAuthority string `mapstructure:"default_authority"`
}

// ExportConfig holds Excel export configuration
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/requestdesk.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Upload defaults
	viper.SetDefault("upload.storage_dir", "attachments")
	viper.SetDefault("upload.max_file_size_mb", 10)
	viper.SetDefault("upload.allowed_extensions", []string{".pdf", ".doc", ".docx", ".txt", ".png"})
	viper.SetDefault("upload.max_files", 5)

	// Ledger defaults
	viper.SetDefault("ledger.min_quantity", 1)
	viper.SetDefault("ledger.max_quantity", 7)
	viper.SetDefault("ledger.default_authority", "DGI")

	// Export defaults
	viper.SetDefault("export.output_dir", "exports")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("server.port", "REQUESTDESK_PORT")
	viper.BindEnv("database.path", "REQUESTDESK_DB_PATH")
	viper.BindEnv("upload.storage_dir", "REQUESTDESK_STORAGE_DIR")
	viper.BindEnv("export.output_dir", "REQUESTDESK_EXPORT_DIR")
	viper.BindEnv("logger.level", "REQUESTDESK_LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Upload.StorageDir == "" {
		return fmt.Errorf("upload.storage_dir is required")
	}
	if c.Upload.MaxFileSizeMB <= 0 {
		return fmt.Errorf("upload.max_file_size_mb must be positive")
	}
	if c.Upload.MaxFiles <= 0 {
		return fmt.Errorf("upload.max_files must be positive")
	}

	if c.Ledger.MinQuantity <= 0 {
		return fmt.Errorf("ledger.min_quantity must be positive")
	}
	if c.Ledger.MaxQuantity < c.Ledger.MinQuantity {
		return fmt.Errorf("ledger.max_quantity must be >= ledger.min_quantity")
	}

	if c.Export.OutputDir == "" {
		return fmt.Errorf("export.output_dir is required")
	}

	return nil
}
