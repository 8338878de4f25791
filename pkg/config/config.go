package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
)

// Config holds all configuration for the authorization service
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// JWT configuration for actor token validation
	JWT JWTConfig `mapstructure:"jwt"`

	// Compliance monitoring configuration
	Compliance ComplianceConfig `mapstructure:"compliance"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`

	// Monitoring configuration
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	Issuer    string `mapstructure:"issuer"`
	Audience  string `mapstructure:"audience"`
}

// ComplianceConfig holds compliance monitoring configuration
type ComplianceConfig struct {
	// ExcessiveAccessThreshold is the per-user access count above which an
	// excessive-access violation is raised (boundary is exclusive)
	ExcessiveAccessThreshold int `mapstructure:"excessive_access_threshold"`

	// AdminCountCeiling is the maximum number of users that may actively hold
	// an administrative role before a risk entry is raised
	AdminCountCeiling int `mapstructure:"admin_count_ceiling"`

	// AuditLoggingEnabled indicates whether the surrounding application has
	// PHI audit logging switched on; its absence is a risk finding
	AuditLoggingEnabled bool `mapstructure:"audit_logging_enabled"`

	// ReportTimeout bounds report generation, in seconds
	ReportTimeout int `mapstructure:"report_timeout"`

	// Classifications lists the monitored data classifications for the
	// retention check
	Classifications []ClassificationConfig `mapstructure:"classifications"`
}

// ClassificationConfig describes one monitored data classification
type ClassificationConfig struct {
	Table               string `mapstructure:"table"`
	Field               string `mapstructure:"field"`
	Classification      string `mapstructure:"classification"`
	RetentionPeriodDays int    `mapstructure:"retention_period_days"`
	EncryptionRequired  bool   `mapstructure:"encryption_required"`
}

// MonitoringConfig holds monitoring configuration
type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
	HealthPath  string `mapstructure:"health_path"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/mentalspace")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideWithEnv(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "mentalspace")
	viper.SetDefault("database.user", "mentalspace")
	viper.SetDefault("database.ssl_mode", "require")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)

	// JWT defaults
	viper.SetDefault("jwt.issuer", "mentalspace-ehr")
	viper.SetDefault("jwt.audience", "mentalspace-staff")

	// Compliance defaults
	viper.SetDefault("compliance.excessive_access_threshold", authz.DefaultExcessiveAccessThreshold)
	viper.SetDefault("compliance.admin_count_ceiling", authz.DefaultAdminCountCeiling)
	viper.SetDefault("compliance.audit_logging_enabled", true)
	viper.SetDefault("compliance.report_timeout", 60)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")
	viper.SetDefault("monitoring.health_path", "/health")

	// Logging defaults
	viper.SetDefault("log_level", "info")
}

// overrideWithEnv overrides configuration with environment variables
func overrideWithEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if jwtSecret := os.Getenv("JWT_SECRET_KEY"); jwtSecret != "" {
		config.JWT.SecretKey = jwtSecret
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.LogLevel = logLevel
	}
}

// validate validates the configuration
func validate(config *Config) error {
	if config.JWT.SecretKey == "" {
		return fmt.Errorf("JWT secret key is required")
	}

	if config.Database.Password == "" {
		return fmt.Errorf("database password is required")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Compliance.ExcessiveAccessThreshold <= 0 {
		return fmt.Errorf("excessive access threshold must be positive, got %d",
			config.Compliance.ExcessiveAccessThreshold)
	}

	for _, c := range config.Compliance.Classifications {
		if c.Table == "" || c.Classification == "" {
			return fmt.Errorf("classification entries require table and classification")
		}
		if c.RetentionPeriodDays < 0 {
			return fmt.Errorf("negative retention period for %s.%s", c.Table, c.Field)
		}
	}

	return nil
}
