package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DeploymentMode string

const (
	ModeLocal DeploymentMode = "local"
	ModeProd  DeploymentMode = "prod"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
	Server     ServerConfig     `mapstructure:"server"`
	Batch      BatchConfig      `mapstructure:"batch"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
}

type DeploymentConfig struct {
	Mode DeploymentMode `mapstructure:"mode" validate:"required"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

type ClickHouseConfig struct {
	Address  string `mapstructure:"address" validate:"required"`
	Database string `mapstructure:"database" validate:"required"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// BatchConfig bounds the size of bulk writes against the client store
type BatchConfig struct {
	Size int `mapstructure:"size" validate:"required,min=1"`
}

// ScoringConfig carries tenant-wide scoring parameters
type ScoringConfig struct {
	// FirstDate is the earliest purchase date eligible for RFM scoring,
	// formatted as 2006-01-02
	FirstDate string `mapstructure:"first_date" validate:"required"`

	// PurchaseAppendDays is the grace period below which a follow-up order
	// counts as an append to the same purchase event, not a repurchase
	PurchaseAppendDays int `mapstructure:"purchase_append_days" validate:"min=0"`
}

// GetFirstDate parses the configured eligibility cutoff
func (c ScoringConfig) GetFirstDate() (time.Time, error) {
	return time.Parse("2006-01-02", c.FirstDate)
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// NewConfig loads configuration from config files and WISH_* environment
// variables, with a best-effort .env load for local development
func NewConfig() (*Configuration, error) {
	v := viper.New()

	// Load .env if present; ignore the error since env files are optional
	_ = godotenv.Load()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("WISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(ModeLocal))
	v.SetDefault("logging.level", "info")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "wish")
	v.SetDefault("postgres.dbname", "wish_insights")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("clickhouse.address", "localhost:9000")
	v.SetDefault("clickhouse.database", "wish_insights")
	v.SetDefault("batch.size", 2500)
	v.SetDefault("scoring.first_date", "2018-01-01")
	v.SetDefault("scoring.purchase_append_days", 2)
}

func (c *Configuration) Validate() error {
	if _, err := c.Scoring.GetFirstDate(); err != nil {
		return fmt.Errorf("invalid scoring.first_date: %w", err)
	}
	return validator.New().Struct(c)
}

// GetDefaultConfig returns a configuration suitable for tests and scripts
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: ModeLocal},
		Logging:    LoggingConfig{Level: "debug"},
		Server:     ServerConfig{Address: ":8080"},
		Postgres: PostgresConfig{
			Host: "localhost", Port: 5432, User: "wish",
			DBName: "wish_insights", SSLMode: "disable",
		},
		ClickHouse: ClickHouseConfig{
			Address: "localhost:9000", Database: "wish_insights",
		},
		Batch: BatchConfig{Size: 2500},
		Scoring: ScoringConfig{
			FirstDate:          "2018-01-01",
			PurchaseAppendDays: 2,
		},
	}
}
