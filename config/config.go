package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig configures token validation. Tokens are issued by the
// platform's auth service; this engine only verifies them.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// PolicyConfig is the universal fee policy applied to sellers without a
// dedicated plan row.
type PolicyConfig struct {
	FeePercent          int64  `mapstructure:"fee_percent"`
	MinimumWithdrawal   int64  `mapstructure:"minimum_withdrawal"`
	ProcessingTimeLabel string `mapstructure:"processing_time_label"`
	MaxProducts         int    `mapstructure:"max_products"`
}

// DefaultPolicy converts the config section into a validated domain policy.
func (p PolicyConfig) DefaultPolicy() (domain.FeePolicy, error) {
	policy := domain.FeePolicy{
		FeePercent:          p.FeePercent,
		MinimumWithdrawal:   p.MinimumWithdrawal,
		ProcessingTimeLabel: p.ProcessingTimeLabel,
		MaxProducts:         p.MaxProducts,
	}
	if err := policy.Validate(); err != nil {
		return domain.FeePolicy{}, fmt.Errorf("invalid default policy: %w", err)
	}
	return policy, nil
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: KXP.
// Nested keys use underscore: KXP_DATABASE_HOST, KXP_JWT_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "kixico_wallet")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "kixico-pay")
	v.SetDefault("policy.fee_percent", 10)
	v.SetDefault("policy.minimum_withdrawal", 5000)
	v.SetDefault("policy.processing_time_label", "2-5 business days")
	v.SetDefault("policy.max_products", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: KXP_DATABASE_HOST -> database.host
	v.SetEnvPrefix("KXP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Fail fast on a broken policy instead of rejecting every withdrawal.
	if _, err := cfg.Policy.DefaultPolicy(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
