package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/allenjacob2003/telemed-api/internal/email"
	"github.com/allenjacob2003/telemed-api/internal/gateway"
	"github.com/allenjacob2003/telemed-api/pkg/messaging/redis"
)

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type PaymentsConfig struct {
	Currency         string        `mapstructure:"currency"`
	StockLockTimeout time.Duration `mapstructure:"stock_lock_timeout"`
}

type EmailConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	From string `mapstructure:"from"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	MetricsPath       string `mapstructure:"metrics_path"`
}

// Secrets are never read from the config file, only the environment.
type Secrets struct {
	DBPassword        string `envconfig:"DB_PASSWORD"`
	RazorpayKeyID     string `envconfig:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `envconfig:"RAZORPAY_KEY_SECRET"`
	SMTPUsername      string `envconfig:"SMTP_USERNAME"`
	SMTPPassword      string `envconfig:"SMTP_PASSWORD"`
	AdminEmail        string `envconfig:"ADMIN_EMAIL"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Payments   PaymentsConfig   `mapstructure:"payments"`
	Email      EmailConfig      `mapstructure:"email"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Secrets    Secrets          `mapstructure:"-"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config.Secrets); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}
	if config.Secrets.DBPassword != "" {
		config.Database.Password = config.Secrets.DBPassword
	}

	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Payments.Currency == "" {
		config.Payments.Currency = "INR"
	}
	if config.Payments.StockLockTimeout == 0 {
		config.Payments.StockLockTimeout = 3 * time.Second
	}

	return &config, nil
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}

func (c *Config) ToEmailConfig() email.Config {
	return email.Config{
		Host:     c.Email.Host,
		Port:     c.Email.Port,
		Username: c.Secrets.SMTPUsername,
		Password: c.Secrets.SMTPPassword,
		From:     c.Email.From,
	}
}

func (c *Config) ToGatewayConfig() gateway.Config {
	return gateway.Config{
		KeyID:     c.Secrets.RazorpayKeyID,
		KeySecret: c.Secrets.RazorpayKeySecret,
	}
}
