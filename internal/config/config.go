package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type LedgerConfig struct {
	// DepositLimitRatio caps a deposit at ratio * pending unpaid job value.
	DepositLimitRatio decimal.Decimal
}

type ReportConfig struct {
	DefaultClientLimit int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Ledger      LedgerConfig
	Report      ReportConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	ratio, err := parseRatio(v.GetString("LEDGER_DEPOSIT_LIMIT_RATIO"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Ledger: LedgerConfig{
			DepositLimitRatio: ratio,
		},
		Report: ReportConfig{
			DefaultClientLimit: v.GetInt("REPORT_DEFAULT_CLIENT_LIMIT"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Report.DefaultClientLimit <= 0 {
		cfg.Report.DefaultClientLimit = 2
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if !cfg.Ledger.DepositLimitRatio.IsPositive() {
		return fmt.Errorf("LEDGER_DEPOSIT_LIMIT_RATIO must be positive")
	}
	return nil
}

func parseRatio(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.New(25, -2), nil
	}
	ratio, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("LEDGER_DEPOSIT_LIMIT_RATIO is not a number: %w", err)
	}
	return ratio, nil
}
