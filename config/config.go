package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

/* Config is a helper package. It could be an external lib */

type Config struct {
	Port                 string `mapstructure:"PORT"`
	KindsFile            string `mapstructure:"KINDS_FILE"`
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisDB              int    `mapstructure:"REDIS_DB"`
	WaitTTLSeconds       int    `mapstructure:"WAIT_TTL_SECONDS"`
	SweepIntervalSeconds int    `mapstructure:"SWEEP_INTERVAL_SECONDS"`
	PendingRecordTTLHrs  int    `mapstructure:"PENDING_RECORD_TTL_HOURS"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		// Env-only deployments have no .env file
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	var config Config
	err = viper.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if config.Port == "" {
		config.Port = "8080"
	}
	if config.KindsFile == "" {
		config.KindsFile = "kinds.yaml"
	}
	return &config, nil
}

// GetWaitTTLSeconds returns the default TTL for pending waits
// (default: 15 minutes)
func (c *Config) GetWaitTTLSeconds() int {
	if c.WaitTTLSeconds <= 0 {
		return 15 * 60
	}
	return c.WaitTTLSeconds
}

// GetSweepIntervalSeconds returns how often the registry evicts
// expired waits (default: 10 seconds)
func (c *Config) GetSweepIntervalSeconds() int {
	if c.SweepIntervalSeconds <= 0 {
		return 10
	}
	return c.SweepIntervalSeconds
}

// GetPendingRecordTTLHours returns how long journaled pending records
// stay visible in redis after their deadline (default: 24 hours)
func (c *Config) GetPendingRecordTTLHours() int {
	if c.PendingRecordTTLHrs <= 0 {
		return 24
	}
	return c.PendingRecordTTLHrs
}
