package server

import (
	"fmt"
	"time"

	"github.com/njchilds90/gograd"
)

// Config holds the HTTP server settings.
type Config struct {
	Port              int
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxBodyBytes      int64
	LogLevel          string
	LogFormat         string
	Limits            gograd.Limits
}

// DefaultConfig returns the settings used when no flag overrides them.
func DefaultConfig() Config {
	return Config{
		Port:              8080,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxBodyBytes:      1 << 20, // 1 MiB
		LogLevel:          "info",
		LogFormat:         "text",
		Limits:            gograd.DefaultLimits,
	}
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: max body bytes must be positive")
	}
	if c.Limits.MaxOrder < 0 || c.Limits.MaxNodes < 0 || c.Limits.MaxPoints < 0 {
		return fmt.Errorf("config: limits must be non-negative")
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
