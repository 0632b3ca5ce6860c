package config

import "time"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Listen address (host:port)
	Address string `mapstructure:"address" validate:"required"`

	// Request timeouts
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`

	// Per-client request rate limiting
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig holds request rate limiting configuration
type RateLimitConfig struct {
	// Enable rate limiting
	Enabled bool `mapstructure:"enabled"`

	// Sustained requests per second per empire
	Requests float64 `mapstructure:"requests" validate:"omitempty,min=0"`

	// Burst allowance
	Burst int `mapstructure:"burst" validate:"omitempty,min=1"`
}
