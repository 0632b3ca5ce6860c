package config

import "time"

// GameLoopConfig holds construction scheduler and tick processor configuration
type GameLoopConfig struct {
	// Interval between tick passes
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"required"`

	// PID file location (empty disables the PID file)
	PIDFile string `mapstructure:"pid_file"`

	// Disable the in-process loop (ticks driven externally via the CLI)
	Disabled bool `mapstructure:"disabled"`
}
