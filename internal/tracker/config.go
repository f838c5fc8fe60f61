package tracker

import "time"

// Config holds the tracker's timing knobs.
type Config struct {
	InactivityTimeout  time.Duration
	FocusTimeout       time.Duration
	SaveInterval       time.Duration
	BranchPollInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		InactivityTimeout:  300 * time.Second,
		FocusTimeout:       60 * time.Second,
		SaveInterval:       5 * time.Second,
		BranchPollInterval: 10 * time.Second,
	}
}

// normalized replaces non-positive intervals with their defaults.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.InactivityTimeout <= 0 {
		c.InactivityTimeout = d.InactivityTimeout
	}
	if c.FocusTimeout <= 0 {
		c.FocusTimeout = d.FocusTimeout
	}
	if c.SaveInterval <= 0 {
		c.SaveInterval = d.SaveInterval
	}
	if c.BranchPollInterval <= 0 {
		c.BranchPollInterval = d.BranchPollInterval
	}
	return c
}
