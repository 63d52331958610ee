package verification

import "time"

// DefaultListLimit caps audit listings when no limit is given.
const DefaultListLimit = 500

// Config holds lifecycle thresholds.
type Config struct {
	// PendingThreshold is both the duplicate-guard window and the staleness
	// cutoff used by the sweep. The two must stay equal.
	PendingThreshold time.Duration
}

// DefaultConfig returns the 15 minute threshold.
func DefaultConfig() Config {
	return Config{PendingThreshold: 15 * time.Minute}
}

// Validate returns ErrConfig for a non-positive threshold.
func (c Config) Validate() error {
	if c.PendingThreshold <= 0 {
		return ErrConfig
	}
	return nil
}
