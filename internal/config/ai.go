package config

import "time"

// AIConfig controls the AI-assist proxy
type AIConfig struct {
	// Enabled turns the generate/refine routes on
	Enabled bool `json:"enabled"`

	// RatePerMinute is the sustained per-session request rate
	RatePerMinute float64 `json:"ratePerMinute"`

	// Burst is the number of requests allowed at once
	Burst int `json:"burst"`

	// TimeoutMS bounds one generate or refine call (generation is slow)
	TimeoutMS int `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		Enabled:       getEnvOrDefault("AI_ENABLED", "true") != "false",
		RatePerMinute: getEnvFloat("AI_RATE_PER_MINUTE", 6),
		Burst:         getEnvInt("AI_BURST", 2),
		TimeoutMS:     getEnvInt("AI_TIMEOUT_MS", 60000),
	}
}

// IsEnabled returns true if the AI routes are served
func (c *AIConfig) IsEnabled() bool {
	return c.Enabled
}

// Timeout returns TimeoutMS as a duration
func (c *AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}
