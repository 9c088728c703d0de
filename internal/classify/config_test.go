package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidateOrdering(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative baseline", func(c *Config) { c.BaselineConfidence = -0.1 }},
		{"refund below baseline", func(c *Config) { c.RefundConfidence = 0.4 }},
		{"fuzzy below refund", func(c *Config) { c.FuzzyConfidence = 0.55 }},
		{"token base below fuzzy", func(c *Config) { c.TokenBase = 0.65 }},
		{"ceiling below base", func(c *Config) { c.TokenCeiling = 0.75 }},
		{"ceiling reaches 1.0", func(c *Config) { c.TokenCeiling = 1.0 }},
		{"negative increment", func(c *Config) { c.TokenIncrement = -0.01 }},
		{"zero fuzzy threshold", func(c *Config) { c.FuzzyThreshold = 0 }},
		{"fuzzy threshold above 1", func(c *Config) { c.FuzzyThreshold = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTokenConfidenceClamping(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 0.80, cfg.confidence(candidate{method: "token_match", hits: 1}), 1e-9)
	assert.InDelta(t, 0.85, cfg.confidence(candidate{method: "token_match", hits: 2}), 1e-9)
	assert.InDelta(t, 0.95, cfg.confidence(candidate{method: "token_match", hits: 4}), 1e-9)
	// far past the ceiling stays clamped
	assert.InDelta(t, 0.95, cfg.confidence(candidate{method: "token_match", hits: 40}), 1e-9)
}
