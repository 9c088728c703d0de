package classify

import "fmt"

// Config holds the confidence model of the scorer and the fuzzy-tier
// settings. All values are tunable, but Validate enforces the ordering the
// rest of the system relies on: baseline < refund < fuzzy < token base <=
// token ceiling < 1.0, with 1.0 reserved exclusively for overrides.
type Config struct {
	// BaselineConfidence is reported for default_other results: the fixed
	// "no evidence either way" value.
	BaselineConfidence float64

	// RefundConfidence is reported when a refund/reversal marker routes the
	// text to the default category.
	RefundConfidence float64

	// FuzzyEnabled turns the fuzzy tier on. When off, texts that miss every
	// keyword fall straight through to default_other.
	FuzzyEnabled bool

	// FuzzyThreshold is the minimum edit-distance similarity, in (0,1], for
	// a token to count as a fuzzy keyword hit.
	FuzzyThreshold float64

	// FuzzyConfidence is reported for fuzzy_match results.
	FuzzyConfidence float64

	// TokenBase is the confidence of a single-keyword token match;
	// each additional distinct keyword hit adds TokenIncrement, clamped to
	// TokenCeiling.
	TokenBase      float64
	TokenIncrement float64
	TokenCeiling   float64
}

// DefaultConfig returns the documented default confidence model.
func DefaultConfig() Config {
	return Config{
		BaselineConfidence: 0.50,
		RefundConfidence:   0.60,
		FuzzyEnabled:       true,
		FuzzyThreshold:     0.85,
		FuzzyConfidence:    0.70,
		TokenBase:          0.80,
		TokenIncrement:     0.05,
		TokenCeiling:       0.95,
	}
}

// Validate rejects any configuration that breaks the confidence ordering.
func (c Config) Validate() error {
	if c.BaselineConfidence < 0 {
		return fmt.Errorf("baseline confidence must be >= 0, got %v", c.BaselineConfidence)
	}
	if c.RefundConfidence <= c.BaselineConfidence {
		return fmt.Errorf("refund confidence (%v) must exceed baseline (%v)", c.RefundConfidence, c.BaselineConfidence)
	}
	if c.FuzzyConfidence <= c.RefundConfidence {
		return fmt.Errorf("fuzzy confidence (%v) must exceed refund confidence (%v)", c.FuzzyConfidence, c.RefundConfidence)
	}
	if c.TokenBase <= c.FuzzyConfidence {
		return fmt.Errorf("token base confidence (%v) must exceed fuzzy confidence (%v)", c.TokenBase, c.FuzzyConfidence)
	}
	if c.TokenCeiling < c.TokenBase {
		return fmt.Errorf("token ceiling (%v) must be >= token base (%v)", c.TokenCeiling, c.TokenBase)
	}
	if c.TokenCeiling >= 1.0 {
		return fmt.Errorf("token ceiling must stay below 1.0 (reserved for overrides), got %v", c.TokenCeiling)
	}
	if c.TokenIncrement < 0 {
		return fmt.Errorf("token increment must be >= 0, got %v", c.TokenIncrement)
	}
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold must be in (0,1], got %v", c.FuzzyThreshold)
	}
	return nil
}
