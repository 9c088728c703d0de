package classify

import (
	"github.com/finsift/finsift/internal/catalog"
	"github.com/finsift/finsift/internal/models"
)

// pickKeyword selects the winning keyword candidate. Ties break in a fixed
// order so equal inputs always produce equal outputs: most distinct keyword
// hits first, then the leftmost first hit, then catalog declaration order.
func pickKeyword(cands []candidate, cat *catalog.Catalog) candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		switch {
		case c.hits > best.hits:
			best = c
		case c.hits < best.hits:
		case c.first < best.first:
			best = c
		case c.first > best.first:
		case cat.Priority(c.category) < cat.Priority(best.category):
			best = c
		}
	}
	return best
}

// confidence assigns the final confidence for a candidate. Overrides alone
// reach 1.0; token matches grow with hit count but are clamped strictly
// below it.
func (cfg Config) confidence(c candidate) float64 {
	switch c.method {
	case models.MethodOverride:
		return 1.0
	case models.MethodRefundMarker:
		return cfg.RefundConfidence
	case models.MethodFuzzyMatch:
		return cfg.FuzzyConfidence
	case models.MethodTokenMatch:
		conf := cfg.TokenBase + cfg.TokenIncrement*float64(c.hits-1)
		if conf > cfg.TokenCeiling {
			conf = cfg.TokenCeiling
		}
		return conf
	default:
		return cfg.BaselineConfidence
	}
}

func (cfg Config) result(c candidate) models.ClassificationResult {
	return models.ClassificationResult{
		Category:    c.category,
		Confidence:  cfg.confidence(c),
		Method:      c.method,
		MatchedTerm: c.term,
	}
}
