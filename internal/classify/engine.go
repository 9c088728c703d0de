// Package classify implements the tiered rule engine that maps free-form
// transaction descriptions onto categories. Matching runs in strict tiers:
// empty-text short-circuit, exact-phrase override, refund-marker routing,
// whole-token keyword match, fuzzy near-miss, and finally the default
// category.
// Every call is total: no input ever produces an error.
package classify

import (
	"github.com/finsift/finsift/internal/catalog"
	"github.com/finsift/finsift/internal/logging"
	"github.com/finsift/finsift/internal/models"
	"github.com/finsift/finsift/internal/normalize"
)

// Engine is the classification facade. It is safe for concurrent use: the
// catalog is read through an atomic holder and all per-call state lives on
// the stack.
type Engine struct {
	holder *catalog.Holder
	cfg    Config
	logger logging.Logger
}

// NewEngine builds an engine over the given catalog holder. The config is
// assumed validated; use DefaultConfig when in doubt.
func NewEngine(holder *catalog.Holder, cfg Config, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Engine{holder: holder, cfg: cfg, logger: logger}
}

// Catalog returns the catalog snapshot currently in use.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.holder.Current()
}

// Swap atomically replaces the rule catalog. In-flight classifications keep
// the snapshot they started with.
func (e *Engine) Swap(c *catalog.Catalog) {
	e.holder.Swap(c)
	e.logger.WithFields(
		logging.Field{Key: logging.FieldCount, Value: c.KeywordCount()},
		logging.Field{Key: "overrides", Value: c.OverrideCount()},
	).Info("rule catalog swapped")
}

// Classify assigns a category to a transaction description. The amount is
// accepted for API stability and caching identity but plays no part in the
// decision. Classify never fails; unmatchable input degrades to the default
// category or the empty-normalized sentinel.
func (e *Engine) Classify(description string, amount *float64) models.ClassificationResult {
	_ = amount

	cat := e.holder.Current()
	text := normalize.Normalize(description)

	res := e.classifyText(text, cat)

	e.logger.WithFields(
		logging.Field{Key: logging.FieldCategory, Value: res.Category},
		logging.Field{Key: logging.FieldConfidence, Value: res.Confidence},
		logging.Field{Key: logging.FieldMethod, Value: res.Method},
		logging.Field{Key: logging.FieldTerm, Value: res.MatchedTerm},
	).Debug("classified description")
	return res
}

func (e *Engine) classifyText(text normalize.Text, cat *catalog.Catalog) models.ClassificationResult {
	if text.IsEmpty() {
		return models.ClassificationResult{
			Category:   models.CategoryOther,
			Confidence: 0.0,
			Method:     models.MethodEmptyNormalized,
		}
	}

	if c, ok := matchOverride(text, cat); ok {
		return e.cfg.result(c)
	}

	tokens := text.Tokens()

	if c, ok := matchRefund(tokens, cat); ok {
		return e.cfg.result(c)
	}

	if cands := matchKeywords(tokens, cat); len(cands) > 0 {
		return e.cfg.result(pickKeyword(cands, cat))
	}

	if e.cfg.FuzzyEnabled {
		if c, ok := matchFuzzy(tokens, cat, e.cfg.FuzzyThreshold); ok {
			return e.cfg.result(c)
		}
	}

	return models.ClassificationResult{
		Category:   cat.DefaultCategory(),
		Confidence: e.cfg.BaselineConfidence,
		Method:     models.MethodDefaultOther,
	}
}
