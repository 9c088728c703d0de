// Package catalog provides the rule catalog: the static, loadable mapping of
// categories to keyword sets and of exact phrases to category overrides.
// A Catalog is immutable after construction; hot reload replaces the whole
// catalog atomically through a Holder.
package catalog

import (
	"sort"

	"github.com/finsift/finsift/internal/models"
	"github.com/finsift/finsift/internal/normalize"
)

// Default refund/reversal markers, applied when the catalog file does not
// declare its own list.
var defaultRefundMarkers = []string{"refund", "reversal", "chargeback", "cashback"}

// CategoryRules is one category's entry in the catalog file.
type CategoryRules struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// FileConfig is the on-disk YAML structure of a rule catalog.
type FileConfig struct {
	Categories      []CategoryRules   `yaml:"categories"`
	Overrides       map[string]string `yaml:"overrides"`
	StopWords       []string          `yaml:"stop_words"`
	RefundMarkers   []string          `yaml:"refund_markers"`
	DefaultCategory string            `yaml:"default_category"`
}

// Catalog is the compiled, immutable rule set used by the matcher. All
// keywords and override phrases are normalized at construction, so matching
// never needs to re-case catalog entries.
type Catalog struct {
	categories      []models.Category
	priority        map[models.Category]int
	keywords        map[models.Category][]string
	overrides       map[string]models.Category
	stopWords       map[string]struct{}
	refundMarkers   map[string]struct{}
	defaultCategory models.Category
}

// New compiles a FileConfig into a Catalog, validating every invariant:
// no empty or duplicate category names, no keyword or override phrase that
// normalizes to nothing, no override referencing an unknown category, and no
// two override phrases that collide after normalization with conflicting
// categories. models.CategoryOther is always part of the resulting catalog.
func New(cfg FileConfig) (*Catalog, error) {
	return build(cfg, "")
}

func build(cfg FileConfig, path string) (*Catalog, error) {
	c := &Catalog{
		priority:      make(map[models.Category]int),
		keywords:      make(map[models.Category][]string),
		overrides:     make(map[string]models.Category),
		stopWords:     make(map[string]struct{}),
		refundMarkers: make(map[string]struct{}),
	}

	for _, entry := range cfg.Categories {
		if entry.Name == "" {
			return nil, configErrorf(path, "category with empty name")
		}
		cat := models.Category(normalize.Normalize(entry.Name).String())
		if cat == "" {
			return nil, configErrorf(path, "category name '%s' normalizes to nothing", entry.Name)
		}
		if _, dup := c.priority[cat]; dup {
			return nil, configErrorf(path, "duplicate category '%s'", cat)
		}
		c.priority[cat] = len(c.categories)
		c.categories = append(c.categories, cat)

		seen := make(map[string]struct{}, len(entry.Keywords))
		for _, kw := range entry.Keywords {
			norm := normalize.Normalize(kw)
			if norm.IsEmpty() {
				return nil, configErrorf(path, "keyword '%s' in category '%s' normalizes to nothing", kw, cat)
			}
			if _, dup := seen[norm.String()]; dup {
				continue
			}
			seen[norm.String()] = struct{}{}
			c.keywords[cat] = append(c.keywords[cat], norm.String())
		}
	}

	// The fallback category always exists, even for an empty file.
	if _, ok := c.priority[models.CategoryOther]; !ok {
		c.priority[models.CategoryOther] = len(c.categories)
		c.categories = append(c.categories, models.CategoryOther)
	}

	for phrase, name := range cfg.Overrides {
		norm := normalize.Normalize(phrase)
		if norm.IsEmpty() {
			return nil, configErrorf(path, "override phrase '%s' normalizes to nothing", phrase)
		}
		cat := models.Category(normalize.Normalize(name).String())
		if _, known := c.priority[cat]; !known {
			return nil, configErrorf(path, "override '%s' references unknown category '%s'", phrase, name)
		}
		if existing, dup := c.overrides[norm.String()]; dup && existing != cat {
			return nil, configErrorf(path, "override phrase '%s' maps to both '%s' and '%s'", norm, existing, cat)
		}
		c.overrides[norm.String()] = cat
	}

	for _, w := range cfg.StopWords {
		norm := normalize.Normalize(w)
		if norm.IsEmpty() {
			return nil, configErrorf(path, "stop word '%s' normalizes to nothing", w)
		}
		c.stopWords[norm.String()] = struct{}{}
	}

	markers := cfg.RefundMarkers
	if markers == nil {
		markers = defaultRefundMarkers
	}
	for _, m := range markers {
		norm := normalize.Normalize(m)
		if norm.IsEmpty() {
			return nil, configErrorf(path, "refund marker '%s' normalizes to nothing", m)
		}
		c.refundMarkers[norm.String()] = struct{}{}
	}

	c.defaultCategory = models.CategoryOther
	if cfg.DefaultCategory != "" {
		cat := models.Category(normalize.Normalize(cfg.DefaultCategory).String())
		if _, known := c.priority[cat]; !known {
			return nil, configErrorf(path, "default category '%s' is not declared", cfg.DefaultCategory)
		}
		c.defaultCategory = cat
	}

	return c, nil
}

// Categories returns the known categories in declaration order. Declaration
// order doubles as the documented priority order for final tie-breaks.
func (c *Catalog) Categories() []models.Category {
	out := make([]models.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Keywords returns the normalized keywords of a category, in file order.
func (c *Catalog) Keywords(cat models.Category) []string {
	return c.keywords[cat]
}

// Override looks up an exact-phrase override for the full normalized text.
func (c *Catalog) Override(text normalize.Text) (models.Category, bool) {
	cat, ok := c.overrides[text.String()]
	return cat, ok
}

// IsStopWord reports whether a token is excluded from keyword matching.
func (c *Catalog) IsStopWord(token string) bool {
	_, ok := c.stopWords[token]
	return ok
}

// IsRefundMarker reports whether a token marks a refund or reversal.
func (c *Catalog) IsRefundMarker(token string) bool {
	_, ok := c.refundMarkers[token]
	return ok
}

// DefaultCategory returns the category assigned when nothing matches.
func (c *Catalog) DefaultCategory() models.Category {
	return c.defaultCategory
}

// Priority returns the tie-break rank of a category (lower wins). Unknown
// categories rank last.
func (c *Catalog) Priority(cat models.Category) int {
	if p, ok := c.priority[cat]; ok {
		return p
	}
	return len(c.categories)
}

// KeywordCount returns the total number of keywords across all categories.
func (c *Catalog) KeywordCount() int {
	n := 0
	for _, kws := range c.keywords {
		n += len(kws)
	}
	return n
}

// OverrideCount returns the number of override phrases.
func (c *Catalog) OverrideCount() int {
	return len(c.overrides)
}

// OverridePhrases returns the override phrases in sorted order, for
// reporting endpoints that need a stable listing.
func (c *Catalog) OverridePhrases() []string {
	out := make([]string, 0, len(c.overrides))
	for phrase := range c.overrides {
		out = append(out, phrase)
	}
	sort.Strings(out)
	return out
}
