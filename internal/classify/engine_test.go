package classify

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsift/finsift/internal/catalog"
	"github.com/finsift/finsift/internal/logging"
	"github.com/finsift/finsift/internal/models"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(catalog.FileConfig{
		Categories: []catalog.CategoryRules{
			{Name: "food", Keywords: []string{"coffee", "starbucks", "groceries", "market"}},
			{Name: "transport", Keywords: []string{"gas", "shell", "uber"}},
			{Name: "shopping", Keywords: []string{"market", "amazon"}},
			{Name: "rent", Keywords: []string{"rent"}},
		},
		Overrides: map[string]string{
			"groceries and toiletries": "food",
		},
		StopWords: []string{"payment"},
	})
	require.NoError(t, err)
	return cat
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(catalog.NewHolder(testCatalog(t)), DefaultConfig(), logging.NewMockLogger())
}

func TestClassifyScenarios(t *testing.T) {
	e := newTestEngine(t)

	amount := func(v float64) *float64 { return &v }

	tests := []struct {
		name        string
		description string
		amount      *float64
		category    models.Category
		method      models.Method
		confidence  float64
	}{
		{
			name:        "merchant and product both match",
			description: "Starbucks Coffee",
			amount:      amount(4.85),
			category:    "food",
			method:      models.MethodTokenMatch,
			confidence:  0.85, // two distinct keywords: starbucks + coffee
		},
		{
			name:        "override beats keywords",
			description: "groceries and toiletries",
			amount:      amount(50.00),
			category:    "food",
			method:      models.MethodOverride,
			confidence:  1.0,
		},
		{
			name:        "empty input",
			description: "",
			category:    models.CategoryOther,
			method:      models.MethodEmptyNormalized,
			confidence:  0.0,
		},
		{
			name:        "whitespace only",
			description: "   \t ",
			category:    models.CategoryOther,
			method:      models.MethodEmptyNormalized,
			confidence:  0.0,
		},
		{
			name:        "purely numeric",
			description: "12.50",
			category:    models.CategoryOther,
			method:      models.MethodEmptyNormalized,
			confidence:  0.0,
		},
		{
			name:        "alphanumeric token survives but misses",
			description: "XYZ123",
			category:    models.CategoryOther,
			method:      models.MethodDefaultOther,
			confidence:  0.50,
		},
		{
			name:        "two keyword hits raise confidence",
			description: "Shell Gas Station",
			amount:      amount(52.30),
			category:    "transport",
			method:      models.MethodTokenMatch,
			confidence:  0.85,
		},
		{
			name:        "keywords match whole tokens only",
			description: "parent transfer",
			category:    models.CategoryOther,
			method:      models.MethodDefaultOther,
			confidence:  0.50,
		},
		{
			name:        "refund marker routes to default",
			description: "REFUND merchant 991",
			category:    models.CategoryOther,
			method:      models.MethodRefundMarker,
			confidence:  0.60,
		},
		{
			name:        "fuzzy near miss",
			description: "starbcks downtown",
			category:    "food",
			method:      models.MethodFuzzyMatch,
			confidence:  0.70,
		},
		{
			name:        "override is case insensitive",
			description: "Groceries AND Toiletries",
			category:    "food",
			method:      models.MethodOverride,
			confidence:  1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Classify(tt.description, tt.amount)
			assert.Equal(t, tt.category, res.Category)
			assert.Equal(t, tt.method, res.Method)
			assert.InDelta(t, tt.confidence, res.Confidence, 1e-9)
		})
	}
}

func TestClassifyTieBreaks(t *testing.T) {
	e := newTestEngine(t)

	t.Run("higher hit count wins", func(t *testing.T) {
		// one food keyword vs two transport keywords
		res := e.Classify("coffee near shell gas stop", nil)
		assert.Equal(t, models.Category("transport"), res.Category)
		assert.InDelta(t, 0.85, res.Confidence, 1e-9)
	})

	t.Run("leftmost hit wins on equal count", func(t *testing.T) {
		res := e.Classify("uber to the coffee place", nil)
		assert.Equal(t, models.Category("transport"), res.Category)
		assert.Equal(t, "uber", res.MatchedTerm)
	})

	t.Run("declaration order wins on full tie", func(t *testing.T) {
		// "market" belongs to both food and shopping; food is declared first
		res := e.Classify("central market", nil)
		assert.Equal(t, models.Category("food"), res.Category)
	})
}

func TestClassifyDeterminism(t *testing.T) {
	e := newTestEngine(t)
	first := e.Classify("uber ride and coffee at the market", nil)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, e.Classify("uber ride and coffee at the market", nil))
	}
}

func TestClassifyStopWords(t *testing.T) {
	cat, err := catalog.New(catalog.FileConfig{
		Categories: []catalog.CategoryRules{
			{Name: "bills", Keywords: []string{"payment", "invoice"}},
		},
		StopWords: []string{"payment"},
	})
	require.NoError(t, err)
	e := NewEngine(catalog.NewHolder(cat), DefaultConfig(), logging.NewMockLogger())

	// "payment" is a stop word, so the single-token keyword cannot fire on it
	res := e.Classify("card payment", nil)
	assert.Equal(t, models.MethodDefaultOther, res.Method)

	res = e.Classify("invoice payment", nil)
	assert.Equal(t, models.Category("bills"), res.Category)
	assert.Equal(t, "invoice", res.MatchedTerm)
}

func TestClassifyMultiWordKeyword(t *testing.T) {
	cat, err := catalog.New(catalog.FileConfig{
		Categories: []catalog.CategoryRules{
			{Name: "transport", Keywords: []string{"gas station"}},
		},
	})
	require.NoError(t, err)
	e := NewEngine(catalog.NewHolder(cat), DefaultConfig(), logging.NewMockLogger())

	res := e.Classify("local gas station visit", nil)
	assert.Equal(t, models.Category("transport"), res.Category)
	assert.Equal(t, "gas station", res.MatchedTerm)

	// tokens present but not contiguous
	res = e.Classify("gas at the station", nil)
	assert.Equal(t, models.MethodDefaultOther, res.Method)
}

func TestClassifyFuzzyDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FuzzyEnabled = false
	e := NewEngine(catalog.NewHolder(testCatalog(t)), cfg, logging.NewMockLogger())

	res := e.Classify("starbcks downtown", nil)
	assert.Equal(t, models.MethodDefaultOther, res.Method)
}

func TestClassifyAmountIgnored(t *testing.T) {
	e := newTestEngine(t)
	neg, pos := -12.0, 12.0
	withNeg := e.Classify("shell gas", &neg)
	withPos := e.Classify("shell gas", &pos)
	withNil := e.Classify("shell gas", nil)
	assert.Equal(t, withNil, withNeg)
	assert.Equal(t, withNil, withPos)
}

func TestEngineSwap(t *testing.T) {
	e := newTestEngine(t)

	res := e.Classify("coffee", nil)
	assert.Equal(t, models.Category("food"), res.Category)

	next, err := catalog.New(catalog.FileConfig{
		Categories: []catalog.CategoryRules{
			{Name: "beverages", Keywords: []string{"coffee"}},
		},
	})
	require.NoError(t, err)
	e.Swap(next)

	res = e.Classify("coffee", nil)
	assert.Equal(t, models.Category("beverages"), res.Category)
}

func TestClassifyLogsMatchedTerm(t *testing.T) {
	mock := logging.NewMockLogger()
	e := NewEngine(catalog.NewHolder(testCatalog(t)), DefaultConfig(), mock)

	res := e.Classify("Starbucks Coffee", nil)
	require.NotEmpty(t, res.MatchedTerm)

	v, ok := mock.FieldValue("DEBUG", "classified description", logging.FieldTerm)
	require.True(t, ok)
	assert.Equal(t, res.MatchedTerm, v)
}

func TestClassifyConcurrent(t *testing.T) {
	e := newTestEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				res := e.Classify(fmt.Sprintf("shell gas stop %d", n), nil)
				if res.Category != "transport" {
					t.Errorf("got %s, want transport", res.Category)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
