package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsift/finsift/internal/cache"
	"github.com/finsift/finsift/internal/catalog"
	"github.com/finsift/finsift/internal/classify"
	"github.com/finsift/finsift/internal/history"
	"github.com/finsift/finsift/internal/logging"
	"github.com/finsift/finsift/internal/models"
	"github.com/finsift/finsift/internal/normalize"
)

const testCatalogYAML = `
categories:
  - name: food
    keywords: [coffee, starbucks]
  - name: transport
    keywords: [gas, shell]
overrides:
  groceries and toiletries: food
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	return newTestServerWithCache(t, cache.Disabled())
}

func newTestServerWithCache(t *testing.T, rc ResultCache) (*Server, string) {
	t.Helper()

	dir := t.TempDir()
	file := filepath.Join(dir, "categories.yaml")
	require.NoError(t, os.WriteFile(file, []byte(testCatalogYAML), 0o644))

	cat, err := catalog.Load(file)
	require.NoError(t, err)

	engine := classify.NewEngine(catalog.NewHolder(cat), classify.DefaultConfig(), logging.NewMockLogger())
	srv := NewServer(engine, history.NewMemoryStore(), rc, file, logging.NewMockLogger())
	return srv, file
}

// memoryCache is an always-enabled ResultCache backed by a map, for
// exercising the cache-hit path without Redis.
type memoryCache struct {
	entries map[string]models.TransactionResponse
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]models.TransactionResponse)}
}

func (m *memoryCache) Key(text normalize.Text, amount *float64) string {
	amt := "none"
	if amount != nil {
		amt = strconv.FormatFloat(*amount, 'f', -1, 64)
	}
	return "tx_classified:" + text.String() + ":" + amt
}

func (m *memoryCache) Cacheable(text normalize.Text, amount *float64) bool {
	if text.IsEmpty() {
		return false
	}
	return amount == nil || *amount >= 0
}

func (m *memoryCache) Get(_ context.Context, key string) (models.TransactionResponse, bool, error) {
	res, ok := m.entries[key]
	return res, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, res models.TransactionResponse) error {
	m.entries[key] = res
	return nil
}

func (m *memoryCache) Flush(context.Context) error {
	m.entries = make(map[string]models.TransactionResponse)
	return nil
}

func (m *memoryCache) Ping(context.Context) error { return nil }

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestClassifyEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/transactions/classify", ClassifyRequest{
		Text:   "Starbucks Coffee",
		Amount: amountPtr(4.85),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Transaction.ID)
	assert.Equal(t, models.Category("food"), resp.Transaction.Category)
	assert.Equal(t, models.MethodTokenMatch, resp.Transaction.Method)
	assert.InDelta(t, 0.85, resp.Transaction.Confidence, 1e-9)
	assert.Equal(t, "Transaction classified", resp.Message)
}

func TestClassifyEndpointEmptyText(t *testing.T) {
	srv, _ := newTestServer(t)

	// empty text is classifiable, not an error
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/transactions/classify", ClassifyRequest{Text: ""})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.CategoryOther, resp.Transaction.Category)
	assert.Equal(t, models.MethodEmptyNormalized, resp.Transaction.Method)
	assert.Zero(t, resp.Transaction.Confidence)
}

func TestClassifyEndpointMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/classify", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/transactions/classify", bytes.NewBuffer(nil))
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClassifyCacheHitDoesNotPersist(t *testing.T) {
	srv, _ := newTestServerWithCache(t, newMemoryCache())

	body := ClassifyRequest{Text: "Starbucks Coffee", Amount: amountPtr(4.85)}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/transactions/classify", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var first models.TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, "Transaction classified", first.Message)
	assert.Equal(t, int64(1), first.Transaction.ID)

	// the repeat is served from the cache: same transaction, no new id
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/transactions/classify", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var second models.TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, "Transaction classified (cached)", second.Message)
	assert.Equal(t, first.Transaction, second.Transaction)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []models.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	assert.Len(t, txs, 1)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/transactions/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.TransactionStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalTransactions)
}

func TestReloadFlushesResultCache(t *testing.T) {
	srv, file := newTestServerWithCache(t, newMemoryCache())

	body := ClassifyRequest{Text: "coffee"}
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/transactions/classify", body)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, os.WriteFile(file, []byte(testCatalogYAML), 0o644))
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/catalog/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// the flushed entry no longer answers; a fresh transaction is minted
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/transactions/classify", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Transaction classified", resp.Message)
	assert.Equal(t, int64(2), resp.Transaction.ID)
}

func TestListTransactions(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, text := range []string{"coffee", "shell gas", "unknown merchant"} {
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/transactions/classify", ClassifyRequest{Text: text})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var txs []models.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 3)
	// newest first
	assert.Equal(t, "unknown merchant", txs[0].Text)
	assert.Equal(t, "coffee", txs[2].Text)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/transactions?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	assert.Len(t, txs, 1)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/transactions?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionStatsZeroFilled(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/transactions/classify", ClassifyRequest{Text: "coffee"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/transactions/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.TransactionStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalTransactions)
	assert.Equal(t, 1, stats.Stats["food"])
	// categories with no transactions still appear
	assert.Contains(t, stats.Stats, models.Category("transport"))
	assert.Equal(t, 0, stats.Stats["transport"])
	assert.Contains(t, stats.Stats, models.CategoryOther)
}

func TestListCategories(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Categories      []CategoryInfo  `json:"categories"`
		DefaultCategory models.Category `json:"default_category"`
		KeywordCount    int             `json:"keyword_count"`
		OverrideCount   int             `json:"override_count"`
		OverridePhrases []string        `json:"override_phrases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Categories, 3) // food, transport, other
	assert.Equal(t, models.CategoryOther, resp.DefaultCategory)
	assert.Equal(t, 4, resp.KeywordCount)
	assert.Equal(t, 1, resp.OverrideCount)
	assert.Equal(t, []string{"groceries and toiletries"}, resp.OverridePhrases)
}

func TestReloadCatalog(t *testing.T) {
	srv, file := newTestServer(t)

	// before the reload, "pharmacy" means nothing
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/transactions/classify", ClassifyRequest{Text: "pharmacy"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.MethodDefaultOther, resp.Transaction.Method)

	updated := `
categories:
  - name: food
    keywords: [coffee, starbucks]
  - name: health
    keywords: [pharmacy]
`
	require.NoError(t, os.WriteFile(file, []byte(updated), 0o644))

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/catalog/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/transactions/classify", ClassifyRequest{Text: "pharmacy"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.Category("health"), resp.Transaction.Category)
}

func TestReloadCatalogInvalidKeepsServing(t *testing.T) {
	srv, file := newTestServer(t)

	require.NoError(t, os.WriteFile(file, []byte(`
categories:
  - name: food
    keywords: ["!!!"]
`), 0o644))

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/catalog/reload", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// previous catalog still answers
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/transactions/classify", ClassifyRequest{Text: "coffee"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.Category("food"), resp.Transaction.Category)
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func amountPtr(v float64) *float64 {
	return &v
}
