package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/finsift/finsift/internal/catalog"
	"github.com/finsift/finsift/internal/classify"
	"github.com/finsift/finsift/internal/history"
	"github.com/finsift/finsift/internal/logging"
	"github.com/finsift/finsift/internal/metrics"
	"github.com/finsift/finsift/internal/models"
	"github.com/finsift/finsift/internal/normalize"
)

// ResultCache is the slice of the response cache the handlers use.
// Satisfied by *cache.Cache.
type ResultCache interface {
	Key(text normalize.Text, amount *float64) string
	Cacheable(text normalize.Text, amount *float64) bool
	Get(ctx context.Context, key string) (models.TransactionResponse, bool, error)
	Set(ctx context.Context, key string, res models.TransactionResponse) error
	Flush(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Handlers contains all HTTP handlers
type Handlers struct {
	engine      *classify.Engine
	store       history.Store
	cache       ResultCache
	catalogFile string
	logger      logging.Logger
}

// NewHandlers creates new handlers
func NewHandlers(engine *classify.Engine, store history.Store, resultCache ResultCache, catalogFile string, logger logging.Logger) *Handlers {
	return &Handlers{
		engine:      engine,
		store:       store,
		cache:       resultCache,
		catalogFile: catalogFile,
		logger:      logger,
	}
}

// ClassifyRequest is the body of the classify endpoint.
type ClassifyRequest struct {
	Text   string   `json:"text"`
	Amount *float64 `json:"amount,omitempty"`
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "finsift",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyCheck reports whether the backing stores are reachable.
func (h *Handlers) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "history store unreachable")
		return
	}
	if err := h.cache.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "result cache unreachable")
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ClassifyTransaction classifies a description, persists the transaction,
// and returns it. A cache hit short-circuits: the stored response is
// returned as-is and no new transaction is minted, so repeated identical
// requests do not inflate the history. Classification itself never fails;
// only malformed input and storage trouble produce error responses.
func (h *Handlers) ClassifyTransaction(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	start := time.Now()
	text := normalize.Normalize(req.Text)
	cacheKey := h.cache.Key(text, req.Amount)
	cacheable := h.cache.Cacheable(text, req.Amount)

	if cacheable {
		cached, hit, err := h.cache.Get(r.Context(), cacheKey)
		switch {
		case err != nil:
			metrics.RecordCacheResult("error")
			h.logger.WithError(err).WithField(logging.FieldKey, cacheKey).Warn("result cache lookup failed")
		case hit:
			metrics.RecordCacheResult("hit")
			cached.Message = "Transaction classified (cached)"
			respond(w, http.StatusOK, cached)
			return
		default:
			metrics.RecordCacheResult("miss")
		}
	}

	result := h.engine.Classify(req.Text, req.Amount)
	metrics.ObserveClassification(result.Method, time.Since(start).Seconds())

	id, err := h.store.NextID(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to allocate transaction id")
		return
	}

	tx := models.Transaction{
		ID:          id,
		Text:        req.Text,
		Amount:      req.Amount,
		Category:    result.Category,
		Confidence:  result.Confidence,
		Method:      result.Method,
		MatchedTerm: result.MatchedTerm,
	}
	if err := h.store.Save(r.Context(), tx); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to store transaction")
		return
	}

	resp := models.TransactionResponse{
		Transaction: tx,
		Message:     "Transaction classified",
	}
	if cacheable {
		if err := h.cache.Set(r.Context(), cacheKey, resp); err != nil {
			h.logger.WithError(err).WithField(logging.FieldKey, cacheKey).Warn("result cache store failed")
		}
	}
	respond(w, http.StatusOK, resp)
}

// ListTransactions lists stored transactions, newest first
func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	txs, err := h.store.List(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}
	respond(w, http.StatusOK, txs)
}

// GetTransactionStats returns per-category counts for stored transactions.
// Every catalog category appears, zero-filled when empty.
func (h *Handlers) GetTransactionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	for _, category := range h.engine.Catalog().Categories() {
		if _, ok := stats.Stats[category]; !ok {
			stats.Stats[category] = 0
		}
	}
	respond(w, http.StatusOK, stats)
}

// CategoryInfo describes one catalog category.
type CategoryInfo struct {
	Name     models.Category `json:"name"`
	Keywords int             `json:"keywords"`
}

// ListCategories returns the active catalog's categories and rule counts.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	cat := h.engine.Catalog()

	infos := make([]CategoryInfo, 0, len(cat.Categories()))
	for _, c := range cat.Categories() {
		infos = append(infos, CategoryInfo{Name: c, Keywords: len(cat.Keywords(c))})
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"categories":       infos,
		"default_category": cat.DefaultCategory(),
		"keyword_count":    cat.KeywordCount(),
		"override_count":   cat.OverrideCount(),
		"override_phrases": cat.OverridePhrases(),
	})
}

// ReloadCatalog rebuilds the rule catalog from its file and swaps it in
// atomically. On failure the previous catalog keeps serving.
func (h *Handlers) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	next, err := catalog.Load(h.catalogFile)
	if err != nil {
		metrics.RecordCatalogReload(false)
		h.logger.WithError(err).Error("catalog reload rejected")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.engine.Swap(next)
	metrics.RecordCatalogReload(true)

	// Stale results must not outlive the rules that produced them.
	if err := h.cache.Flush(r.Context()); err != nil {
		h.logger.WithError(err).Warn("result cache flush failed after reload")
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"message":        "Catalog reloaded",
		"categories":     len(next.Categories()),
		"keyword_count":  next.KeywordCount(),
		"override_count": next.OverrideCount(),
	})
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}
