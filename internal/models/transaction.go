package models

// Transaction is a classified transaction as persisted in history and
// returned by the API. The amount is optional: classification never requires
// it, and the engine does not consult it.
type Transaction struct {
	ID          int64    `json:"id"`
	Text        string   `json:"text"`
	Amount      *float64 `json:"amount,omitempty"`
	Category    Category `json:"category"`
	Confidence  float64  `json:"confidence"`
	Method      Method   `json:"method"`
	MatchedTerm string   `json:"matched_term,omitempty"`
}

// TransactionResponse is the payload returned by the classify endpoint and
// stored in the result cache.
type TransactionResponse struct {
	Transaction Transaction `json:"transaction"`
	Message     string      `json:"message"`
}

// TransactionStats summarizes stored transactions by category.
type TransactionStats struct {
	TotalTransactions int              `json:"total_transactions"`
	Stats             map[Category]int `json:"stats"`
}
