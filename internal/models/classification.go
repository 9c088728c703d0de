package models

// Method identifies the mechanism that produced a classification decision.
type Method string

// Classification methods, from strongest to weakest evidence.
const (
	// MethodOverride means the entire normalized text matched a configured
	// override phrase. Overrides are definitionally unambiguous, so they are
	// the only method allowed to report a confidence of 1.0.
	MethodOverride Method = "override"

	// MethodTokenMatch means one or more catalog keywords matched the text
	// on whole-token boundaries.
	MethodTokenMatch Method = "token_match"

	// MethodFuzzyMatch means no keyword matched exactly but a token was
	// within the configured edit-distance similarity of a keyword.
	MethodFuzzyMatch Method = "fuzzy_match"

	// MethodRefundMarker means the text contained a refund/reversal marker
	// and was routed to the default category rather than guessed at.
	MethodRefundMarker Method = "refund_marker"

	// MethodDefaultOther means nothing matched; the default category was
	// assigned with the baseline confidence.
	MethodDefaultOther Method = "default_other"

	// MethodEmptyNormalized means the description normalized to nothing
	// (empty, whitespace-only, or purely numeric/symbolic input).
	MethodEmptyNormalized Method = "empty_normalized"
)

// ClassificationResult is the outcome of classifying a single description.
// It is produced fresh per call and owned by the caller.
type ClassificationResult struct {
	Category    Category `json:"category"`
	Confidence  float64  `json:"confidence"`
	Method      Method   `json:"method"`
	MatchedTerm string   `json:"matched_term,omitempty"`
}
