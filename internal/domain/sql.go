package domain

// SimilarQuestion is a historical question paired with the SQL that answered it
type SimilarQuestion struct {
	Question string `json:"question" validate:"required"`
	SQLQuery string `json:"sql_query" validate:"required"`
}

// SQLExplanation is the outcome of reflecting a generated query back into a question
type SQLExplanation struct {
	ReversedQuestion string `json:"reversed_question"`
	IsMatching       bool   `json:"is_matching"`
	MismatchDetails  string `json:"mismatch_details"`
}

// ModelTier identifies which generation model a request was routed to
type ModelTier string

const (
	TierFast ModelTier = "fast"
	TierFine ModelTier = "fine"
)

// GenerationResult is a generated single-line SQL query and the model that produced it
type GenerationResult struct {
	SQL   string    `json:"sql"`
	Tier  ModelTier `json:"tier"`
	Model string    `json:"model"`

	// Violation is set when the query is not a single read-only statement
	Violation string `json:"violation,omitempty"`
}
