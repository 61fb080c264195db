package model

import "time"

// MatchType records how a match was established.
type MatchType string

const (
	MatchAutomatic MatchType = "AUTOMATIC"
	MatchManual    MatchType = "MANUAL"
	MatchSuggested MatchType = "SUGGESTED"
)

// TransactionMatch pairs one book transaction with one statement transaction.
// Breaking a match removes it and returns both sides to the unmatched pools.
type TransactionMatch struct {
	ID          string
	BookID      string
	StatementID string
	Type        MatchType
	Confidence  float64 // in [0,1]
	Criteria    []string
	MatchedAt   time.Time
	MatchedBy   string
}
