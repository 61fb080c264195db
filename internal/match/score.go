package match

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookclose/recon/internal/model"
)

// Component weights for the combined confidence score.
const (
	weightAmount      = 0.4
	weightDate        = 0.3
	weightReference   = 0.2
	weightDescription = 0.1
)

// amountTolerance is the currency tolerance for an exact amount match.
var amountTolerance = decimal.RequireFromString("0.01")

type pairScore struct {
	amount      float64
	date        float64
	reference   float64
	description float64
	confidence  float64
	gapDays     int
	criteria    []string
}

// scorePair computes the four component scores for one (book, statement)
// pair and combines them with the fixed weights.
func scorePair(book model.BookTransaction, stmt model.StatementTransaction) pairScore {
	var s pairScore

	s.amount = amountScore(book.Amount, stmt.Amount)
	s.gapDays = dateGapDays(book.Date, stmt.Date)
	s.date = dateScore(s.gapDays)
	s.reference = referenceScore(book.Reference, stmt.Reference)
	s.description = descriptionScore(book.Description, stmt.Description)

	s.confidence = roundConfidence(s.amount*weightAmount +
		s.date*weightDate +
		s.reference*weightReference +
		s.description*weightDescription)

	s.criteria = buildCriteria(s)
	return s
}

// roundConfidence rounds a weighted sum to nine decimal places. The raw
// float64 sum of the four weights is 0.9999999999999999, so a pair with
// all components exact would otherwise never report 1.0.
func roundConfidence(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}

// amountScore is 1.0 within the currency tolerance, then decays linearly
// with the difference relative to the book amount.
func amountScore(bookAmount, stmtAmount decimal.Decimal) float64 {
	diff := bookAmount.Sub(stmtAmount).Abs()
	if diff.LessThanOrEqual(amountTolerance) {
		return 1.0
	}
	if bookAmount.IsZero() {
		return 0.0
	}
	ratio, _ := diff.Div(bookAmount.Abs()).Float64()
	if ratio >= 1.0 {
		return 0.0
	}
	return 1.0 - ratio
}

// dateScore maps the integer day gap onto the fixed ladder.
func dateScore(gapDays int) float64 {
	switch {
	case gapDays == 0:
		return 1.0
	case gapDays == 1:
		return 0.9
	case gapDays <= 3:
		return 0.7
	case gapDays <= 7:
		return 0.5
	default:
		return 0.0
	}
}

// referenceScore is 1.0 iff both references are present and equal after
// normalization.
func referenceScore(bookRef, stmtRef string) float64 {
	b := strings.ToUpper(strings.TrimSpace(bookRef))
	s := strings.ToUpper(strings.TrimSpace(stmtRef))
	if b != "" && b == s {
		return 1.0
	}
	return 0.0
}

// descriptionScore is the Jaccard similarity of the lower-cased,
// whitespace-tokenized word sets.
func descriptionScore(bookDesc, stmtDesc string) float64 {
	bookWords := tokenize(bookDesc)
	stmtWords := tokenize(stmtDesc)
	if len(bookWords) == 0 || len(stmtWords) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range bookWords {
		if stmtWords[w] {
			intersection++
		}
	}
	union := len(bookWords) + len(stmtWords) - intersection
	return float64(intersection) / float64(union)
}

func tokenize(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		words[w] = true
	}
	return words
}

// dateGapDays is the whole-day gap between two dates, ignoring time of day.
func dateGapDays(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	gap := int(da.Sub(db).Hours() / 24)
	if gap < 0 {
		gap = -gap
	}
	return gap
}

// buildCriteria renders the component scores as ordered human-readable
// match criteria.
func buildCriteria(s pairScore) []string {
	var criteria []string

	switch {
	case s.amount == 1.0:
		criteria = append(criteria, "Exact amount match")
	case s.amount > 0:
		criteria = append(criteria, fmt.Sprintf("Amount within %.0f%%", (1.0-s.amount)*100))
	}

	switch {
	case s.gapDays == 0:
		criteria = append(criteria, "Same date")
	case s.date > 0:
		criteria = append(criteria, fmt.Sprintf("Date within %d day(s)", s.gapDays))
	}

	if s.reference == 1.0 {
		criteria = append(criteria, "Reference match")
	}

	if s.description > 0 {
		criteria = append(criteria, fmt.Sprintf("Description similarity %.2f", s.description))
	}

	return criteria
}
