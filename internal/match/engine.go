// Package match computes weighted confidence scores between book and
// statement transactions and assigns matches.
package match

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookclose/recon/internal/model"
)

const (
	// LowCutoff discards candidate pairs outright.
	LowCutoff = 0.5
	// TierHighMin and TierMediumMin bound the confidence tiers:
	// HIGH >= 0.9, MEDIUM [0.7, 0.9), LOW [0.5, 0.7).
	TierHighMin   = 0.9
	TierMediumMin = 0.7
	// DefaultAutoThreshold accepts HIGH-tier candidates automatically.
	DefaultAutoThreshold = 0.7

	// parallelPairThreshold switches pairwise scoring to chunked workers.
	parallelPairThreshold = 4096
)

// Tier partitions candidates by confidence.
type Tier string

const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

func tierOf(confidence float64) Tier {
	switch {
	case confidence >= TierHighMin:
		return TierHigh
	case confidence >= TierMediumMin:
		return TierMedium
	default:
		return TierLow
	}
}

// Candidate is a scored (book, statement) pair at or above the low cutoff.
type Candidate struct {
	Book        model.BookTransaction
	Statement   model.StatementTransaction
	Confidence  float64
	Tier        Tier
	DateGapDays int
	Criteria    []string
	order       int // first-seen position, final tie-break
}

// Summary carries the counts of a matching run.
type Summary struct {
	BookTotal          int
	StatementTotal     int
	AutoMatched        int
	Suggested          int
	UnmatchedBook      int
	UnmatchedStatement int
}

// Result is the outcome of one matching run. It does not touch the session;
// the caller commits the automatic matches.
type Result struct {
	Automatic          []model.TransactionMatch
	Suggested          []Candidate
	UnmatchedBook      []model.BookTransaction
	UnmatchedStatement []model.StatementTransaction
	Summary            Summary
}

// Engine scores every (book, statement) pair and greedily accepts
// high-confidence matches.
type Engine struct {
	threshold float64
}

// NewEngine creates an Engine. A non-positive threshold falls back to
// DefaultAutoThreshold.
func NewEngine(threshold float64) *Engine {
	if threshold <= 0 {
		threshold = DefaultAutoThreshold
	}
	return &Engine{threshold: threshold}
}

// Match scores all pairs, sorts candidates by confidence (smaller date gap,
// then first-seen order on ties), and greedily accepts HIGH-tier candidates
// meeting the threshold as AUTOMATIC matches. Each accepted match consumes
// both transactions; everything else is suggested or left unmatched.
func (e *Engine) Match(books []model.BookTransaction, stmts []model.StatementTransaction, actor string) *Result {
	candidates := e.scorePairs(books, stmts)

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		if candidates[i].DateGapDays != candidates[j].DateGapDays {
			return candidates[i].DateGapDays < candidates[j].DateGapDays
		}
		return candidates[i].order < candidates[j].order
	})

	result := &Result{}
	usedBook := make(map[string]bool)
	usedStmt := make(map[string]bool)
	now := time.Now().UTC()

	for _, c := range candidates {
		if usedBook[c.Book.ID] || usedStmt[c.Statement.ID] {
			continue
		}
		if c.Tier == TierHigh && c.Confidence >= e.threshold {
			usedBook[c.Book.ID] = true
			usedStmt[c.Statement.ID] = true
			result.Automatic = append(result.Automatic, model.TransactionMatch{
				ID:          uuid.NewString(),
				BookID:      c.Book.ID,
				StatementID: c.Statement.ID,
				Type:        model.MatchAutomatic,
				Confidence:  c.Confidence,
				Criteria:    c.Criteria,
				MatchedAt:   now,
				MatchedBy:   actor,
			})
			continue
		}
		result.Suggested = append(result.Suggested, c)
	}

	for _, b := range books {
		if !usedBook[b.ID] {
			result.UnmatchedBook = append(result.UnmatchedBook, b)
		}
	}
	for _, s := range stmts {
		if !usedStmt[s.ID] {
			result.UnmatchedStatement = append(result.UnmatchedStatement, s)
		}
	}

	result.Summary = Summary{
		BookTotal:          len(books),
		StatementTotal:     len(stmts),
		AutoMatched:        len(result.Automatic),
		Suggested:          len(result.Suggested),
		UnmatchedBook:      len(result.UnmatchedBook),
		UnmatchedStatement: len(result.UnmatchedStatement),
	}
	return result
}

// scorePairs computes candidates for every pair, chunking book rows across
// workers for large pools. Candidate order is derived from the pair's
// global position, so the output is identical either way.
func (e *Engine) scorePairs(books []model.BookTransaction, stmts []model.StatementTransaction) []Candidate {
	if len(books)*len(stmts) < parallelPairThreshold {
		return e.scoreRange(books, stmts, 0)
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(books) {
		workers = len(books)
	}
	chunk := (len(books) + workers - 1) / workers

	chunked := make([][]Candidate, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(books) {
			end = len(books)
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			chunked[w] = e.scoreRange(books[start:end], stmts, start)
		}(w, start, end)
	}
	wg.Wait()

	var candidates []Candidate
	for _, part := range chunked {
		candidates = append(candidates, part...)
	}
	return candidates
}

// scoreRange scores books[i] x stmts for a slice of the book pool.
// bookOffset preserves global first-seen ordering.
func (e *Engine) scoreRange(books []model.BookTransaction, stmts []model.StatementTransaction, bookOffset int) []Candidate {
	var candidates []Candidate
	for bi, b := range books {
		for si, s := range stmts {
			score := scorePair(b, s)
			if score.confidence < LowCutoff {
				continue
			}
			candidates = append(candidates, Candidate{
				Book:        b,
				Statement:   s,
				Confidence:  score.confidence,
				Tier:        tierOf(score.confidence),
				DateGapDays: score.gapDays,
				Criteria:    score.criteria,
				order:       (bookOffset+bi)*len(stmts) + si,
			})
		}
	}
	return candidates
}
