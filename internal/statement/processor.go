// Package statement validates, normalizes, deduplicates, and categorizes
// imported bank statement rows.
package statement

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bookclose/recon/internal/model"
	"github.com/bookclose/recon/internal/recon"
)

// DefaultBatchLimit bounds one import batch.
const DefaultBatchLimit = 10000

// chunkSize is the cancellation check interval during processing.
const chunkSize = 500

// Processor turns raw statement rows into normalized, categorized
// statement transactions.
type Processor struct {
	batchLimit int
}

// NewProcessor creates a Processor. A non-positive limit falls back to
// DefaultBatchLimit.
func NewProcessor(batchLimit int) *Processor {
	if batchLimit <= 0 {
		batchLimit = DefaultBatchLimit
	}
	return &Processor{batchLimit: batchLimit}
}

// ImportResult is a successful import: the full normalized transaction set
// plus non-blocking warnings.
type ImportResult struct {
	Transactions []model.StatementTransaction
	Warnings     []string
}

// Process validates and normalizes rows. The whole batch is rejected on any
// hard error: a missing date, a batch over the limit, or duplicate rows
// (same date, amount, and normalized description). Zero amounts and blank
// descriptions warn without blocking when validate is set. Cancellation is
// checked between chunks.
func (p *Processor) Process(ctx context.Context, rows []RawRow, validate bool) (*ImportResult, error) {
	if len(rows) > p.batchLimit {
		return nil, recon.Errf(recon.KindValidation,
			"batch of %d rows exceeds limit of %d", len(rows), p.batchLimit)
	}

	var (
		errs     []string
		warnings []string
		txns     []model.StatementTransaction
		seen     = make(map[string]int, len(rows)) // dedup key -> first row number
		dupes    []string
	)

	for start := 0; start < len(rows); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, recon.Dependency("import canceled", err)
		}

		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		for i, row := range rows[start:end] {
			rowNum := start + i + 1
			desc := normalize(row.Description)
			ref := normalize(row.Reference)

			if row.Date.IsZero() {
				errs = append(errs, fmt.Sprintf("row %d: missing date", rowNum))
				continue
			}
			if validate {
				if row.Amount.IsZero() {
					warnings = append(warnings, fmt.Sprintf("row %d: zero amount", rowNum))
				}
				if desc == "" {
					warnings = append(warnings, fmt.Sprintf("row %d: blank description", rowNum))
				}
			}

			key := dedupKey(row, desc)
			if first, dup := seen[key]; dup {
				dupes = append(dupes, fmt.Sprintf("row %d duplicates row %d (%s)", rowNum, first, key))
				continue
			}
			seen[key] = rowNum

			txns = append(txns, model.StatementTransaction{
				ID:          uuid.NewString(),
				Date:        row.Date,
				Amount:      row.Amount,
				Description: desc,
				Reference:   ref,
				Category:    Categorize(desc, row.Amount),
			})
		}
	}

	if len(errs) > 0 {
		return nil, recon.Fail(recon.KindValidation, errs).WithWarnings(warnings...)
	}
	if len(dupes) > 0 {
		details := append([]string{"duplicate statement rows in batch"}, dupes...)
		return nil, recon.Fail(recon.KindConflict, details).WithWarnings(warnings...)
	}

	return &ImportResult{Transactions: txns, Warnings: warnings}, nil
}

// normalize trims and uppercases a description or reference.
func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// dedupKey is the composite duplicate-detection key.
func dedupKey(row RawRow, normalizedDesc string) string {
	return fmt.Sprintf("%s|%s|%s", row.Date.Format("2006-01-02"), row.Amount.String(), normalizedDesc)
}
