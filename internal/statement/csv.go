package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RawRow is an unvalidated statement row from an import source. A zero Date
// means the source row had no parseable date; the processor rejects it.
type RawRow struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Reference   string
}

// Parser converts a statement file into raw rows.
type Parser interface {
	Parse(r io.Reader) ([]RawRow, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&GenericParser{})
	return r
}

// GenericParser parses the generic statement CSV layout:
// date,description,amount,reference with ISO dates.
type GenericParser struct{}

const (
	genericDateFormat = "2006-01-02"
	genericHeader     = "date,description,amount,reference"
	genericNumFields  = 4
	genericColDate    = 0
	genericColDesc    = 1
	genericColAmount  = 2
	genericColRef     = 3
)

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads a generic statement CSV and returns raw rows. The file must
// open with the expected header row. Rows with a missing date are passed
// through with a zero Date so the processor reports them with their row
// position.
func (p *GenericParser) Parse(r io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = genericNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}
	if !isGenericHeader(records[0]) {
		return nil, fmt.Errorf("missing header row, expected %q", genericHeader)
	}

	var rows []RawRow
	for i, rec := range records[1:] {
		row, err := parseGenericRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isGenericHeader(rec []string) bool {
	want := strings.Split(genericHeader, ",")
	if len(rec) != len(want) {
		return false
	}
	for i, col := range want {
		if !strings.EqualFold(strings.TrimSpace(rec[i]), col) {
			return false
		}
	}
	return true
}

func parseGenericRow(rec []string) (RawRow, error) {
	var row RawRow

	if dateText := strings.TrimSpace(rec[genericColDate]); dateText != "" {
		date, err := time.Parse(genericDateFormat, dateText)
		if err != nil {
			return RawRow{}, fmt.Errorf("parsing date %q: %w", dateText, err)
		}
		row.Date = date
	}

	amountText := strings.TrimSpace(rec[genericColAmount])
	if amountText != "" {
		amount, err := decimal.NewFromString(amountText)
		if err != nil {
			return RawRow{}, fmt.Errorf("parsing amount %q: %w", amountText, err)
		}
		row.Amount = amount
	}

	row.Description = rec[genericColDesc]
	row.Reference = rec[genericColRef]
	return row, nil
}
