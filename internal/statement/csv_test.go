package statement

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenericParser_Parse(t *testing.T) {
	csv := `date,description,amount,reference
2025-01-05,ACME PAYMENT,100.00,INV100
2025-01-08,Monthly Service Fee,-15.00,
`
	p := &GenericParser{}
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2025, rows[0].Date.Year())
	assert.Equal(t, 5, rows[0].Date.Day())
	assert.Equal(t, "100", rows[0].Amount.String())
	assert.Equal(t, "ACME PAYMENT", rows[0].Description)
	assert.Equal(t, "INV100", rows[0].Reference)

	assert.True(t, rows[1].Amount.IsNegative())
	assert.Empty(t, rows[1].Reference)
}

func TestGenericParser_EmptyFile(t *testing.T) {
	p := &GenericParser{}
	rows, err := p.Parse(strings.NewReader("date,description,amount,reference\n"))
	require.NoError(t, err)
	assert.Nil(t, rows)

	rows, err = p.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestGenericParser_MissingHeader(t *testing.T) {
	// A headerless file must error rather than silently eat its first row.
	csv := "2025-01-05,ACME PAYMENT,100.00,INV100\n2025-01-08,Monthly Service Fee,-15.00,\n"
	p := &GenericParser{}
	_, err := p.Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date,description,amount,reference")
}

func TestGenericParser_HeaderCaseInsensitive(t *testing.T) {
	csv := "Date, Description, Amount, Reference\n2025-01-05,ACME PAYMENT,100.00,INV100\n"
	p := &GenericParser{}
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestGenericParser_BlankDatePassesThrough(t *testing.T) {
	// A blank date is the processor's problem, not the parser's.
	csv := "date,description,amount,reference\n,NO DATE,10.00,\n"
	p := &GenericParser{}
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Date.IsZero())
}

func TestGenericParser_BadDate(t *testing.T) {
	csv := "date,description,amount,reference\n01/05/2025,US DATE,10.00,\n"
	p := &GenericParser{}
	_, err := p.Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "parsing date")
}

func TestGenericParser_BadAmount(t *testing.T) {
	csv := "date,description,amount,reference\n2025-01-05,BAD,ten,\n"
	p := &GenericParser{}
	_, err := p.Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestGenericParser_WrongFieldCount(t *testing.T) {
	csv := "date,description,amount,reference\n2025-01-05,SHORT\n"
	p := &GenericParser{}
	_, err := p.Parse(strings.NewReader(csv))
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	require.NotNil(t, r.Get("generic"))
	assert.NotNil(t, r.Get("GENERIC"))
	assert.Nil(t, r.Get("unknown"))

	assert.Panics(t, func() { r.Register(&GenericParser{}) })
}
