// Package id formats and parses journal entry identifiers of the form
// "YYYY-MM-NNN", with a letter suffix per line ("2025-01-001a").
package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatEntryID returns an entry ID like "2025-01-001".
func FormatEntryID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// FormatLineID returns a line ID like "2025-01-001a" (line 0='a', 1='b', etc.).
func FormatLineID(entryID string, line int) string {
	return entryID + string(rune('a'+line))
}

// ParseEntryID parses "2025-01-001" into year, month, seq. A line suffix is
// stripped first.
func ParseEntryID(id string) (year, month, seq int, err error) {
	base := EntryGroup(id)

	parts := strings.SplitN(base, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid entry ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in entry ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in entry ID %q: %w", id, err)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in entry ID %q: %w", id, err)
	}

	return year, month, seq, nil
}

// EntryGroup strips the line suffix from a line ID.
// "2025-01-001a" -> "2025-01-001"
func EntryGroup(lineID string) string {
	if len(lineID) == 0 {
		return ""
	}
	i := len(lineID)
	for i > 0 && lineID[i-1] >= 'a' && lineID[i-1] <= 'z' {
		i--
	}
	return lineID[:i]
}
