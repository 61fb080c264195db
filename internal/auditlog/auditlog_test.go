package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry(action string) Entry {
	return Entry{
		Timestamp: time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC),
		Actor:     "alice",
		Action:    action,
		SessionID: "sess-1",
		Details:   "account 1010, period 2025-01-01..2025-01-31",
	}
}

func TestAppendCreatesFileWithHeader(t *testing.T) {
	dir := t.TempDir()
	log := FileLog{Dir: dir}

	require.NoError(t, log.Append([]Entry{testEntry("initiate")}))

	data, err := os.ReadFile(filepath.Join(dir, "logs", "audit-log.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Header, lines[0])
	assert.Contains(t, lines[1], "initiate")
	assert.Contains(t, lines[1], "sess-1")
}

func TestAppendIsAppendOnly(t *testing.T) {
	log := FileLog{Dir: t.TempDir()}

	require.NoError(t, log.Append([]Entry{testEntry("initiate")}))
	require.NoError(t, log.Append([]Entry{testEntry("auto_match"), testEntry("complete")}))

	entries, err := log.Read()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "initiate", entries[0].Action)
	assert.Equal(t, "auto_match", entries[1].Action)
	assert.Equal(t, "complete", entries[2].Action)
}

func TestRead_NoFile(t *testing.T) {
	log := FileLog{Dir: t.TempDir()}
	entries, err := log.Read()
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestEntryRoundTrip(t *testing.T) {
	e := testEntry("manual_match")
	e.Details = "match with, commas and \"quotes\""

	got, err := UnmarshalEntry(MarshalEntry(e))
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestUnmarshalEntry_BadRow(t *testing.T) {
	_, err := UnmarshalEntry([]string{"too", "short"})
	assert.Error(t, err)

	_, err = UnmarshalEntry([]string{"not-a-time", "alice", "initiate", "sess-1", ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing timestamp")
}
