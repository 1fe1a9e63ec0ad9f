package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thedesk/internal/journal"
)

const entriesJSON = `[
  {"id":"a","kind":"reading","title":"Older Book","pages":20,"occurredAt":"2025-03-01T08:00:00Z"},
  {"id":"b","kind":"writing","title":"Newest Draft","body":"<p>morning pages</p>","occurredAt":"2025-03-03T08:00:00Z"},
  {"id":"c","kind":"reading","title":"Middle Book","pages":12,"occurredAt":"2025-03-02T08:00:00Z"}
]`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entries.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadEntriesSortsNewestFirst(t *testing.T) {
	entries, err := readEntries(writeFile(t, entriesJSON))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
}

func TestReadEntriesWrapped(t *testing.T) {
	entries, err := readEntries(writeFile(t, `{"entries":`+entriesJSON+`}`))
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	_, err = readEntries(writeFile(t, `not json`))
	assert.Error(t, err)
}

func TestInsightCommandOffline(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"insight", "--offline", "--seed", "42", "--file", writeFile(t, entriesJSON)})
	require.NoError(t, rootCmd.Execute())

	var in journal.Insight
	require.NoError(t, json.Unmarshal(out.Bytes(), &in))
	assert.True(t, in.Complete())
	assert.Equal(t, journal.StrategyRuleBased, in.StrategyUsed)
}
