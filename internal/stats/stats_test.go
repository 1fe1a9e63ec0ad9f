package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thedesk/internal/journal"
)

func at(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }

func TestPersonaFor(t *testing.T) {
	cases := []struct {
		reads, writes int
		want          Persona
	}{
		{0, 0, PersonaSeeker},
		{9, 1, PersonaArchivist},
		{8, 2, PersonaScholar},
		{7, 3, PersonaScholar},
		{1, 1, PersonaPolymath},
		{3, 7, PersonaChronicler},
		{1, 4, PersonaAuthor},
		{0, 5, PersonaAuthor},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PersonaFor(c.reads, c.writes), "%d/%d", c.reads, c.writes)
	}
}

func TestWeekBucket(t *testing.T) {
	for day, want := range map[int]int{1: 0, 7: 0, 8: 1, 14: 1, 15: 2, 21: 2, 22: 3, 28: 3, 31: 3} {
		assert.Equal(t, want, WeekBucket(day), "day %d", day)
	}
}

func TestCompute(t *testing.T) {
	now := time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)
	entries := []journal.Entry{
		{Kind: journal.KindReading, Pages: 10, MinutesSpent: 30, OccurredAt: at(2025, 3, 15)},
		{Kind: journal.KindReading, Pages: 20, OccurredAt: at(2025, 3, 14)},
		{Kind: journal.KindWriting, WordCount: 500, OccurredAt: at(2025, 3, 14)},
		{Kind: journal.KindWriting, WordCount: 301, OccurredAt: at(2025, 3, 10)},
		{Kind: journal.KindReading, Pages: 5, LoggedDate: "Feb 7, 2025"},
		{Kind: journal.KindReading, Pages: 7, OccurredAt: at(2024, 12, 29)},
		{Kind: journal.KindReading},
	}
	s := Compute(entries, now)

	assert.Equal(t, 5, s.ReadingSessions)
	assert.Equal(t, 2, s.WritingSessions)
	assert.Equal(t, 42, s.TotalPages)
	assert.Equal(t, 801, s.TotalWords)
	assert.Equal(t, 30, s.TotalMinutes)
	assert.Equal(t, 8, s.AvgPages)
	assert.Equal(t, 401, s.AvgWords)
	assert.Equal(t, PersonaScholar, s.Persona)
	assert.Equal(t, 71, s.ReadingPercent)
	assert.Equal(t, 29, s.WritingPercent)
	assert.Equal(t, "Friday", s.PeakDay)
	assert.Equal(t, 10, s.Consistency)
	assert.Equal(t, 2, s.Streak)

	require.Len(t, s.Week, 7)
	assert.Equal(t, "Mar 9, 2025", s.Week[0].Date)
	assert.Equal(t, DayTotals{Date: "Mar 15, 2025", PagesRead: 10}, s.Week[6])
	assert.Equal(t, DayTotals{Date: "Mar 14, 2025", PagesRead: 20, WordsWritten: 500}, s.Week[5])
	assert.Equal(t, 301, s.Week[1].WordsWritten)

	assert.Equal(t, 2025, s.Heatmap.Year)
	assert.Equal(t, Cell{Reading: 1, Writing: 2, Level: LevelBoth}, s.Heatmap.Cells[2][1])
	assert.Equal(t, Cell{Reading: 1, Level: LevelReading}, s.Heatmap.Cells[2][2])
	assert.Equal(t, Cell{Reading: 1, Level: LevelReading}, s.Heatmap.Cells[1][0])
	assert.Equal(t, LevelEmpty, s.Heatmap.Cells[11][3].Level)
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, PersonaSeeker, s.Persona)
	assert.Equal(t, NoPeakDay, s.PeakDay)
	assert.Zero(t, s.Streak)
	assert.Zero(t, s.Consistency)
	assert.Len(t, s.Week, 7)
	assert.Equal(t, LevelEmpty, s.Heatmap.Cells[0][0].Level)
}

func TestStreakEndingYesterday(t *testing.T) {
	now := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)
	entries := []journal.Entry{
		{Kind: journal.KindWriting, OccurredAt: at(2025, 3, 14)},
		{Kind: journal.KindWriting, OccurredAt: at(2025, 3, 13)},
		{Kind: journal.KindWriting, OccurredAt: at(2025, 3, 12)},
		{Kind: journal.KindWriting, OccurredAt: at(2025, 3, 10)},
	}
	assert.Equal(t, 3, Compute(entries, now).Streak)
}
