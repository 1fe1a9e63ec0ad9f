// Package stats aggregates journal entries into dashboard figures.
package stats

import (
	"math"
	"time"

	"thedesk/internal/journal"
)

// Persona is the reader/writer archetype derived from the session mix.
type Persona struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var (
	PersonaSeeker     = Persona{"The Seeker", "Your journey is just beginning."}
	PersonaArchivist  = Persona{"The Archivist", "You are a deep, devoted reader."}
	PersonaScholar    = Persona{"The Scholar", "Knowledge is your primary medium."}
	PersonaPolymath   = Persona{"The Polymath", "You absorb and create in equal measure."}
	PersonaChronicler = Persona{"The Chronicler", "Writing is your primary art form."}
	PersonaAuthor     = Persona{"The Author", "A pure, relentless creator."}
)

// PersonaFor maps reading and writing session counts to a Persona.
func PersonaFor(reads, writes int) Persona {
	total := reads + writes
	if total == 0 {
		return PersonaSeeker
	}
	r := float64(reads) / float64(total)
	switch {
	case r > 0.8:
		return PersonaArchivist
	case r > 0.6:
		return PersonaScholar
	case r > 0.4:
		return PersonaPolymath
	case r > 0.2:
		return PersonaChronicler
	default:
		return PersonaAuthor
	}
}

// ConsistencyWindow is the number of trailing days consistency is measured over.
const ConsistencyWindow = 30

// NoPeakDay is reported when no entry resolves to a calendar day.
const NoPeakDay = "N/A"

type DayTotals struct {
	Date         string `json:"date"`
	PagesRead    int    `json:"pagesRead"`
	WordsWritten int    `json:"wordsWritten"`
}

// Level classifies a heatmap cell.
type Level string

const (
	LevelEmpty   Level = "empty"
	LevelReading Level = "reading"
	LevelWriting Level = "writing"
	LevelBoth    Level = "both"
)

type Cell struct {
	Reading int   `json:"reading"`
	Writing int   `json:"writing"`
	Level   Level `json:"level"`
}

// Heatmap is a month by week-bucket grid for one calendar year. Days 22 and
// later all fall in the fourth bucket.
type Heatmap struct {
	Year  int         `json:"year"`
	Cells [12][4]Cell `json:"cells"`
}

type Summary struct {
	ReadingSessions int         `json:"readingSessions"`
	WritingSessions int         `json:"writingSessions"`
	TotalPages      int         `json:"totalPages"`
	TotalWords      int         `json:"totalWords"`
	TotalMinutes    int         `json:"totalMinutes"`
	AvgPages        int         `json:"avgPages"`
	AvgWords        int         `json:"avgWords"`
	Persona         Persona     `json:"persona"`
	ReadingPercent  int         `json:"readingPercent"`
	WritingPercent  int         `json:"writingPercent"`
	PeakDay         string      `json:"peakDay"`
	Consistency     int         `json:"consistency"`
	Streak          int         `json:"streak"`
	Week            []DayTotals `json:"week"`
	Heatmap         Heatmap     `json:"heatmap"`
}

func roundDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return int(math.Round(float64(a) / float64(b)))
}

// Compute aggregates entries relative to now. Days are resolved in now's
// location.
func Compute(entries []journal.Entry, now time.Time) Summary {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var s Summary
	var weekday [7]int
	active := map[string]bool{}
	week := make([]DayTotals, 7)
	weekIdx := make(map[string]int, 7)
	for i := range week {
		d := today.AddDate(0, 0, i-6)
		week[i].Date = d.Format(journal.LoggedDateLayout)
		weekIdx[dayKey(d)] = i
	}
	s.Heatmap.Year = now.Year()

	for _, e := range entries {
		switch e.Kind {
		case journal.KindReading:
			s.ReadingSessions++
			s.TotalPages += e.Pages
		case journal.KindWriting:
			s.WritingSessions++
			s.TotalWords += e.WordCount
		}
		s.TotalMinutes += e.MinutesSpent

		day, ok := e.Day(loc)
		if !ok {
			continue
		}
		weekday[day.Weekday()]++
		active[dayKey(day)] = true

		if i, ok := weekIdx[dayKey(day)]; ok {
			w := &week[i]
			if e.IsReading() {
				w.PagesRead += e.Pages
			} else if e.IsWriting() {
				w.WordsWritten += e.WordCount
			}
		}

		if day.Year() == s.Heatmap.Year {
			c := &s.Heatmap.Cells[day.Month()-1][WeekBucket(day.Day())]
			if e.IsReading() {
				c.Reading++
			} else if e.IsWriting() {
				c.Writing++
			}
		}
	}

	s.AvgPages = roundDiv(s.TotalPages, s.ReadingSessions)
	s.AvgWords = roundDiv(s.TotalWords, s.WritingSessions)
	s.Persona = PersonaFor(s.ReadingSessions, s.WritingSessions)
	if n := s.ReadingSessions + s.WritingSessions; n > 0 {
		s.ReadingPercent = roundDiv(100*s.ReadingSessions, n)
		s.WritingPercent = roundDiv(100*s.WritingSessions, n)
	}

	s.PeakDay = NoPeakDay
	best := 0
	for d, n := range weekday {
		if n > best {
			best = n
			s.PeakDay = time.Weekday(d).String()
		}
	}

	days := 0
	for i := 0; i < ConsistencyWindow; i++ {
		if active[dayKey(today.AddDate(0, 0, -i))] {
			days++
		}
	}
	s.Consistency = roundDiv(100*days, ConsistencyWindow)
	s.Streak = streak(active, today)
	s.Week = week

	for m := range s.Heatmap.Cells {
		for w := range s.Heatmap.Cells[m] {
			c := &s.Heatmap.Cells[m][w]
			c.Level = levelOf(c.Reading, c.Writing)
		}
	}
	return s
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

// WeekBucket maps a day of month to its heatmap row (0-3).
func WeekBucket(dayOfMonth int) int {
	return min((dayOfMonth+6)/7-1, 3)
}

func levelOf(reading, writing int) Level {
	switch {
	case reading > 0 && writing > 0:
		return LevelBoth
	case reading > 0:
		return LevelReading
	case writing > 0:
		return LevelWriting
	default:
		return LevelEmpty
	}
}

// streak counts consecutive active days ending today, or yesterday when
// nothing has been logged yet today.
func streak(active map[string]bool, today time.Time) int {
	day := today
	if !active[dayKey(day)] {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for active[dayKey(day)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}
