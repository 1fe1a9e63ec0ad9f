package journal

import (
	"fmt"
	"strings"
	"time"
)

// Kind distinguishes the two session types a user can log.
type Kind string

const (
	KindReading Kind = "reading"
	KindWriting Kind = "writing"
)

// LoggedDateLayout is the calendar-date format used for day bucketing.
const LoggedDateLayout = "Jan 2, 2006"

// UntitledEntry is shown for writing sessions saved without a title.
const UntitledEntry = "Untitled Entry"

// ParseKind accepts the wire form of a kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindReading:
		return KindReading, nil
	case KindWriting:
		return KindWriting, nil
	default:
		return "", fmt.Errorf("unknown entry kind %q", s)
	}
}

// Entry is one logged reading or writing session.
//
// Body holds the rich-text markup of a writing session or the plain
// reflections of a reading session. Author applies to reading only and
// Mood to writing only, although a mood tag on a reading entry is tolerated.
type Entry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId,omitempty"`
	Kind         Kind      `json:"kind"`
	Title        string    `json:"title,omitempty"`
	Author       string    `json:"author,omitempty"`
	Body         string    `json:"body,omitempty"`
	Pages        int       `json:"pages,omitempty"`
	MinutesSpent int       `json:"minutesSpent,omitempty"`
	WordCount    int       `json:"wordCount,omitempty"`
	CharCount    int       `json:"charCount,omitempty"`
	Mood         string    `json:"mood,omitempty"`
	ImageKey     string    `json:"imageKey,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
	LoggedDate   string    `json:"loggedDate,omitempty"`
}

func (e Entry) IsReading() bool { return e.Kind == KindReading }
func (e Entry) IsWriting() bool { return e.Kind == KindWriting }

// DisplayTitle returns the title or the untitled placeholder.
func (e Entry) DisplayTitle() string {
	if t := strings.TrimSpace(e.Title); t != "" {
		return t
	}
	return UntitledEntry
}

// Day resolves the calendar day the entry is bucketed under. LoggedDate wins
// when it parses; otherwise OccurredAt is used.
func (e Entry) Day(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	if s := strings.TrimSpace(e.LoggedDate); s != "" {
		if d, err := time.ParseInLocation(LoggedDateLayout, s, loc); err == nil {
			return d, true
		}
	}
	if e.OccurredAt.IsZero() {
		return time.Time{}, false
	}
	t := e.OccurredAt.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
}

// Validate checks the fields every stored entry must carry.
func (e Entry) Validate() error {
	if _, err := ParseKind(string(e.Kind)); err != nil {
		return err
	}
	if e.Pages < 0 || e.MinutesSpent < 0 || e.WordCount < 0 || e.CharCount < 0 {
		return fmt.Errorf("entry counters must be non-negative")
	}
	if e.IsReading() && strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("reading entry requires a title")
	}
	return nil
}

// CountKinds returns how many reading and writing entries are in entries.
func CountKinds(entries []Entry) (reading, writing int) {
	for _, e := range entries {
		switch e.Kind {
		case KindReading:
			reading++
		case KindWriting:
			writing++
		}
	}
	return reading, writing
}
