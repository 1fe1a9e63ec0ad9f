package insight

import (
	"strings"

	"thedesk/internal/journal"
	"thedesk/internal/textnorm"
	"thedesk/internal/util/jsonutil"
)

const (
	// DefaultSampleSize bounds how many entries are sent to a remote model.
	DefaultSampleSize = 10
	// DefaultEntryChars bounds the normalized text sent per entry.
	DefaultEntryChars = 1500
)

const instruction = `You are a thoughtful reading and writing companion.
Below is a JSON array of a person's most recent journal sessions, newest first.
Identify recurring subject matter and the emotional trend across them.

Respond with ONLY a JSON object, no prose and no markdown, of exactly this shape:
{"themes": ["<label>", "<label>", "<label>"], "summary": "<one sentence>", "mood": "<one sentence>"}

Rules:
- "themes" is exactly three short labels of two or three words each.
- "summary" is one sentence describing the person's current focus.
- "mood" is one sentence describing their emotional or behavioral trend.
- Never quote or mention any entry title verbatim.

Sessions:
`

type promptEntry struct {
	Kind      journal.Kind `json:"kind"`
	Title     string       `json:"title,omitempty"`
	Author    string       `json:"author,omitempty"`
	Date      string       `json:"date,omitempty"`
	Mood      string       `json:"mood,omitempty"`
	Pages     int          `json:"pages,omitempty"`
	WordCount int          `json:"wordCount,omitempty"`
	Text      string       `json:"text,omitempty"`
}

// sample returns the newest n entries across both windows.
func sample(recent, past []journal.Entry, n int) []journal.Entry {
	out := make([]journal.Entry, 0, n)
	for _, win := range [][]journal.Entry{recent, past} {
		for _, e := range win {
			if len(out) == n {
				return out
			}
			out = append(out, e)
		}
	}
	return out
}

func buildPrompt(entries []journal.Entry, maxChars int) (string, error) {
	items := make([]promptEntry, 0, len(entries))
	for _, e := range entries {
		items = append(items, promptEntry{
			Kind:      e.Kind,
			Title:     e.Title,
			Author:    e.Author,
			Date:      e.LoggedDate,
			Mood:      e.Mood,
			Pages:     e.Pages,
			WordCount: e.WordCount,
			Text:      textnorm.Truncate(textnorm.Normalize(e.Body), maxChars),
		})
	}
	b, err := jsonutil.MarshalNoEscapeIndent(items, "", "  ")
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(instruction)
	sb.Write(b)
	return sb.String(), nil
}
