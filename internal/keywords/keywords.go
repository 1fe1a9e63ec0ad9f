// Package keywords pulls candidate theme words out of plain text.
package keywords

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinLength is the shortest token kept; anything of length <= 3 is dropped.
const MinLength = 4

// stopWords is a closed list of English function words plus words that only
// echo the journal's own structure. Tokens shorter than MinLength never reach
// this set, so it only lists longer words. Apostrophes are stripped rather
// than split on, so contractions are listed in their joined form.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		about above after again against almost along already also although always
		among another anyone anything around because been before being below
		between both could didn doesn doing done down during each either else
		enough even ever every from further have having hence here hers herself
		himself into itself just like made make many might mine more most much
		must myself never next once only other ours ourselves over own quite
		rather really same shall should since some something still such than
		that their theirs them themselves then there therefore these they thing
		things this those though through thus till together too toward towards
		under until upon very want well were what whatever when where whether
		which while whom whose will with within without would your yours
		yourself yourselves today yesterday tomorrow maybe perhaps
		title content reflections reflection entry entries untitled session
		sessions page pages words word note notes journal
		dont didnt doesnt cant wont isnt thats arent wasnt werent couldnt
		wouldnt shouldnt havent hasnt hadnt youre theyre
	`) {
		stopWords[w] = struct{}{}
	}
}

// IsStopWord reports whether w (already lower-cased) is filtered out.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// Extract lower-cases text, strips punctuation, splits on whitespace and
// drops short tokens and stop words. Order follows first appearance in the
// input and duplicates are kept so frequency survives.
func Extract(text string) []string {
	if text == "" {
		return nil
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	fields := strings.Fields(b.String())
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinLength {
			continue
		}
		if IsStopWord(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Set is an insertion-ordered keyword set with occurrence counts.
type Set struct {
	order  []string
	counts map[string]int
}

// NewSet builds a Set from a keyword sequence.
func NewSet(words []string) *Set {
	s := &Set{counts: make(map[string]int, len(words))}
	s.Add(words...)
	return s
}

func (s *Set) Add(words ...string) {
	for _, w := range words {
		if _, ok := s.counts[w]; !ok {
			s.order = append(s.order, w)
		}
		s.counts[w]++
	}
}

func (s *Set) Has(w string) bool {
	_, ok := s.counts[w]
	return ok
}

func (s *Set) Count(w string) int { return s.counts[w] }

func (s *Set) Len() int { return len(s.order) }

// Words returns the distinct words in first-occurrence order.
func (s *Set) Words() []string {
	return append([]string(nil), s.order...)
}

// Intersect returns the words of s that also appear in other, in s's order.
func (s *Set) Intersect(other *Set) []string {
	if s == nil || other == nil {
		return nil
	}
	var out []string
	for _, w := range s.order {
		if other.Has(w) {
			out = append(out, w)
		}
	}
	return out
}

// Top returns up to n words ranked by count, ties broken by first occurrence.
func (s *Set) Top(n int) []string {
	words := s.Words()
	sort.SliceStable(words, func(i, j int) bool {
		return s.counts[words[i]] > s.counts[words[j]]
	})
	if n >= 0 && len(words) > n {
		words = words[:n]
	}
	return words
}
