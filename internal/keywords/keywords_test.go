package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "drops short tokens", in: "the cat sat on a mat", want: []string{}},
		{name: "lower-cases and strips punctuation", in: "Deadlines, FOCUS; clarity!", want: []string{"deadlines", "focus", "clarity"}},
		{name: "drops stop words", in: "deadlines and clarity again", want: []string{"deadlines", "clarity"}},
		{name: "drops domain noise", in: "Title: Dune Content: reflections about spice", want: []string{"dune", "spice"}},
		{name: "keeps duplicates in order", in: "river stone river light stone river", want: []string{"river", "stone", "river", "light", "stone", "river"}},
		{name: "apostrophes fold into the word", in: "Writer's block", want: []string{"writers", "block"}},
		{name: "drops joined contractions", in: "I don't know; didn't finish. That's what isn't working", want: []string{"know", "finish", "working"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.in)
			if len(tc.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	text := "Memory, memory and the architecture of memory: cities, rivers, archives."
	first := Extract(text)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, Extract(text))
	}
}

func TestSet(t *testing.T) {
	recent := NewSet(Extract("deadlines focus clarity deadlines"))
	past := NewSet(Extract("deadlines and clarity again"))

	assert.Equal(t, []string{"deadlines", "focus", "clarity"}, recent.Words())
	assert.Equal(t, 2, recent.Count("deadlines"))
	assert.Equal(t, []string{"deadlines", "clarity"}, recent.Intersect(past))
	assert.Equal(t, []string{"deadlines", "focus"}, recent.Top(2))
	assert.Nil(t, recent.Intersect(nil))
}
