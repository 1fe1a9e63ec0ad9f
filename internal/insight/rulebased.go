package insight

import (
	"context"
	"fmt"
	"strings"

	"thedesk/internal/journal"
	"thedesk/internal/keywords"
	"thedesk/internal/textnorm"
)

// Rule identifies which summary template the rule-based generator chose.
// Rules are tried in declaration order and the first that applies wins.
type Rule string

const (
	RuleContinuity   Rule = "continuity"
	RuleMoodShift    Rule = "mood_shift"
	RuleReadingHeavy Rule = "reading_heavy"
	RuleWritingHeavy Rule = "writing_heavy"
	RuleBalanced     Rule = "balanced"
	RuleGeneric      Rule = "generic"
)

// ThemeVocabulary is the closed set rule-based themes are drawn from.
var ThemeVocabulary = []string{
	"Analytical Rigor",
	"Creative Rhythm",
	"Conceptual Depth",
	"Quiet Persistence",
	"Narrative Curiosity",
	"Structural Thinking",
	"Emotional Honesty",
	"Lateral Connections",
	"Deliberate Practice",
	"Sensory Detail",
	"Critical Distance",
	"Playful Experiment",
}

var genericTemplates = []func(latest, earlier string) string{
	func(latest, earlier string) string {
		return fmt.Sprintf("%s picks up threads first laid down in %s.", latest, earlier)
	},
	func(latest, earlier string) string {
		return fmt.Sprintf("Something from %s is still echoing through %s.", earlier, latest)
	},
	func(latest, earlier string) string {
		return fmt.Sprintf("Between %s and %s, a pattern is starting to take shape.", earlier, latest)
	},
}

var moodTemplates = []string{
	"Your recent sessions carry a steady, reflective undertone.",
	"Curiosity seems to be setting the pace lately.",
	"There is a restless energy in how you have been working.",
	"You appear to be settling into a calmer, more deliberate rhythm.",
	"Your attention is circling back to ideas you are not finished with.",
}

var taggedMoodTemplates = []string{
	"Lately you have mostly felt %s, and it shows in what you choose to pursue.",
	"A %s mood runs through your latest sessions.",
}

// RuleBased derives an Insight from keyword overlap, mood tags and the
// reading/writing mix. It never fails.
type RuleBased struct {
	rand Rand
}

// NewRuleBased returns a rule-based generator. A nil Rand uses DefaultRand.
func NewRuleBased(r Rand) *RuleBased {
	if r == nil {
		r = DefaultRand()
	}
	return &RuleBased{rand: r}
}

func (g *RuleBased) Strategy() journal.Strategy { return journal.StrategyRuleBased }

func (g *RuleBased) Generate(_ context.Context, recent, past []journal.Entry) (journal.Insight, error) {
	summary, _ := g.Summarize(recent, past)
	return journal.Insight{
		Themes:        g.pickThemes(),
		Summary:       summary,
		MoodInference: g.moodInference(recent),
		StrategyUsed:  journal.StrategyRuleBased,
	}, nil
}

// Summarize returns the focus sentence and the rule that produced it.
func (g *RuleBased) Summarize(recent, past []journal.Entry) (string, Rule) {
	if s, ok := g.continuity(recent, past); ok {
		return s, RuleContinuity
	}
	if s, ok := moodShift(recent, past); ok {
		return s, RuleMoodShift
	}
	all := make([]journal.Entry, 0, len(recent)+len(past))
	all = append(append(all, recent...), past...)
	if s, rule, ok := ratio(all); ok {
		return s, rule
	}
	return g.generic(recent, past), RuleGeneric
}

func keywordSet(entries []journal.Entry) *keywords.Set {
	s := keywords.NewSet(nil)
	for _, e := range entries {
		s.Add(keywords.Extract(textnorm.Normalize(e.Body))...)
	}
	return s
}

func (g *RuleBased) continuity(recent, past []journal.Entry) (string, bool) {
	if len(recent) == 0 || len(past) == 0 {
		return "", false
	}
	shared := keywordSet(recent).Intersect(keywordSet(past))
	if len(shared) == 0 {
		return "", false
	}
	word := shared[g.rand.Intn(len(shared))]
	return fmt.Sprintf("The idea of %q keeps resurfacing: it runs from your earlier sessions straight into %s.",
		word, recent[0].DisplayTitle()), true
}

func firstMood(entries []journal.Entry) string {
	for _, e := range entries {
		if m := strings.TrimSpace(e.Mood); m != "" {
			return m
		}
	}
	return ""
}

func moodShift(recent, past []journal.Entry) (string, bool) {
	now, before := firstMood(recent), firstMood(past)
	if now == "" || before == "" || strings.EqualFold(now, before) {
		return "", false
	}
	return fmt.Sprintf("Your mood has shifted from %s to %s, and your recent sessions read differently because of it.",
		strings.ToLower(before), strings.ToLower(now)), true
}

func ratio(entries []journal.Entry) (string, Rule, bool) {
	reads, writes := journal.CountKinds(entries)
	switch {
	case reads == 0 || writes == 0:
		return "", "", false
	case reads > 2*writes:
		return fmt.Sprintf("You have been reading far more than writing (%d sessions to %d). Some of it may be ready to become your own words.",
			reads, writes), RuleReadingHeavy, true
	case writes > 2*reads:
		return fmt.Sprintf("Writing has taken over lately (%d sessions to %d of reading). A new book could feed the next draft.",
			writes, reads), RuleWritingHeavy, true
	default:
		return fmt.Sprintf("Your reading (%d) and writing (%d) are keeping pace with each other.",
			reads, writes), RuleBalanced, true
	}
}

func (g *RuleBased) generic(recent, past []journal.Entry) string {
	latest, earlier := journal.UntitledEntry, journal.UntitledEntry
	if len(recent) > 0 {
		latest = recent[0].DisplayTitle()
	}
	tmpl := genericTemplates[g.rand.Intn(len(genericTemplates))]
	if len(past) > 0 {
		earlier = past[g.rand.Intn(len(past))].DisplayTitle()
	}
	return tmpl(latest, earlier)
}

// pickThemes draws ThemeCount distinct labels with a partial shuffle.
func (g *RuleBased) pickThemes() []string {
	pool := append([]string(nil), ThemeVocabulary...)
	for i := 0; i < journal.ThemeCount; i++ {
		j := i + g.rand.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:journal.ThemeCount:journal.ThemeCount]
}

func (g *RuleBased) moodInference(recent []journal.Entry) string {
	if m := firstMood(recent); m != "" {
		return fmt.Sprintf(taggedMoodTemplates[g.rand.Intn(len(taggedMoodTemplates))], strings.ToLower(m))
	}
	return moodTemplates[g.rand.Intn(len(moodTemplates))]
}
