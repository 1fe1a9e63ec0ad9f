package journal

import (
	"strings"
	"time"
)

// Strategy names the generator that produced an Insight.
type Strategy string

const (
	StrategyRemote    Strategy = "remote"
	StrategyRuleBased Strategy = "rule_based"
)

// ThemeCount is the exact number of themes an Insight carries.
const ThemeCount = 3

// Insight is the reflection derived from a user's recent entries.
type Insight struct {
	Themes        []string  `json:"themes"`
	Summary       string    `json:"summary"`
	MoodInference string    `json:"moodInference"`
	GeneratedAt   time.Time `json:"generatedAt"`
	StrategyUsed  Strategy  `json:"strategyUsed"`
	// Model is the remote model identifier when StrategyUsed is remote.
	Model string `json:"model,omitempty"`
}

// Complete reports whether every required field is populated.
func (in Insight) Complete() bool {
	if len(in.Themes) != ThemeCount {
		return false
	}
	for _, t := range in.Themes {
		if strings.TrimSpace(t) == "" {
			return false
		}
	}
	return strings.TrimSpace(in.Summary) != "" && strings.TrimSpace(in.MoodInference) != ""
}
