package insight

import (
	"strings"

	"thedesk/internal/journal"
	llmclient "thedesk/internal/llmClient"
	"thedesk/internal/util/jsonutil"
)

// payload is the object a remote model must return.
type payload struct {
	Themes  []string `json:"themes"`
	Summary string   `json:"summary"`
	Mood    string   `json:"mood"`
}

// ResponseSchema is the structured-output schema for providers that accept one.
func ResponseSchema() map[string]any {
	return llmclient.SchemaFor[payload]()
}

// ResponseSchemaName names ResponseSchema for providers that require a name.
const ResponseSchemaName = "journal_insight"

// parseResponse extracts the first JSON object in raw and validates its shape.
func parseResponse(model, raw string) (journal.Insight, error) {
	p, err := decodePayload(raw)
	if err != nil {
		return journal.Insight{}, newGenErr(KindMalformedResponse, model, err)
	}
	if len(p.Themes) != journal.ThemeCount {
		return journal.Insight{}, malformed(model, "want %d themes, got %d", journal.ThemeCount, len(p.Themes))
	}
	themes := make([]string, journal.ThemeCount)
	for i, t := range p.Themes {
		themes[i] = strings.TrimSpace(t)
		if themes[i] == "" {
			return journal.Insight{}, malformed(model, "theme %d is empty", i)
		}
	}
	summary, mood := strings.TrimSpace(p.Summary), strings.TrimSpace(p.Mood)
	if summary == "" {
		return journal.Insight{}, malformed(model, "summary is empty")
	}
	if mood == "" {
		return journal.Insight{}, malformed(model, "mood is empty")
	}
	return journal.Insight{
		Themes:        themes,
		Summary:       summary,
		MoodInference: mood,
		StrategyUsed:  journal.StrategyRemote,
		Model:         model,
	}, nil
}

// decodePayload reads the first object embedded in raw. A reply that is
// itself a JSON string wrapping the object is unwrapped once.
func decodePayload(raw string) (payload, error) {
	var p payload
	obj, err := jsonutil.ExtractObject(raw)
	if err != nil {
		if ferr := jsonutil.UnmarshalFlex([]byte(jsonutil.StripCodeFence(raw)), &p); ferr == nil {
			return p, nil
		}
		return payload{}, err
	}
	if err := jsonutil.UnmarshalFlex(obj, &p); err != nil {
		return payload{}, err
	}
	return p, nil
}
