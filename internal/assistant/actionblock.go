package assistant

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Action is the trailing inline JSON instruction a chat model appends to
// its natural-language reply to request a field update.
type Action struct {
	Action  string                 `json:"action"`
	Updates map[string]interface{} `json:"updates"`
}

// Ordered pattern attempts, first match wins: a plain inline object, then a
// fenced code block. Both anchor on the "action" key to avoid swallowing
// unrelated JSON the model may quote mid-reply.
var actionBlockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)\{\s*"action"\s*:\s*"update".*\}`),
	regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\"action\".*?\\})\\s*```"),
}

// ExtractActionBlock scans reply for a trailing action block.
//
// Returns the parsed action and the reply with the matched substring
// stripped, so the user never sees the raw instruction. When no block is
// present both the action and the error are nil. When a block is present
// but its content fails to parse (or is not an update), the original reply
// is returned untouched along with the parse error; callers log and
// proceed without updating.
func ExtractActionBlock(reply string) (*Action, string, error) {
	for _, pattern := range actionBlockPatterns {
		loc := pattern.FindStringSubmatchIndex(reply)
		if loc == nil {
			continue
		}
		raw := reply[loc[0]:loc[1]]
		jsonText := raw
		if len(loc) > 2 && loc[2] >= 0 {
			jsonText = reply[loc[2]:loc[3]]
		}

		var act Action
		if err := json.Unmarshal([]byte(jsonText), &act); err != nil {
			return nil, reply, err
		}
		if act.Action != "update" || act.Updates == nil {
			return nil, reply, nil
		}
		cleaned := strings.TrimSpace(reply[:loc[0]] + reply[loc[1]:])
		return &act, cleaned, nil
	}
	return nil, reply, nil
}

// StripCodeFences removes a wrapping markdown code fence from a model
// reply, tolerating an optional language tag. Replies without fences pass
// through unchanged.
func StripCodeFences(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	out = strings.TrimPrefix(out, "```")
	if idx := strings.Index(out, "\n"); idx >= 0 {
		// drop the language tag line ("json", "JSON", ...)
		first := strings.TrimSpace(out[:idx])
		if len(first) <= 10 && !strings.ContainsAny(first, "{[") {
			out = out[idx+1:]
		}
	}
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}
