package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/notedrop/notedrop-server/internal/llm"
	"github.com/notedrop/notedrop-server/internal/model"
	"github.com/notedrop/notedrop-server/internal/store"
)

const classifyPrompt = `You classify a user's free-form note into exactly one category and extract structured fields. Reply with a single JSON object and nothing else.

Categories and their exact data shapes:
- "person":  {"name": string, "context": string, "lastContact": "YYYY-MM-DD"}
- "project": {"goal": string, "status": "active"|"on-hold"|"completed", "nextAction": string}
- "idea":    {"insight": string, "category": string, "date": "YYYY-MM-DD", "notes": string (optional), "timeEstimate": string (optional)}
- "task":    {"task": string, "deadline": "YYYY-MM-DD" or "none", "priority": "low"|"medium"|"high", "location": string (optional), "notes": string (optional)}

Reply shape:
{"category": "person"|"project"|"idea"|"task", "confidence": number between 0 and 1, "data": <category shape above>, "people": [names of people mentioned]}

Resolve relative dates ("tomorrow", "next Friday") against the current date context provided. Do not wrap the JSON in a code fence.`

// Classifier turns free text into a persisted, category-tagged entry via
// one model call.
type Classifier struct {
	llm llm.Client
	st  store.Store
	log zerolog.Logger
}

func NewClassifier(client llm.Client, st store.Store, log zerolog.Logger) *Classifier {
	return &Classifier{llm: client, st: st, log: log}
}

type classifyReply struct {
	Category   string                 `json:"category"`
	Confidence float64                `json:"confidence"`
	Data       map[string]interface{} `json:"data"`
	People     []string               `json:"people"`
}

// Classify issues one model call, parses the reply, links mentioned people
// and persists the resulting entry. A reply that is not valid JSON after
// fence stripping fails the whole operation; nothing is written and the
// call is not retried.
func (c *Classifier) Classify(ctx context.Context, ownerID, text string, localTime time.Time) (*model.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", model.ErrValidation)
	}

	user := fmt.Sprintf("Current date context: %s, %s local time.\n\nNote:\n%s",
		localTime.Weekday(), localTime.Format("2006-01-02 15:04"), text)

	raw, err := c.llm.Generate(ctx, classifyPrompt, user)
	if err != nil {
		return nil, err
	}

	var reply classifyReply
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &reply); err != nil {
		return nil, fmt.Errorf("%w: classifier reply is not valid JSON: %v", model.ErrUpstreamParse, err)
	}

	category := model.Category(reply.Category)
	if !model.ValidCategory(category) {
		return nil, fmt.Errorf("%w: classifier returned unknown category %q", model.ErrUpstreamParse, reply.Category)
	}

	linked, err := c.linkPeople(ctx, ownerID, reply.People)
	if err != nil {
		return nil, err
	}

	entry := &model.Entry{
		OwnerID:       ownerID,
		Category:      category,
		Data:          reply.Data,
		Confidence:    reply.Confidence,
		NeedsReview:   reply.Confidence < model.ReviewThreshold,
		LinkedEntries: linked,
	}
	return c.st.Entries().Create(ctx, entry)
}

// linkPeople matches mentioned names case-insensitively as substrings
// against existing non-archived person entries. All matches are included;
// there is no ranking or disambiguation.
func (c *Classifier) linkPeople(ctx context.Context, ownerID string, people []string) ([]string, error) {
	if len(people) == 0 {
		return nil, nil
	}
	cat := model.CategoryPerson
	persons, err := c.st.Entries().List(ctx, model.ListEntriesRequest{
		OwnerID:  ownerID,
		Category: &cat,
		Archived: model.ArchivedExclude,
	})
	if err != nil {
		return nil, err
	}

	var linked []string
	seen := make(map[string]bool)
	for _, p := range persons {
		name, _ := p.Data["name"].(string)
		if name == "" {
			continue
		}
		lowered := strings.ToLower(name)
		for _, mention := range people {
			m := strings.ToLower(strings.TrimSpace(mention))
			if m == "" {
				continue
			}
			if strings.Contains(lowered, m) || strings.Contains(m, lowered) {
				if !seen[p.EntryID] {
					seen[p.EntryID] = true
					linked = append(linked, p.EntryID)
				}
				break
			}
		}
	}
	return linked, nil
}
