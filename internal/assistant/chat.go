package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/notedrop/notedrop-server/internal/llm"
	"github.com/notedrop/notedrop-server/internal/maps"
	"github.com/notedrop/notedrop-server/internal/model"
	"github.com/notedrop/notedrop-server/internal/store"
)

// apologyReply is returned verbatim whenever the outbound call or the
// update step fails; the conversation is never persisted server-side.
const apologyReply = "Sorry, I ran into a problem while thinking about that. Please try again."

// Distancer is the slice of the maps client the task chat needs.
type Distancer interface {
	Distance(ctx context.Context, origin, destination string) (*maps.Result, error)
}

// Message is one prior turn of the client-held conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Coords is the caller's current position, used by the task chat for
// travel-time context.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ChatResult is one completed advisory turn.
type ChatResult struct {
	Reply   string       `json:"reply"`
	Updated bool         `json:"updated"`
	Entry   *model.Entry `json:"entry,omitempty"`
}

// ChatService hosts the three advisory chat variants (idea, project,
// task). Each turn is one model call seeded with the entry's current
// state; the model may request a field update by appending a single-line
// action block to its reply.
type ChatService struct {
	llm  llm.Client
	st   store.Store
	dist Distancer
	log  zerolog.Logger
	now  func() time.Time
}

func NewChatService(client llm.Client, st store.Store, dist Distancer, log zerolog.Logger) *ChatService {
	return &ChatService{llm: client, st: st, dist: dist, log: log, now: time.Now}
}

// Chat runs one advisory turn against the entry. The variant is chosen by
// the entry's category; person entries have no chat surface.
func (s *ChatService) Chat(ctx context.Context, ownerID, entryID, message string, history []Message, coords *Coords) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is required", model.ErrValidation)
	}
	entry, err := s.st.Entries().Get(ctx, ownerID, entryID)
	if err != nil {
		return nil, err
	}

	var system string
	switch entry.Category {
	case model.CategoryIdea:
		system = s.ideaPrompt(entry)
	case model.CategoryProject:
		system = s.projectPrompt(entry)
	case model.CategoryTask:
		system = s.taskPrompt(ctx, entry, coords)
	default:
		return nil, fmt.Errorf("%w: no chat available for %s entries", model.ErrValidation, entry.Category)
	}

	raw, err := s.llm.Generate(ctx, system, renderTurns(history, message))
	if err != nil {
		s.log.Warn().Err(err).Str("entry", entryID).Msg("chat completion failed")
		return &ChatResult{Reply: apologyReply}, nil
	}

	action, reply, err := ExtractActionBlock(raw)
	if err != nil {
		// A block was present but unparseable: log and proceed without
		// updating; the user sees the full reply.
		s.log.Warn().Err(err).Str("entry", entryID).Msg("action block parse failed")
		return &ChatResult{Reply: raw}, nil
	}
	if action == nil {
		return &ChatResult{Reply: reply}, nil
	}

	updates := s.filterUpdates(entry, action.Updates, message)
	if len(updates) == 0 {
		return &ChatResult{Reply: reply}, nil
	}

	merged := make(map[string]interface{}, len(entry.Data)+len(updates))
	for k, v := range entry.Data {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}

	updated, err := s.st.Entries().Update(ctx, ownerID, entryID, model.EntryPatch{Data: &merged})
	if err != nil {
		// Deliberate: a failed persist must not break the conversation.
		// The reply is returned with the block stripped; the update
		// silently does not apply.
		s.log.Error().Err(err).Str("entry", entryID).Msg("chat-triggered update failed")
		return &ChatResult{Reply: reply}, nil
	}
	return &ChatResult{Reply: reply, Updated: true, Entry: updated}, nil
}

// filterUpdates applies the variant-specific rules before the shallow
// merge: the project status whitelist, the task notes append rule, and
// natural-date resolution for task deadlines.
func (s *ChatService) filterUpdates(entry *model.Entry, updates map[string]interface{}, userMessage string) map[string]interface{} {
	out := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		out[k] = v
	}

	switch entry.Category {
	case model.CategoryProject:
		if raw, ok := out["status"]; ok {
			if status, _ := raw.(string); !model.ProjectStatuses[status] {
				s.log.Warn().Str("status", fmt.Sprint(raw)).Msg("dropping project status outside allowed set")
				delete(out, "status")
			}
		}
	case model.CategoryTask:
		if raw, ok := out["notes"]; ok {
			if strings.Contains(strings.ToLower(userMessage), "add to notes") {
				existing, _ := entry.Data["notes"].(string)
				added, _ := raw.(string)
				if existing != "" {
					out["notes"] = existing + "\n" + added
				}
			}
		}
		if raw, ok := out["deadline"]; ok {
			text, _ := raw.(string)
			if resolved, ok := ResolveDeadline(text, s.now()); ok {
				out["deadline"] = resolved
			} else if text != "none" {
				s.log.Warn().Str("deadline", text).Msg("dropping unresolvable deadline update")
				delete(out, "deadline")
			}
		}
	}
	return out
}

func (s *ChatService) ideaPrompt(entry *model.Entry) string {
	var b strings.Builder
	b.WriteString("You are a thoughtful sounding board helping the user develop an idea they captured.\n\nCurrent idea:\n")
	writeField(&b, entry.Data, "insight", "Insight")
	writeField(&b, entry.Data, "category", "Category")
	writeField(&b, entry.Data, "date", "Captured")
	writeField(&b, entry.Data, "notes", "Notes")
	writeField(&b, entry.Data, "timeEstimate", "Time estimate")
	if plan := model.PlanFromData(entry.Data); plan != nil {
		fmt.Fprintf(&b, "\nAn implementation plan exists: %s\n", plan.Summary)
	}
	b.WriteString(updateInstruction(`"insight" (string), "category" (string), "date" (string), "notes" (string), "timeEstimate" (string)`))
	return b.String()
}

func (s *ChatService) projectPrompt(entry *model.Entry) string {
	var b strings.Builder
	b.WriteString("You are a pragmatic advisor helping the user move a project forward.\n\nCurrent project:\n")
	writeField(&b, entry.Data, "goal", "Goal")
	writeField(&b, entry.Data, "status", "Status")
	writeField(&b, entry.Data, "nextAction", "Next action")
	if plan := model.PlanFromData(entry.Data); plan != nil {
		fmt.Fprintf(&b, "\nAn implementation plan exists: %s\n", plan.Summary)
	}
	b.WriteString(updateInstruction(`"goal" (string), "status" ("active"|"on-hold"|"completed"), "nextAction" (string)`))
	return b.String()
}

func (s *ChatService) taskPrompt(ctx context.Context, entry *model.Entry, coords *Coords) string {
	var b strings.Builder
	b.WriteString("You are a practical assistant helping the user get a task done.\n\nCurrent task:\n")
	writeField(&b, entry.Data, "task", "Task")
	writeField(&b, entry.Data, "deadline", "Deadline")
	writeField(&b, entry.Data, "priority", "Priority")
	writeField(&b, entry.Data, "status", "Status")
	writeField(&b, entry.Data, "location", "Location")
	writeField(&b, entry.Data, "notes", "Notes")

	// Other open tasks give the model conflict awareness.
	cat := model.CategoryTask
	others, err := s.st.Entries().List(ctx, model.ListEntriesRequest{
		OwnerID:  entry.OwnerID,
		Category: &cat,
		Archived: model.ArchivedExclude,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("could not load other tasks for chat context")
	} else {
		var lines []string
		for _, t := range others {
			if t.EntryID == entry.EntryID {
				continue
			}
			name, _ := t.Data["task"].(string)
			deadline, _ := t.Data["deadline"].(string)
			lines = append(lines, fmt.Sprintf("- %s (deadline: %s)", name, deadline))
		}
		if len(lines) > 0 {
			b.WriteString("\nThe user's other open tasks:\n")
			b.WriteString(strings.Join(lines, "\n"))
			b.WriteString("\n")
		}
	}

	// Live travel time when both the caller's position and the task's
	// location are known.
	location, _ := entry.Data["location"].(string)
	if coords != nil && location != "" && s.dist != nil {
		origin := fmt.Sprintf("%f,%f", coords.Lat, coords.Lng)
		if res, err := s.dist.Distance(ctx, origin, location); err != nil {
			s.log.Warn().Err(err).Msg("travel time lookup failed")
		} else {
			fmt.Fprintf(&b, "\nTravel time from the user's current position to %s: %s (%s).\n",
				location, res.DurationText, res.DistanceText)
		}
	}

	b.WriteString(updateInstruction(`"task" (string), "deadline" (string date or "none"), "priority" ("low"|"medium"|"high"), "status" ("pending"|"in-progress"|"completed"), "location" (string), "notes" (string)`))
	return b.String()
}

func updateInstruction(fields string) string {
	return "\nIf the user asks you to change the record, append exactly one line at the very end of your reply of the form " +
		`{"action":"update","updates":{...}} using only these fields: ` + fields +
		". Otherwise do not emit any JSON."
}

func writeField(b *strings.Builder, data map[string]interface{}, key, label string) {
	if v, ok := data[key]; ok {
		if s, _ := v.(string); s != "" {
			fmt.Fprintf(b, "- %s: %s\n", label, s)
		}
	}
}

func renderTurns(history []Message, message string) string {
	if len(history) == 0 {
		return message
	}
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	b.WriteString("\nuser: ")
	b.WriteString(message)
	return b.String()
}
