package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/notedrop/notedrop-server/internal/llm"
	"github.com/notedrop/notedrop-server/internal/model"
	"github.com/notedrop/notedrop-server/internal/store"
)

const planPrompt = `You produce a concise implementation plan. Reply with a single JSON object of this exact shape and nothing else, no code fence:
{"summary": string, "steps": [{"title": string, "description": string}], "resources": [string], "considerations": [string], "timeEstimate": string}`

// PlanService generates and caches the "suggestions" implementation plan
// for idea and project entries.
type PlanService struct {
	llm llm.Client
	st  store.Store
	log zerolog.Logger
}

func NewPlanService(client llm.Client, st store.Store, log zerolog.Logger) *PlanService {
	return &PlanService{llm: client, st: st, log: log}
}

// Suggestions returns the cached plan from the entry payload, generating a
// fresh one only when absent or regenerate is set. A fresh plan is cached
// back onto the entry; a failed cache write is logged and the plan is
// still returned.
func (s *PlanService) Suggestions(ctx context.Context, ownerID, entryID string, regenerate bool) (*model.Plan, error) {
	entry, err := s.st.Entries().Get(ctx, ownerID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Category != model.CategoryIdea && entry.Category != model.CategoryProject {
		return nil, fmt.Errorf("%w: suggestions are only available for ideas and projects", model.ErrValidation)
	}

	if !regenerate {
		if plan := model.PlanFromData(entry.Data); plan != nil {
			return plan, nil
		}
	}

	plan, err := s.generate(ctx, entry)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]interface{}, len(entry.Data)+1)
	for k, v := range entry.Data {
		merged[k] = v
	}
	merged["suggestions"] = model.PlanToData(plan)
	if _, err := s.st.Entries().Update(ctx, ownerID, entryID, model.EntryPatch{Data: &merged}); err != nil {
		s.log.Error().Err(err).Str("entry", entryID).Msg("failed to cache generated plan")
	}
	return plan, nil
}

func (s *PlanService) generate(ctx context.Context, entry *model.Entry) (*model.Plan, error) {
	var subject string
	switch entry.Category {
	case model.CategoryIdea:
		insight, _ := entry.Data["insight"].(string)
		notes, _ := entry.Data["notes"].(string)
		subject = fmt.Sprintf("Idea: %s\nNotes: %s", insight, notes)
	case model.CategoryProject:
		goal, _ := entry.Data["goal"].(string)
		next, _ := entry.Data["nextAction"].(string)
		subject = fmt.Sprintf("Project goal: %s\nNext action: %s", goal, next)
	}

	raw, err := s.llm.Generate(ctx, planPrompt, subject)
	if err != nil {
		return nil, err
	}
	var plan model.Plan
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &plan); err != nil {
		return nil, fmt.Errorf("%w: plan reply is not valid JSON: %v", model.ErrUpstreamParse, err)
	}
	return &plan, nil
}
