package model

import (
	"fmt"
)

// ValidatePayload checks that data carries the fields required for the
// given category and that closed-set fields hold allowed values. The store
// column itself is schemaless, so this is the only place the tag/payload
// pairing is enforced.
func ValidatePayload(category Category, data map[string]interface{}) error {
	if data == nil {
		return fmt.Errorf("%w: data payload is required", ErrValidation)
	}
	switch category {
	case CategoryPerson:
		return requireStrings(data, "name", "context")
	case CategoryProject:
		if err := requireStrings(data, "goal", "status", "nextAction"); err != nil {
			return err
		}
		if s, _ := data["status"].(string); !ProjectStatuses[s] {
			return fmt.Errorf("%w: project status %q not in {active, on-hold, completed}", ErrValidation, s)
		}
		return nil
	case CategoryIdea:
		return requireStrings(data, "insight", "category", "date")
	case CategoryTask:
		if err := requireStrings(data, "task", "deadline", "priority"); err != nil {
			return err
		}
		if p, _ := data["priority"].(string); !TaskPriorities[p] {
			return fmt.Errorf("%w: task priority %q not in {low, medium, high}", ErrValidation, p)
		}
		if raw, ok := data["status"]; ok {
			if s, _ := raw.(string); !TaskStatuses[s] {
				return fmt.Errorf("%w: task status %q not in {pending, in-progress, completed}", ErrValidation, s)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
}

func requireStrings(data map[string]interface{}, fields ...string) error {
	for _, f := range fields {
		v, ok := data[f]
		if !ok {
			return fmt.Errorf("%w: missing field %q", ErrValidation, f)
		}
		if s, ok := v.(string); !ok || s == "" {
			return fmt.Errorf("%w: field %q must be a non-empty string", ErrValidation, f)
		}
	}
	return nil
}

// PlanFromData decodes the cached suggestions object from an entry payload.
// Returns nil when no plan has been cached yet.
func PlanFromData(data map[string]interface{}) *Plan {
	raw, ok := data["suggestions"].(map[string]interface{})
	if !ok {
		return nil
	}
	p := &Plan{}
	p.Summary, _ = raw["summary"].(string)
	p.TimeEstimate, _ = raw["timeEstimate"].(string)
	if steps, ok := raw["steps"].([]interface{}); ok {
		for _, s := range steps {
			m, ok := s.(map[string]interface{})
			if !ok {
				continue
			}
			step := PlanStep{}
			step.Title, _ = m["title"].(string)
			step.Description, _ = m["description"].(string)
			p.Steps = append(p.Steps, step)
		}
	}
	p.Resources = stringSlice(raw["resources"])
	p.Considerations = stringSlice(raw["considerations"])
	return p
}

// PlanToData converts a plan back to the generic map form stored in the
// entry payload.
func PlanToData(p *Plan) map[string]interface{} {
	steps := make([]interface{}, 0, len(p.Steps))
	for _, s := range p.Steps {
		steps = append(steps, map[string]interface{}{
			"title":       s.Title,
			"description": s.Description,
		})
	}
	return map[string]interface{}{
		"summary":        p.Summary,
		"steps":          steps,
		"resources":      anySlice(p.Resources),
		"considerations": anySlice(p.Considerations),
		"timeEstimate":   p.TimeEstimate,
	}
}

func stringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func anySlice(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
