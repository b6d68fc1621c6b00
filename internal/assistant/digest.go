package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/notedrop/notedrop-server/internal/llm"
	"github.com/notedrop/notedrop-server/internal/model"
	"github.com/notedrop/notedrop-server/internal/store"
)

const digestPrompt = `You help the user decide what to focus on today. Given their open tasks and projects, reply with a JSON array of exactly 3 short bullet strings naming the most important things to do. Reply with the JSON array only, no code fence.`

const (
	digestTaskLimit    = 10
	digestProjectLimit = 5
)

// DigestService synthesizes a daily focus digest from the caller's open
// tasks and projects with one model call.
type DigestService struct {
	llm llm.Client
	st  store.Store
	log zerolog.Logger
}

func NewDigestService(client llm.Client, st store.Store, log zerolog.Logger) *DigestService {
	return &DigestService{llm: client, st: st, log: log}
}

// Digest returns up to three focus bullets. A caller with zero open tasks
// and projects gets an empty list without an upstream call; an unparseable
// model reply also degrades to an empty list rather than a hard error.
func (s *DigestService) Digest(ctx context.Context, ownerID string) ([]string, error) {
	taskCat := model.CategoryTask
	tasks, err := s.st.Entries().List(ctx, model.ListEntriesRequest{
		OwnerID: ownerID, Category: &taskCat, Archived: model.ArchivedExclude, Limit: digestTaskLimit,
	})
	if err != nil {
		return nil, err
	}
	projectCat := model.CategoryProject
	projects, err := s.st.Entries().List(ctx, model.ListEntriesRequest{
		OwnerID: ownerID, Category: &projectCat, Archived: model.ArchivedExclude, Limit: digestProjectLimit,
	})
	if err != nil {
		return nil, err
	}

	if len(tasks) == 0 && len(projects) == 0 {
		return []string{}, nil
	}

	var b strings.Builder
	if len(tasks) > 0 {
		b.WriteString("Open tasks:\n")
		for _, t := range tasks {
			name, _ := t.Data["task"].(string)
			deadline, _ := t.Data["deadline"].(string)
			priority, _ := t.Data["priority"].(string)
			fmt.Fprintf(&b, "- %s (deadline: %s, priority: %s)\n", name, deadline, priority)
		}
	}
	if len(projects) > 0 {
		b.WriteString("Open projects:\n")
		for _, p := range projects {
			goal, _ := p.Data["goal"].(string)
			next, _ := p.Data["nextAction"].(string)
			fmt.Fprintf(&b, "- %s (next action: %s)\n", goal, next)
		}
	}

	raw, err := s.llm.Generate(ctx, digestPrompt, b.String())
	if err != nil {
		s.log.Warn().Err(err).Msg("digest completion failed")
		return []string{}, nil
	}

	var bullets []string
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &bullets); err != nil {
		s.log.Warn().Err(err).Msg("digest reply was not a JSON array")
		return []string{}, nil
	}
	return bullets, nil
}
