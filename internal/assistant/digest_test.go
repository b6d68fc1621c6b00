package assistant

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notedrop/notedrop-server/internal/model"
)

func TestDigest_EmptyWithoutUpstreamCall(t *testing.T) {
	st := newTestStore(t)
	llmClient := &fakeLLM{reply: `["a","b","c"]`}
	svc := NewDigestService(llmClient, st, zerolog.Nop())

	bullets, err := svc.Digest(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, bullets)
	assert.Equal(t, 0, llmClient.calls)
}

func TestDigest_ReturnsBullets(t *testing.T) {
	st := newTestStore(t)
	seedTask(t, st, "u1", taskData(nil))
	llmClient := &fakeLLM{reply: "```json\n[\"finish the report\",\"call Dana\",\"plan the week\"]\n```"}
	svc := NewDigestService(llmClient, st, zerolog.Nop())

	bullets, err := svc.Digest(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"finish the report", "call Dana", "plan the week"}, bullets)
	assert.Equal(t, 1, llmClient.calls)
}

func TestDigest_ParseFailureDegradesToEmpty(t *testing.T) {
	st := newTestStore(t)
	seedTask(t, st, "u1", taskData(nil))
	svc := NewDigestService(&fakeLLM{reply: "Focus on the report today!"}, st, zerolog.Nop())

	bullets, err := svc.Digest(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, bullets)
}

func TestDigest_IncludesOpenWorkInPrompt(t *testing.T) {
	st := newTestStore(t)
	seedTask(t, st, "u1", taskData(map[string]interface{}{"task": "renew passport"}))
	_, err := st.Entries().Create(context.Background(), &model.Entry{
		OwnerID:  "u1",
		Category: model.CategoryProject,
		Data: map[string]interface{}{
			"goal": "learn woodworking", "status": "active", "nextAction": "buy chisels",
		},
		Confidence: 1.0,
	})
	require.NoError(t, err)

	llmClient := &fakeLLM{reply: `["x","y","z"]`}
	svc := NewDigestService(llmClient, st, zerolog.Nop())

	_, err = svc.Digest(context.Background(), "u1")
	require.NoError(t, err)
	assert.Contains(t, llmClient.lastUser, "renew passport")
	assert.Contains(t, llmClient.lastUser, "learn woodworking")
}
