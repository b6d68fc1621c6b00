package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notedrop/notedrop-server/internal/model"
)

func samplePlan() *model.Plan {
	return &model.Plan{
		Summary:      "Start with a small raised bed and expand next season.",
		TimeEstimate: "3 weekends",
		Steps: []model.PlanStep{
			{Title: "Pick a spot", Description: "South-facing, six hours of sun."},
			{Title: "Build the bed", Description: "Untreated cedar, 120 by 80 cm."},
			{Title: "Plant", Description: "Lettuce and radishes first."},
		},
		Resources:      []string{"Cedar boards", "Compost", "Seed packets"},
		Considerations: []string{"Check frost dates before planting."},
	}
}

func TestRenderPDF_ProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPDF(&buf, "Backyard Garden", samplePlan())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output must start with a PDF header")
	assert.Greater(t, buf.Len(), 1000)
}

func TestRenderPDF_PaginatesLongPlans(t *testing.T) {
	short := buildPDF("Short", samplePlan())
	require.NoError(t, short.Error())
	assert.Equal(t, 1, short.PageCount())

	long := samplePlan()
	long.Steps = nil
	body := strings.Repeat("Detail sentence that pads the step description well past a single line. ", 8)
	for i := 0; i < 40; i++ {
		long.Steps = append(long.Steps, model.PlanStep{
			Title:       fmt.Sprintf("Step number %d", i+1),
			Description: body,
		})
	}

	doc := buildPDF("Long", long)
	require.NoError(t, doc.Error())
	assert.Greater(t, doc.PageCount(), 1, "content past one page height must flow onto further pages")
}

func TestRenderPDF_EmptySectionsAreSkipped(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPDF(&buf, "Bare", &model.Plan{Summary: "Just a summary."})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderHTML_SectionsInOrder(t *testing.T) {
	var buf bytes.Buffer
	err := RenderHTML(&buf, "Backyard Garden", samplePlan())
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "<title>Backyard Garden</title>")
	assert.Contains(t, out, "Estimated time: 3 weekends")
	assert.Contains(t, out, "1. Pick a spot")
	assert.Contains(t, out, "3. Plant")
	assert.Contains(t, out, "Cedar boards")
	assert.Contains(t, out, "Check frost dates before planting.")
	assert.Contains(t, out, "window.print()")

	// Section order matches the PDF: steps, then resources, then considerations.
	steps := strings.Index(out, "<h2>Steps</h2>")
	resources := strings.Index(out, "<h2>Resources</h2>")
	considerations := strings.Index(out, "<h2>Considerations</h2>")
	require.True(t, steps >= 0 && resources >= 0 && considerations >= 0)
	assert.Less(t, steps, resources)
	assert.Less(t, resources, considerations)
}

func TestRenderHTML_EscapesContent(t *testing.T) {
	plan := samplePlan()
	plan.Summary = `Watch out for <script>alert("x")</script> injections.`

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, "Escaped", plan))
	assert.NotContains(t, buf.String(), `<script>alert`)
}

func TestRenderHTML_OmitsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, "Bare", &model.Plan{Summary: "Only this."}))
	out := buf.String()
	assert.NotContains(t, out, "<h2>Steps</h2>")
	assert.NotContains(t, out, "<h2>Resources</h2>")
	assert.NotContains(t, out, "Estimated time")
}
