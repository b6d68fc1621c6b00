package model

import "time"

// Category is the closed set of entry kinds produced by the classifier.
type Category string

const (
	CategoryPerson  Category = "person"
	CategoryProject Category = "project"
	CategoryIdea    Category = "idea"
	CategoryTask    Category = "task"
)

// ValidCategory reports whether c is one of the four known categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryPerson, CategoryProject, CategoryIdea, CategoryTask:
		return true
	}
	return false
}

// ReviewThreshold is the classifier confidence below which an entry is
// routed to the manual review queue instead of its category view.
const ReviewThreshold = 0.6

// Entry is the single persisted record type: a category-tagged container
// for one person, project, idea or task. The data payload shape depends on
// the category; see ValidatePayload.
type Entry struct {
	EntryID       string                 `json:"entryId"`
	OwnerID       string                 `json:"ownerId"`
	Category      Category               `json:"category"`
	Data          map[string]interface{} `json:"data"`
	Confidence    float64                `json:"confidence"`
	NeedsReview   bool                   `json:"needsReview"`
	Archived      bool                   `json:"archived"`
	LinkedEntries []string               `json:"linkedEntries"`
	CreationTime  time.Time              `json:"createdAt"`
	UpdateTime    time.Time              `json:"updatedAt"`
}

// EntryPatch carries a partial update: only non-nil fields are applied.
// Data, when present, replaces the stored payload wholesale; callers that
// want a shallow merge (the chat path) merge before building the patch.
type EntryPatch struct {
	Category      *Category               `json:"category,omitempty"`
	Data          *map[string]interface{} `json:"data,omitempty"`
	NeedsReview   *bool                   `json:"needsReview,omitempty"`
	Archived      *bool                   `json:"archived,omitempty"`
	LinkedEntries *[]string               `json:"linkedEntries,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p EntryPatch) IsEmpty() bool {
	return p.Category == nil && p.Data == nil && p.NeedsReview == nil &&
		p.Archived == nil && p.LinkedEntries == nil
}

// ArchivedFilter selects how archived entries participate in a listing.
type ArchivedFilter string

const (
	ArchivedExclude ArchivedFilter = "exclude" // default: open entries only
	ArchivedOnly    ArchivedFilter = "only"    // archive view
	ArchivedInclude ArchivedFilter = "include" // no filtering on the flag
)

// ListEntriesRequest captures filters used when listing entries.
type ListEntriesRequest struct {
	OwnerID     string
	Category    *Category
	Archived    ArchivedFilter
	NeedsReview *bool
	Limit       int
}

// Plan is the AI-generated implementation plan cached on idea and project
// entries under data["suggestions"] and rendered by the export endpoints.
type Plan struct {
	Summary        string     `json:"summary"`
	Steps          []PlanStep `json:"steps"`
	Resources      []string   `json:"resources"`
	Considerations []string   `json:"considerations"`
	TimeEstimate   string     `json:"timeEstimate"`
}

type PlanStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProjectStatuses is the closed set accepted for project.status; updates
// outside this set are dropped.
var ProjectStatuses = map[string]bool{
	"active":    true,
	"on-hold":   true,
	"completed": true,
}

// TaskPriorities is the closed set accepted for task.priority.
var TaskPriorities = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

// TaskStatuses is the closed set accepted for the optional task.status.
var TaskStatuses = map[string]bool{
	"pending":     true,
	"in-progress": true,
	"completed":   true,
}
