package domain

// Task is a single schedulable household chore.
type Task struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Member    string `json:"member"`
	Category  string `json:"category"`
	Day       string `json:"day"`
	Completed bool   `json:"completed"`
}

// Known member and category sets. Informational only; the data layer accepts
// any non-empty value.
var (
	Members    = []string{"Gido", "Susan", "Fien", "Luc"}
	Categories = []string{"huishouden", "boodschappen", "school", "sport", "werk", "overig"}
)

// NewTask carries the fields required to create a task.
type NewTask struct {
	Title     string `json:"title"`
	Member    string `json:"member"`
	Category  string `json:"category"`
	Day       string `json:"day"`
	Completed bool   `json:"completed"`
}

// Validate reports the required fields that are missing or empty.
func (n NewTask) Validate() error {
	missing := make([]string, 0, 4)
	if n.Title == "" {
		missing = append(missing, "title")
	}
	if n.Member == "" {
		missing = append(missing, "member")
	}
	if n.Category == "" {
		missing = append(missing, "category")
	}
	if n.Day == "" {
		missing = append(missing, "day")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// TaskPatch is a presence-based partial update. A nil field means "leave
// unchanged"; a non-nil field overwrites, even with an empty value.
type TaskPatch struct {
	Title     *string `json:"title"`
	Member    *string `json:"member"`
	Category  *string `json:"category"`
	Day       *string `json:"day"`
	Completed *bool   `json:"completed"`
}

// IsZero reports whether the patch carries no fields at all.
func (p TaskPatch) IsZero() bool {
	return p.Title == nil && p.Member == nil && p.Category == nil &&
		p.Day == nil && p.Completed == nil
}

// Apply merges the patch into a copy of the given task.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Member != nil {
		t.Member = *p.Member
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Day != nil {
		t.Day = *p.Day
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// FilterAll is the sentinel meaning "no restriction on this dimension".
const FilterAll = "all"

// Filter narrows a task listing. Member and Category accept FilterAll (or
// empty) as a no-op sentinel; StartDate and EndDate are inclusive ISO date
// bounds on the task day.
type Filter struct {
	Member    string
	Category  string
	StartDate string
	EndDate   string
}
