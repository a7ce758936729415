package client

import (
	"context"
	"fmt"
	"time"

	"weekplanner/domain"
)

// Planner mirrors the server's task list and holds the transient UI
// selection state: the displayed week and the member/category filters.
//
// Every mutation talks to the server first; the mirror changes only after
// the server confirms, so a failed call leaves the view consistent with the
// last known server state.
type Planner struct {
	api *Client

	tasks     []domain.Task
	weekStart time.Time
	member    string
	category  string
}

// DayColumn is one day of the visible week with the tasks placed on it.
type DayColumn struct {
	Date  string
	Tasks []domain.Task
}

// Stats summarizes the displayed week.
type Stats struct {
	Total     int
	Completed int
	Pending   int
}

// NewPlanner creates a planner anchored on the week containing now, with
// both filters set to the "all" sentinel.
func NewPlanner(api *Client, now time.Time) *Planner {
	return &Planner{
		api:       api,
		weekStart: domain.StartOfWeek(now),
		member:    domain.FilterAll,
		category:  domain.FilterAll,
	}
}

// Refresh reloads the full task mirror from the server. Week navigation and
// filtering stay client-side and never trigger a refetch.
func (p *Planner) Refresh(ctx context.Context) error {
	tasks, err := p.api.ListTasks(ctx, domain.Filter{})
	if err != nil {
		return err
	}
	p.tasks = tasks
	return nil
}

// Tasks returns the current mirror.
func (p *Planner) Tasks() []domain.Task {
	return p.tasks
}

// WeekStart returns the Monday anchoring the displayed week.
func (p *Planner) WeekStart() time.Time {
	return p.weekStart
}

// WeekDates returns the seven ISO dates currently displayed.
func (p *Planner) WeekDates() []string {
	return domain.WeekDates(p.weekStart)
}

// NextWeek shifts the displayed week forward by seven days.
func (p *Planner) NextWeek() {
	p.weekStart = p.weekStart.AddDate(0, 0, 7)
}

// PrevWeek shifts the displayed week back by seven days.
func (p *Planner) PrevWeek() {
	p.weekStart = p.weekStart.AddDate(0, 0, -7)
}

// SetMemberFilter selects a member, or domain.FilterAll for everyone.
func (p *Planner) SetMemberFilter(member string) {
	p.member = member
}

// SetCategoryFilter selects a category, or domain.FilterAll for all of them.
func (p *Planner) SetCategoryFilter(category string) {
	p.category = category
}

// Heading returns the week title, e.g. "Week 4 - 2026".
func (p *Planner) Heading() string {
	year, week := p.weekStart.ISOWeek()
	return fmt.Sprintf("Week %d - %d", week, year)
}

// VisibleWeek computes the seven day columns of the displayed week from the
// mirror and the selected filters.
func (p *Planner) VisibleWeek() []DayColumn {
	return visibleWeek(p.tasks, p.WeekDates(), p.member, p.category)
}

// visibleWeek is the pure compute step behind VisibleWeek. A task is visible
// iff it passes both filter sentinels and its day matches one of the seven
// bucket dates exactly.
func visibleWeek(tasks []domain.Task, weekDates []string, member, category string) []DayColumn {
	columns := make([]DayColumn, len(weekDates))
	index := make(map[string]int, len(weekDates))
	for i, d := range weekDates {
		columns[i] = DayColumn{Date: d, Tasks: []domain.Task{}}
		index[d] = i
	}

	for _, t := range tasks {
		if member != domain.FilterAll && t.Member != member {
			continue
		}
		if category != domain.FilterAll && t.Category != category {
			continue
		}
		i, ok := index[t.Day]
		if !ok {
			continue
		}
		columns[i].Tasks = append(columns[i].Tasks, t)
	}
	return columns
}

// Stats recomputes the week totals from the mirror. Only the week window
// applies; member and category filters do not narrow the counts.
func (p *Planner) Stats() Stats {
	inWeek := make(map[string]bool, 7)
	for _, d := range p.WeekDates() {
		inWeek[d] = true
	}

	var s Stats
	for _, t := range p.tasks {
		if !inWeek[t.Day] {
			continue
		}
		s.Total++
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// CreateTask creates a task on the server, then adds it to the mirror.
func (p *Planner) CreateTask(ctx context.Context, n domain.NewTask) (domain.Task, error) {
	task, err := p.api.CreateTask(ctx, n)
	if err != nil {
		return domain.Task{}, err
	}
	p.tasks = append(p.tasks, task)
	return task, nil
}

// DeleteTask removes a task on the server, then drops it from the mirror.
func (p *Planner) DeleteTask(ctx context.Context, id int64) error {
	if err := p.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	kept := p.tasks[:0]
	for _, t := range p.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	p.tasks = kept
	return nil
}

// ToggleCompleted flips a task's completion flag. The mirror only changes
// when the server confirms; on failure the previous value stands, which is
// the revert the UI layer relies on.
func (p *Planner) ToggleCompleted(ctx context.Context, id int64) (domain.Task, error) {
	idx := -1
	for i, t := range p.tasks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	desired := !p.tasks[idx].Completed
	updated, err := p.api.UpdateTask(ctx, id, domain.TaskPatch{Completed: &desired})
	if err != nil {
		return domain.Task{}, err
	}
	p.tasks[idx] = updated
	return updated, nil
}

// CopyTargets returns the dates of the displayed week a task may be copied
// to. The task's own day is excluded.
func (p *Planner) CopyTargets(task domain.Task) []string {
	targets := make([]string, 0, 6)
	for _, d := range p.WeekDates() {
		if d != task.Day {
			targets = append(targets, d)
		}
	}
	return targets
}

// CopyToDay duplicates a task's title, member and category onto another day
// of the displayed week as a brand-new incomplete task. Copying onto the
// originating day is rejected.
func (p *Planner) CopyToDay(ctx context.Context, task domain.Task, day string) (domain.Task, error) {
	valid := false
	for _, d := range p.CopyTargets(task) {
		if d == day {
			valid = true
			break
		}
	}
	if !valid {
		return domain.Task{}, &domain.ValidationError{Message: fmt.Sprintf("invalid copy target %q", day)}
	}

	return p.CreateTask(ctx, domain.NewTask{
		Title:    task.Title,
		Member:   task.Member,
		Category: task.Category,
		Day:      day,
	})
}
