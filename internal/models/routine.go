package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/recurrence"
)

type Routine struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	RepeatCycle  string    `json:"repeat_cycle" yaml:"repeat_cycle"`                       // e.g. "매달 셋째주 수요일"
	ReminderTime string    `json:"reminder_time,omitempty" yaml:"reminder_time,omitempty"` // HH:MM format
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
	SubTasks     []SubTask `json:"sub_tasks,omitempty" yaml:"sub_tasks,omitempty"` // ordered by Position
}

type SubTask struct {
	ID        string `json:"id" yaml:"id"`
	RoutineID string `json:"routine_id" yaml:"routine_id"`
	Position  int    `json:"position" yaml:"position"`
	Title     string `json:"title" yaml:"title"`
}

// Execution records how much of a routine was done on a given day.
// There is at most one execution per routine per day.
type Execution struct {
	ID                string    `json:"id"`
	RoutineID         string    `json:"routine_id"`
	Day               string    `json:"day"` // YYYY-MM-DD format
	CompletedSubTasks int       `json:"completed_sub_tasks"`
	TotalSubTasks     int       `json:"total_sub_tasks"`
	Note              string    `json:"note,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Done reports whether every sub-task was completed. A routine without
// sub-tasks counts as done once an execution is recorded.
func (e Execution) Done() bool {
	return e.TotalSubTasks == 0 || e.CompletedSubTasks >= e.TotalSubTasks
}

func (r *Routine) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("routine name cannot be empty")
	}

	if err := recurrence.Validate(r.RepeatCycle); err != nil {
		return err
	}

	if r.ReminderTime != "" {
		if _, err := time.Parse(constants.TimeFormat, r.ReminderTime); err != nil {
			return fmt.Errorf("invalid reminder time (expected HH:MM): %w", err)
		}
	}

	for i, st := range r.SubTasks {
		if strings.TrimSpace(st.Title) == "" {
			return fmt.Errorf("sub-task %d has an empty title", i+1)
		}
	}

	return nil
}

// Rule parses the routine's repeat cycle.
func (r *Routine) Rule() (recurrence.Rule, error) {
	return recurrence.Parse(r.RepeatCycle)
}

// DueOn reports whether the routine should run on day. Routines with an
// unparseable repeat cycle are never due.
func (r *Routine) DueOn(day time.Time) bool {
	rule, err := r.Rule()
	if err != nil {
		return false
	}
	return recurrence.ShouldRunOnDate(rule, r.CreatedAt.In(day.Location()), day)
}

// NormalizeSubTasks renumbers positions 0..n-1 in slice order and stamps the
// routine ID on every sub-task.
func (r *Routine) NormalizeSubTasks() {
	for i := range r.SubTasks {
		r.SubTasks[i].Position = i
		r.SubTasks[i].RoutineID = r.ID
	}
}
