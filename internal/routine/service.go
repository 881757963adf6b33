// Package routine manages routines, their sub-tasks and daily executions on
// top of a storage.Provider. All due-date questions go through the
// recurrence package.
package routine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/logger"
	"github.com/julianstephens/ilsang/internal/models"
	"github.com/julianstephens/ilsang/internal/recurrence"
	"github.com/julianstephens/ilsang/internal/storage"
)

var (
	ErrNotDue            = errors.New("routine is not due on that day")
	ErrInvalidCompletion = errors.New("completed sub-task count out of range")
	ErrFutureDay         = errors.New("cannot record an execution for a future day")
)

// maxUpcomingDays bounds the agenda window.
const maxUpcomingDays = 366

type Service struct {
	store storage.Provider
	now   func() time.Time
	loc   *time.Location
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the timezone calendar days are computed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Today returns midnight of the current day in the service's timezone.
func (s *Service) Today() time.Time {
	return recurrence.Truncate(s.now().In(s.loc))
}

// ParseDay parses YYYY-MM-DD (or a timestamp) as a calendar day in the
// service's timezone. "today" and "" mean Today.
func (s *Service) ParseDay(value string) (time.Time, error) {
	switch strings.TrimSpace(value) {
	case "", "today", "오늘":
		return s.Today(), nil
	case "tomorrow", "내일":
		return s.Today().AddDate(0, 0, 1), nil
	case "yesterday", "어제":
		return s.Today().AddDate(0, 0, -1), nil
	}
	return recurrence.ParseDateIn(value, s.loc)
}

func (s *Service) Create(ctx context.Context, name, repeatCycle, reminderTime string, subTasks []string) (models.Routine, error) {
	now := s.now()
	r := models.Routine{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		RepeatCycle:  strings.TrimSpace(repeatCycle),
		ReminderTime: strings.TrimSpace(reminderTime),
		CreatedAt:    now,
		UpdatedAt:    now,
		SubTasks:     buildSubTasks(nil, subTasks),
	}
	r.NormalizeSubTasks()

	if err := r.Validate(); err != nil {
		return models.Routine{}, err
	}
	if err := s.store.AddRoutine(ctx, r); err != nil {
		return models.Routine{}, fmt.Errorf("failed to save routine: %w", err)
	}

	logger.Info("Routine created", "id", r.ID, "name", r.Name, "repeat_cycle", r.RepeatCycle)
	return r, nil
}

// Update carries the fields to change; nil leaves a field as is.
type Update struct {
	Name         *string
	RepeatCycle  *string
	ReminderTime *string
	SubTasks     *[]string
}

func (s *Service) Update(ctx context.Context, id string, u Update) (models.Routine, error) {
	r, err := s.store.GetRoutine(ctx, id)
	if err != nil {
		return models.Routine{}, err
	}

	if u.Name != nil {
		r.Name = strings.TrimSpace(*u.Name)
	}
	if u.RepeatCycle != nil {
		r.RepeatCycle = strings.TrimSpace(*u.RepeatCycle)
	}
	if u.ReminderTime != nil {
		r.ReminderTime = strings.TrimSpace(*u.ReminderTime)
	}
	if u.SubTasks != nil {
		r.SubTasks = buildSubTasks(r.SubTasks, *u.SubTasks)
		r.NormalizeSubTasks()
	}
	r.UpdatedAt = s.now()

	if err := r.Validate(); err != nil {
		return models.Routine{}, err
	}
	if err := s.store.UpdateRoutine(ctx, r); err != nil {
		return models.Routine{}, fmt.Errorf("failed to update routine: %w", err)
	}

	logger.Info("Routine updated", "id", r.ID)
	return r, nil
}

// buildSubTasks turns titles into sub-tasks, reusing the ID of an existing
// sub-task with the same title.
func buildSubTasks(existing []models.SubTask, titles []string) []models.SubTask {
	free := make(map[string][]string)
	for _, st := range existing {
		free[st.Title] = append(free[st.Title], st.ID)
	}

	subTasks := make([]models.SubTask, 0, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		id := uuid.New().String()
		if ids := free[title]; len(ids) > 0 {
			id, free[title] = ids[0], ids[1:]
		}
		subTasks = append(subTasks, models.SubTask{ID: id, Title: title})
	}
	return subTasks
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteRoutine(ctx, id); err != nil {
		return err
	}
	logger.Info("Routine deleted", "id", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Routine, error) {
	return s.store.GetRoutine(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Routine, error) {
	return s.store.GetAllRoutines(ctx)
}

// DueOn returns the routines due on day. Routines whose stored repeat cycle
// no longer parses are logged and left out.
func (s *Service) DueOn(ctx context.Context, day time.Time) ([]models.Routine, error) {
	routines, err := s.store.GetAllRoutines(ctx)
	if err != nil {
		return nil, err
	}
	return s.dueAmong(routines, day), nil
}

func (s *Service) dueAmong(routines []models.Routine, day time.Time) []models.Routine {
	day = day.In(s.loc)
	var due []models.Routine
	for _, r := range routines {
		rule, err := r.Rule()
		if err != nil {
			logger.Warn("Skipping routine with invalid repeat cycle", "id", r.ID, "repeat_cycle", r.RepeatCycle, "error", err)
			continue
		}
		if recurrence.ShouldRunOnDate(rule, r.CreatedAt.In(s.loc), day) {
			due = append(due, r)
		}
	}
	return due
}

// NextRun returns the next day the routine is due, counted from from.
func (s *Service) NextRun(ctx context.Context, id string, from time.Time) (time.Time, error) {
	r, err := s.store.GetRoutine(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	rule, err := r.Rule()
	if err != nil {
		return time.Time{}, err
	}
	from = from.In(s.loc)
	return recurrence.NextRunDate(rule, r.CreatedAt.In(s.loc), from), nil
}

// AgendaDay lists the routines due on one day.
type AgendaDay struct {
	Day      time.Time
	Routines []models.Routine
}

// Upcoming returns one AgendaDay per day from from (inclusive) for the given
// number of days. Days with nothing due are included with an empty list.
func (s *Service) Upcoming(ctx context.Context, from time.Time, days int) ([]AgendaDay, error) {
	if days < 1 || days > maxUpcomingDays {
		return nil, fmt.Errorf("days must be between 1 and %d", maxUpcomingDays)
	}

	routines, err := s.store.GetAllRoutines(ctx)
	if err != nil {
		return nil, err
	}

	start := recurrence.Truncate(from.In(s.loc))
	agenda := make([]AgendaDay, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		agenda = append(agenda, AgendaDay{Day: day, Routines: s.dueAmong(routines, day)})
	}
	return agenda, nil
}

// RecordExecution stores how many sub-tasks were completed on day,
// replacing any earlier record for that day.
func (s *Service) RecordExecution(ctx context.Context, id string, day time.Time, completed int, note string) (models.Execution, error) {
	r, err := s.store.GetRoutine(ctx, id)
	if err != nil {
		return models.Execution{}, err
	}

	day = recurrence.Truncate(day.In(s.loc))
	if day.After(s.Today()) {
		return models.Execution{}, ErrFutureDay
	}
	if !r.DueOn(day) {
		return models.Execution{}, fmt.Errorf("%w: %s on %s", ErrNotDue, r.Name, day.Format(constants.DateFormat))
	}
	if completed < 0 || completed > len(r.SubTasks) {
		return models.Execution{}, fmt.Errorf("%w: %d of %d", ErrInvalidCompletion, completed, len(r.SubTasks))
	}

	exec := models.Execution{
		ID:                uuid.New().String(),
		RoutineID:         r.ID,
		Day:               day.Format(constants.DateFormat),
		CompletedSubTasks: completed,
		TotalSubTasks:     len(r.SubTasks),
		Note:              strings.TrimSpace(note),
		CreatedAt:         s.now(),
	}
	if err := s.store.SaveExecution(ctx, exec); err != nil {
		return models.Execution{}, fmt.Errorf("failed to save execution: %w", err)
	}

	logger.Debug("Execution recorded", "routine", r.ID, "day", exec.Day, "completed", completed, "total", exec.TotalSubTasks)
	return exec, nil
}

// Stats summarizes a routine's history up to and including asOf.
type Stats struct {
	RoutineID      string
	DueDays        int
	RecordedDays   int
	CompletedDays  int
	CompletionRate float64 // CompletedDays / DueDays, 0 when nothing was due
	CurrentStreak  int     // consecutive due days fully completed, ending at asOf
	LastCompleted  string  // YYYY-MM-DD, empty if never completed
}

func (s *Service) Stats(ctx context.Context, id string, asOf time.Time) (Stats, error) {
	r, err := s.store.GetRoutine(ctx, id)
	if err != nil {
		return Stats{}, err
	}
	rule, err := r.Rule()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{RoutineID: r.ID}
	created := recurrence.Truncate(r.CreatedAt.In(s.loc))
	end := recurrence.Truncate(asOf.In(s.loc))
	if end.Before(created) {
		return stats, nil
	}

	start := created
	if limit := end.AddDate(0, 0, -constants.MaxStatsDays); start.Before(limit) {
		start = limit
	}

	execs, err := s.store.GetExecutions(ctx, r.ID, start.Format(constants.DateFormat), end.Format(constants.DateFormat))
	if err != nil {
		return Stats{}, err
	}
	byDay := make(map[string]models.Execution, len(execs))
	for _, e := range execs {
		byDay[e.Day] = e
	}

	var dueDays []string
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if !recurrence.ShouldRunOnDate(rule, created, day) {
			continue
		}
		key := day.Format(constants.DateFormat)
		dueDays = append(dueDays, key)
		stats.DueDays++
		if e, ok := byDay[key]; ok {
			stats.RecordedDays++
			if e.Done() {
				stats.CompletedDays++
				stats.LastCompleted = key
			}
		}
	}

	if stats.DueDays > 0 {
		stats.CompletionRate = float64(stats.CompletedDays) / float64(stats.DueDays)
	}

	endKey := end.Format(constants.DateFormat)
	for i := len(dueDays) - 1; i >= 0; i-- {
		e, ok := byDay[dueDays[i]]
		if !ok && dueDays[i] == endKey {
			// Today may still be done later.
			continue
		}
		if !ok || !e.Done() {
			break
		}
		stats.CurrentStreak++
	}

	return stats, nil
}
