package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// Routines. Sub-tasks are stored and returned with their routine;
	// UpdateRoutine replaces the whole sub-task list.
	AddRoutine(ctx context.Context, routine models.Routine) error
	GetRoutine(ctx context.Context, id string) (models.Routine, error)
	GetAllRoutines(ctx context.Context) ([]models.Routine, error)
	UpdateRoutine(ctx context.Context, routine models.Routine) error
	// DeleteRoutine permanently removes the routine together with its
	// sub-tasks, executions and media.
	DeleteRoutine(ctx context.Context, id string) error

	// Executions. SaveExecution inserts or replaces the row for
	// (RoutineID, Day). Empty startDay/endDay leave that side of the range open.
	SaveExecution(ctx context.Context, exec models.Execution) error
	GetExecution(ctx context.Context, routineID, day string) (models.Execution, error)
	GetExecutions(ctx context.Context, routineID, startDay, endDay string) ([]models.Execution, error)

	// Diary
	AddDiaryEntry(ctx context.Context, entry models.DiaryEntry) error
	GetDiaryEntry(ctx context.Context, id string) (models.DiaryEntry, error)
	GetDiaryEntries(ctx context.Context, startDay, endDay string, includeDeleted bool) ([]models.DiaryEntry, error)
	UpdateDiaryEntry(ctx context.Context, entry models.DiaryEntry) error
	DeleteDiaryEntry(ctx context.Context, id string) error
	RestoreDiaryEntry(ctx context.Context, id string) error
	// PurgeDeletedDiaryEntries removes trashed entries and their media and
	// returns how many entries were removed.
	PurgeDeletedDiaryEntries(ctx context.Context) (int, error)

	// Media
	AddMedia(ctx context.Context, media models.Media) error
	GetMedia(ctx context.Context, id string) (models.Media, error)
	GetMediaForOwner(ctx context.Context, ownerType constants.MediaOwnerType, ownerID string) ([]models.Media, error)
	DeleteMedia(ctx context.Context, id string) error

	// Utils
	GetConfigPath() string
}

// InRange reports whether day (YYYY-MM-DD) lies within [startDay, endDay].
// Empty bounds are open.
func InRange(day, startDay, endDay string) bool {
	if startDay != "" && day < startDay {
		return false
	}
	if endDay != "" && day > endDay {
		return false
	}
	return true
}
