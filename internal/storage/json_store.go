package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/models"
)

type Store struct {
	Version    int                          `json:"version"`
	Settings   models.Settings              `json:"settings"`
	Routines   map[string]models.Routine    `json:"routines"`
	Executions map[string]models.Execution  `json:"executions"` // routineID|day -> execution
	Diary      map[string]models.DiaryEntry `json:"diary"`
	Media      map[string]models.Media      `json:"media"`
}

func newStore() *Store {
	return &Store{
		Version:    1,
		Settings:   models.DefaultSettings(),
		Routines:   make(map[string]models.Routine),
		Executions: make(map[string]models.Execution),
		Diary:      make(map[string]models.DiaryEntry),
		Media:      make(map[string]models.Media),
	}
}

// JSONStore keeps everything in memory and, when it has a path, writes the
// whole document back to disk after every change. With an empty path it is a
// purely in-memory store.
type JSONStore struct {
	mu    sync.Mutex
	path  string
	store *Store
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

// NewMemoryStore returns a loaded, empty store that never touches disk.
func NewMemoryStore() *JSONStore {
	return &JSONStore{store: newStore()}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		s.store = newStore()
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = newStore()
	return s.save()
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		if s.store == nil {
			s.store = newStore()
		}
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	st := &Store{}
	if err := json.Unmarshal(data, st); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if st.Routines == nil {
		st.Routines = make(map[string]models.Routine)
	}
	if st.Executions == nil {
		st.Executions = make(map[string]models.Execution)
	}
	if st.Diary == nil {
		st.Diary = make(map[string]models.DiaryEntry)
	}
	if st.Media == nil {
		st.Media = make(map[string]models.Media)
	}
	s.store = st

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

// lock acquires the mutex and checks the store is loaded. Callers must
// unlock on a nil error.
func (s *JSONStore) lock() error {
	s.mu.Lock()
	if s.store == nil {
		s.mu.Unlock()
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func executionKey(routineID, day string) string {
	return routineID + "|" + day
}

func (s *JSONStore) GetSettings(ctx context.Context) (models.Settings, error) {
	if err := s.lock(); err != nil {
		return models.Settings{}, err
	}
	defer s.mu.Unlock()
	return s.store.Settings, nil
}

func (s *JSONStore) SaveSettings(ctx context.Context, settings models.Settings) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.store.Settings = settings
	return s.save()
}

func (s *JSONStore) AddRoutine(ctx context.Context, routine models.Routine) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.store.Routines[routine.ID]; ok {
		return fmt.Errorf("routine %s already exists", routine.ID)
	}
	s.store.Routines[routine.ID] = cloneRoutine(routine)
	return s.save()
}

func (s *JSONStore) GetRoutine(ctx context.Context, id string) (models.Routine, error) {
	if err := s.lock(); err != nil {
		return models.Routine{}, err
	}
	defer s.mu.Unlock()

	r, ok := s.store.Routines[id]
	if !ok {
		return models.Routine{}, fmt.Errorf("routine %s: %w", id, ErrNotFound)
	}
	return cloneRoutine(r), nil
}

func (s *JSONStore) GetAllRoutines(ctx context.Context) ([]models.Routine, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	routines := make([]models.Routine, 0, len(s.store.Routines))
	for _, r := range s.store.Routines {
		routines = append(routines, cloneRoutine(r))
	}
	sort.Slice(routines, func(i, j int) bool {
		if !routines[i].CreatedAt.Equal(routines[j].CreatedAt) {
			return routines[i].CreatedAt.Before(routines[j].CreatedAt)
		}
		return routines[i].ID < routines[j].ID
	})
	return routines, nil
}

func (s *JSONStore) UpdateRoutine(ctx context.Context, routine models.Routine) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.store.Routines[routine.ID]; !ok {
		return fmt.Errorf("routine %s: %w", routine.ID, ErrNotFound)
	}
	s.store.Routines[routine.ID] = cloneRoutine(routine)
	return s.save()
}

func (s *JSONStore) DeleteRoutine(ctx context.Context, id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.store.Routines[id]; !ok {
		return fmt.Errorf("routine %s: %w", id, ErrNotFound)
	}
	delete(s.store.Routines, id)
	for key, e := range s.store.Executions {
		if e.RoutineID == id {
			delete(s.store.Executions, key)
		}
	}
	s.deleteMediaForOwner(constants.MediaOwnerRoutine, id)
	return s.save()
}

func (s *JSONStore) SaveExecution(ctx context.Context, exec models.Execution) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.store.Routines[exec.RoutineID]; !ok {
		return fmt.Errorf("routine %s: %w", exec.RoutineID, ErrNotFound)
	}
	key := executionKey(exec.RoutineID, exec.Day)
	if existing, ok := s.store.Executions[key]; ok {
		exec.ID = existing.ID
		exec.CreatedAt = existing.CreatedAt
	}
	s.store.Executions[key] = exec
	return s.save()
}

func (s *JSONStore) GetExecution(ctx context.Context, routineID, day string) (models.Execution, error) {
	if err := s.lock(); err != nil {
		return models.Execution{}, err
	}
	defer s.mu.Unlock()

	e, ok := s.store.Executions[executionKey(routineID, day)]
	if !ok {
		return models.Execution{}, fmt.Errorf("execution %s on %s: %w", routineID, day, ErrNotFound)
	}
	return e, nil
}

func (s *JSONStore) GetExecutions(ctx context.Context, routineID, startDay, endDay string) ([]models.Execution, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var execs []models.Execution
	for _, e := range s.store.Executions {
		if e.RoutineID == routineID && InRange(e.Day, startDay, endDay) {
			execs = append(execs, e)
		}
	}
	sort.Slice(execs, func(i, j int) bool { return execs[i].Day < execs[j].Day })
	return execs, nil
}

func (s *JSONStore) AddDiaryEntry(ctx context.Context, entry models.DiaryEntry) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.store.Diary[entry.ID]; ok {
		return fmt.Errorf("diary entry %s already exists", entry.ID)
	}
	s.store.Diary[entry.ID] = entry
	return s.save()
}

func (s *JSONStore) GetDiaryEntry(ctx context.Context, id string) (models.DiaryEntry, error) {
	if err := s.lock(); err != nil {
		return models.DiaryEntry{}, err
	}
	defer s.mu.Unlock()

	entry, ok := s.store.Diary[id]
	if !ok || entry.DeletedAt != nil {
		return models.DiaryEntry{}, fmt.Errorf("diary entry %s: %w", id, ErrNotFound)
	}
	return entry, nil
}

func (s *JSONStore) GetDiaryEntries(ctx context.Context, startDay, endDay string, includeDeleted bool) ([]models.DiaryEntry, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var entries []models.DiaryEntry
	for _, entry := range s.store.Diary {
		if entry.DeletedAt != nil && !includeDeleted {
			continue
		}
		if InRange(entry.Day, startDay, endDay) {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return entries[i].Day < entries[j].Day
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *JSONStore) UpdateDiaryEntry(ctx context.Context, entry models.DiaryEntry) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	existing, ok := s.store.Diary[entry.ID]
	if !ok || existing.DeletedAt != nil {
		return fmt.Errorf("diary entry %s: %w", entry.ID, ErrNotFound)
	}
	entry.DeletedAt = nil
	s.store.Diary[entry.ID] = entry
	return s.save()
}

func (s *JSONStore) DeleteDiaryEntry(ctx context.Context, id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	entry, ok := s.store.Diary[id]
	if !ok || entry.DeletedAt != nil {
		return fmt.Errorf("diary entry %s: %w", id, ErrNotFound)
	}
	now := time.Now().UTC()
	entry.DeletedAt = &now
	s.store.Diary[id] = entry
	return s.save()
}

func (s *JSONStore) RestoreDiaryEntry(ctx context.Context, id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	entry, ok := s.store.Diary[id]
	if !ok {
		return fmt.Errorf("diary entry %s: %w", id, ErrNotFound)
	}
	if entry.DeletedAt == nil {
		return fmt.Errorf("diary entry %s is not deleted", id)
	}
	entry.DeletedAt = nil
	s.store.Diary[id] = entry
	return s.save()
}

func (s *JSONStore) PurgeDeletedDiaryEntries(ctx context.Context) (int, error) {
	if err := s.lock(); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	purged := 0
	for id, entry := range s.store.Diary {
		if entry.DeletedAt == nil {
			continue
		}
		delete(s.store.Diary, id)
		s.deleteMediaForOwner(constants.MediaOwnerDiary, id)
		purged++
	}
	if purged == 0 {
		return 0, nil
	}
	return purged, s.save()
}

func (s *JSONStore) AddMedia(ctx context.Context, media models.Media) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.store.Media[media.ID]; ok {
		return fmt.Errorf("media %s already exists", media.ID)
	}
	s.store.Media[media.ID] = media
	return s.save()
}

func (s *JSONStore) GetMedia(ctx context.Context, id string) (models.Media, error) {
	if err := s.lock(); err != nil {
		return models.Media{}, err
	}
	defer s.mu.Unlock()

	m, ok := s.store.Media[id]
	if !ok {
		return models.Media{}, fmt.Errorf("media %s: %w", id, ErrNotFound)
	}
	return m, nil
}

func (s *JSONStore) GetMediaForOwner(ctx context.Context, ownerType constants.MediaOwnerType, ownerID string) ([]models.Media, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var media []models.Media
	for _, m := range s.store.Media {
		if m.OwnerType == ownerType && m.OwnerID == ownerID {
			media = append(media, m)
		}
	}
	sort.Slice(media, func(i, j int) bool {
		if !media[i].CreatedAt.Equal(media[j].CreatedAt) {
			return media[i].CreatedAt.Before(media[j].CreatedAt)
		}
		return media[i].ID < media[j].ID
	})
	return media, nil
}

func (s *JSONStore) DeleteMedia(ctx context.Context, id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.store.Media[id]; !ok {
		return fmt.Errorf("media %s: %w", id, ErrNotFound)
	}
	delete(s.store.Media, id)
	return s.save()
}

func (s *JSONStore) deleteMediaForOwner(ownerType constants.MediaOwnerType, ownerID string) {
	for id, m := range s.store.Media {
		if m.OwnerType == ownerType && m.OwnerID == ownerID {
			delete(s.store.Media, id)
		}
	}
}

func (s *JSONStore) GetConfigPath() string {
	if s.path == "" {
		return "memory"
	}
	return s.path
}

// cloneRoutine copies the sub-task slice so callers cannot mutate stored
// state through it.
func cloneRoutine(r models.Routine) models.Routine {
	if r.SubTasks != nil {
		r.SubTasks = append([]models.SubTask(nil), r.SubTasks...)
	}
	return r
}

var _ Provider = (*JSONStore)(nil)
