// Package storagetest holds behaviour checks shared by every
// storage.Provider implementation.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/models"
	"github.com/julianstephens/ilsang/internal/storage"
)

// Run exercises p, which must be freshly initialized and empty.
func Run(t *testing.T, p storage.Provider) {
	t.Run("Settings", func(t *testing.T) { testSettings(t, p) })
	t.Run("Routines", func(t *testing.T) { testRoutines(t, p) })
	t.Run("Executions", func(t *testing.T) { testExecutions(t, p) })
	t.Run("DiarySoftDelete", func(t *testing.T) { testDiary(t, p) })
	t.Run("Media", func(t *testing.T) { testMedia(t, p) })
	t.Run("DeleteRoutineCascades", func(t *testing.T) { testDeleteCascade(t, p) })
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func testSettings(t *testing.T, p storage.Provider) {
	ctx := context.Background()

	settings, err := p.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.DefaultReminderTime != constants.DefaultReminderTime {
		t.Errorf("expected default reminder time %s, got %s", constants.DefaultReminderTime, settings.DefaultReminderTime)
	}

	settings.Timezone = "Asia/Seoul"
	settings.NotificationsEnabled = false
	settings.ReminderGracePeriodMin = 25
	if err := p.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	got, err := p.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got != settings {
		t.Errorf("settings = %+v, want %+v", got, settings)
	}
}

func testRoutines(t *testing.T, p storage.Provider) {
	ctx := context.Background()

	r := models.Routine{
		ID:           "routine-1",
		Name:         "분리수거",
		RepeatCycle:  "매주 수요일",
		ReminderTime: "19:30",
		CreatedAt:    ts("2025-01-01T09:00:00Z"),
		UpdatedAt:    ts("2025-01-01T09:00:00Z"),
		SubTasks: []models.SubTask{
			{ID: "st-1", Title: "플라스틱"},
			{ID: "st-2", Title: "종이"},
		},
	}
	r.NormalizeSubTasks()

	if err := p.AddRoutine(ctx, r); err != nil {
		t.Fatalf("AddRoutine failed: %v", err)
	}

	got, err := p.GetRoutine(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetRoutine failed: %v", err)
	}
	if got.Name != r.Name || got.RepeatCycle != r.RepeatCycle || got.ReminderTime != r.ReminderTime {
		t.Errorf("routine = %+v, want %+v", got, r)
	}
	if !got.CreatedAt.Equal(r.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, r.CreatedAt)
	}
	if len(got.SubTasks) != 2 || got.SubTasks[0].Title != "플라스틱" || got.SubTasks[1].Title != "종이" {
		t.Fatalf("sub-tasks = %+v", got.SubTasks)
	}
	if got.SubTasks[1].Position != 1 || got.SubTasks[1].RoutineID != r.ID {
		t.Errorf("sub-task not normalized: %+v", got.SubTasks[1])
	}

	// Replacing the sub-task list drops removed items and keeps order.
	got.SubTasks = []models.SubTask{{ID: "st-3", Title: "캔"}, {ID: "st-1", Title: "플라스틱"}}
	got.NormalizeSubTasks()
	got.Name = "재활용 분리수거"
	got.UpdatedAt = ts("2025-01-02T09:00:00Z")
	if err := p.UpdateRoutine(ctx, got); err != nil {
		t.Fatalf("UpdateRoutine failed: %v", err)
	}

	updated, err := p.GetRoutine(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetRoutine failed: %v", err)
	}
	if updated.Name != "재활용 분리수거" {
		t.Errorf("Name = %q", updated.Name)
	}
	if len(updated.SubTasks) != 2 || updated.SubTasks[0].Title != "캔" || updated.SubTasks[1].Title != "플라스틱" {
		t.Errorf("sub-tasks after update = %+v", updated.SubTasks)
	}

	second := models.Routine{
		ID:          "routine-2",
		Name:        "관리비",
		RepeatCycle: "매달 20일",
		CreatedAt:   ts("2025-02-01T09:00:00Z"),
		UpdatedAt:   ts("2025-02-01T09:00:00Z"),
	}
	if err := p.AddRoutine(ctx, second); err != nil {
		t.Fatalf("AddRoutine failed: %v", err)
	}

	all, err := p.GetAllRoutines(ctx)
	if err != nil {
		t.Fatalf("GetAllRoutines failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != r.ID || all[1].ID != second.ID {
		t.Errorf("GetAllRoutines returned %d routines in unexpected order", len(all))
	}

	if _, err := p.GetRoutine(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetRoutine(missing) error = %v, want ErrNotFound", err)
	}
	if err := p.UpdateRoutine(ctx, models.Routine{ID: "missing", Name: "x", RepeatCycle: "매일"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateRoutine(missing) error = %v, want ErrNotFound", err)
	}
}

func testExecutions(t *testing.T, p storage.Provider) {
	ctx := context.Background()

	r := models.Routine{
		ID:          "routine-exec",
		Name:        "물 주기",
		RepeatCycle: "3일마다",
		CreatedAt:   ts("2025-03-01T08:00:00Z"),
		UpdatedAt:   ts("2025-03-01T08:00:00Z"),
	}
	if err := p.AddRoutine(ctx, r); err != nil {
		t.Fatalf("AddRoutine failed: %v", err)
	}

	first := models.Execution{
		ID: "exec-1", RoutineID: r.ID, Day: "2025-03-01",
		CompletedSubTasks: 0, TotalSubTasks: 0, CreatedAt: ts("2025-03-01T09:00:00Z"),
	}
	if err := p.SaveExecution(ctx, first); err != nil {
		t.Fatalf("SaveExecution failed: %v", err)
	}

	// Same routine and day replaces the row.
	again := first
	again.ID = "exec-other"
	again.Note = "다시"
	if err := p.SaveExecution(ctx, again); err != nil {
		t.Fatalf("SaveExecution (upsert) failed: %v", err)
	}

	got, err := p.GetExecution(ctx, r.ID, "2025-03-01")
	if err != nil {
		t.Fatalf("GetExecution failed: %v", err)
	}
	if got.Note != "다시" {
		t.Errorf("Note = %q, want 다시", got.Note)
	}

	for _, day := range []string{"2025-03-04", "2025-03-07"} {
		e := models.Execution{ID: "exec-" + day, RoutineID: r.ID, Day: day, CreatedAt: ts("2025-03-01T09:00:00Z")}
		if err := p.SaveExecution(ctx, e); err != nil {
			t.Fatalf("SaveExecution failed: %v", err)
		}
	}

	all, err := p.GetExecutions(ctx, r.ID, "", "")
	if err != nil {
		t.Fatalf("GetExecutions failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 executions, got %d", len(all))
	}
	if all[0].Day != "2025-03-01" || all[2].Day != "2025-03-07" {
		t.Errorf("executions not ordered by day: %v, %v", all[0].Day, all[2].Day)
	}

	window, err := p.GetExecutions(ctx, r.ID, "2025-03-02", "2025-03-04")
	if err != nil {
		t.Fatalf("GetExecutions failed: %v", err)
	}
	if len(window) != 1 || window[0].Day != "2025-03-04" {
		t.Errorf("windowed executions = %+v", window)
	}

	if _, err := p.GetExecution(ctx, r.ID, "2025-03-02"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetExecution(missing) error = %v, want ErrNotFound", err)
	}
}

func testDiary(t *testing.T, p storage.Provider) {
	ctx := context.Background()

	entry := models.DiaryEntry{
		ID:        "diary-1",
		Day:       "2025-04-01",
		Title:     "벚꽃",
		Body:      "공원에 다녀왔다.",
		Mood:      "good",
		CreatedAt: ts("2025-04-01T21:00:00Z"),
		UpdatedAt: ts("2025-04-01T21:00:00Z"),
	}
	if err := p.AddDiaryEntry(ctx, entry); err != nil {
		t.Fatalf("AddDiaryEntry failed: %v", err)
	}

	got, err := p.GetDiaryEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("GetDiaryEntry failed: %v", err)
	}
	if got.Title != entry.Title || got.Body != entry.Body || got.Mood != entry.Mood {
		t.Errorf("entry = %+v, want %+v", got, entry)
	}

	got.Body = "공원에 다녀왔다. 사람이 많았다."
	got.UpdatedAt = ts("2025-04-01T22:00:00Z")
	if err := p.UpdateDiaryEntry(ctx, got); err != nil {
		t.Fatalf("UpdateDiaryEntry failed: %v", err)
	}

	if err := p.DeleteDiaryEntry(ctx, entry.ID); err != nil {
		t.Fatalf("DeleteDiaryEntry failed: %v", err)
	}
	if _, err := p.GetDiaryEntry(ctx, entry.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetDiaryEntry after delete error = %v, want ErrNotFound", err)
	}

	visible, err := p.GetDiaryEntries(ctx, "", "", false)
	if err != nil {
		t.Fatalf("GetDiaryEntries failed: %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("deleted entry should not be listed, got %d entries", len(visible))
	}

	withDeleted, err := p.GetDiaryEntries(ctx, "", "", true)
	if err != nil {
		t.Fatalf("GetDiaryEntries failed: %v", err)
	}
	if len(withDeleted) != 1 || withDeleted[0].DeletedAt == nil {
		t.Fatalf("expected one trashed entry, got %+v", withDeleted)
	}

	if err := p.RestoreDiaryEntry(ctx, entry.ID); err != nil {
		t.Fatalf("RestoreDiaryEntry failed: %v", err)
	}
	restored, err := p.GetDiaryEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("GetDiaryEntry after restore failed: %v", err)
	}
	if restored.DeletedAt != nil {
		t.Error("restored entry still has DeletedAt")
	}
	if restored.Body != got.Body {
		t.Errorf("Body = %q, want %q", restored.Body, got.Body)
	}
	if err := p.RestoreDiaryEntry(ctx, entry.ID); err == nil {
		t.Error("expected error restoring an entry that is not deleted")
	}

	attachment := models.Media{
		ID: "media-diary", OwnerType: constants.MediaOwnerDiary, OwnerID: entry.ID,
		Kind: constants.MediaKindImage, Path: "/photos/a.jpg", CreatedAt: ts("2025-04-01T21:05:00Z"),
	}
	if err := p.AddMedia(ctx, attachment); err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}

	if err := p.DeleteDiaryEntry(ctx, entry.ID); err != nil {
		t.Fatalf("DeleteDiaryEntry failed: %v", err)
	}
	purged, err := p.PurgeDeletedDiaryEntries(ctx)
	if err != nil {
		t.Fatalf("PurgeDeletedDiaryEntries failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged %d entries, want 1", purged)
	}
	if _, err := p.GetMedia(ctx, attachment.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("media of purged entry still present: %v", err)
	}
	if err := p.RestoreDiaryEntry(ctx, entry.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("RestoreDiaryEntry after purge error = %v, want ErrNotFound", err)
	}
}

func testMedia(t *testing.T, p storage.Provider) {
	ctx := context.Background()

	items := []models.Media{
		{ID: "media-1", OwnerType: constants.MediaOwnerRoutine, OwnerID: "owner-a", Kind: constants.MediaKindImage, Path: "/a.png", CreatedAt: ts("2025-05-01T10:00:00Z")},
		{ID: "media-2", OwnerType: constants.MediaOwnerRoutine, OwnerID: "owner-a", Kind: constants.MediaKindAudio, Path: "/a.m4a", CreatedAt: ts("2025-05-01T11:00:00Z")},
		{ID: "media-3", OwnerType: constants.MediaOwnerDiary, OwnerID: "owner-a", Kind: constants.MediaKindImage, Path: "/b.png", CreatedAt: ts("2025-05-01T12:00:00Z")},
	}
	for _, m := range items {
		if err := p.AddMedia(ctx, m); err != nil {
			t.Fatalf("AddMedia failed: %v", err)
		}
	}

	owned, err := p.GetMediaForOwner(ctx, constants.MediaOwnerRoutine, "owner-a")
	if err != nil {
		t.Fatalf("GetMediaForOwner failed: %v", err)
	}
	if len(owned) != 2 || owned[0].ID != "media-1" || owned[1].Kind != constants.MediaKindAudio {
		t.Errorf("GetMediaForOwner = %+v", owned)
	}

	if err := p.DeleteMedia(ctx, "media-1"); err != nil {
		t.Fatalf("DeleteMedia failed: %v", err)
	}
	if err := p.DeleteMedia(ctx, "media-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteMedia error = %v, want ErrNotFound", err)
	}

	diary, err := p.GetMediaForOwner(ctx, constants.MediaOwnerDiary, "owner-a")
	if err != nil {
		t.Fatalf("GetMediaForOwner failed: %v", err)
	}
	if len(diary) != 1 || diary[0].Path != "/b.png" {
		t.Errorf("diary media = %+v", diary)
	}
}

func testDeleteCascade(t *testing.T, p storage.Provider) {
	ctx := context.Background()

	r := models.Routine{
		ID:          "routine-cascade",
		Name:        "청소",
		RepeatCycle: "매일",
		CreatedAt:   ts("2025-06-01T08:00:00Z"),
		UpdatedAt:   ts("2025-06-01T08:00:00Z"),
		SubTasks:    []models.SubTask{{ID: "st-cascade", Title: "거실"}},
	}
	r.NormalizeSubTasks()
	if err := p.AddRoutine(ctx, r); err != nil {
		t.Fatalf("AddRoutine failed: %v", err)
	}
	exec := models.Execution{ID: "exec-cascade", RoutineID: r.ID, Day: "2025-06-01", CompletedSubTasks: 1, TotalSubTasks: 1, CreatedAt: ts("2025-06-01T09:00:00Z")}
	if err := p.SaveExecution(ctx, exec); err != nil {
		t.Fatalf("SaveExecution failed: %v", err)
	}
	photo := models.Media{ID: "media-cascade", OwnerType: constants.MediaOwnerRoutine, OwnerID: r.ID, Kind: constants.MediaKindImage, Path: "/c.png", CreatedAt: ts("2025-06-01T09:00:00Z")}
	if err := p.AddMedia(ctx, photo); err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}

	if err := p.DeleteRoutine(ctx, r.ID); err != nil {
		t.Fatalf("DeleteRoutine failed: %v", err)
	}

	if _, err := p.GetRoutine(ctx, r.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetRoutine after delete error = %v, want ErrNotFound", err)
	}
	execs, err := p.GetExecutions(ctx, r.ID, "", "")
	if err != nil {
		t.Fatalf("GetExecutions failed: %v", err)
	}
	if len(execs) != 0 {
		t.Errorf("executions survived routine delete: %+v", execs)
	}
	if _, err := p.GetMedia(ctx, photo.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("media survived routine delete: %v", err)
	}
	if err := p.DeleteRoutine(ctx, r.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteRoutine error = %v, want ErrNotFound", err)
	}
}
