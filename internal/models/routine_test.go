package models

import (
	"testing"
	"time"
)

func TestRoutine_Validate(t *testing.T) {
	tests := []struct {
		name    string
		routine Routine
		wantErr bool
	}{
		{
			name:    "valid weekly routine",
			routine: Routine{ID: "r1", Name: "분리수거", RepeatCycle: "매주 수요일", ReminderTime: "19:30"},
		},
		{
			name:    "valid without reminder",
			routine: Routine{ID: "r1", Name: "관리비 납부", RepeatCycle: "매달 20일"},
		},
		{
			name:    "empty name",
			routine: Routine{ID: "r1", Name: "  ", RepeatCycle: "매일"},
			wantErr: true,
		},
		{
			name:    "bad repeat cycle",
			routine: Routine{ID: "r1", Name: "물 주기", RepeatCycle: "매주수요일"},
			wantErr: true,
		},
		{
			name:    "bad reminder time",
			routine: Routine{ID: "r1", Name: "물 주기", RepeatCycle: "3일마다", ReminderTime: "25:00"},
			wantErr: true,
		},
		{
			name: "empty sub-task title",
			routine: Routine{ID: "r1", Name: "청소", RepeatCycle: "매일", SubTasks: []SubTask{
				{Title: "거실"}, {Title: ""},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.routine.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoutine_DueOn(t *testing.T) {
	r := Routine{
		Name:        "분리수거",
		RepeatCycle: "매주 수요일",
		CreatedAt:   time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}

	if !r.DueOn(time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected routine to be due on Wednesday 2025-01-08")
	}
	if r.DueOn(time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected routine not to be due on Thursday 2025-01-09")
	}

	r.RepeatCycle = "garbage"
	if r.DueOn(time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)) {
		t.Error("routine with invalid repeat cycle should never be due")
	}
}

func TestRoutine_NormalizeSubTasks(t *testing.T) {
	r := Routine{ID: "r1", SubTasks: []SubTask{{Title: "a", Position: 5}, {Title: "b", Position: 2}}}
	r.NormalizeSubTasks()
	for i, st := range r.SubTasks {
		if st.Position != i {
			t.Errorf("SubTasks[%d].Position = %d, want %d", i, st.Position, i)
		}
		if st.RoutineID != "r1" {
			t.Errorf("SubTasks[%d].RoutineID = %q, want r1", i, st.RoutineID)
		}
	}
}

func TestExecution_Done(t *testing.T) {
	tests := []struct {
		name string
		exec Execution
		want bool
	}{
		{"no sub-tasks", Execution{TotalSubTasks: 0}, true},
		{"partial", Execution{CompletedSubTasks: 1, TotalSubTasks: 3}, false},
		{"all", Execution{CompletedSubTasks: 3, TotalSubTasks: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.exec.Done(); got != tt.want {
				t.Errorf("Done() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMedia_Validate(t *testing.T) {
	valid := Media{ID: "m1", OwnerType: "routine", OwnerID: "r1", Kind: "image", Path: "/tmp/a.png"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() returned error for valid media: %v", err)
	}

	bad := valid
	bad.Kind = "video"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown media kind")
	}

	bad = valid
	bad.OwnerType = "contact"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown owner type")
	}
}

func TestDiaryEntry_Validate(t *testing.T) {
	d := DiaryEntry{Day: "2025-03-01", Title: "봄"}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() returned error: %v", err)
	}
	d.Day = "2025/03/01"
	if err := d.Validate(); err == nil {
		t.Error("expected error for bad day format")
	}
	d = DiaryEntry{Day: "2025-03-01"}
	if err := d.Validate(); err == nil {
		t.Error("expected error for empty entry")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := Settings{Timezone: "Asia/Seoul", NotificationsEnabled: true, DefaultReminderTime: "07:30", ReminderGracePeriodMin: 15}
	got, err := MapToSettings(SettingsToMap(s))
	if err != nil {
		t.Fatalf("MapToSettings() error: %v", err)
	}
	if got != s {
		t.Errorf("round trip = %+v, want %+v", got, s)
	}

	if _, err := MapToSettings(map[string]string{"reminder_grace_period_min": "x"}); err == nil {
		t.Error("expected error for non-numeric grace period")
	}
}

func TestApplyDefaultSettings(t *testing.T) {
	s := Settings{ReminderGracePeriodMin: -3}
	ApplyDefaultSettings(&s)
	if s.Timezone == "" || s.DefaultReminderTime == "" {
		t.Errorf("defaults not applied: %+v", s)
	}
	if s.ReminderGracePeriodMin != 0 {
		t.Errorf("ReminderGracePeriodMin = %d, want 0", s.ReminderGracePeriodMin)
	}
}
