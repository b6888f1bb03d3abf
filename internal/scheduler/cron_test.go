package scheduler

import (
	"testing"
	"time"

	"github.com/shaiso/Nodeflow/internal/domain"
)

func TestCalculateNextDueInterval(t *testing.T) {
	sched := domain.NewSchedule("chain-1")
	sched.IntervalSec = 300

	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("CalculateNextDue() error = %v", err)
	}

	want := from.Add(5 * time.Minute)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestCalculateNextDueCron(t *testing.T) {
	sched := domain.NewSchedule("chain-1")
	sched.CronExpr = "0 9 * * *" // каждый день в 9:00

	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("CalculateNextDue() error = %v", err)
	}

	// 12:00 уже прошло 9:00 — следующий запуск завтра
	want := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestCalculateNextDueCronTimezone(t *testing.T) {
	sched := domain.NewSchedule("chain-1")
	sched.CronExpr = "0 9 * * *"
	sched.Timezone = "Europe/Moscow" // UTC+3

	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) // 15:00 в Москве

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("CalculateNextDue() error = %v", err)
	}

	// 9:00 по Москве = 6:00 UTC, следующий день
	want := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestCalculateNextDueInvalidTimezoneFallsBackToUTC(t *testing.T) {
	sched := domain.NewSchedule("chain-1")
	sched.IntervalSec = 60
	sched.Timezone = "Mars/Olympus"

	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("CalculateNextDue() error = %v", err)
	}

	want := from.Add(time.Minute)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestCalculateNextDueNeitherCronNorInterval(t *testing.T) {
	sched := domain.NewSchedule("chain-1")

	if _, err := CalculateNextDue(sched, time.Now()); err == nil {
		t.Error("expected error for schedule with neither cron_expr nor interval_sec")
	}
}

func TestValidateCronExpr(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"0 9 * * *", false},
		{"*/5 * * * *", false},
		{"0 0 1 1 0", false},
		{"not a cron", true},
		{"99 * * * *", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateCronExpr(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCronExpr(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
		}
	}
}

func TestScheduleIsDue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	sched := domain.NewSchedule("chain-1")

	// Без NextDueAt не due
	if sched.IsDue(now) {
		t.Error("schedule without next_due_at should not be due")
	}

	sched.NextDueAt = &past
	if !sched.IsDue(now) {
		t.Error("schedule with past next_due_at should be due")
	}

	sched.NextDueAt = &future
	if sched.IsDue(now) {
		t.Error("schedule with future next_due_at should not be due")
	}

	sched.NextDueAt = &past
	sched.Enabled = false
	if sched.IsDue(now) {
		t.Error("disabled schedule should not be due")
	}
}
