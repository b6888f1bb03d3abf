package domain

import (
	"time"

	"github.com/google/uuid"
)

// Schedule — расписание автоматического запуска цепочки.
//
// Поддерживаются два режима:
// - Cron-выражение: "0 9 * * *" (каждый день в 9:00)
// - Интервал: каждые N секунд
//
// Scheduler проверяет NextDueAt и запускает цепочку, когда время подошло.
type Schedule struct {
	// ID — уникальный идентификатор расписания.
	ID uuid.UUID `json:"id"`

	// ChainID — цепочка, которую нужно запускать.
	ChainID string `json:"chain_id"`

	// Name — имя расписания для удобства.
	Name string `json:"name,omitempty"`

	// CronExpr — cron-выражение ("минуты часы дни месяцы дни_недели").
	// Если задан CronExpr, IntervalSec игнорируется.
	CronExpr string `json:"cron_expr,omitempty"`

	// IntervalSec — интервал в секундах между запусками.
	// Используется если CronExpr не задан.
	IntervalSec int `json:"interval_sec,omitempty"`

	// Timezone — часовой пояс для вычисления времени (по умолчанию UTC).
	Timezone string `json:"timezone"`

	// Enabled — флаг активности. Выключенные расписания игнорируются.
	Enabled bool `json:"enabled"`

	// NextDueAt — время следующего запуска.
	NextDueAt *time.Time `json:"next_due_at,omitempty"`

	// LastRunAt — время последнего запуска.
	LastRunAt *time.Time `json:"last_run_at,omitempty"`

	// CreatedAt — время создания расписания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSchedule создаёт расписание для цепочки.
func NewSchedule(chainID string) *Schedule {
	now := time.Now()
	return &Schedule{
		ID:        uuid.New(),
		ChainID:   chainID,
		Timezone:  "UTC",
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsCron возвращает true, если расписание использует cron-выражение.
func (s *Schedule) IsCron() bool {
	return s.CronExpr != ""
}

// IsInterval возвращает true, если расписание использует интервал.
func (s *Schedule) IsInterval() bool {
	return s.CronExpr == "" && s.IntervalSec > 0
}

// IsDue проверяет, пора ли запускать.
func (s *Schedule) IsDue(now time.Time) bool {
	if !s.Enabled || s.NextDueAt == nil {
		return false
	}
	return !now.Before(*s.NextDueAt)
}

// RecordRun записывает информацию о запуске и следующем времени.
func (s *Schedule) RecordRun(nextDue time.Time) {
	now := time.Now()
	s.LastRunAt = &now
	s.NextDueAt = &nextDue
	s.UpdatedAt = now
}
