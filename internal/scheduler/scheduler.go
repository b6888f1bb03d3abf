package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Nodeflow/internal/domain"
	"github.com/shaiso/Nodeflow/internal/executor"
	"github.com/shaiso/Nodeflow/internal/repo"
)

// Scheduler — планировщик, запускающий chains по расписанию.
type Scheduler struct {
	schedules *repo.ScheduleRepo
	chains    *repo.ChainRepo
	chainExec *executor.ChainExecutor
	logger    *slog.Logger
}

// Config — конфигурация Scheduler.
type Config struct {
	Schedules *repo.ScheduleRepo
	Chains    *repo.ChainRepo
	ChainExec *executor.ChainExecutor
	Logger    *slog.Logger
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	return &Scheduler{
		schedules: cfg.Schedules,
		chains:    cfg.Chains,
		chainExec: cfg.ChainExec,
		logger:    cfg.Logger,
	}
}

// Run крутит тики до отмены контекста.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.logger.Error("scheduler tick failed", "error", err)
			}
		}
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Находит due расписания (enabled=true, next_due_at <= now)
// 2. Для каждого запускает его chain
// 3. Обновляет next_due_at
//
// Ошибки одного расписания не блокируют обработку остальных.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now()

	schedules, err := s.schedules.ListDue(ctx)
	if err != nil {
		return fmt.Errorf("list due schedules: %w", err)
	}

	if len(schedules) == 0 {
		return nil
	}

	s.logger.Debug("found due schedules", "count", len(schedules))

	var processed int
	for i := range schedules {
		sched := &schedules[i]

		if err := s.processSchedule(ctx, sched, now); err != nil {
			s.logger.Error("failed to process schedule",
				"schedule_id", sched.ID,
				"schedule_name", sched.Name,
				"error", err,
			)
			// Продолжаем обработку остальных
			continue
		}
		processed++
	}

	s.logger.Info("scheduler tick completed",
		"due", len(schedules),
		"processed", processed,
	)

	return nil
}

// processSchedule запускает chain одного расписания и двигает next_due_at.
func (s *Scheduler) processSchedule(ctx context.Context, sched *domain.Schedule, now time.Time) error {
	chain, err := s.chains.GetByID(ctx, sched.ChainID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.logger.Warn("chain not found for schedule, skipping",
				"schedule_id", sched.ID,
				"chain_id", sched.ChainID,
			)
			return nil
		}
		return fmt.Errorf("get chain: %w", err)
	}

	// Следующее время вычисляется до запуска: долгий chain
	// не должен сдвигать своё расписание
	nextDue, err := CalculateNextDue(sched, now)
	if err != nil {
		s.logger.Error("failed to calculate next due, leaving schedule as is",
			"schedule_id", sched.ID,
			"error", err,
		)
		return nil
	}

	sched.RecordRun(nextDue)
	if err := s.schedules.Update(ctx, sched); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}

	s.logger.Info("running scheduled chain",
		"schedule_id", sched.ID,
		"chain_id", chain.ID,
		"chain_name", chain.Name,
	)

	if _, err := s.chainExec.RunChain(ctx, chain, nil, executor.Callbacks{}); err != nil {
		// Падение chain не фатально для планировщика
		s.logger.Warn("scheduled chain failed", "chain_id", chain.ID, "error", err)
	}

	return nil
}
