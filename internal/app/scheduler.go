package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Lifecycle фоновые переходы встреч
type Lifecycle interface {
	ExpireStale(ctx context.Context, now time.Time) (int, error)
	CompleteElapsed(ctx context.Context, now time.Time) (int, error)
}

// Scheduler управляет фоновыми задачами жизненного цикла встреч
type Scheduler struct {
	lifecycle Lifecycle
	cron      *cron.Cron
	logger    *zap.Logger
	now       func() time.Time
	timeout   time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler создаёт новый планировщик и регистрирует задачи
func NewScheduler(lifecycle Lifecycle, expireSpec, completeSpec string, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		lifecycle: lifecycle,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger,
		now:       time.Now,
		timeout:   time.Minute,
	}

	if _, err := s.cron.AddFunc(expireSpec, s.expireStale); err != nil {
		return nil, fmt.Errorf("add expire job %q: %w", expireSpec, err)
	}
	if _, err := s.cron.AddFunc(completeSpec, s.completeElapsed); err != nil {
		return nil, fmt.Errorf("add complete job %q: %w", completeSpec, err)
	}

	return s, nil
}

// Start запускает фоновые задачи. Первый прогон сразу при старте.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.expireStale()
	s.completeElapsed()
	s.cron.Start()
}

// Stop останавливает планировщик и ждёт завершения текущих задач
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")

	<-s.cron.Stop().Done()
	if s.cancel != nil {
		s.cancel()
	}
}

// expireStale гасит запросы без ответа
func (s *Scheduler) expireStale() {
	ctx, cancel := s.jobContext()
	defer cancel()

	n, err := s.lifecycle.ExpireStale(ctx, s.now())
	if err != nil {
		s.logger.Error("Failed to expire stale requests", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Expired stale requests", zap.Int("count", n))
	}
}

// completeElapsed завершает прошедшие встречи
func (s *Scheduler) completeElapsed() {
	ctx, cancel := s.jobContext()
	defer cancel()

	n, err := s.lifecycle.CompleteElapsed(ctx, s.now())
	if err != nil {
		s.logger.Error("Failed to complete appointments", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Completed appointments", zap.Int("count", n))
	}
}

func (s *Scheduler) jobContext() (context.Context, context.CancelFunc) {
	parent := s.ctx
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, s.timeout)
}
