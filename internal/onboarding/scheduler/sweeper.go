package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding"
)

// Sweeper refreshes overdue flags across running onboardings
type Sweeper interface {
	SweepOverdue(ctx context.Context) (*onboarding.SweepResult, error)
}

// Config configuration for the overdue sweep schedule
type Config struct {
	CronExpression string        `json:"cron_expression"`
	Timezone       string        `json:"timezone"`
	Timeout        time.Duration `json:"timeout"`
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		CronExpression: "*/15 * * * *",
		Timezone:       "UTC",
		Timeout:        10 * time.Minute,
	}
}

// JobStatus represents the state of the sweep job
type JobStatus struct {
	CronExpression string                  `json:"cron_expression"`
	Running        bool                    `json:"running"`
	NextRun        time.Time               `json:"next_run"`
	PrevRun        time.Time               `json:"prev_run"`
	LastResult     *onboarding.SweepResult `json:"last_result,omitempty"`
	LastError      string                  `json:"last_error,omitempty"`
	LastFinishedAt *time.Time              `json:"last_finished_at,omitempty"`
}

// OverdueScheduler runs the overdue sweep on a cron schedule
type OverdueScheduler struct {
	cron    *cron.Cron
	entryID cron.EntryID
	sweeper Sweeper
	config  Config
	logger  *zap.Logger

	mu       sync.RWMutex
	running  bool
	last     *onboarding.SweepResult
	lastErr  error
	finished *time.Time
}

// NewOverdueScheduler creates a scheduler; the cron expression is validated up front
func NewOverdueScheduler(sweeper Sweeper, logger *zap.Logger, config Config) (*OverdueScheduler, error) {
	if err := ValidateCronExpression(config.CronExpression); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", config.CronExpression, err)
	}
	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		loc = time.UTC
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	s := &OverdueScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		sweeper: sweeper,
		config:  config,
		logger:  logger,
	}

	entryID, err := s.cron.AddFunc(config.CronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
		defer cancel()
		_, _ = s.RunNow(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add cron job: %w", err)
	}
	s.entryID = entryID
	return s, nil
}

// Start starts the cron scheduler
func (s *OverdueScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("overdue scheduler already running")
	}
	s.running = true

	s.logger.Info("Starting overdue sweep scheduler",
		zap.String("cron", s.config.CronExpression),
		zap.String("timezone", s.config.Timezone))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *OverdueScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping overdue sweep scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunNow performs one sweep immediately and records its outcome
func (s *OverdueScheduler) RunNow(ctx context.Context) (*onboarding.SweepResult, error) {
	started := time.Now()
	result, err := s.sweeper.SweepOverdue(ctx)
	finished := time.Now()

	s.mu.Lock()
	s.last = result
	s.lastErr = err
	s.finished = &finished
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Overdue sweep failed", zap.Error(err))
		return result, err
	}
	s.logger.Info("Overdue sweep completed",
		zap.Int("scanned", result.Scanned),
		zap.Int("updated", result.Updated),
		zap.Int("newly_overdue", result.NewlyOverdue),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", finished.Sub(started)))
	return result, nil
}

// Status returns the job's schedule and last outcome
func (s *OverdueScheduler) Status() JobStatus {
	entry := s.cron.Entry(s.entryID)

	s.mu.RLock()
	defer s.mu.RUnlock()
	status := JobStatus{
		CronExpression: s.config.CronExpression,
		Running:        s.running,
		NextRun:        entry.Next,
		PrevRun:        entry.Prev,
		LastResult:     s.last,
		LastFinishedAt: s.finished,
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}

// ValidateCronExpression validates a standard five-field expression or descriptor
func ValidateCronExpression(expr string) error {
	_, err := cron.ParseStandard(expr)
	return err
}
