package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ExpirySweeper expires subscriptions whose end date has passed
type ExpirySweeper interface {
	ExpireDue(ctx context.Context, batchSize int) (int, error)
}

// IdleSweeper revokes sessions idle past the timeout
type IdleSweeper interface {
	SweepIdle(ctx context.Context) (int, error)
}

// SweeperConfig holds configuration for the background sweeper
type SweeperConfig struct {
	// Interval is how often a sweep runs
	Interval time.Duration
	// BatchSize caps how many due subscriptions one sweep expires
	BatchSize int
}

// DefaultSweeperConfig returns default sweeper configuration
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:  time.Minute,
		BatchSize: 100,
	}
}

// Sweeper periodically expires due subscriptions and revokes idle
// sessions. Expiry is lazy elsewhere in the system; the sweeper just
// keeps the backlog from growing on organizations nobody reads.
type Sweeper struct {
	config SweeperConfig
	expiry ExpirySweeper
	idle   IdleSweeper
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweeper creates a new background sweeper
func NewSweeper(config SweeperConfig, expiry ExpirySweeper, idle IdleSweeper, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		config: config,
		expiry: expiry,
		idle:   idle,
		logger: logger,
	}
}

// Start starts the sweeper loop
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Sweeper started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
	)
	return nil
}

// Stop stops the sweeper and waits for an in-flight sweep to finish
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep. Failures are logged, not fatal;
// the next tick tries again.
func (s *Sweeper) RunOnce(ctx context.Context) {
	expired, err := s.expiry.ExpireDue(ctx, s.config.BatchSize)
	if err != nil {
		s.logger.Error("subscription expiry sweep failed", zap.Error(err))
	}

	revoked, err := s.idle.SweepIdle(ctx)
	if err != nil {
		s.logger.Error("idle session sweep failed", zap.Error(err))
	}

	if expired > 0 || revoked > 0 {
		s.logger.Info("sweep completed",
			zap.Int("subscriptions_expired", expired),
			zap.Int("sessions_revoked", revoked))
	}
}
