package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shopbridge/backend/internal/application/listings"
	"github.com/shopbridge/backend/internal/application/orders"
	"github.com/shopbridge/backend/internal/domain/settings"
)

// ---------------------------------------------------------------------------
// Job interfaces
// ---------------------------------------------------------------------------

// OrderImporter runs one order import sweep.
type OrderImporter interface {
	ImportOrders(ctx context.Context, opts orders.ImportOptions) (*orders.ImportResult, error)
}

// InventoryReconciler runs one inventory reconciliation sweep.
type InventoryReconciler interface {
	ReconcileAllActive(ctx context.Context, opts listings.ReconcileOptions) (*listings.BatchResult, error)
}

// Locker provides cross-process mutual exclusion per job name.
type Locker interface {
	Acquire(ctx context.Context, job string) (func(context.Context) error, error)
}

// ---------------------------------------------------------------------------
// SyncScheduler
// ---------------------------------------------------------------------------

// Config holds configuration for the background sync loops.
type Config struct {
	// OrderInterval is how often the order import sweep runs.
	OrderInterval time.Duration
	// InventoryInterval is how often the inventory reconciliation runs.
	InventoryInterval time.Duration
}

// DefaultConfig returns default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		OrderInterval:     15 * time.Minute,
		InventoryInterval: 30 * time.Minute,
	}
}

const (
	jobOrderImport   = "order_import"
	jobInventorySync = "inventory_sync"
)

// SyncScheduler drives the periodic order import and inventory sweeps. Each
// job runs on its own ticker in a single goroutine, so a job is never
// concurrent with itself in-process; the run lock extends that exclusion
// across processes. Both jobs are gated by persisted settings flags checked
// at every tick, so operators can pause a sync without a redeploy.
type SyncScheduler struct {
	config     Config
	importer   OrderImporter
	reconciler InventoryReconciler
	settings   settings.Repository
	lock       Locker
	logger     *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncScheduler creates a new sync scheduler.
func NewSyncScheduler(
	config Config,
	importer OrderImporter,
	reconciler InventoryReconciler,
	settingsRepo settings.Repository,
	lock Locker,
	logger *zap.Logger,
) *SyncScheduler {
	if config.OrderInterval <= 0 {
		config.OrderInterval = DefaultConfig().OrderInterval
	}
	if config.InventoryInterval <= 0 {
		config.InventoryInterval = DefaultConfig().InventoryInterval
	}
	return &SyncScheduler{
		config:     config,
		importer:   importer,
		reconciler: reconciler,
		settings:   settingsRepo,
		lock:       lock,
		logger:     logger,
	}
}

// Start starts the background loops.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go s.runLoop(ctx, jobOrderImport, s.config.OrderInterval, s.runOrderImport)
	go s.runLoop(ctx, jobInventorySync, s.config.InventoryInterval, s.runInventorySync)

	s.logger.Info("Sync scheduler started",
		zap.Duration("order_interval", s.config.OrderInterval),
		zap.Duration("inventory_interval", s.config.InventoryInterval),
	)
	return nil
}

// Stop stops the background loops and waits for in-flight runs.
func (s *SyncScheduler) Stop(ctx context.Context) error {
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
		s.logger.Info("Sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop runs one job on a ticker until the context is cancelled.
func (s *SyncScheduler) runLoop(ctx context.Context, job string, interval time.Duration, run func(context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start
	s.runLocked(ctx, job, run)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runLocked(ctx, job, run)
		}
	}
}

// runLocked acquires the cross-process lock around one run of a job. A held
// lock means another process is already sweeping; this tick is skipped.
func (s *SyncScheduler) runLocked(ctx context.Context, job string, run func(context.Context)) {
	release, err := s.lock.Acquire(ctx, job)
	if err != nil {
		if errors.Is(err, ErrLockHeld) {
			s.logger.Debug("Skipping sync run, lock held elsewhere", zap.String("job", job))
			return
		}
		s.logger.Error("Failed to acquire run lock", zap.String("job", job), zap.Error(err))
		return
	}
	defer func() {
		if err := release(ctx); err != nil {
			s.logger.Warn("Failed to release run lock", zap.String("job", job), zap.Error(err))
		}
	}()

	run(ctx)
}

// runOrderImport executes one order import sweep when the flag allows it.
func (s *SyncScheduler) runOrderImport(ctx context.Context) {
	enabled, err := s.settings.GetBool(ctx, settings.KeyOrderImportEnabled, false)
	if err != nil {
		s.logger.Error("Failed to read order import flag", zap.Error(err))
		return
	}
	if !enabled {
		s.logger.Debug("Order import disabled, skipping sweep")
		return
	}

	result, err := s.importer.ImportOrders(ctx, orders.ImportOptions{Confirm: true})
	if err != nil {
		s.logger.Error("Scheduled order import failed", zap.Error(err))
		return
	}

	s.logger.Info("Scheduled order import finished",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
}

// runInventorySync executes one inventory reconciliation sweep when the flag
// allows it.
func (s *SyncScheduler) runInventorySync(ctx context.Context) {
	enabled, err := s.settings.GetBool(ctx, settings.KeyInventorySyncEnabled, false)
	if err != nil {
		s.logger.Error("Failed to read inventory sync flag", zap.Error(err))
		return
	}
	if !enabled {
		s.logger.Debug("Inventory sync disabled, skipping sweep")
		return
	}

	result, err := s.reconciler.ReconcileAllActive(ctx, listings.ReconcileOptions{})
	if err != nil {
		s.logger.Error("Scheduled inventory reconciliation failed", zap.Error(err))
		return
	}

	s.logger.Info("Scheduled inventory reconciliation finished",
		zap.Int("processed", result.Processed),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
}
