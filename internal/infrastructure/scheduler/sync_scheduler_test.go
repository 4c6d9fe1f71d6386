package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopbridge/backend/internal/application/listings"
	"github.com/shopbridge/backend/internal/application/orders"
	"github.com/shopbridge/backend/internal/domain/settings"
)

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

type fakeImporter struct {
	mu    sync.Mutex
	calls int
	opts  []orders.ImportOptions
}

func (f *fakeImporter) ImportOrders(_ context.Context, opts orders.ImportOptions) (*orders.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.opts = append(f.opts, opts)
	return &orders.ImportResult{}, nil
}

func (f *fakeImporter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeReconciler struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeReconciler) ReconcileAllActive(context.Context, listings.ReconcileOptions) (*listings.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &listings.BatchResult{}, nil
}

func (f *fakeReconciler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeSettings is an in-memory settings.Repository.
type fakeSettings struct {
	mu    sync.Mutex
	flags map[string]bool
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{flags: make(map[string]bool)}
}

func (f *fakeSettings) GetBool(_ context.Context, key string, fallback bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.flags[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (f *fakeSettings) SetBool(_ context.Context, key string, value bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[key] = value
	return nil
}

func (f *fakeSettings) GetAutoPublish(context.Context, string) (*settings.AutoPublishSetting, error) {
	return nil, settings.ErrNotFound
}

func (f *fakeSettings) SetAutoPublish(context.Context, *settings.AutoPublishSetting) error {
	return nil
}

func (f *fakeSettings) ListAutoPublish(context.Context) ([]settings.AutoPublishSetting, error) {
	return nil, nil
}

var _ settings.Repository = (*fakeSettings)(nil)

// fakeLocker grants or denies every acquire.
type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	acquires int
}

func (f *fakeLocker) Acquire(context.Context, string) (func(context.Context) error, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquires++
	if f.held {
		return nil, ErrLockHeld
	}
	return func(context.Context) error { return nil }, nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func newTestScheduler(imp *fakeImporter, rec *fakeReconciler, st *fakeSettings, lock Locker) *SyncScheduler {
	cfg := Config{OrderInterval: time.Hour, InventoryInterval: time.Hour}
	return NewSyncScheduler(cfg, imp, rec, st, lock, zap.NewNop())
}

func TestSyncScheduler_RunsEnabledJobsOnStart(t *testing.T) {
	imp := &fakeImporter{}
	rec := &fakeReconciler{}
	st := newFakeSettings()
	require.NoError(t, st.SetBool(context.Background(), settings.KeyOrderImportEnabled, true))
	require.NoError(t, st.SetBool(context.Background(), settings.KeyInventorySyncEnabled, true))

	s := newTestScheduler(imp, rec, st, &fakeLocker{})
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return imp.callCount() == 1 && rec.callCount() == 1
	}, time.Second, 10*time.Millisecond)

	// The scheduled sweep runs confirmed, never dry
	assert.True(t, imp.opts[0].Confirm)
	assert.False(t, imp.opts[0].DryRun)
}

func TestSyncScheduler_DisabledFlagSkipsJob(t *testing.T) {
	imp := &fakeImporter{}
	rec := &fakeReconciler{}
	st := newFakeSettings()
	require.NoError(t, st.SetBool(context.Background(), settings.KeyInventorySyncEnabled, true))
	// order import flag left unset, defaults to disabled

	s := newTestScheduler(imp, rec, st, &fakeLocker{})
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return rec.callCount() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, imp.callCount())
}

func TestSyncScheduler_HeldLockSkipsRun(t *testing.T) {
	imp := &fakeImporter{}
	rec := &fakeReconciler{}
	st := newFakeSettings()
	require.NoError(t, st.SetBool(context.Background(), settings.KeyOrderImportEnabled, true))

	lock := &fakeLocker{held: true}
	s := newTestScheduler(imp, rec, st, lock)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool {
		lock.mu.Lock()
		defer lock.mu.Unlock()
		return lock.acquires >= 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, imp.callCount())
	assert.Equal(t, 0, rec.callCount())
}

func TestSyncScheduler_StartIsIdempotent(t *testing.T) {
	imp := &fakeImporter{}
	rec := &fakeReconciler{}
	s := newTestScheduler(imp, rec, newFakeSettings(), &fakeLocker{})

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestSyncScheduler_StopWaitsForLoops(t *testing.T) {
	s := newTestScheduler(&fakeImporter{}, &fakeReconciler{}, newFakeSettings(), &fakeLocker{})
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
