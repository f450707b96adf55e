package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/waypoint/internal/model"
	"github.com/roach88/waypoint/internal/store"
	"github.com/roach88/waypoint/internal/testutil"
)

// testEnv bundles an engine with the collaborators tests inspect.
type testEnv struct {
	engine *Engine
	store  *store.Store
	clock  *testutil.FixedClock
}

func createTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestEnv creates an engine over the fixture catalog and a fresh SQLite
// store, with badges seeded and deterministic clock, IDs and codes.
func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	s := createTestStore(t)
	return newTestEnvWithStore(t, s, s, opts...)
}

func newTestEnvWithStore(t *testing.T, raw *store.Store, s Store, opts ...Option) *testEnv {
	t.Helper()
	clock := testutil.NewFixedClock(testutil.DefaultStart)
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(clock),
		WithIDGenerator(testutil.NewSequenceIDs("id")),
		WithCodeGenerator(testutil.NewSequenceCodes()),
	}
	e := New(testutil.Catalog(t), s, append(base, opts...)...)
	require.NoError(t, e.SeedBadges(context.Background()))
	return &testEnv{engine: e, store: raw, clock: clock}
}

func (env *testEnv) complete(t *testing.T, user, module string, score *int) CompletionResult {
	t.Helper()
	res, err := env.engine.CompleteModule(context.Background(), user, module, score)
	require.NoError(t, err)
	return res
}

// completeSolar completes the whole solar track in order.
func (env *testEnv) completeSolar(t *testing.T, user string) CompletionResult {
	t.Helper()
	env.complete(t, user, "sol-1", nil)
	env.complete(t, user, "sol-2", nil)
	return env.complete(t, user, "sol-3", model.IntPtr(100))
}

func badgeIDs(badges []model.Badge) []string {
	ids := make([]string, len(badges))
	for i, b := range badges {
		ids[i] = b.ID
	}
	return ids
}

// staleFindStore reports no certificate on the first FindCertificate call,
// as if another request had inserted one in between.
type staleFindStore struct {
	Store
	calls atomic.Int32
}

func (s *staleFindStore) FindCertificate(ctx context.Context, userID, trackID string) (*model.Certificate, error) {
	if s.calls.Add(1) == 1 {
		return nil, nil
	}
	return s.Store.FindCertificate(ctx, userID, trackID)
}

// staleBadgeStore reports no award on FindUserBadge, forcing the insert path.
type staleBadgeStore struct {
	Store
}

func (s *staleBadgeStore) FindUserBadge(context.Context, string, string) (*model.UserBadge, error) {
	return nil, nil
}

var errDiskFull = errors.New("disk full")

// failingStore fails every progress write.
type failingStore struct {
	Store
}

func (failingStore) UpdateProgress(context.Context, string, string, model.ProgressPatch) (model.ModuleProgress, error) {
	return model.ModuleProgress{}, errDiskFull
}

func (failingStore) GetOrCreateProgress(context.Context, string, string, time.Time) (model.ModuleProgress, error) {
	return model.ModuleProgress{}, errDiskFull
}

// countingCodeStore counts verification-code lookups.
type countingCodeStore struct {
	Store
	lookups atomic.Int32
}

func (s *countingCodeStore) FindCertificateByCode(ctx context.Context, code string) (*model.Certificate, error) {
	s.lookups.Add(1)
	return s.Store.FindCertificateByCode(ctx, code)
}

// stubCounters returns fixed external counts.
type stubCounters struct {
	webinars int
	streak   int
	err      error
}

func (c stubCounters) WebinarsAttended(context.Context, string) (int, error) { return c.webinars, c.err }
func (c stubCounters) LoginStreak(context.Context, string) (int, error)      { return c.streak, c.err }
