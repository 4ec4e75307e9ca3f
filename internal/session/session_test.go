package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumnonsense/suddendice/engine"
	"github.com/quantumnonsense/suddendice/engine/agent"
	"github.com/quantumnonsense/suddendice/internal/store"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestManager(st store.StateStore, an store.Analytics) *Manager {
	return NewManager(st, an, quietLogger(), engine.DefaultRules(), 42)
}

func TestCreateAndGet(t *testing.T) {
	m := newTestManager(store.NewMemoryStore(), nil)
	s, err := m.Create(context.Background(), "alice")
	require.NoError(t, err)

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	m.Remove(s.ID)
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
}

// Sessions must not share learning state: observations in one match leave
// another match's agent untouched.
func TestSessionIsolation(t *testing.T) {
	m := newTestManager(nil, nil)
	ctx := context.Background()

	s1, err := m.Create(ctx, "alice")
	require.NoError(t, err)
	s2, err := m.Create(ctx, "alice")
	require.NoError(t, err)

	// A bluffed Mexican showdown in s1 only.
	_, err = s1.ApplyClaim(engine.SideB, engine.ClaimMexican, 53)
	require.NoError(t, err)
	res := s1.ResolveChallenge(engine.SideA, 53)
	assert.Equal(t, engine.ChallengerWins, res.Outcome)

	blob1, err := s1.Snapshot()
	require.NoError(t, err)
	blob2, err := s2.Snapshot()
	require.NoError(t, err)
	assert.NotEqual(t, blob1, blob2, "s1 learned, s2 must not have")
}

func TestDecideUsesRoundState(t *testing.T) {
	m := newTestManager(nil, nil)
	s, err := m.Create(context.Background(), "alice")
	require.NoError(t, err)

	// Opponent opens with a Mexican; the fresh agent must challenge.
	_, err = s.ApplyClaim(engine.SideB, engine.ClaimMexican, engine.ClaimMexican)
	require.NoError(t, err)

	d, err := s.Decide(53)
	require.NoError(t, err)
	assert.Equal(t, agent.Challenge, d.Kind)
}

func TestChallengeScoring(t *testing.T) {
	m := newTestManager(nil, nil)
	s, err := m.Create(context.Background(), "alice")
	require.NoError(t, err)

	// Opponent bluffs a 64 (rolled 53); the engine challenges and wins.
	_, err = s.ApplyClaim(engine.SideB, 64, 53)
	require.NoError(t, err)
	res := s.ResolveChallenge(engine.SideA, 53)
	assert.Equal(t, engine.ChallengerWins, res.Outcome)
	assert.EqualValues(t, 1, res.Penalty)

	match := s.Match()
	assert.EqualValues(t, 6, match.Scores[engine.SideA])
	assert.EqualValues(t, 5, match.Scores[engine.SideB])
	assert.EqualValues(t, 1, match.RoundIndex)
	assert.Equal(t, engine.NoClaim, match.Round.LastClaim)
}

func TestAutoLossAppliesPenalty(t *testing.T) {
	m := newTestManager(nil, store.NewMemoryAnalytics())
	s, err := m.Create(context.Background(), "alice")
	require.NoError(t, err)

	_, err = s.ApplyClaim(engine.SideA, engine.ClaimMexican, engine.ClaimMexican)
	require.NoError(t, err)

	// Opponent answers the lockdown with a plain claim: 2-point forfeit.
	res, err := s.ApplyClaim(engine.SideB, 66, 66)
	require.NoError(t, err)
	require.Equal(t, engine.ApplyAutoLoss, res.Outcome)

	match := s.Match()
	assert.EqualValues(t, 4, match.Scores[engine.SideB])
	assert.EqualValues(t, 6, match.Scores[engine.SideA])
}

func TestIllegalClaimSurfaced(t *testing.T) {
	m := newTestManager(nil, nil)
	s, err := m.Create(context.Background(), "alice")
	require.NoError(t, err)

	_, err = s.ApplyClaim(engine.SideA, 64, 64)
	require.NoError(t, err)
	_, err = s.ApplyClaim(engine.SideB, 53, 53)
	require.ErrorIs(t, err, engine.ErrIllegalClaim)

	// The standing claim is untouched.
	assert.EqualValues(t, 64, s.Match().Round.LastClaim)
}

// Learning state persists across sessions through the store.
func TestPersistenceAcrossSessions(t *testing.T) {
	st := store.NewMemoryStore()
	m := newTestManager(st, nil)
	ctx := context.Background()

	s1, err := m.Create(ctx, "alice")
	require.NoError(t, err)
	_, err = s1.ApplyClaim(engine.SideB, engine.ClaimMexican, 53)
	require.NoError(t, err)
	s1.ResolveChallenge(engine.SideA, 53)

	// The save is asynchronous; wait for it to land.
	require.Eventually(t, func() bool {
		_, ok, err := st.Load(ctx)
		return err == nil && ok
	}, 2*time.Second, 10*time.Millisecond)

	s2, err := m.Create(ctx, "alice")
	require.NoError(t, err)
	blob1, err := s1.Snapshot()
	require.NoError(t, err)
	blob2, err := s2.Snapshot()
	require.NoError(t, err)
	assert.JSONEq(t, string(blob1), string(blob2), "new session restores persisted learning")
}

// Store failures never reach gameplay.
type failingStore struct{}

func (failingStore) Load(ctx context.Context) ([]byte, bool, error) {
	return nil, false, context.DeadlineExceeded
}
func (failingStore) Save(ctx context.Context, blob []byte) error { return context.DeadlineExceeded }
func (failingStore) Close() error                                { return nil }

func TestStoreFailuresSwallowed(t *testing.T) {
	m := newTestManager(failingStore{}, nil)
	s, err := m.Create(context.Background(), "alice")
	require.NoError(t, err, "load failure must not block session creation")

	_, err = s.ApplyClaim(engine.SideB, 64, 53)
	require.NoError(t, err)
	res := s.ResolveChallenge(engine.SideA, 53)
	assert.Equal(t, engine.ChallengerWins, res.Outcome, "save failure must not affect scoring")
}

func TestAnalyticsCounters(t *testing.T) {
	an := store.NewMemoryAnalytics()
	m := newTestManager(nil, an)
	ctx := context.Background()
	s, err := m.Create(ctx, "alice")
	require.NoError(t, err)

	_, err = s.ApplyClaim(engine.SideB, 64, 53)
	require.NoError(t, err)
	s.ResolveChallenge(engine.SideA, 53)

	rounds, err := an.Get(ctx, "rounds")
	require.NoError(t, err)
	assert.EqualValues(t, 1, rounds)
}
