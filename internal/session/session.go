// Package session hosts one adaptive opponent per match. Each session owns
// an isolated agent and match state; nothing is shared across concurrent
// matches in the same process. Persistence and analytics are best-effort:
// their failures are logged and swallowed, never surfaced to gameplay.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/quantumnonsense/suddendice/engine"
	"github.com/quantumnonsense/suddendice/engine/agent"
	"github.com/quantumnonsense/suddendice/internal/store"
)

const persistTimeout = 5 * time.Second

// Analytics counter keys.
const (
	statRounds     = "rounds"
	statChallenges = "challenges"
	statRaises     = "raises"
	statAutoLosses = "auto_losses"
)

// Session binds one match to one agent. SideA is the engine's side, SideB
// the opponent's. All methods serialize on the session mutex: exactly one
// decision is in flight at a time.
type Session struct {
	ID         uuid.UUID
	OpponentID string

	mu    sync.Mutex
	agent *agent.Agent
	match engine.Match

	mgr *Manager
	log *logrus.Entry
}

// Manager creates and tracks sessions and owns the shared collaborators.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	store     store.StateStore
	analytics store.Analytics
	log       *logrus.Logger
	rules     engine.Rules
	seed      int64
}

// NewManager wires a session manager. st and an may be nil for hosts that
// opt out of persistence or analytics; logger must not be nil.
func NewManager(st store.StateStore, an store.Analytics, logger *logrus.Logger, rules engine.Rules, seed int64) *Manager {
	return &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		store:     st,
		analytics: an,
		log:       logger,
		rules:     rules,
		seed:      seed,
	}
}

// Create starts a session against the named opponent. Previously persisted
// learning state is restored best-effort.
func (m *Manager) Create(ctx context.Context, opponentID string) (*Session, error) {
	seed := m.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	a, err := agent.New(engine.Algebra{}, seed)
	if err != nil {
		return nil, err
	}

	if m.store != nil {
		if blob, ok, err := m.store.Load(ctx); err != nil {
			m.log.WithError(err).Debug("session: load learning state")
		} else if ok {
			if err := a.Restore(blob); err != nil {
				m.log.WithError(err).Warn("session: restore learning state, starting fresh")
			}
		}
	}

	s := &Session{
		ID:         uuid.New(),
		OpponentID: opponentID,
		agent:      a,
		match:      engine.NewMatch(m.rules),
		mgr:        m,
	}
	s.log = m.log.WithFields(logrus.Fields{"session": s.ID, "opponent": opponentID})

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	s.log.Info("session created")
	return s, nil
}

// Get returns a live session by id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove drops a session from the manager.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// persistAsync saves the agent snapshot without blocking gameplay.
// Failures are absorbed: learning continues in memory.
func (s *Session) persistAsync() {
	if s.mgr.store == nil {
		return
	}
	blob, err := s.agent.Snapshot()
	if err != nil {
		s.log.WithError(err).Debug("session: snapshot")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.mgr.store.Save(ctx, blob); err != nil {
			s.log.WithError(err).Debug("session: save learning state")
		}
	}()
}

// bump increments an analytics counter, best-effort.
func (s *Session) bump(key string) {
	if s.mgr.analytics == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if _, err := s.mgr.analytics.Incr(ctx, key); err != nil {
		s.log.WithError(err).Debug("session: analytics incr")
	}
}

// Match returns a copy of the current match state.
func (s *Session) Match() engine.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match
}

// Decide asks the agent for its move given its own roll. The standing claim
// and baseline come from the session's round state.
func (s *Session) Decide(ownRoll engine.Claim) (agent.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.agent.Decide(
		s.OpponentID,
		s.match.Round.Baseline,
		ownRoll,
		int(s.match.RoundIndex),
		s.match.Round.LastClaim,
	)
	if err != nil {
		return agent.Decision{}, err
	}
	switch d.Kind {
	case agent.Challenge:
		s.bump(statChallenges)
	case agent.Raise:
		s.bump(statRaises)
	}
	return d, nil
}

// ApplyClaim feeds a claim by side into the round. Auto-loss penalties
// (Mexican lockdown) are applied to the claimer immediately. When the claim
// is an opponent raise over a standing claim, the raise magnitude feeds the
// belief model.
func (s *Session) ApplyClaim(side engine.Side, claim, actualRoll engine.Claim) (engine.ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.match.Round.LastClaim
	res, err := s.match.Round.ApplyClaim(claim, actualRoll)
	if err != nil {
		return engine.ApplyResult{}, err
	}

	if res.Outcome == engine.ApplyAutoLoss {
		s.match.ApplyPenalty(side, res.Penalty)
		s.match.RoundIndex++
		s.bump(statAutoLosses)
		s.bump(statRounds)
		s.persistAsync()
		return res, nil
	}

	if side != engine.SideA && prev != engine.NoClaim && res.Outcome == engine.ApplyAccepted {
		s.agent.ObserveRaiseMagnitude(s.OpponentID, prev, claim)
		s.persistAsync()
	}
	return res, nil
}

// ResolveChallenge settles a challenge by challenger against the standing
// claim and closes the learning loop: the showdown feeds the belief model,
// and when the challenged claimer was the opponent their challenge response
// is recorded too.
func (s *Session) ResolveChallenge(challenger engine.Side, claimerRoll engine.Claim) engine.ChallengeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	claim := s.match.Round.LastClaim
	res := s.match.ResolveChallengeAgainst(challenger, claimerRoll)

	if challenger == engine.SideA {
		// The opponent's claim was shown.
		s.agent.ObserveShowdown(s.OpponentID, claim, claimerRoll)
	} else {
		// The opponent challenged our raise.
		s.agent.ObserveChallengeOutcome(s.OpponentID, claim, claimerRoll, true)
	}
	engineWon := (challenger == engine.SideA) == (res.Outcome == engine.ChallengerWins)
	s.agent.ObserveRoundOutcome(engineWon)

	s.bump(statRounds)
	s.persistAsync()
	return res
}

// ObserveUnchallengedRaise records that the opponent let one of our raises
// stand.
func (s *Session) ObserveUnchallengedRaise(ourClaim, ourRoll engine.Claim) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agent.ObserveChallengeOutcome(s.OpponentID, ourClaim, ourRoll, false)
	s.persistAsync()
}

// Snapshot exposes the agent's learning state.
func (s *Session) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent.Snapshot()
}

// Restore replaces the agent's learning state.
func (s *Session) Restore(blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent.Restore(blob)
}
