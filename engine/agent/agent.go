package agent

import (
	"errors"
	"math/rand"

	"github.com/quantumnonsense/suddendice/engine"
)

// ErrRulesNotConfigured means an Agent was constructed without a claim-rule
// capability. This is a wiring bug, not a game condition; callers should
// treat it as fatal.
var ErrRulesNotConfigured = errors.New("agent: claim rules not configured")

// Rules is the claim-algebra capability the agent consumes. engine.Algebra
// implements it; tests may substitute their own.
type Rules interface {
	Compare(a, b engine.Claim) int
	NextHigher(prev engine.Claim) (engine.Claim, bool)
	Categorize(c engine.Claim) engine.Category
	ClaimMatchesRoll(claim, roll engine.Claim) bool
}

// DecisionKind is the agent's chosen move.
type DecisionKind uint8

const (
	Challenge DecisionKind = iota
	Raise
)

// Decision is the agent's move for one turn. Claim is set only for Raise.
type Decision struct {
	Kind  DecisionKind
	Claim engine.Claim
}

// lastContext remembers the exact bandit context behind the most recent
// bandit-arbitrated decision, so the round outcome can reward it.
type lastContext struct {
	opponentID string
	action     Action
	x          [BanditDim]float64
}

// Agent is a self-contained adaptive opponent. It owns its profile map,
// bandit state and randomness; nothing is shared between Agent instances,
// so hosting one per match/session gives the isolation the engine requires.
// An Agent is not safe for concurrent use.
type Agent struct {
	rules    Rules
	profiles map[string]*Profile
	bandit   *LinUCB
	rng      *rand.Rand
	lastCtx  *lastContext

	// Policy tunables. Absolute values are implementation constants; only
	// their qualitative ordering is load-bearing.
	riskBias  float64 // EV haircut applied before committing to a challenge
	truthBias float64 // extra weight on truthful raises
}

// New constructs an agent around the given claim rules and RNG seed.
func New(rules Rules, seed int64) (*Agent, error) {
	if rules == nil {
		return nil, ErrRulesNotConfigured
	}
	return &Agent{
		rules:     rules,
		profiles:  make(map[string]*Profile),
		bandit:    NewLinUCB(),
		rng:       rand.New(rand.NewSource(seed)),
		riskBias:  0.05,
		truthBias: 0.15,
	}, nil
}

// profile returns the opponent's profile, creating it on first contact.
func (a *Agent) profile(opponentID string) *Profile {
	p, ok := a.profiles[opponentID]
	if !ok {
		p = newProfile()
		a.profiles[opponentID] = p
	}
	return p
}

// ObserveShowdown records a revealed claim: whether it was a bluff, and the
// claim category for the overuse counters. Call it whenever a claim is
// shown true or false, regardless of who challenged.
func (a *Agent) ObserveShowdown(opponentID string, claimed, actualRoll engine.Claim) {
	cat := a.rules.Categorize(claimed)
	wasBluff := !a.rules.ClaimMatchesRoll(claimed, actualRoll)
	p := a.profile(opponentID)
	p.bluff(cat).Update(wasBluff)
	p.noteClaim(cat)
}

// ObserveChallengeOutcome records whether the opponent challenged one of our
// raises. prevClaim/prevRoll identify the raise for callers that log them;
// only the challenge bit feeds the tracker.
func (a *Agent) ObserveChallengeOutcome(opponentID string, prevClaim, prevRoll engine.Claim, didChallenge bool) {
	_ = prevClaim
	_ = prevRoll
	a.profile(opponentID).ChallengeRate.Update(didChallenge)
}

// ObserveRaiseMagnitude records the step size of an opponent raise: success
// means a small raise (at most one rank step).
func (a *Agent) ObserveRaiseMagnitude(opponentID string, prevClaim, newClaim engine.Claim) {
	p := a.profile(opponentID)
	small := a.stepDistance(prevClaim, newClaim) <= 1
	p.SmallRaisePref.Update(small)
	p.noteClaim(a.rules.Categorize(newClaim))
}

// ObserveRoundOutcome closes the learning loop: the context that produced
// the last bandit-arbitrated decision is rewarded ±1. A no-op when the last
// decision bypassed the bandit.
func (a *Agent) ObserveRoundOutcome(won bool) {
	if a.lastCtx == nil {
		return
	}
	reward := -1.0
	if won {
		reward = 1.0
	}
	a.bandit.Update(a.lastCtx.x, reward)
	a.lastCtx = nil
}

// ResetLearning discards all profiles and bandit weight.
func (a *Agent) ResetLearning() {
	a.profiles = make(map[string]*Profile)
	a.bandit.Reset()
	a.lastCtx = nil
}

// stepDistance counts rank steps from a up to b, 0 when b does not outrank a.
// The walk is bounded by the ladder length.
func (a *Agent) stepDistance(from, to engine.Claim) int {
	if a.rules.Compare(from, to) >= 0 {
		return 0
	}
	steps, cur := 0, from
	for steps < engine.NumClaims && a.rules.Compare(cur, to) < 0 {
		next, ok := a.rules.NextHigher(cur)
		if !ok {
			break
		}
		cur = next
		steps++
	}
	return steps
}
