package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumnonsense/suddendice/engine"
)

func newTestAgent(t *testing.T, seed int64) *Agent {
	t.Helper()
	a, err := New(engine.Algebra{}, seed)
	require.NoError(t, err)
	return a
}

func TestNewRequiresRules(t *testing.T) {
	_, err := New(nil, 1)
	require.ErrorIs(t, err, ErrRulesNotConfigured)
}

// A fresh agent must challenge a Mexican claim straight from the prior:
// believed bluff mean 1/5 = 0.2 already clears the 0.05 threshold, and with
// a 53 in hand there is no legal truthful raise under lockdown.
func TestFreshAgentChallengesMexican(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		a := newTestAgent(t, seed)
		d, err := a.Decide("opp", engine.ClaimMexican, 53, 0, engine.ClaimMexican)
		require.NoError(t, err)
		assert.Equal(t, Challenge, d.Kind, "seed %d", seed)
	}
}

// Once the opponent has shown many truthful Mexicans, the believed bluff
// mean sinks below even the boosted threshold and the agent reflects
// instead of challenging.
func TestTrustedMexicanIsReflected(t *testing.T) {
	a := newTestAgent(t, 3)
	for i := 0; i < 60; i++ {
		a.ObserveShowdown("opp", engine.ClaimMexican, engine.ClaimMexican)
	}
	d, err := a.Decide("opp", engine.ClaimMexican, 53, 5, engine.ClaimMexican)
	require.NoError(t, err)
	require.Equal(t, Raise, d.Kind)
	assert.Equal(t, engine.ClaimReverse, d.Claim, "only a reflect keeps the round alive under lockdown")
}

func TestOpeningWeakNormalJumpsAboveReference(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		a := newTestAgent(t, seed)
		d, err := a.Decide("opp", engine.NoClaim, 42, 0, engine.NoClaim)
		require.NoError(t, err)
		require.Equal(t, Raise, d.Kind)
		// Two pressure ranks above 32, skipping the social: 42 then 43.
		assert.Equal(t, engine.Claim(43), d.Claim)
	}
}

func TestOpeningStrongRollClaimsItOrOneAbove(t *testing.T) {
	for seed := int64(0); seed < 40; seed++ {
		a := newTestAgent(t, seed)
		d, err := a.Decide("opp", engine.NoClaim, 55, 0, engine.NoClaim)
		require.NoError(t, err)
		require.Equal(t, Raise, d.Kind)
		if d.Claim != 55 && d.Claim != 66 {
			t.Fatalf("seed %d: opening %d, want 55 or its pressure step 66", seed, d.Claim)
		}
	}
}

// Easily beatable low claims are never challenged when a truthful raise is
// in hand.
func TestLowClaimNeverChallenged(t *testing.T) {
	for seed := int64(0); seed < 60; seed++ {
		a := newTestAgent(t, seed)
		d, err := a.Decide("opp", 32, 66, 1, 32)
		require.NoError(t, err)
		assert.Equal(t, Raise, d.Kind, "seed %d", seed)
		assert.True(t, engine.IsLegalRaise(32, d.Claim), "seed %d raised %d", seed, d.Claim)
	}
}

// Ambiguous claims go through the bandit; whatever it picks, the decision
// context must be stored so the round outcome can reward it.
func TestAmbiguousClaimFeedsBandit(t *testing.T) {
	a := newTestAgent(t, 11)
	// 53 is a mid pair and the 43 in hand cannot beat it: no truth gate,
	// no low-claim shortcut, no direct threshold.
	d, err := a.Decide("opp", 53, 43, 2, 53)
	require.NoError(t, err)
	require.NotNil(t, a.lastCtx, "bandit-arbitrated decision must store its context")
	assert.Equal(t, "opp", a.lastCtx.opponentID)

	before := a.bandit.B
	a.ObserveRoundOutcome(true)
	assert.NotEqual(t, before, a.bandit.B, "round outcome must update the bandit")
	assert.Nil(t, a.lastCtx)

	// Without a pending context the outcome is a no-op.
	before = a.bandit.B
	a.ObserveRoundOutcome(false)
	assert.Equal(t, before, a.bandit.B)
	_ = d
}

func TestDecisionsAreDeterministicPerSeed(t *testing.T) {
	run := func() []Decision {
		a := newTestAgent(t, 99)
		var out []Decision
		for i := 0; i < 50; i++ {
			d, err := a.Decide("opp", 53, 43, i, 53)
			require.NoError(t, err)
			out = append(out, d)
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestObserveShowdownUpdatesCategoryTracker(t *testing.T) {
	a := newTestAgent(t, 1)
	p := a.profile("opp")
	before := p.bluff(engine.CategoryDouble).Mean()

	a.ObserveShowdown("opp", 55, 43) // bluffed double
	assert.Greater(t, p.bluff(engine.CategoryDouble).Mean(), before)

	a.ObserveShowdown("opp", 55, 55) // truthful double
	assert.Equal(t, 2, p.TotalSeen)
	assert.Zero(t, p.MexicanSeen)
}

func TestMexicanOveruseLowersThreshold(t *testing.T) {
	a := newTestAgent(t, 1)
	p := a.profile("opp")

	thrBase, direct := a.challengeThreshold(engine.ClaimMexican, engine.ClaimMexican, p, false)
	require.True(t, direct)
	assert.InDelta(t, 0.05, thrBase, 1e-12)

	// Push overuse past the hard ratio.
	p.MexicanSeen, p.TotalSeen = 2, 10
	thrHot, _ := a.challengeThreshold(engine.ClaimMexican, engine.ClaimMexican, p, false)
	assert.Less(t, thrHot, thrBase)
	assert.GreaterOrEqual(t, thrHot, 0.03, "floored at 0.03")
}

func TestDoubleThresholdScalesWithHeight(t *testing.T) {
	a := newTestAgent(t, 1)
	p := a.profile("opp")

	thr66, direct := a.challengeThreshold(66, 65, p, false)
	require.True(t, direct)
	thr11, _ := a.challengeThreshold(11, 65, p, false)

	assert.InDelta(t, 0.25, thr66, 1e-9)
	assert.InDelta(t, 0.40, thr11, 1e-9)
	assert.Less(t, thr66, thr11, "high doubles are challenged sooner")
}

func TestReverseThresholds(t *testing.T) {
	a := newTestAgent(t, 1)
	p := a.profile("opp")

	afterMex, direct := a.challengeThreshold(engine.ClaimReverse, engine.ClaimMexican, p, false)
	require.True(t, direct)
	assert.InDelta(t, 0.05, afterMex, 1e-12)

	after66, _ := a.challengeThreshold(engine.ClaimReverse, 66, p, true)
	assert.InDelta(t, 0.05, after66, 1e-12)

	escape, _ := a.challengeThreshold(engine.ClaimReverse, 54, p, true)
	trapped, _ := a.challengeThreshold(engine.ClaimReverse, 54, p, false)
	assert.Greater(t, escape, trapped, "a truthful way out raises the bar for challenging")
}

func TestObserveRaiseMagnitude(t *testing.T) {
	a := newTestAgent(t, 1)
	p := a.profile("opp")
	before := p.SmallRaisePref.Mean()

	a.ObserveRaiseMagnitude("opp", 53, 54) // one step: small
	assert.Greater(t, p.SmallRaisePref.Mean(), before)

	mid := p.SmallRaisePref.Mean()
	a.ObserveRaiseMagnitude("opp", 31, 66) // huge jump
	assert.Less(t, p.SmallRaisePref.Mean(), mid)
}

func TestObserveChallengeOutcome(t *testing.T) {
	a := newTestAgent(t, 1)
	p := a.profile("opp")
	before := p.ChallengeRate.Mean()

	a.ObserveChallengeOutcome("opp", 54, 53, true)
	assert.Greater(t, p.ChallengeRate.Mean(), before)
}

// Pressure raises grow with the opponent's observed challenge rate, and
// never step onto the social.
func TestPressureClaimNeverSocial(t *testing.T) {
	a := newTestAgent(t, 5)
	p := a.profile("opp")
	for i := 0; i < 40; i++ {
		p.ChallengeRate.Update(true)
	}
	for i := 0; i < 100; i++ {
		c := a.pressureClaim(32, 32, p)
		require.NotEqual(t, engine.ClaimSocial, c)
		require.NotEqual(t, engine.ClaimReverse, c)
		require.True(t, engine.IsLegalRaise(32, c))
	}
}

func TestResetLearning(t *testing.T) {
	a := newTestAgent(t, 1)
	a.ObserveShowdown("opp", 55, 43)
	a.bandit.Update([BanditDim]float64{1}, 1)

	a.ResetLearning()
	assert.Empty(t, a.profiles)
	assert.Zero(t, a.bandit.B[0])
}
