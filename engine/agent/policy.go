package agent

import "github.com/quantumnonsense/suddendice/engine"

// Policy constants. Absolute values are tuned; the ordering is the contract:
// Mexicans are far more suspect than plain pairs, high doubles are harder to
// legitimately beat than low ones.
const (
	// Opening play.
	openingReference = engine.Claim(32) // weak-normal openings jump above this
	openingJumpSteps = 2
	leverageProb     = 0.35 // chance to overstate a decent opening by one rank

	// Truth preference. Base probabilities; truthBias is added on top.
	truthRaiseGateProb = 0.65 // raise truthfully instead of deciding at all
	truthOverBluffProb = 0.70 // once raising, prefer truth over pressure

	// Direct challenge thresholds.
	mexicanThreshold      = 0.05
	mexicanThresholdFloor = 0.03
	overuseHardRatio      = 0.08
	overuseSoftRatio      = 0.05
	overuseHardBoost      = 0.02
	overuseSoftBoost      = 0.01

	doubleThresholdLow  = 0.40 // lowest double (11): easy to beat, bluff less likely needed
	doubleThresholdHigh = 0.25 // highest double (66): hard to beat, challenge sooner

	highNormalThreshold = 0.45

	reverseAfterTopThreshold = 0.05 // reverse straight after a Mexican or 66
	reverseEscapeThreshold   = 0.50 // reverse with a truthful raise in hand
	reverseTrappedThreshold  = 0.35 // reverse with no truthful way out

	// Ambiguous-claim handling.
	challengeEVFloor = -0.10

	// Pressure raising.
	pressureStepOneProb = 0.50 // extra step vs frequent challengers
	pressureStepTwoProb = 0.25 // second extra step vs very frequent challengers
	challengerRateHigh  = 0.55
	challengerRateVery  = 0.65
)

// lowNormalCutoff is the ladder index below which a plain pair is considered
// easily beatable (anything under 52).
var lowNormalCutoff = engine.LadderIndex(engine.Claim(52))

// highNormalCutoff is the ladder index from which a plain pair counts as
// high stakes (61 and up).
var highNormalCutoff = engine.LadderIndex(engine.Claim(61))

// Decide chooses the agent's move for one turn.
//
// baseline is the claim that must actually be beaten (engine.NoClaim when
// the round is fresh); actualPrior is the literal last claim, which differs
// from baseline inside a reverse chain. ownRoll is the agent's canonical
// roll. The decision is synchronous and mutates only the stored bandit
// context.
func (a *Agent) Decide(opponentID string, baseline, ownRoll engine.Claim, roundIndex int, actualPrior engine.Claim) (Decision, error) {
	if a.rules == nil {
		return Decision{}, ErrRulesNotConfigured
	}

	if actualPrior == engine.NoClaim {
		return a.openingMove(ownRoll), nil
	}
	if baseline == engine.NoClaim {
		baseline = actualPrior
	}

	prof := a.profile(opponentID)
	truthful := a.bestTruthfulAbove(baseline, actualPrior, ownRoll)

	// Often just raise truthfully and keep the round moving.
	if truthful != engine.NoClaim && a.rng.Float64() < truthRaiseGateProb+a.truthBias {
		a.lastCtx = nil
		return Decision{Kind: Raise, Claim: truthful}, nil
	}

	cat := a.rules.Categorize(actualPrior)
	bluffMean := prof.bluff(cat).Mean()

	// High-stakes claims get a direct threshold rule.
	if thr, direct := a.challengeThreshold(actualPrior, baseline, prof, truthful != engine.NoClaim); direct {
		if bluffMean >= thr {
			a.lastCtx = nil
			return Decision{Kind: Challenge}, nil
		}
		return a.raiseDecision(baseline, actualPrior, truthful, prof, nil), nil
	}

	// Easily beatable low claims are never worth a challenge.
	if cat == engine.CategoryNormal && engine.LadderIndex(actualPrior) < lowNormalCutoff && truthful != engine.NoClaim {
		return a.raiseDecision(baseline, actualPrior, truthful, prof, nil), nil
	}

	// Ambiguous middle: let the bandit arbitrate.
	challengeMean := prof.ChallengeRate.Mean()
	dist := a.distanceFromTruth(baseline, ownRoll)
	ctxChallenge := buildContext(actualPrior, roundIndex, cat, bluffMean, challengeMean, truthful != engine.NoClaim, dist, ActionChallenge)
	ctxRaise := buildContext(actualPrior, roundIndex, cat, bluffMean, challengeMean, truthful != engine.NoClaim, dist, ActionRaise)

	choice, err := a.bandit.Choose(ctxChallenge, ctxRaise)
	if err != nil {
		// Singular A only follows from a corrupted restore; fall back to the
		// identity prior rather than abort the match.
		a.bandit.Reset()
		choice, err = a.bandit.Choose(ctxChallenge, ctxRaise)
		if err != nil {
			return Decision{}, err
		}
	}

	if choice == ActionChallenge {
		// Exploration noise alone must not trigger an unprofitable call.
		sample := prof.bluff(cat).Sample(a.rng)
		if 2*sample-1-a.riskBias >= challengeEVFloor {
			a.lastCtx = &lastContext{opponentID: opponentID, action: ActionChallenge, x: ctxChallenge}
			return Decision{Kind: Challenge}, nil
		}
	}

	return a.raiseDecision(baseline, actualPrior, truthful, prof, &lastContext{
		opponentID: opponentID,
		action:     ActionRaise,
		x:          ctxRaise,
	}), nil
}

// openingMove picks the round's first claim from the agent's own roll.
func (a *Agent) openingMove(ownRoll engine.Claim) Decision {
	a.lastCtx = nil
	opening := ownRoll
	if a.rules.Categorize(opening) == engine.CategoryNormal {
		// A weak truth earns nothing; open with pressure above the reference.
		opening = a.pressureJump(openingReference, openingJumpSteps)
	} else if a.rng.Float64() < leverageProb {
		if next, ok := a.nextPressure(opening); ok {
			opening = next
		}
	}
	return Decision{Kind: Raise, Claim: opening}
}

// raiseDecision picks the claim for a raise: truthful when possible and the
// dice land that way, a pressure bluff otherwise. ctx, when non-nil, is
// stored so the round outcome can reward the bandit.
func (a *Agent) raiseDecision(baseline, actualPrior, truthful engine.Claim, prof *Profile, ctx *lastContext) Decision {
	a.lastCtx = ctx
	if truthful != engine.NoClaim && a.rng.Float64() < truthOverBluffProb+a.truthBias {
		return Decision{Kind: Raise, Claim: truthful}
	}
	return Decision{Kind: Raise, Claim: a.pressureClaim(baseline, actualPrior, prof)}
}

// bestTruthfulAbove returns the agent's canonical roll when it legally beats
// the baseline, or NoClaim. Under Mexican lockdown only an always-claimable
// truth survives.
func (a *Agent) bestTruthfulAbove(baseline, actualPrior, ownRoll engine.Claim) engine.Claim {
	if actualPrior == engine.ClaimMexican && !engine.IsAlwaysClaimable(ownRoll) {
		return engine.NoClaim
	}
	if engine.IsAlwaysClaimable(ownRoll) || a.rules.Compare(ownRoll, baseline) > 0 {
		return ownRoll
	}
	return engine.NoClaim
}

// challengeThreshold returns the direct believed-bluff threshold for
// high-stakes claims. direct is false for the ambiguous middle, which the
// bandit handles instead.
func (a *Agent) challengeThreshold(prior, baseline engine.Claim, prof *Profile, truthfulAvailable bool) (thr float64, direct bool) {
	switch a.rules.Categorize(prior) {
	case engine.CategoryMexican:
		thr = mexicanThreshold
		switch ratio := prof.MexicanOveruse(); {
		case ratio > overuseHardRatio:
			thr -= overuseHardBoost
		case ratio >= overuseSoftRatio:
			thr -= overuseSoftBoost
		}
		if thr < mexicanThresholdFloor {
			thr = mexicanThresholdFloor
		}
		return thr, true

	case engine.CategoryDouble:
		// Scale from 0.40 at 11 to 0.25 at 66: high doubles are hard to
		// legitimately beat, so suspicion must be stronger before calling.
		face := float64(prior.High()) // 1..6
		step := (doubleThresholdLow - doubleThresholdHigh) / 5
		return doubleThresholdLow - step*(face-1), true

	case engine.CategorySpecial:
		if baseline == engine.ClaimMexican || baseline == engine.Claim(66) {
			return reverseAfterTopThreshold, true
		}
		if truthfulAvailable {
			return reverseEscapeThreshold, true
		}
		return reverseTrappedThreshold, true

	case engine.CategoryNormal:
		if engine.LadderIndex(prior) >= highNormalCutoff {
			return highNormalThreshold, true
		}
	}
	return 0, false
}

// pressureClaim builds a bluff raise over the baseline, stepping 1–3 ranks.
// Opponents who challenge a lot get bigger jumps: a bigger claim is more
// expensive for them to call wrong.
func (a *Agent) pressureClaim(baseline, actualPrior engine.Claim, prof *Profile) engine.Claim {
	// Under lockdown only a reflect keeps the round alive without a wager.
	if actualPrior == engine.ClaimMexican {
		return engine.ClaimReverse
	}

	steps := 1
	pChallenge := prof.ChallengeRate.Mean()
	r := a.rng.Float64()
	if pChallenge > challengerRateHigh && r < pressureStepOneProb {
		steps++
	}
	if pChallenge > challengerRateVery && r < pressureStepTwoProb {
		steps++
	}
	return a.pressureJump(baseline, steps)
}

// pressureJump walks `steps` pressure ranks above from, capping at the
// Mexican when the ladder runs out.
func (a *Agent) pressureJump(from engine.Claim, steps int) engine.Claim {
	claim := from
	for i := 0; i < steps; i++ {
		next, ok := a.nextPressure(claim)
		if !ok {
			return engine.ClaimMexican
		}
		claim = next
	}
	return claim
}

// nextPressure is NextHigher skipping the specials: 41 can never be bluffed
// and 31 is a reflect, not a raise.
func (a *Agent) nextPressure(c engine.Claim) (engine.Claim, bool) {
	cur := c
	for {
		next, ok := a.rules.NextHigher(cur)
		if !ok {
			return engine.NoClaim, false
		}
		if next != engine.ClaimReverse && next != engine.ClaimSocial {
			return next, true
		}
		cur = next
	}
}

// distanceFromTruth counts rank steps from the standing baseline up to the
// agent's truthful claim; 0 when the truth does not beat the baseline.
func (a *Agent) distanceFromTruth(baseline, ownRoll engine.Claim) int {
	if a.rules.Compare(ownRoll, baseline) <= 0 {
		return 0
	}
	return a.stepDistance(baseline, ownRoll)
}
