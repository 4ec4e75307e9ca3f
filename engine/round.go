package engine

import "errors"

// Sentinel errors for claim validation. Both are recoverable: the caller
// rejects the input and prompts again, and no round state is mutated.
var (
	// ErrIllegalClaim means the claim fails the raise legality check.
	ErrIllegalClaim = errors.New("engine: illegal claim")
	// ErrSocialMustBeTruthful means 41 was claimed without rolling it.
	ErrSocialMustBeTruthful = errors.New("engine: social claim must match roll")
)

// Round is the turn-local claim state. Baseline is the claim that must
// ultimately be matched or exceeded; it survives chains of reverses and only
// advances on a genuine tier-compared raise. ReverseVsMexican flags a reverse
// asserted directly after a Mexican, which doubles the bluff penalty.
type Round struct {
	LastClaim        Claim
	Baseline         Claim
	ReverseVsMexican bool
}

// Reset clears the round to its start-of-round state.
func (r *Round) Reset() { *r = Round{} }

// ApplyOutcome classifies the result of an accepted claim.
type ApplyOutcome uint8

const (
	// ApplyAccepted: the claim stands; play passes to the other side.
	ApplyAccepted ApplyOutcome = iota
	// ApplyAutoLoss: a plain claim was attempted under Mexican lockdown.
	// The claimer forfeits Penalty points without a challenge; round resets.
	ApplyAutoLoss
	// ApplySocialShow: a truthful 41 was shown. No score change; round resets.
	ApplySocialShow
)

// ApplyResult describes what an accepted claim did to the round.
type ApplyResult struct {
	Outcome ApplyOutcome
	Penalty int8 // nonzero only for ApplyAutoLoss
}

// ApplyClaim validates claim against the round and, on success, advances the
// round state. actualRoll is the claimer's canonical roll; it is consulted
// only for the Social truthfulness rule. On error no state is mutated.
func (r *Round) ApplyClaim(claim, actualRoll Claim) (ApplyResult, error) {
	if !claim.IsValid() {
		return ApplyResult{}, ErrIllegalClaim
	}

	// Mexican lockdown: answering a Mexican with anything outside {21,31,41}
	// is not a rejected input — it is an immediate 2-point forfeit.
	if r.LastClaim == ClaimMexican && !IsAlwaysClaimable(claim) {
		r.Reset()
		return ApplyResult{Outcome: ApplyAutoLoss, Penalty: 2}, nil
	}

	if claim == ClaimSocial {
		if actualRoll != ClaimSocial {
			return ApplyResult{}, ErrSocialMustBeTruthful
		}
		// A show, not a wager.
		r.Reset()
		return ApplyResult{Outcome: ApplySocialShow}, nil
	}

	baseline := r.Baseline
	if baseline == NoClaim {
		baseline = r.LastClaim
	}
	if baseline != NoClaim && !IsLegalRaise(baseline, claim) {
		return ApplyResult{}, ErrIllegalClaim
	}

	prev := r.LastClaim
	if claim == ClaimReverse {
		// A reverse never advances the baseline. The first reverse in a
		// chain pins the baseline to the claim it reflected.
		if r.Baseline == NoClaim {
			r.Baseline = prev
		}
		r.ReverseVsMexican = prev == ClaimMexican
		r.LastClaim = claim
		return ApplyResult{Outcome: ApplyAccepted}, nil
	}

	r.LastClaim = claim
	r.Baseline = claim
	r.ReverseVsMexican = false
	return ApplyResult{Outcome: ApplyAccepted}, nil
}

// ChallengeOutcome says where the challenge penalty lands.
//
// The original scoring code encoded this as a raw +1/-1 whose sign was
// inverted between call sites; the enum pins it: ChallengerWins means the
// claim was a bluff and the claimer pays, ChallengerLoses means the claim
// was truthful and the challenger pays.
type ChallengeOutcome uint8

const (
	ChallengerWins  ChallengeOutcome = iota // claim was a bluff; claimer pays
	ChallengerLoses                         // claim was truthful; challenger pays
)

// ChallengeResult is the resolution of a challenge: who pays and how much.
type ChallengeResult struct {
	Outcome ChallengeOutcome
	Penalty int8
}

// ResolveChallenge compares the standing claim against the claimer's actual
// roll. The penalty is 2 when the claim was a Mexican or a reverse asserted
// directly after one, else 1.
func ResolveChallenge(claim, actualRoll Claim, wasReverseVsMexican bool) ChallengeResult {
	penalty := int8(1)
	if claim == ClaimMexican || wasReverseVsMexican {
		penalty = 2
	}
	if !ClaimMatchesRoll(claim, actualRoll) {
		return ChallengeResult{Outcome: ChallengerWins, Penalty: penalty}
	}
	return ChallengeResult{Outcome: ChallengerLoses, Penalty: penalty}
}
