package agent

import "github.com/quantumnonsense/suddendice/engine"

// Feature vector layout. Order is fixed: persisted bandit state is only
// meaningful against this exact encoding.
const (
	featBias          = 0
	featClaimStrength = 1  // ladder rank scaled to [0,1]
	featRound         = 2  // round index / 12, capped
	featCatMexican    = 3  // one-hot category
	featCatDouble     = 4
	featCatNormal     = 5
	featCatSpecial    = 6
	featBluffMean     = 7  // believed bluff mean for the claim's category
	featChallengeMean = 8  // opponent's believed challenge rate
	featTruthful      = 9  // 1 when a truthful raise is available
	featDistToTruth   = 10 // rank steps to our truthful claim / 6, capped
	featAction        = 11 // 0 = challenge context, 1 = raise context
)

const (
	maxRoundFeature = 12
	maxDistFeature  = 6
)

// buildContext encodes one candidate action as a bandit context vector.
func buildContext(
	claim engine.Claim,
	roundIndex int,
	cat engine.Category,
	bluffMean, challengeMean float64,
	truthfulAvailable bool,
	distToTruth int,
	action Action,
) [BanditDim]float64 {
	var x [BanditDim]float64
	x[featBias] = 1

	if idx := engine.LadderIndex(claim); idx >= 0 {
		x[featClaimStrength] = float64(idx) / float64(engine.NumClaims-1)
	}

	r := float64(roundIndex) / maxRoundFeature
	if r > 1 {
		r = 1
	}
	x[featRound] = r

	switch cat {
	case engine.CategoryMexican:
		x[featCatMexican] = 1
	case engine.CategoryDouble:
		x[featCatDouble] = 1
	case engine.CategorySpecial:
		x[featCatSpecial] = 1
	default:
		x[featCatNormal] = 1
	}

	x[featBluffMean] = bluffMean
	x[featChallengeMean] = challengeMean

	if truthfulAvailable {
		x[featTruthful] = 1
	}

	d := float64(distToTruth) / maxDistFeature
	if d > 1 {
		d = 1
	}
	x[featDistToTruth] = d

	if action == ActionRaise {
		x[featAction] = 1
	}
	return x
}
