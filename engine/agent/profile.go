package agent

import "github.com/quantumnonsense/suddendice/engine"

// Profile models one adversary: believed bluff probability per claim
// category, believed rate of challenging our raises, preference for small
// raises, and a running Mexican-overuse signal. Profiles are created lazily
// on first contact and mutated only by observation events.
type Profile struct {
	BluffRate      map[engine.Category]*BetaTracker
	ChallengeRate  BetaTracker
	SmallRaisePref BetaTracker

	MexicanSeen int
	TotalSeen   int
}

// newProfile returns a profile seeded with the tuned priors: Mexicans are
// presumed bluffs one time in five before any evidence, doubles one in
// three, plain pairs fifty-fifty.
func newProfile() *Profile {
	return &Profile{
		BluffRate: map[engine.Category]*BetaTracker{
			engine.CategoryMexican: {Alpha: 1, Beta: 4},
			engine.CategoryDouble:  {Alpha: 1, Beta: 2},
			engine.CategoryNormal:  {Alpha: 1, Beta: 1},
			engine.CategorySpecial: {Alpha: 1, Beta: 2},
		},
		ChallengeRate:  BetaTracker{Alpha: 1, Beta: 2},
		SmallRaisePref: BetaTracker{Alpha: 1, Beta: 1},
	}
}

// bluff returns the category tracker, falling back to a flat prior for
// categories the profile has never been seeded with (restored snapshots).
func (p *Profile) bluff(cat engine.Category) *BetaTracker {
	if t, ok := p.BluffRate[cat]; ok {
		return t
	}
	t := &BetaTracker{Alpha: 1, Beta: 1}
	p.BluffRate[cat] = t
	return t
}

// noteClaim feeds the Mexican-overuse counters with one observed claim.
func (p *Profile) noteClaim(cat engine.Category) {
	p.TotalSeen++
	if cat == engine.CategoryMexican {
		p.MexicanSeen++
	}
}

// MexicanOveruse returns the fraction of observed claims that were Mexicans.
// Above 0.08 the policy lowers its Mexican call threshold hard; between
// 0.05 and 0.08 a smaller boost applies.
func (p *Profile) MexicanOveruse() float64 {
	if p.TotalSeen == 0 {
		return 0
	}
	return float64(p.MexicanSeen) / float64(p.TotalSeen)
}
