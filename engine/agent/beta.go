// Package agent implements the adaptive Sudden Dice opponent: per-adversary
// Bayesian belief trackers, a LinUCB contextual bandit, and the hybrid
// threshold/bandit decision policy that picks between challenging a claim
// and raising over it.
package agent

import (
	"math"
	"math/rand"
)

// BetaTracker is a Beta(α,β) estimator of a binary tendency. α counts
// successes (bluffs observed, challenges made, small raises), β the
// complement.
type BetaTracker struct {
	Alpha float64
	Beta  float64
}

// Update folds one observation into the tracker.
func (t *BetaTracker) Update(success bool) {
	if success {
		t.Alpha++
	} else {
		t.Beta++
	}
}

// Mean returns the posterior mean α/(α+β).
func (t *BetaTracker) Mean() float64 {
	return t.Alpha / (t.Alpha + t.Beta)
}

// Quantile approximates the Beta quantile at p with a normal approximation
// through the inverse error function. Decisions only need order-of-magnitude
// exploration noise, not exact tail behavior, so the approximation is kept
// deliberately (the policy thresholds were tuned against its noise).
func (t *BetaTracker) Quantile(p float64) float64 {
	const eps = 1e-9
	if p < eps {
		p = eps
	} else if p > 1-eps {
		p = 1 - eps
	}
	n := t.Alpha + t.Beta
	variance := t.Alpha * t.Beta / (n * n * (n + 1))
	q := t.Mean() + math.Sqrt(2*variance)*math.Erfinv(2*p-1)
	return clamp01(q)
}

// Sample draws from the approximate posterior.
func (t *BetaTracker) Sample(rng *rand.Rand) float64 {
	return t.Quantile(rng.Float64())
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
