package agent

import (
	"errors"
	"math"
)

// BanditDim is the fixed length of decision context vectors.
const BanditDim = 12

// defaultConfidence scales the UCB exploration bonus.
const defaultConfidence = 0.35

// ErrSingularMatrix means the bandit's design matrix lost invertibility.
// The rank-1 update rule preserves positive definiteness, so this only
// happens when a corrupted snapshot was restored; recovery is a reset to
// the identity prior, not a crash.
var ErrSingularMatrix = errors.New("agent: singular bandit matrix")

// Action is one of the two candidate moves the bandit arbitrates between.
type Action uint8

const (
	ActionChallenge Action = iota
	ActionRaise
)

// LinUCB is a linear upper-confidence-bound contextual bandit over the fixed
// 12-dimensional context. A starts as the identity (ridge prior), b at zero.
// One bandit is shared across all decisions of an agent; it is not
// per-opponent.
type LinUCB struct {
	Confidence float64
	A          [BanditDim][BanditDim]float64
	B          [BanditDim]float64
}

// NewLinUCB returns a bandit at its identity prior.
func NewLinUCB() *LinUCB {
	l := &LinUCB{Confidence: defaultConfidence}
	l.Reset()
	return l
}

// Reset restores the identity prior, discarding all learned weight.
func (l *LinUCB) Reset() {
	l.A = [BanditDim][BanditDim]float64{}
	l.B = [BanditDim]float64{}
	for i := 0; i < BanditDim; i++ {
		l.A[i][i] = 1
	}
	if l.Confidence == 0 {
		l.Confidence = defaultConfidence
	}
}

// Choose scores both context vectors with x·θ + c·sqrt(xᵀA⁻¹x) and returns
// the higher-scoring action.
func (l *LinUCB) Choose(ctxChallenge, ctxRaise [BanditDim]float64) (Action, error) {
	theta, err := l.solve(l.B)
	if err != nil {
		return ActionRaise, err
	}
	sChallenge, err := l.score(theta, ctxChallenge)
	if err != nil {
		return ActionRaise, err
	}
	sRaise, err := l.score(theta, ctxRaise)
	if err != nil {
		return ActionRaise, err
	}
	if sChallenge > sRaise {
		return ActionChallenge, nil
	}
	return ActionRaise, nil
}

func (l *LinUCB) score(theta, x [BanditDim]float64) (float64, error) {
	z, err := l.solve(x) // z = A⁻¹x
	if err != nil {
		return 0, err
	}
	var mu, quad float64
	for i := 0; i < BanditDim; i++ {
		mu += theta[i] * x[i]
		quad += x[i] * z[i]
	}
	if quad < 0 {
		quad = 0
	}
	return mu + l.Confidence*math.Sqrt(quad), nil
}

// Update folds one observed round outcome into the bandit: A += xxᵀ,
// b += reward·x. Rewards are ±1.
func (l *LinUCB) Update(x [BanditDim]float64, reward float64) {
	for i := 0; i < BanditDim; i++ {
		for j := 0; j < BanditDim; j++ {
			l.A[i][j] += x[i] * x[j]
		}
		l.B[i] += reward * x[i]
	}
}

// solve returns A⁻¹·rhs by Gaussian elimination with partial pivoting.
func (l *LinUCB) solve(rhs [BanditDim]float64) ([BanditDim]float64, error) {
	const pivotEps = 1e-10

	var m [BanditDim][BanditDim + 1]float64
	for i := 0; i < BanditDim; i++ {
		for j := 0; j < BanditDim; j++ {
			m[i][j] = l.A[i][j]
		}
		m[i][BanditDim] = rhs[i]
	}

	for col := 0; col < BanditDim; col++ {
		// Partial pivot: largest magnitude in the column.
		pivot := col
		for row := col + 1; row < BanditDim; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < pivotEps {
			return [BanditDim]float64{}, ErrSingularMatrix
		}
		m[col], m[pivot] = m[pivot], m[col]

		inv := 1 / m[col][col]
		for row := col + 1; row < BanditDim; row++ {
			f := m[row][col] * inv
			if f == 0 {
				continue
			}
			for j := col; j <= BanditDim; j++ {
				m[row][j] -= f * m[col][j]
			}
		}
	}

	var out [BanditDim]float64
	for i := BanditDim - 1; i >= 0; i-- {
		sum := m[i][BanditDim]
		for j := i + 1; j < BanditDim; j++ {
			sum -= m[i][j] * out[j]
		}
		out[i] = sum / m[i][i]
	}
	return out, nil
}
