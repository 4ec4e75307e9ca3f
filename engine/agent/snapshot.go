package agent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quantumnonsense/suddendice/engine"
)

// Blob shapes for snapshot persistence. The layout round-trips exactly
// modulo floating-point text precision.
type snapshotBlob struct {
	Profiles map[string]profileBlob `json:"perOpponentProfiles"`
	Bandit   banditBlob             `json:"bandit"`
}

type profileBlob struct {
	BluffRate     map[string][2]float64 `json:"bluffRate"`
	ChallengeRate [2]float64            `json:"challengeRate"`
	RaiseSizePref [2]float64            `json:"raiseSizePref"`
	MexicanSeen   int                   `json:"mexicanSeen"`
	TotalSeen     int                   `json:"totalSeen"`
}

type banditBlob struct {
	A [][]float64 `json:"A"`
	B []float64   `json:"b"`
}

var categoryByName = map[string]engine.Category{
	"mexican": engine.CategoryMexican,
	"double":  engine.CategoryDouble,
	"special": engine.CategorySpecial,
	"normal":  engine.CategoryNormal,
}

// Snapshot serializes all learning state: every opponent profile plus the
// bandit's A matrix and b vector.
func (a *Agent) Snapshot() ([]byte, error) {
	blob := snapshotBlob{Profiles: make(map[string]profileBlob, len(a.profiles))}

	for id, p := range a.profiles {
		pb := profileBlob{
			BluffRate:     make(map[string][2]float64, len(p.BluffRate)),
			ChallengeRate: [2]float64{p.ChallengeRate.Alpha, p.ChallengeRate.Beta},
			RaiseSizePref: [2]float64{p.SmallRaisePref.Alpha, p.SmallRaisePref.Beta},
			MexicanSeen:   p.MexicanSeen,
			TotalSeen:     p.TotalSeen,
		}
		for cat, t := range p.BluffRate {
			pb.BluffRate[cat.String()] = [2]float64{t.Alpha, t.Beta}
		}
		blob.Profiles[id] = pb
	}

	blob.Bandit.A = make([][]float64, BanditDim)
	for i := 0; i < BanditDim; i++ {
		blob.Bandit.A[i] = make([]float64, BanditDim)
		copy(blob.Bandit.A[i], a.bandit.A[i][:])
	}
	blob.Bandit.B = make([]float64, BanditDim)
	copy(blob.Bandit.B, a.bandit.B[:])

	return json.Marshal(blob)
}

// Restore replaces the agent's learning state from a snapshot blob. A
// snapshot whose bandit matrix is no longer invertible is treated as
// corrupted: the bandit resets to its identity prior and the profiles are
// still restored.
func (a *Agent) Restore(data []byte) error {
	var blob snapshotBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return fmt.Errorf("agent: decode snapshot: %w", err)
	}

	profiles := make(map[string]*Profile, len(blob.Profiles))
	for id, pb := range blob.Profiles {
		p := newProfile()
		for name, ab := range pb.BluffRate {
			cat, ok := categoryByName[name]
			if !ok {
				continue
			}
			p.BluffRate[cat] = &BetaTracker{Alpha: ab[0], Beta: ab[1]}
		}
		p.ChallengeRate = BetaTracker{Alpha: pb.ChallengeRate[0], Beta: pb.ChallengeRate[1]}
		p.SmallRaisePref = BetaTracker{Alpha: pb.RaiseSizePref[0], Beta: pb.RaiseSizePref[1]}
		p.MexicanSeen = pb.MexicanSeen
		p.TotalSeen = pb.TotalSeen
		profiles[id] = p
	}
	a.profiles = profiles
	a.lastCtx = nil

	if len(blob.Bandit.A) == BanditDim && len(blob.Bandit.B) == BanditDim {
		restored := NewLinUCB()
		for i := 0; i < BanditDim; i++ {
			if len(blob.Bandit.A[i]) != BanditDim {
				return fmt.Errorf("agent: snapshot bandit row %d has %d columns", i, len(blob.Bandit.A[i]))
			}
			copy(restored.A[i][:], blob.Bandit.A[i])
		}
		copy(restored.B[:], blob.Bandit.B)

		if _, err := restored.solve(restored.B); errors.Is(err, ErrSingularMatrix) {
			restored.Reset()
		}
		a.bandit = restored
	}
	return nil
}
