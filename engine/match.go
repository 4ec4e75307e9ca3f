package engine

// Rules holds configurable match settings.
type Rules struct {
	StartingScore int8 // points each side starts with; 0 treated as default
	MaxRounds     uint16 // 0 = unlimited; safety cap for hosted matches
}

// DefaultRules returns the standard Sudden Dice match rules.
func DefaultRules() Rules {
	return Rules{
		StartingScore: 6,
		MaxRounds:     0,
	}
}

func (r *Rules) startingScore() int8 {
	if r.StartingScore == 0 {
		return 6
	}
	return r.StartingScore
}

// Side indexes the two players of a match.
type Side uint8

const (
	SideA Side = 0
	SideB Side = 1
)

// Other returns the opposing side.
func (s Side) Other() Side { return 1 - s }

// Match tracks scores across rounds. A side whose score reaches 0 loses
// the match.
type Match struct {
	Scores     [2]int8
	Rules      Rules
	Round      Round
	RoundIndex uint16
}

// NewMatch initializes a match with both sides at the starting score.
func NewMatch(rules Rules) Match {
	s := rules.startingScore()
	return Match{
		Scores: [2]int8{s, s},
		Rules:  rules,
	}
}

// ApplyPenalty deducts penalty points from side, floored at 0.
func (m *Match) ApplyPenalty(side Side, penalty int8) {
	m.Scores[side] -= penalty
	if m.Scores[side] < 0 {
		m.Scores[side] = 0
	}
}

// ResolveChallengeAgainst settles a challenge by challenger against the
// standing claim, applies the penalty to the losing side, resets the round
// and advances the round counter.
func (m *Match) ResolveChallengeAgainst(challenger Side, actualRoll Claim) ChallengeResult {
	res := ResolveChallenge(m.Round.LastClaim, actualRoll, m.Round.ReverseVsMexican)
	loser := challenger
	if res.Outcome == ChallengerWins {
		loser = challenger.Other()
	}
	m.ApplyPenalty(loser, res.Penalty)
	m.Round.Reset()
	m.RoundIndex++
	return res
}

// IsOver reports whether either side has been eliminated or the round cap
// was exceeded.
func (m *Match) IsOver() bool {
	if m.Scores[SideA] == 0 || m.Scores[SideB] == 0 {
		return true
	}
	return m.Rules.MaxRounds > 0 && m.RoundIndex >= m.Rules.MaxRounds
}

// Winner returns the winning side once the match is over. ok is false while
// the match is live or when the round cap expired with both sides standing
// at equal scores.
func (m *Match) Winner() (Side, bool) {
	switch {
	case m.Scores[SideA] == 0 && m.Scores[SideB] > 0:
		return SideB, true
	case m.Scores[SideB] == 0 && m.Scores[SideA] > 0:
		return SideA, true
	case m.IsOver() && m.Scores[SideA] != m.Scores[SideB]:
		if m.Scores[SideA] > m.Scores[SideB] {
			return SideA, true
		}
		return SideB, true
	}
	return SideA, false
}

// ---------------------------------------------------------------------------
// xorshift64 dice roller — inline, no interface
// ---------------------------------------------------------------------------

// Roller produces canonical claims from a deterministic xorshift64 stream.
// Physical fairness is out of scope; determinism under a fixed seed is what
// the tests rely on.
type Roller struct {
	state uint64
}

// NewRoller seeds a roller. A zero seed is remapped (xorshift can't start at 0).
func NewRoller(seed uint64) *Roller {
	if seed == 0 {
		seed = 1
	}
	return &Roller{state: seed}
}

func (r *Roller) next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	r.state = x
	return x
}

// Roll returns the canonical claim for two fresh dice.
func (r *Roller) Roll() Claim {
	d1 := uint8(r.next()%6) + 1
	d2 := uint8(r.next()%6) + 1
	return CanonicalClaim(d1, d2)
}
