// Package engine implements the Sudden Dice claim rules.
//
// This package provides the pure claim algebra (encoding, ranking, raise
// legality) and the per-round claim state machine. It performs no I/O and
// holds no learning state; the adaptive opponent lives in engine/agent.
package engine

// Claim is a declared two-dice outcome packed into a single integer:
// higher face in the tens digit, lower face in the units digit (3 and 5
// encode as 53). Three codes carry special rules:
//
//	21 — Mexican: the highest claim; locks the next player into {21,31,41}.
//	31 — Reverse: always assertable; reflects the decision back without
//	     advancing the baseline.
//	41 — Social: always assertable; must match the actual roll.
type Claim uint8

// NoClaim represents the absence of a claim (start of round).
const NoClaim Claim = 0

const (
	ClaimMexican Claim = 21
	ClaimReverse Claim = 31
	ClaimSocial  Claim = 41
)

// Rank tiers, highest first. Mexican outranks every double, every double
// outranks every mixed pair.
const (
	TierMixed   uint8 = 1
	TierDouble  uint8 = 2
	TierMexican uint8 = 3
)

// Category partitions the claim universe for opponent modeling.
type Category uint8

const (
	CategoryNormal  Category = iota // mixed pairs other than 21/31/41
	CategoryDouble                  // 11..66
	CategorySpecial                 // 31, 41
	CategoryMexican                 // 21
)

// String returns the category name used in persisted profiles.
func (c Category) String() string {
	switch c {
	case CategoryMexican:
		return "mexican"
	case CategoryDouble:
		return "double"
	case CategorySpecial:
		return "special"
	}
	return "normal"
}

// ladder is the full claim universe in ascending rank order: 14 mixed pairs,
// 6 doubles, then Mexican. 21 entries total (21 aliases the 2-1 roll).
var ladder = [21]Claim{
	31, 32, 41, 42, 43, 51, 52, 53, 54, 61, 62, 63, 64, 65,
	11, 22, 33, 44, 55, 66,
	ClaimMexican,
}

// ladderIdx maps claim → position in the ladder, or -1.
var ladderIdx [100]int8

func init() {
	for i := range ladderIdx {
		ladderIdx[i] = -1
	}
	for i, c := range ladder {
		ladderIdx[c] = int8(i)
	}
}

// NumClaims is the size of the claim universe.
const NumClaims = len(ladder)

// IsValid reports whether c is a member of the 21-claim universe.
func (c Claim) IsValid() bool {
	return c < 100 && ladderIdx[c] >= 0
}

// High returns the tens digit (higher face).
func (c Claim) High() uint8 { return uint8(c) / 10 }

// Low returns the units digit (lower face).
func (c Claim) Low() uint8 { return uint8(c) % 10 }

// CanonicalClaim encodes a physical roll of two dice, higher face first.
// Rolling 2 and 1 canonically encodes as 21, the Mexican.
func CanonicalClaim(d1, d2 uint8) Claim {
	if d1 < d2 {
		d1, d2 = d2, d1
	}
	return Claim(d1*10 + d2)
}

// Rank returns the lexicographic rank triple (tier, primary, secondary).
// Rank induces a total order over the claim universe.
func Rank(c Claim) (tier, primary, secondary uint8) {
	switch {
	case c == ClaimMexican:
		return TierMexican, 2, 1
	case c.High() == c.Low():
		return TierDouble, c.High(), c.Low()
	default:
		return TierMixed, c.High(), c.Low()
	}
}

// Compare orders two claims by rank: -1 if a < b, 0 if equal, +1 if a > b.
func Compare(a, b Claim) int {
	at, ap, as := Rank(a)
	bt, bp, bs := Rank(b)
	switch {
	case at != bt:
		return sign(int(at) - int(bt))
	case ap != bp:
		return sign(int(ap) - int(bp))
	default:
		return sign(int(as) - int(bs))
	}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// LadderIndex returns the claim's position in the ascending rank ladder
// (0 = lowest mixed pair, NumClaims-1 = Mexican), or -1 for invalid claims.
func LadderIndex(c Claim) int {
	if c >= 100 {
		return -1
	}
	return int(ladderIdx[c])
}

// IsAlwaysClaimable reports whether c may be asserted regardless of the
// standing claim: the Mexican and the two specials.
func IsAlwaysClaimable(c Claim) bool {
	return c == ClaimMexican || c == ClaimReverse || c == ClaimSocial
}

// IsReverseOf reports whether next reflects prev back: next is always
// claimable and differs from prev.
func IsReverseOf(prev, next Claim) bool {
	return IsAlwaysClaimable(next) && next != prev
}

// IsLegalRaise reports whether next may follow prev. After a Mexican only
// {21,31,41} are legal; otherwise next must be always-claimable, a reverse
// of prev, or rank at least as high as prev.
func IsLegalRaise(prev, next Claim) bool {
	if !next.IsValid() {
		return false
	}
	if prev == ClaimMexican {
		return IsAlwaysClaimable(next)
	}
	return IsAlwaysClaimable(next) || IsReverseOf(prev, next) || Compare(next, prev) >= 0
}

// NextHigherClaim returns the claim ranked immediately above prev.
// ok is false when prev is the Mexican (nothing ranks higher) or invalid.
func NextHigherClaim(prev Claim) (Claim, bool) {
	i := LadderIndex(prev)
	if i < 0 || i+1 >= NumClaims {
		return NoClaim, false
	}
	return ladder[i+1], true
}

// Categorize assigns the claim to its modeling category.
func Categorize(c Claim) Category {
	switch {
	case c == ClaimMexican:
		return CategoryMexican
	case c == ClaimReverse || c == ClaimSocial:
		return CategorySpecial
	case c.High() == c.Low():
		return CategoryDouble
	default:
		return CategoryNormal
	}
}

// ClaimMatchesRoll reports whether a claim was truthful for the given
// canonical roll.
func ClaimMatchesRoll(claim, actualRoll Claim) bool {
	return claim == actualRoll
}

// AllClaims returns the claim universe in ascending rank order.
func AllClaims() []Claim {
	out := make([]Claim, NumClaims)
	copy(out, ladder[:])
	return out
}
