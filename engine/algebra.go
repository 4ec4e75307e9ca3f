package engine

// Algebra exposes the claim algebra as a capability value for consumers that
// should not bind to package-level functions directly (engine/agent takes one
// at construction).
type Algebra struct{}

func (Algebra) Compare(a, b Claim) int                  { return Compare(a, b) }
func (Algebra) NextHigher(prev Claim) (Claim, bool)     { return NextHigherClaim(prev) }
func (Algebra) Categorize(c Claim) Category             { return Categorize(c) }
func (Algebra) ClaimMatchesRoll(claim, roll Claim) bool { return ClaimMatchesRoll(claim, roll) }
