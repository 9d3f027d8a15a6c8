package encoding

import "strings"

// SymmetryRule is a set of satisfiability-preserving symmetry-breaking
// rules.
type SymmetryRule uint8

const (
	// WeekOnePairing fixes week 1 so that teams 2k-1 and 2k meet in
	// period k, in either orientation.
	WeekOnePairing SymmetryRule = 1 << iota
	// TeamOneOpponents fixes team 1 to meet team w+1 in week w.
	TeamOneOpponents

	NoSymmetry  SymmetryRule = 0
	AllSymmetry              = WeekOnePairing | TeamOneOpponents
)

func (r SymmetryRule) String() string {
	if r == NoSymmetry {
		return "none"
	}
	var parts []string
	if r&WeekOnePairing != 0 {
		parts = append(parts, "sb1")
	}
	if r&TeamOneOpponents != 0 {
		parts = append(parts, "sb2")
	}
	return strings.Join(parts, "+")
}

// ParseSymmetry is the inverse of SymmetryRule.String. It also accepts
// "all".
func ParseSymmetry(s string) (SymmetryRule, bool) {
	switch s {
	case "", "none":
		return NoSymmetry, true
	case "all":
		return AllSymmetry, true
	}
	var r SymmetryRule
	for _, part := range strings.Split(s, "+") {
		switch strings.TrimSpace(part) {
		case "sb1":
			r |= WeekOnePairing
		case "sb2":
			r |= TeamOneOpponents
		default:
			return 0, false
		}
	}
	return r, true
}

func (b *builder) symmetry(r SymmetryRule) {
	n, periods := b.in.Teams, b.in.Periods()

	if r&WeekOnePairing != 0 {
		for k := 1; k <= periods; k++ {
			b.add(Constraint{
				Family: Symmetry,
				Label:  b.label("week 1 period %d pairing", k),
				Op:     AtLeast,
				K:      1,
				Lits:   b.plays(nil, 2*k-1, 2*k, k, 1),
			})
		}
	}

	if r&TeamOneOpponents != 0 {
		for w := 1; w <= b.in.Weeks() && w+1 <= n; w++ {
			opp := w + 1
			var lits []Lit
			for p := 1; p <= periods; p++ {
				lits = b.plays(lits, 1, opp, p, w)
			}
			b.add(Constraint{
				Family: Symmetry,
				Label:  b.label("team 1 meets %d in week %d", opp, w),
				Op:     AtLeast,
				K:      1,
				Lits:   lits,
			})
		}
	}
}
