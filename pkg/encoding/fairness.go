package encoding

import "github.com/tourney/sts/pkg/encoding/atoms"

// boundedFairness restricts every team's home count to the window of
// bound. A window that cannot cover all matches is emitted as a single
// contradiction.
func (b *builder) boundedFairness(bound int) {
	if !b.in.WindowFeasible(bound) {
		b.add(Constraint{
			Family: Fairness,
			Label:  b.label("bound %d window is empty", bound),
			Op:     AtLeast,
			K:      1,
		})
		return
	}
	b.window(bound, 0)
}

// softFairness adds an indicator B_k for every bound k. B_k implies
// that every team respects window k, and each B_k is preferred true
// with weight 1. Windows are nested, so an optimal assignment has
// exactly the indicators below the optimal bound false and its cost
// equals that bound.
func (b *builder) softFairness() {
	for k := 0; k <= b.in.MaxBound(); k++ {
		g := Pos(b.f.atoms.Allocate(atoms.Indicator(k)))
		if !b.in.WindowFeasible(k) {
			b.add(Constraint{
				Family: Fairness,
				Label:  b.label("bound %d window is empty", k),
				Op:     AtLeast,
				K:      1,
				Guard:  g,
			})
		} else {
			b.window(k, g)
		}
		b.f.soft = append(b.f.soft, Preference{Lit: g, Weight: 1})
	}
}

// window emits the per-team home window of bound, guarded by g when g
// is non-zero. Sides of the window that every assignment satisfies are
// omitted.
func (b *builder) window(bound int, g Lit) {
	min, max := b.in.HomeWindow(bound)
	games := b.in.Weeks()
	for t := 1; t <= b.in.Teams; t++ {
		home := b.homeGames(t)
		if min > 0 {
			b.add(Constraint{
				Family: Fairness,
				Label:  b.label("team %d home >= %d (bound %d)", t, min, bound),
				Op:     AtLeast,
				K:      min,
				Lits:   home,
				Guard:  g,
			})
		}
		if max < games {
			b.add(Constraint{
				Family: Fairness,
				Label:  b.label("team %d home <= %d (bound %d)", t, max, bound),
				Op:     AtMost,
				K:      max,
				Lits:   home,
				Guard:  g,
			})
		}
	}
}
