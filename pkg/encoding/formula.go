package encoding

import (
	"github.com/tourney/sts/pkg/encoding/atoms"
	"github.com/tourney/sts/pkg/tournament"
)

// Objective selects how, if at all, the home/away imbalance is encoded.
type Objective uint8

const (
	// Decision encodes the structural rules only.
	Decision Objective = iota
	// Bounded adds a hard home window for a fixed bound.
	Bounded
	// Weighted adds bound indicators with unit preferences for a
	// weighted optimization backend.
	Weighted
)

func (o Objective) String() string {
	switch o {
	case Decision:
		return "decision"
	case Bounded:
		return "bounded"
	case Weighted:
		return "weighted"
	}
	return "unknown"
}

// Formula is an immutable constraint set for one instance, symmetry
// configuration and objective. A fresh Formula, with its own atom
// allocator, is built for every probe.
type Formula struct {
	instance    tournament.Instance
	atoms       *atoms.Allocator
	constraints []Constraint
	soft        []Preference
	symmetry    SymmetryRule
	objective   Objective
	bound       int
}

func (f *Formula) Instance() tournament.Instance {
	return f.instance
}

// Atoms returns the allocator that owns every atom referenced by f.
// Callers must not allocate further atoms through it.
func (f *Formula) Atoms() *atoms.Allocator {
	return f.atoms
}

// Constraints returns the hard constraints of f. The slice must not be
// modified.
func (f *Formula) Constraints() []Constraint {
	return f.constraints
}

// Soft returns the weighted preferences of f, which are only present
// for the Weighted objective.
func (f *Formula) Soft() []Preference {
	return f.soft
}

func (f *Formula) Symmetry() SymmetryRule {
	return f.symmetry
}

func (f *Formula) Objective() Objective {
	return f.objective
}

// Bound returns the enforced imbalance bound, if any.
func (f *Formula) Bound() (int, bool) {
	return f.bound, f.objective == Bounded
}

// TotalSoftWeight is the sum of all soft preference weights.
func (f *Formula) TotalSoftWeight() int {
	total := 0
	for _, s := range f.soft {
		total += s.Weight
	}
	return total
}

// Home returns the literal of "i home against j in (p, w)", or zero if
// no such atom exists.
func (f *Formula) Home(i, j, p, w int) Lit {
	id, ok := f.atoms.Lookup(atoms.Match(i, j, p, w))
	if !ok {
		return 0
	}
	return Pos(id)
}

// Contradictory reports whether f contains an unguarded constraint that
// can never hold, which makes f unsatisfiable without search.
func (f *Formula) Contradictory() bool {
	for _, c := range f.constraints {
		if c.Guard == 0 && c.Contradiction() {
			return true
		}
	}
	return false
}

// Violated returns every hard constraint that does not hold when atom
// id takes the value value(id).
func (f *Formula) Violated(value func(atoms.ID) bool) []Constraint {
	eval := func(m Lit) bool {
		v := value(m.ID())
		if !m.IsPos() {
			return !v
		}
		return v
	}
	var out []Constraint
	for _, c := range f.constraints {
		if !c.Holds(eval) {
			out = append(out, c)
		}
	}
	return out
}

// Stats counts the constraints of f per family.
func (f *Formula) Stats() map[Family]int {
	stats := make(map[Family]int)
	for _, c := range f.constraints {
		stats[c.Family]++
	}
	return stats
}
