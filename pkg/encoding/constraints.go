package encoding

import (
	"fmt"
	"strings"

	"github.com/tourney/sts/pkg/encoding/atoms"
)

// Lit is a signed atom reference: a positive value is the atom with
// that ID, a negative value its negation. Zero is never a valid Lit.
type Lit int

// Pos returns the positive literal of id.
func Pos(id atoms.ID) Lit {
	return Lit(id)
}

// Not returns the negation of m.
func (m Lit) Not() Lit {
	return -m
}

// ID returns the atom m refers to.
func (m Lit) ID() atoms.ID {
	if m < 0 {
		return atoms.ID(-m)
	}
	return atoms.ID(m)
}

// IsPos reports whether m is a positive literal.
func (m Lit) IsPos() bool {
	return m > 0
}

// Op is the comparison a cardinality constraint applies to the number
// of true literals in its group.
type Op uint8

const (
	AtLeast Op = iota + 1
	AtMost
	Exactly
)

func (o Op) String() string {
	switch o {
	case AtLeast:
		return ">="
	case AtMost:
		return "<="
	case Exactly:
		return "=="
	}
	return "?"
}

// Family names the rule a constraint was generated for.
type Family string

const (
	Slot     Family = "slot"
	Pair     Family = "pair"
	Weekly   Family = "weekly"
	Period   Family = "period"
	Symmetry Family = "symmetry"
	Fairness Family = "fairness"
)

// Constraint requires that the number of true literals in Lits compares
// to K according to Op. If Guard is non-zero the requirement only holds
// when Guard is true. A clause is AtLeast 1; a constraint with AtLeast
// K > len(Lits) can never hold.
type Constraint struct {
	Family Family
	Label  string
	Op     Op
	K      int
	Lits   []Lit
	Guard  Lit
}

// Contradiction reports whether c can never be satisfied when its
// guard holds.
func (c Constraint) Contradiction() bool {
	switch c.Op {
	case AtLeast, Exactly:
		return c.K > len(c.Lits)
	case AtMost:
		return c.K < 0
	}
	return false
}

// Holds evaluates c under value.
func (c Constraint) Holds(value func(Lit) bool) bool {
	if c.Guard != 0 && !value(c.Guard) {
		return true
	}
	count := 0
	for _, m := range c.Lits {
		if value(m) {
			count++
		}
	}
	switch c.Op {
	case AtLeast:
		return count >= c.K
	case AtMost:
		return count <= c.K
	case Exactly:
		return count == c.K
	}
	return false
}

// String renders c using atom names from a.
func (c Constraint) String(a *atoms.Allocator) string {
	s := make([]string, len(c.Lits))
	for i, m := range c.Lits {
		s[i] = litName(a, m)
	}
	body := fmt.Sprintf("%s: |{%s}| %s %d", c.Label, strings.Join(s, ", "), c.Op, c.K)
	if c.Guard != 0 {
		return fmt.Sprintf("%s -> %s", litName(a, c.Guard), body)
	}
	return body
}

func litName(a *atoms.Allocator, m Lit) string {
	k, ok := a.KeyOf(m.ID())
	if !ok {
		return fmt.Sprintf("?%d", m)
	}
	if m.IsPos() {
		return atoms.Name(k)
	}
	return "!" + atoms.Name(k)
}

// Preference is a weighted wish that Lit be true.
type Preference struct {
	Lit    Lit
	Weight int
}
