// Package cnf compiles a constraint set into clausal normal form.
//
// Atom IDs are kept as DIMACS variables 1..Atoms. Variable Atoms+1 is
// constant true and every later variable belongs to a cardinality
// network.
package cnf

import (
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/tourney/sts/pkg/encoding"
)

// Policy selects cardinality encodings.
type Policy struct {
	// PairwiseLimit is the largest group that is encoded by forbidding
	// every subset of size K+1 directly. Larger at-most groups, and all
	// at-least groups with K > 1, use a sorting network.
	PairwiseLimit int
}

// DefaultPolicy keeps the quadratic and cubic expansions small.
var DefaultPolicy = Policy{PairwiseLimit: 8}

// WeightedClause is a soft clause.
type WeightedClause struct {
	Lits   []int
	Weight int
}

// CNF is a compiled formula in DIMACS literal convention.
type CNF struct {
	Vars    int
	Atoms   int
	Clauses [][]int
	Soft    []WeightedClause
	// CostAtMost[w] is a literal that is true exactly when the weight
	// of falsified soft clauses is at most w. It is empty unless the
	// formula carries soft preferences.
	CostAtMost []int
}

// True returns the literal that is constant true.
func (c *CNF) True() int {
	return c.Atoms + 1
}

// TotalSoftWeight is the cost of falsifying every soft clause.
func (c *CNF) TotalSoftWeight() int {
	total := 0
	for _, s := range c.Soft {
		total += s.Weight
	}
	return total
}

// Compile translates f into clauses.
func Compile(f *encoding.Formula, policy Policy) *CNF {
	x := newCompiler(f, policy)
	for _, con := range f.Constraints() {
		x.constraint(con)
	}
	cost := x.cost(f.Soft())

	// Every network must exist before the circuit is written out.
	col := &collector{}
	x.c.ToCnf(col)

	out := &CNF{
		Atoms: x.atoms,
		Vars:  x.c.Len() - 1,
	}
	out.Clauses = make([][]int, 0, len(col.clauses)+len(x.clauses))
	for _, cl := range col.clauses {
		out.Clauses = append(out.Clauses, x.dimacs(cl))
	}
	for _, cl := range x.clauses {
		out.Clauses = append(out.Clauses, x.dimacs(cl))
	}
	for _, p := range f.Soft() {
		out.Soft = append(out.Soft, WeightedClause{
			Lits:   []int{x.dimacsLit(x.lit(p.Lit))},
			Weight: p.Weight,
		})
	}
	for _, m := range cost {
		out.CostAtMost = append(out.CostAtMost, x.dimacsLit(m))
	}
	return out
}

type compiler struct {
	c       *logic.C
	atoms   int
	policy  Policy
	clauses [][]z.Lit
}

func newCompiler(f *encoding.Formula, policy Policy) *compiler {
	n := f.Atoms().Len()
	x := &compiler{
		c:      logic.NewCCap(2 * (n + 2)),
		atoms:  n,
		policy: policy,
	}
	for i := 0; i < n; i++ {
		x.c.Lit()
	}
	return x
}

// lit maps an atom literal to its circuit input.
func (x *compiler) lit(m encoding.Lit) z.Lit {
	v := z.Var(int(m.ID()) + 1)
	if m.IsPos() {
		return v.Pos()
	}
	return v.Neg()
}

func (x *compiler) lits(ms []encoding.Lit) []z.Lit {
	out := make([]z.Lit, len(ms))
	for i, m := range ms {
		out[i] = x.lit(m)
	}
	return out
}

// dimacsLit moves the circuit's constant after the atoms so that atom
// IDs and DIMACS variables coincide.
func (x *compiler) dimacsLit(m z.Lit) int {
	v := int(m.Var())
	switch {
	case v == 1:
		v = x.atoms + 1
	case v <= x.atoms+1:
		v--
	}
	if !m.IsPos() {
		return -v
	}
	return v
}

func (x *compiler) dimacs(cl []z.Lit) []int {
	out := make([]int, len(cl))
	for i, m := range cl {
		out[i] = x.dimacsLit(m)
	}
	return out
}

// add records the clause (¬guard ∨ ms...). A clause containing the
// constant true is dropped.
func (x *compiler) add(guard z.Lit, ms ...z.Lit) {
	cl := make([]z.Lit, 0, len(ms)+1)
	if guard != z.LitNull {
		cl = append(cl, guard.Not())
	}
	for _, m := range ms {
		if m == x.c.T {
			return
		}
		if m == x.c.F {
			continue
		}
		cl = append(cl, m)
	}
	if len(cl) == 0 {
		cl = append(cl, x.c.F)
	}
	x.clauses = append(x.clauses, cl)
}

func (x *compiler) constraint(con encoding.Constraint) {
	guard := z.LitNull
	if con.Guard != 0 {
		guard = x.lit(con.Guard)
	}
	if con.Contradiction() {
		x.add(guard)
		return
	}

	ms := x.lits(con.Lits)
	var cs *logic.CardSort
	sorter := func() *logic.CardSort {
		if cs == nil {
			cs = x.c.CardSort(ms)
		}
		return cs
	}

	if con.Op == encoding.AtLeast || con.Op == encoding.Exactly {
		x.atLeast(guard, ms, con.K, sorter)
	}
	if con.Op == encoding.AtMost || con.Op == encoding.Exactly {
		x.atMost(guard, ms, con.K, sorter)
	}
}

func (x *compiler) atLeast(guard z.Lit, ms []z.Lit, k int, sorter func() *logic.CardSort) {
	switch {
	case k <= 0:
	case k == 1:
		x.add(guard, ms...)
	case k == len(ms):
		for _, m := range ms {
			x.add(guard, m)
		}
	default:
		x.add(guard, sorter().Geq(k))
	}
}

func (x *compiler) atMost(guard z.Lit, ms []z.Lit, k int, sorter func() *logic.CardSort) {
	switch {
	case k >= len(ms):
	case k == 0:
		for _, m := range ms {
			x.add(guard, m.Not())
		}
	case len(ms) <= x.policy.PairwiseLimit:
		forbid := make([]z.Lit, 0, k+1)
		var choose func(from int)
		choose = func(from int) {
			if len(forbid) == k+1 {
				x.add(guard, forbid...)
				return
			}
			for i := from; i <= len(ms)-(k+1-len(forbid)); i++ {
				forbid = append(forbid, ms[i].Not())
				choose(i + 1)
				forbid = forbid[:len(forbid)-1]
			}
		}
		choose(0)
	default:
		x.add(guard, sorter().Leq(k))
	}
}

// cost builds a sorting network over the violated preferences, each
// repeated by its weight, and returns its at-most outputs.
func (x *compiler) cost(soft []encoding.Preference) []z.Lit {
	if len(soft) == 0 {
		return nil
	}
	var violated []z.Lit
	for _, p := range soft {
		for i := 0; i < p.Weight; i++ {
			violated = append(violated, x.lit(p.Lit).Not())
		}
	}
	cs := x.c.CardSort(violated)
	out := make([]z.Lit, len(violated)+1)
	for w := range out {
		out[w] = cs.Leq(w)
	}
	return out
}

// collector gathers the clauses of a circuit.
type collector struct {
	clauses [][]z.Lit
	buf     []z.Lit
}

func (c *collector) Add(m z.Lit) {
	if m == z.LitNull {
		c.clauses = append(c.clauses, c.buf)
		c.buf = nil
		return
	}
	c.buf = append(c.buf, m)
}
