package solver

import (
	"context"

	"github.com/crillab/gophersat/solver"

	"github.com/tourney/sts/pkg/encoding"
)

// Gophersat decides formulas natively as pseudo-boolean constraints,
// without compiling cardinality groups to clauses. It cannot be
// interrupted: on cancellation the running solve is abandoned.
type Gophersat struct{}

var _ Backend = Gophersat{}

func (Gophersat) Name() string {
	return "gophersat"
}

func (b Gophersat) Check(ctx context.Context, f *encoding.Formula) (Result, error) {
	if f.Contradictory() {
		return Result{Status: Unsat}, nil
	}
	constrs := pbConstrs(f)
	n := f.Atoms().Len()
	return run(ctx, b.Name(), func() Result {
		s := solver.New(solver.ParsePBConstrs(constrs))
		switch s.Solve() {
		case solver.Sat:
			values := s.Model()
			m := make(Model, n+1)
			for v := 1; v <= n && v <= len(values); v++ {
				m[v] = values[v-1]
			}
			return Result{Status: Sat, Model: m}
		case solver.Unsat:
			return Result{Status: Unsat}
		}
		return Result{Status: Unknown}
	})
}

// pbConstrs translates every hard constraint of f. A guard g joins the
// constraint with weight K, so that the constraint is satisfied
// outright whenever g is false.
func pbConstrs(f *encoding.Formula) []solver.PBConstr {
	var out []solver.PBConstr
	for _, c := range f.Constraints() {
		if c.Op == encoding.AtLeast || c.Op == encoding.Exactly {
			out = appendAtLeast(out, ints(c.Lits, false), c.K, c.Guard)
		}
		if c.Op == encoding.AtMost || c.Op == encoding.Exactly {
			// at most K of lits is at least len-K of their negations
			out = appendAtLeast(out, ints(c.Lits, true), len(c.Lits)-c.K, c.Guard)
		}
	}
	return out
}

func appendAtLeast(dst []solver.PBConstr, lits []int, k int, guard encoding.Lit) []solver.PBConstr {
	if k <= 0 {
		return dst
	}
	if guard == 0 {
		return append(dst, solver.AtLeast(lits, k))
	}
	weights := make([]int, len(lits), len(lits)+1)
	for i := range weights {
		weights[i] = 1
	}
	lits = append(lits, int(guard.Not()))
	weights = append(weights, k)
	return append(dst, solver.GtEq(lits, weights, k))
}

func ints(ms []encoding.Lit, negate bool) []int {
	out := make([]int, len(ms), len(ms)+1)
	for i, m := range ms {
		if negate {
			m = m.Not()
		}
		out[i] = int(m)
	}
	return out
}
