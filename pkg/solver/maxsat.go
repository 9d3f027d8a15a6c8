package solver

import (
	"context"

	"github.com/crillab/gophersat/maxsat"

	"github.com/tourney/sts/pkg/encoding"
	"github.com/tourney/sts/pkg/encoding/atoms"
)

// MaxSAT is a weighted backend that addresses atoms by their canonical
// names, so its models are decoded through the atom grammar rather than
// by position.
type MaxSAT struct{}

var _ Optimizer = MaxSAT{}

func (MaxSAT) Name() string {
	return "maxsat"
}

func (b MaxSAT) Check(ctx context.Context, f *encoding.Formula) (Result, error) {
	res, err := b.solve(ctx, f, false)
	res.Cost, res.Optimal = 0, false
	return res, err
}

func (b MaxSAT) Optimize(ctx context.Context, f *encoding.Formula) (Result, error) {
	return b.solve(ctx, f, true)
}

func (b MaxSAT) solve(ctx context.Context, f *encoding.Formula, soft bool) (Result, error) {
	if f.Contradictory() {
		return Result{Status: Unsat}, nil
	}
	constrs := b.constrs(f, soft)
	a := f.Atoms()
	return run(ctx, b.Name(), func() Result {
		values, cost := maxsat.New(constrs...).Solve()
		if values == nil {
			return Result{Status: Unsat}
		}
		m := make(Model, a.Len()+1)
		for name, v := range values {
			k, err := atoms.Parse(name)
			if err != nil {
				continue
			}
			if id, ok := a.Lookup(k); ok {
				m[id] = v
			}
		}
		return Result{Status: Sat, Model: m, Cost: cost, Optimal: true}
	})
}

func (b MaxSAT) constrs(f *encoding.Formula, soft bool) []maxsat.Constr {
	a := f.Atoms()
	lit := func(m encoding.Lit) maxsat.Lit {
		k, _ := a.KeyOf(m.ID())
		l := maxsat.Var(atoms.Name(k))
		if !m.IsPos() {
			return l.Negation()
		}
		return l
	}

	var out []maxsat.Constr
	atLeast := func(ms []encoding.Lit, k int, guard encoding.Lit) {
		if k <= 0 {
			return
		}
		lits := make([]maxsat.Lit, 0, len(ms)+1)
		coeffs := make([]int, 0, len(ms)+1)
		for _, m := range ms {
			lits = append(lits, lit(m))
			coeffs = append(coeffs, 1)
		}
		if guard != 0 {
			lits = append(lits, lit(guard.Not()))
			coeffs = append(coeffs, k)
		}
		out = append(out, maxsat.HardPBConstr(lits, coeffs, k))
	}

	for _, c := range f.Constraints() {
		if c.Op == encoding.AtLeast || c.Op == encoding.Exactly {
			atLeast(c.Lits, c.K, c.Guard)
		}
		if c.Op == encoding.AtMost || c.Op == encoding.Exactly {
			neg := make([]encoding.Lit, len(c.Lits))
			for i, m := range c.Lits {
				neg[i] = m.Not()
			}
			atLeast(neg, len(c.Lits)-c.K, c.Guard)
		}
	}
	if soft {
		for _, p := range f.Soft() {
			out = append(out, maxsat.WeightedClause([]maxsat.Lit{lit(p.Lit)}, p.Weight))
		}
	}
	return out
}
