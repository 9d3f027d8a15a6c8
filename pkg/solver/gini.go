package solver

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/tourney/sts/pkg/encoding"
	"github.com/tourney/sts/pkg/encoding/cnf"
)

const defaultPoll = 10 * time.Millisecond

// Gini is an in-process CDCL backend. Cardinality constraints are
// compiled to clauses first, so it also accepts soft preferences and
// minimizes their cost through the compiled cost network.
type Gini struct {
	Policy cnf.Policy
	// Poll is how often a running solve checks for cancellation.
	Poll time.Duration
}

var _ Optimizer = Gini{}

// NewGini returns a Gini backend with the default clause policy.
func NewGini() Gini {
	return Gini{Policy: cnf.DefaultPolicy, Poll: defaultPoll}
}

func (Gini) Name() string {
	return "gini"
}

func (b Gini) Check(ctx context.Context, f *encoding.Formula) (res Result, err error) {
	defer recoverCrash(b.Name(), &res, &err)

	c := cnf.Compile(f, b.Policy)
	g := load(c)
	status, err := b.solve(ctx, g)
	if err != nil {
		return Result{}, err
	}
	res.Status = status
	if status == Sat {
		res.Model = model(g, c.Atoms)
	}
	return res, nil
}

// Optimize assumes increasing cost limits until the first satisfiable
// one, which is then the optimum.
func (b Gini) Optimize(ctx context.Context, f *encoding.Formula) (res Result, err error) {
	defer recoverCrash(b.Name(), &res, &err)

	c := cnf.Compile(f, b.Policy)
	g := load(c)
	if len(c.CostAtMost) == 0 {
		status, err := b.solve(ctx, g)
		if err != nil {
			return Result{}, err
		}
		res.Status = status
		if status == Sat {
			res.Model = model(g, c.Atoms)
			res.Optimal = true
		}
		return res, nil
	}

	for w, m := range c.CostAtMost {
		status, err := b.solve(ctx, g, z.Dimacs2Lit(m))
		if err != nil {
			return Result{}, err
		}
		if status == Sat {
			return Result{
				Status:  Sat,
				Model:   model(g, c.Atoms),
				Cost:    w,
				Optimal: true,
			}, nil
		}
	}
	// CostAtMost[total] is constant true, so every cost limit failing
	// means the hard constraints alone are unsatisfiable.
	return Result{Status: Unsat}, nil
}

// solve runs g under assumptions until it reaches a verdict or ctx is
// done.
func (b Gini) solve(ctx context.Context, g *gini.Gini, assumptions ...z.Lit) (Status, error) {
	if ctx.Err() != nil {
		return Unknown, Incomplete
	}
	g.Assume(assumptions...)
	s := g.GoSolve()

	poll := b.Poll
	if poll <= 0 {
		poll = defaultPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if r := s.Stop(); r != 0 {
				return Status(r), nil
			}
			return Unknown, Incomplete
		case <-ticker.C:
			if r, ok := s.Test(); ok {
				if r == 0 {
					return Unknown, Incomplete
				}
				return Status(r), nil
			}
		}
	}
}

func load(c *cnf.CNF) *gini.Gini {
	g := gini.NewVc(c.Vars, len(c.Clauses))
	for _, cl := range c.Clauses {
		for _, m := range cl {
			g.Add(z.Dimacs2Lit(m))
		}
		g.Add(z.LitNull)
	}
	return g
}

func model(g *gini.Gini, n int) Model {
	m := make(Model, n+1)
	for v := 1; v <= n; v++ {
		m[v] = g.Value(z.Var(v).Pos())
	}
	return m
}
