package search

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tourney/sts/pkg/encoding"
	"github.com/tourney/sts/pkg/solver"
	"github.com/tourney/sts/pkg/tournament"
)

// BinarySearch finds the smallest satisfiable bound in [0, n-1].
// Satisfiable bounds are upward closed, so each refuted midpoint rules
// out everything below it. An unanswered probe ends the search at once
// with the best bound so far; it is never read as a refutation.
func (d *Driver) BinarySearch(ctx context.Context, in tournament.Instance) (*Outcome, error) {
	r, cancel, err := d.begin(ctx, in, Binary)
	if err != nil {
		return nil, err
	}
	defer cancel()

	for r.low <= r.high {
		if r.ctx.Err() != nil {
			return r.finish(r.stopped()), nil
		}
		mid := (r.low + r.high) / 2
		p, s, err := r.probe(mid)
		if err != nil {
			return nil, err
		}
		switch {
		case p.Err != nil:
			if err := r.crashed(p); err != nil {
				return r.finish(r.stopped()), err
			}
			r.low = mid + 1
		case p.Status == solver.Sat:
			r.record(mid, s)
			r.high = mid - 1
		case p.Status == solver.Unsat:
			r.low = mid + 1
		default:
			return r.finish(r.stopped()), nil
		}
	}

	if r.out.Schedule == nil {
		return r.exhausted()
	}
	if r.unproven {
		return r.finish(ExhaustedBudget), nil
	}
	return r.finish(Converged), nil
}

// LinearScan probes bounds 0, 1, ... and stops at the first
// satisfiable one.
func (d *Driver) LinearScan(ctx context.Context, in tournament.Instance) (*Outcome, error) {
	r, cancel, err := d.begin(ctx, in, Linear)
	if err != nil {
		return nil, err
	}
	defer cancel()

	for b := 0; b <= in.MaxBound(); b++ {
		if r.ctx.Err() != nil {
			return r.finish(r.stopped()), nil
		}
		r.low = b
		p, s, err := r.probe(b)
		if err != nil {
			return nil, err
		}
		switch {
		case p.Err != nil:
			if err := r.crashed(p); err != nil {
				return r.finish(r.stopped()), err
			}
		case p.Status == solver.Sat:
			r.record(b, s)
			if r.unproven {
				return r.finish(ExhaustedBudget), nil
			}
			return r.finish(Converged), nil
		case p.Status == solver.Unsat:
		default:
			return r.finish(r.stopped()), nil
		}
	}
	return r.exhausted()
}

// Decide solves the structural rules once. The outcome's bound is the
// imbalance of whatever schedule the backend returned.
func (d *Driver) Decide(ctx context.Context, in tournament.Instance) (*Outcome, error) {
	r, cancel, err := d.begin(ctx, in, Decide)
	if err != nil {
		return nil, err
	}
	defer cancel()

	p, s, err := r.probe(NoBound)
	if err != nil {
		return nil, err
	}
	switch {
	case p.Err != nil:
		if err := r.crashed(p); err != nil {
			return r.finish(NoSolution), err
		}
		return r.finish(NoSolution), r.unanswered()
	case p.Status == solver.Sat:
		r.record(s.MaxImbalance(in.Teams), s)
		return r.finish(Converged), nil
	case p.Status == solver.Unsat:
		return r.finish(NoSolution), &NoSolutionError{Instance: in, Structural: true, Diagnosed: true}
	}
	return r.finish(NoSolution), nil
}

// Optimize minimizes the imbalance in a single weighted solve. The
// backend must implement solver.Optimizer.
func (d *Driver) Optimize(ctx context.Context, in tournament.Instance) (*Outcome, error) {
	if _, ok := d.backend.(solver.Optimizer); !ok {
		return nil, errors.Wrapf(ErrNotOptimizer, "backend %s", d.backend.Name())
	}
	r, cancel, err := d.begin(ctx, in, Soft)
	if err != nil {
		return nil, err
	}
	defer cancel()

	p, s, err := r.probe(NoBound, encoding.WithSoftObjective())
	if err != nil {
		return nil, err
	}
	switch {
	case p.Err != nil:
		if err := r.crashed(p); err != nil {
			return r.finish(NoSolution), err
		}
		return r.finish(NoSolution), r.unanswered()
	case p.Status == solver.Sat:
		r.record(p.Cost, s)
		if p.Optimal {
			return r.finish(Converged), nil
		}
		return r.finish(ExhaustedBudget), nil
	case p.Status == solver.Unsat:
		// every preference can be dropped, so only the structural
		// rules can fail
		return r.finish(NoSolution), &NoSolutionError{Instance: in, Structural: true, Diagnosed: true}
	}
	return r.finish(NoSolution), nil
}
