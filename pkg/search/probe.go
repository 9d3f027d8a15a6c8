package search

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tourney/sts/pkg/decode"
	"github.com/tourney/sts/pkg/encoding"
	"github.com/tourney/sts/pkg/solver"
	"github.com/tourney/sts/pkg/tournament"
)

// run is the state of one search. It is also the Position handed to
// tracers.
type run struct {
	d     *Driver
	ctx   context.Context
	in    tournament.Instance
	out   *Outcome
	start time.Time
	log   logrus.FieldLogger

	low, high int
	last      Probe
	// unproven is set once a probe was skipped after a crash; crash
	// holds the latest such failure.
	unproven bool
	crash    error
}

func (d *Driver) begin(ctx context.Context, in tournament.Instance, mode Mode) (*run, context.CancelFunc, error) {
	if _, err := tournament.NewInstance(in.Teams); err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, d.budget)
	r := &run{
		d:     d,
		ctx:   ctx,
		in:    in,
		out:   &Outcome{Instance: in, Mode: mode, Bound: NoBound},
		start: time.Now(),
		log: d.logger.WithFields(logrus.Fields{
			"n":       in.Teams,
			"backend": d.backend.Name(),
			"mode":    string(mode),
		}),
		low:  0,
		high: in.MaxBound(),
	}
	return r, cancel, nil
}

// probe encodes a fresh formula, solves it within the remaining budget
// and decodes the model. Backend failures and undecodable models are
// reported in Probe.Err; the returned error is reserved for formulas
// that cannot be encoded at all.
func (r *run) probe(bound int, options ...encoding.Option) (Probe, tournament.Schedule, error) {
	p := Probe{Bound: bound}
	options = append(options, encoding.WithSymmetry(r.d.symmetry))
	if bound != NoBound {
		options = append(options, encoding.WithBound(bound))
	}
	f, err := encoding.Encode(r.in, options...)
	if err != nil {
		return p, nil, err
	}

	start := time.Now()
	var res solver.Result
	if f.Objective() == encoding.Weighted {
		res, err = r.d.backend.(solver.Optimizer).Optimize(r.ctx, f)
	} else {
		res, err = r.d.backend.Check(r.ctx, f)
	}
	p.Elapsed = time.Since(start)
	p.Status, p.Cost, p.Optimal = res.Status, res.Cost, res.Optimal

	var s tournament.Schedule
	switch {
	case errors.Is(err, solver.Incomplete):
		p.Status = solver.Unknown
	case err != nil:
		p.Status, p.Err = solver.Unknown, err
	case res.Status == solver.Sat:
		if s, err = r.schedule(f, res); err != nil {
			p.Status, p.Err = solver.Unknown, err
		}
	}

	entry := r.log.WithFields(logrus.Fields{
		"bound":   bound,
		"status":  p.Status.String(),
		"elapsed": p.Elapsed,
	})
	if f.Objective() == encoding.Weighted && p.Status == solver.Sat {
		entry = entry.WithField("cost", p.Cost)
	}
	if p.Err != nil {
		entry.WithError(p.Err).Warn("probe failed")
	} else {
		entry.Debug("probe")
	}

	r.last = p
	r.out.Probes = append(r.out.Probes, p)
	r.d.tracer.Trace(r)
	return p, s, nil
}

// schedule decodes a satisfying model and checks it against the rules
// the formula enforced.
func (r *run) schedule(f *encoding.Formula, res solver.Result) (tournament.Schedule, error) {
	s, err := decode.FromModel(r.in, f.Atoms(), res.Model.Value)
	if err != nil {
		return nil, err
	}
	var bound *int
	if b, ok := f.Bound(); ok {
		bound = &b
	}
	if f.Objective() == encoding.Weighted {
		// some indicator at or below the cost holds
		c := res.Cost
		bound = &c
	}
	if err := tournament.Validate(r.in, s, bound); err != nil {
		return nil, errors.Wrap(err, "decoded schedule")
	}
	return s, nil
}

// crashed applies the crash policy to a failed probe. It returns a
// non-nil error when the run must stop.
func (r *run) crashed(p Probe) error {
	if r.d.crashPolicy == Abort {
		if p.Bound == NoBound {
			return errors.Wrap(p.Err, "probe failed")
		}
		return errors.Wrapf(p.Err, "probe at bound %d failed", p.Bound)
	}
	r.unproven = true
	r.crash = p.Err
	return nil
}

func (r *run) record(bound int, s tournament.Schedule) {
	r.out.Bound = bound
	r.out.Schedule = s
}

// stopped is the state of a run interrupted before it could finish.
func (r *run) stopped() State {
	if r.out.Schedule != nil {
		return ExhaustedBudget
	}
	return NoSolution
}

func (r *run) finish(state State) *Outcome {
	r.out.State = state
	r.out.Elapsed = time.Since(r.start)
	r.log.WithFields(logrus.Fields{
		"state":   state.String(),
		"bound":   r.out.Bound,
		"probes":  len(r.out.Probes),
		"elapsed": r.out.Elapsed,
	}).Info("search finished")
	return r.out
}

// exhausted handles a bound domain in which every probe was refuted.
// One structural probe without fairness tells an infeasible instance
// from a broken fairness encoding. If a bound was skipped after a crash
// the domain was never fully refuted and the run is left undiagnosed.
func (r *run) exhausted() (*Outcome, error) {
	if r.unproven {
		return r.finish(NoSolution), r.unanswered()
	}
	p, _, err := r.probe(NoBound)
	if err != nil {
		return nil, err
	}
	diag := &NoSolutionError{
		Instance:   r.in,
		Structural: p.Status == solver.Unsat,
		Diagnosed:  p.Status != solver.Unknown,
	}
	if diag.Diagnosed && !diag.Structural {
		r.log.Error(diag.Error())
	}
	return r.finish(NoSolution), diag
}

// unanswered is the error of a run that found nothing because the
// backend crashed.
func (r *run) unanswered() error {
	return &NoSolutionError{Instance: r.in, Cause: r.crash}
}

func (r *run) Instance() tournament.Instance {
	return r.in
}

func (r *run) Interval() (low, high int) {
	return r.low, r.high
}

func (r *run) Best() (int, bool) {
	return r.out.Bound, r.out.Schedule != nil
}

func (r *run) Last() Probe {
	return r.last
}
