// Package search drives repeated encode and solve cycles to find the
// smallest home/away imbalance bound for which a schedule exists.
package search

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tourney/sts/pkg/encoding"
	"github.com/tourney/sts/pkg/solver"
	"github.com/tourney/sts/pkg/tournament"
)

// DefaultBudget is the wall-clock budget of one instance.
const DefaultBudget = 300 * time.Second

// State is the terminal state of a run.
type State int

const (
	// Converged means the reported bound is proven optimal, or for a
	// decision run, that a schedule was found.
	Converged State = iota + 1
	// ExhaustedBudget means a schedule was found but its bound is not
	// proven optimal.
	ExhaustedBudget
	// NoSolution means no schedule was found.
	NoSolution
)

func (s State) String() string {
	switch s {
	case Converged:
		return "converged"
	case ExhaustedBudget:
		return "exhausted-budget"
	case NoSolution:
		return "no-solution"
	}
	return "probing"
}

// Mode selects how a run uses the backend.
type Mode string

const (
	// Decide solves the structural rules once, without fairness.
	Decide Mode = "decision"
	// Binary binary-searches the bound, one fresh encoding per probe.
	Binary Mode = "search"
	// Linear probes bounds upward from zero.
	Linear Mode = "linear"
	// Soft encodes the imbalance as preferences and optimizes once.
	Soft Mode = "soft"
)

// ParseMode returns the Mode named s.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Decide, Binary, Linear, Soft:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// CrashPolicy decides what a run does after a probe fails without a
// verdict.
type CrashPolicy int

const (
	// Abort stops the run and returns the failure.
	Abort CrashPolicy = iota
	// Continue treats the probe as unanswered and moves on. A run that
	// skipped a probe never claims optimality.
	Continue
)

// ParseCrashPolicy returns the policy named s.
func ParseCrashPolicy(s string) (CrashPolicy, error) {
	switch s {
	case "abort", "":
		return Abort, nil
	case "continue":
		return Continue, nil
	}
	return Abort, fmt.Errorf("unknown crash policy %q", s)
}

func (p CrashPolicy) String() string {
	if p == Continue {
		return "continue"
	}
	return "abort"
}

// NoBound marks a probe or outcome without a bound.
const NoBound = -1

// Probe records one encode and solve cycle.
type Probe struct {
	// Bound is the enforced bound, or NoBound.
	Bound   int
	Status  solver.Status
	Cost    int
	Optimal bool
	Elapsed time.Duration
	// Err is set when the backend failed or its model could not be
	// decoded into a valid schedule.
	Err error
}

// Outcome is the result of a run. Schedule is nil unless a schedule
// was found, in which case it passed tournament.Validate.
type Outcome struct {
	Instance tournament.Instance
	Mode     Mode
	State    State
	// Bound is the best bound found, or NoBound. For decision runs it
	// is the imbalance of the schedule found.
	Bound    int
	Schedule tournament.Schedule
	Probes   []Probe
	Elapsed  time.Duration
}

// Optimal reports whether the outcome is proven.
func (o *Outcome) Optimal() bool {
	return o.State == Converged
}

// Objective reports whether Bound is an optimized value.
func (o *Outcome) Objective() bool {
	return o.Mode != Decide && o.Bound != NoBound
}

// NoSolutionError is returned when every bound was refuted. For a
// structurally feasible instance this cannot happen, so the driver
// decides the structural rules alone to tell the two causes apart.
type NoSolutionError struct {
	Instance tournament.Instance
	// Structural is true when the structural rules alone are
	// unsatisfiable. Otherwise the fairness encoding refuted every
	// bound although a schedule exists, which is a defect.
	Structural bool
	// Diagnosed is false when the structural check itself produced no
	// verdict, or was never run because the backend crashed.
	Diagnosed bool
	// Cause is the last crash of a run that skipped bounds.
	Cause error
}

func (e *NoSolutionError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("%s: no schedule found, %v", e.Instance, e.Cause)
	case !e.Diagnosed:
		return fmt.Sprintf("%s: no bound is satisfiable and the structural check was inconclusive", e.Instance)
	case e.Structural:
		return fmt.Sprintf("%s: no schedule exists", e.Instance)
	}
	return fmt.Sprintf("%s: every bound was refuted although a schedule exists", e.Instance)
}

func (e *NoSolutionError) Unwrap() error {
	return e.Cause
}

// ErrNotOptimizer is returned by soft runs on a backend without an
// optimizer.
var ErrNotOptimizer = errors.New("backend cannot optimize soft preferences")

// Driver runs searches against one backend. It holds no per-run state
// and may be shared between goroutines.
type Driver struct {
	backend     solver.Backend
	symmetry    encoding.SymmetryRule
	budget      time.Duration
	crashPolicy CrashPolicy
	logger      logrus.FieldLogger
	tracer      Tracer
}

type Option func(d *Driver)

func WithSymmetry(r encoding.SymmetryRule) Option {
	return func(d *Driver) {
		d.symmetry = r
	}
}

// WithBudget sets the wall-clock budget of each run. Every probe gets
// whatever remains of it.
func WithBudget(budget time.Duration) Option {
	return func(d *Driver) {
		d.budget = budget
	}
}

func WithCrashPolicy(p CrashPolicy) Option {
	return func(d *Driver) {
		d.crashPolicy = p
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

func WithTracer(t Tracer) Option {
	return func(d *Driver) {
		d.tracer = t
	}
}

var defaults = []Option{
	func(d *Driver) {
		if d.budget <= 0 {
			d.budget = DefaultBudget
		}
	},
	func(d *Driver) {
		if d.logger == nil {
			l := logrus.New()
			l.Out = io.Discard
			d.logger = l
		}
	},
	func(d *Driver) {
		if d.tracer == nil {
			d.tracer = DefaultTracer{}
		}
	},
}

// New returns a Driver for backend.
func New(backend solver.Backend, options ...Option) *Driver {
	d := &Driver{backend: backend}
	for _, option := range append(options, defaults...) {
		option(d)
	}
	return d
}

// Backend returns the backend d probes.
func (d *Driver) Backend() solver.Backend {
	return d.backend
}

// Budget returns the per-run budget.
func (d *Driver) Budget() time.Duration {
	return d.budget
}

// Run dispatches to the run of the given mode.
func (d *Driver) Run(ctx context.Context, in tournament.Instance, mode Mode) (*Outcome, error) {
	switch mode {
	case Decide:
		return d.Decide(ctx, in)
	case Binary:
		return d.BinarySearch(ctx, in)
	case Linear:
		return d.LinearScan(ctx, in)
	case Soft:
		return d.Optimize(ctx, in)
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}
