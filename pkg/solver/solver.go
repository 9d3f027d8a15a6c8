// Package solver runs constraint sets through external decision
// procedures. Every backend consumes an encoding.Formula and reports a
// model indexed by atom ID.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/tourney/sts/pkg/encoding"
	"github.com/tourney/sts/pkg/encoding/atoms"
)

// Incomplete is returned when a solve is cancelled or runs out of time
// before it reaches a verdict. The accompanying Result has status
// Unknown.
var Incomplete = errors.New("cancelled before a solution could be found")

// Status is the verdict of a decision procedure.
type Status int

const (
	Unknown Status = 0
	Sat     Status = 1
	Unsat   Status = -1
)

func (s Status) String() string {
	switch s {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	}
	return "unknown"
}

// Model holds the value of every atom by ID. Index 0 is unused.
type Model []bool

// Value returns the value of id. Atoms beyond the model are false.
func (m Model) Value(id atoms.ID) bool {
	if id < 1 || int(id) >= len(m) {
		return false
	}
	return m[id]
}

// Result is the outcome of a single probe.
type Result struct {
	Status Status
	Model  Model
	// Cost is the weight of violated soft preferences in Model. It is
	// only meaningful for results of Optimize.
	Cost int
	// Optimal reports that no model of lower cost exists.
	Optimal bool
}

// Backend is a decision procedure.
type Backend interface {
	Name() string
	// Check decides the hard constraints of f. Soft preferences are
	// ignored.
	Check(ctx context.Context, f *encoding.Formula) (Result, error)
}

// Optimizer is a Backend that can also minimize the weight of violated
// soft preferences.
type Optimizer interface {
	Backend
	Optimize(ctx context.Context, f *encoding.Formula) (Result, error)
}

// CrashError reports a backend that failed without a verdict.
type CrashError struct {
	Backend string
	Cause   interface{}
}

func (e *CrashError) Error() string {
	return fmt.Sprintf("backend %s crashed: %v", e.Backend, e.Cause)
}

// recoverCrash converts a panic in the current goroutine into a
// CrashError stored in *err. It must be deferred directly.
func recoverCrash(backend string, res *Result, err *error) {
	if r := recover(); r != nil {
		*res = Result{}
		*err = &CrashError{Backend: backend, Cause: r}
	}
}

// run calls fn on its own goroutine and abandons it if ctx is done
// first. Backends that cannot be interrupted use it; an abandoned call
// keeps running until it returns on its own.
func run(ctx context.Context, backend string, fn func() Result) (Result, error) {
	if ctx.Err() != nil {
		return Result{}, Incomplete
	}
	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		var o outcome
		defer func() {
			if r := recover(); r != nil {
				o = outcome{err: &CrashError{Backend: backend, Cause: r}}
			}
			done <- o
		}()
		o.res = fn()
	}()
	select {
	case <-ctx.Done():
		return Result{}, Incomplete
	case o := <-done:
		return o.res, o.err
	}
}
