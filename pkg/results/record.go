// Package results converts search outcomes into result records and
// keeps them in a JSON store shared by all runs.
package results

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tourney/sts/pkg/search"
	"github.com/tourney/sts/pkg/tournament"
)

// Record is the stored result of one approach on one instance.
type Record struct {
	// Time is whole seconds, capped at the budget.
	Time    int  `json:"time" yaml:"time"`
	Optimal bool `json:"optimal" yaml:"optimal"`
	// Obj is the optimized bound, or nil for decision runs and runs
	// without a schedule.
	Obj *int `json:"obj" yaml:"obj"`
	// Sol is never null when marshalled; a missing schedule is [].
	Sol tournament.Schedule `json:"sol" yaml:"sol"`
}

type record Record

func (r Record) MarshalJSON() ([]byte, error) {
	if r.Sol == nil {
		r.Sol = tournament.Schedule{}
	}
	return json.Marshal(record(r))
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw record
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Sol == nil {
		raw.Sol = tournament.Schedule{}
	}
	*r = Record(raw)
	return nil
}

// Seconds converts elapsed time to the record's whole seconds, capped
// at budget.
func Seconds(elapsed, budget time.Duration) int {
	if elapsed > budget {
		elapsed = budget
	}
	return int(elapsed / time.Second)
}

// Timeout is the record of a run that produced nothing within budget.
func Timeout(budget time.Duration) Record {
	return Record{Time: Seconds(budget, budget), Sol: tournament.Schedule{}}
}

// FromOutcome builds the record of o. A run that found nothing before
// its budget ran out is recorded as a timeout.
func FromOutcome(o *search.Outcome, budget time.Duration) Record {
	if o.Schedule == nil && o.Elapsed >= budget {
		return Timeout(budget)
	}
	r := Record{
		Time:    Seconds(o.Elapsed, budget),
		Optimal: o.Optimal() && o.Schedule != nil,
		Sol:     o.Schedule,
	}
	if o.Objective() && o.Schedule != nil {
		obj := o.Bound
		r.Obj = &obj
	}
	if r.Sol == nil {
		r.Sol = tournament.Schedule{}
	}
	return r
}

// Approach names a backend, mode and symmetry combination, as used in
// record keys: the backend, then the mode unless it is a plain
// decision, then "sb" when symmetry breaking is on.
func Approach(backend string, mode search.Mode, symmetry bool) string {
	parts := []string{backend}
	if mode != search.Decide {
		parts = append(parts, string(mode))
	}
	if symmetry {
		parts = append(parts, "sb")
	}
	return strings.Join(parts, "_")
}

// Key is the store key of an approach on n teams.
func Key(approach string, n int) string {
	return fmt.Sprintf("%s_%d", approach, n)
}
