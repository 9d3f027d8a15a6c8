package tournament

import "fmt"

// ConfigError reports an instance or bound that cannot be encoded.
// It is always raised before any constraint is generated.
type ConfigError struct {
	Field  string
	Value  int
	Reason string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %d: %s", e.Field, e.Value, e.Reason)
}

// Instance describes a single round-robin tournament over Teams teams.
type Instance struct {
	Teams int
}

// NewInstance returns the Instance for n teams, or a ConfigError if n
// is not an even number of at least two.
func NewInstance(n int) (Instance, error) {
	if n < 2 {
		return Instance{}, ConfigError{Field: "n", Value: n, Reason: "at least two teams are required"}
	}
	if n%2 != 0 {
		return Instance{}, ConfigError{Field: "n", Value: n, Reason: "the number of teams must be even"}
	}
	return Instance{Teams: n}, nil
}

// Periods is the number of matches played in every week.
func (in Instance) Periods() int {
	return in.Teams / 2
}

// Weeks is the number of rounds; every team plays once per week.
func (in Instance) Weeks() int {
	return in.Teams - 1
}

// Matches is the number of unordered pairs, which is also the number
// of slots in the schedule.
func (in Instance) Matches() int {
	return in.Teams * (in.Teams - 1) / 2
}

// MaxBound is the largest meaningful imbalance bound.
func (in Instance) MaxBound() int {
	return in.Teams - 1
}

// CheckBound returns a ConfigError if b lies outside [0, n-1].
func (in Instance) CheckBound(b int) error {
	if b < 0 || b > in.MaxBound() {
		return ConfigError{
			Field:  "bound",
			Value:  b,
			Reason: fmt.Sprintf("must lie in [0,%d]", in.MaxBound()),
		}
	}
	return nil
}

// HomeWindow returns the inclusive range of home games a team may play
// when its home/away difference is bounded by b: exactly the h with
// |2h - games| <= b. The window is empty (min > max) when no home count
// meets the bound.
func (in Instance) HomeWindow(b int) (min, max int) {
	games := in.Weeks()
	return (games - b + 1) / 2, (games + b) / 2
}

// WindowFeasible reports whether the home window for bound b can
// possibly cover every match: each match has exactly one home team, so
// the per-team windows must admit Matches() home games in total.
func (in Instance) WindowFeasible(b int) bool {
	min, max := in.HomeWindow(b)
	return in.Teams*min <= in.Matches() && in.Matches() <= in.Teams*max
}

func (in Instance) String() string {
	return fmt.Sprintf("sts(n=%d)", in.Teams)
}
