package tournament

import (
	"fmt"
	"strings"
)

// Violations lists every way a schedule breaks the tournament rules.
type Violations []string

func (v Violations) Error() string {
	const msg = "schedule is not valid"
	if len(v) == 0 {
		return msg
	}
	return fmt.Sprintf("%s: %s", msg, strings.Join(v, "; "))
}

// Validate checks s against the structural rules of in: the matrix
// shape, one match per slot, every unordered pair exactly once, every
// team exactly once per week and at most twice per period. If bound is
// non-nil, every team's home/away difference must not exceed it. All
// violations are reported together.
func Validate(in Instance, s Schedule, bound *int) error {
	var errs Violations
	n := in.Teams

	if len(s) != in.Periods() {
		return Violations{fmt.Sprintf("expected %d periods, found %d", in.Periods(), len(s))}
	}
	for p, row := range s {
		if len(row) != in.Weeks() {
			return Violations{fmt.Sprintf("period %d: expected %d weeks, found %d", p+1, in.Weeks(), len(row))}
		}
	}

	type pair struct{ a, b int }
	seen := make(map[pair]int, in.Matches())
	perPeriod := make([][]int, in.Periods())
	for p := range perPeriod {
		perPeriod[p] = make([]int, n+1)
	}

	for w := 0; w < in.Weeks(); w++ {
		perWeek := make([]int, n+1)
		for p := 0; p < in.Periods(); p++ {
			m := s[p][w]
			if m == nil {
				errs = append(errs, fmt.Sprintf("slot P%d W%d is empty", p+1, w+1))
				continue
			}
			h, a := m.Home(), m.Away()
			if h < 1 || h > n || a < 1 || a > n || h == a {
				errs = append(errs, fmt.Sprintf("slot P%d W%d holds invalid match %s", p+1, w+1, m))
				continue
			}
			key := pair{h, a}
			if h > a {
				key = pair{a, h}
			}
			seen[key]++
			perWeek[h]++
			perWeek[a]++
			perPeriod[p][h]++
			perPeriod[p][a]++
		}
		for t := 1; t <= n; t++ {
			if perWeek[t] != 1 {
				errs = append(errs, fmt.Sprintf("team %d plays %d times in week %d", t, perWeek[t], w+1))
			}
		}
	}

	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			if c := seen[pair{i, j}]; c != 1 {
				errs = append(errs, fmt.Sprintf("pair %d-%d meets %d times", i, j, c))
			}
		}
	}

	for p := range perPeriod {
		for t := 1; t <= n; t++ {
			if perPeriod[p][t] > 2 {
				errs = append(errs, fmt.Sprintf("team %d appears %d times in period %d", t, perPeriod[p][t], p+1))
			}
		}
	}

	if bound != nil {
		if got := s.MaxImbalance(n); got > *bound {
			errs = append(errs, fmt.Sprintf("home/away imbalance %d exceeds bound %d", got, *bound))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
