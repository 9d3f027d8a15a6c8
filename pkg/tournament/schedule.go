package tournament

import (
	"fmt"
	"strings"
)

// Match is an ordered pairing: Match[0] plays at home against Match[1].
// It marshals to the two element array [home, away].
type Match [2]int

func (m Match) Home() int { return m[0] }

func (m Match) Away() int { return m[1] }

func (m Match) String() string {
	return fmt.Sprintf("%d-%d", m[0], m[1])
}

// Schedule is a periods x weeks matrix. A nil cell is an empty slot and
// never appears in a schedule that passed Validate.
type Schedule [][]*Match

// NewSchedule returns an empty schedule shaped for in.
func NewSchedule(in Instance) Schedule {
	s := make(Schedule, in.Periods())
	for p := range s {
		s[p] = make([]*Match, in.Weeks())
	}
	return s
}

// Set places the match home-away in period p and week w, both 1-based.
func (s Schedule) Set(p, w, home, away int) {
	m := Match{home, away}
	s[p-1][w-1] = &m
}

// At returns the match at period p and week w, both 1-based.
func (s Schedule) At(p, w int) *Match {
	return s[p-1][w-1]
}

// Complete reports whether every slot is filled.
func (s Schedule) Complete() bool {
	for _, row := range s {
		for _, cell := range row {
			if cell == nil {
				return false
			}
		}
	}
	return true
}

// HomeCounts returns, for each team 1..n, the number of home games it
// plays in s. Index 0 is unused.
func (s Schedule) HomeCounts(n int) []int {
	counts := make([]int, n+1)
	for _, row := range s {
		for _, cell := range row {
			if cell != nil && cell.Home() >= 1 && cell.Home() <= n {
				counts[cell.Home()]++
			}
		}
	}
	return counts
}

// MaxImbalance returns the largest |home - away| over all teams.
func (s Schedule) MaxImbalance(n int) int {
	home := s.HomeCounts(n)
	games := make([]int, n+1)
	for _, row := range s {
		for _, cell := range row {
			if cell == nil {
				continue
			}
			for _, t := range cell {
				if t >= 1 && t <= n {
					games[t]++
				}
			}
		}
	}
	worst := 0
	for t := 1; t <= n; t++ {
		d := home[t] - (games[t] - home[t])
		if d < 0 {
			d = -d
		}
		if d > worst {
			worst = d
		}
	}
	return worst
}

func (s Schedule) String() string {
	var b strings.Builder
	for p, row := range s {
		fmt.Fprintf(&b, "P%d:", p+1)
		for _, cell := range row {
			if cell == nil {
				b.WriteString(" ---")
				continue
			}
			fmt.Fprintf(&b, " %s", cell)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
