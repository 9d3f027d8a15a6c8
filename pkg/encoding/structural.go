package encoding

// structural allocates every match atom in slot order and emits the
// four structural families. Slot order keeps atom IDs identical across
// encodings of the same instance regardless of options.
func (b *builder) structural() {
	n, periods, weeks := b.in.Teams, b.in.Periods(), b.in.Weeks()

	for p := 1; p <= periods; p++ {
		for w := 1; w <= weeks; w++ {
			var slot []Lit
			for i := 1; i <= n; i++ {
				for j := i + 1; j <= n; j++ {
					slot = b.plays(slot, i, j, p, w)
				}
			}
			b.add(Constraint{
				Family: Slot,
				Label:  b.label("slot P%d W%d", p, w),
				Op:     Exactly,
				K:      1,
				Lits:   slot,
			})
		}
	}

	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			var meetings []Lit
			for p := 1; p <= periods; p++ {
				for w := 1; w <= weeks; w++ {
					meetings = b.plays(meetings, i, j, p, w)
				}
			}
			b.add(Constraint{
				Family: Pair,
				Label:  b.label("pair %d-%d", i, j),
				Op:     Exactly,
				K:      1,
				Lits:   meetings,
			})
		}
	}

	for t := 1; t <= n; t++ {
		for w := 1; w <= weeks; w++ {
			var games []Lit
			for p := 1; p <= periods; p++ {
				games = b.games(games, t, p, w)
			}
			b.add(Constraint{
				Family: Weekly,
				Label:  b.label("team %d week %d", t, w),
				Op:     Exactly,
				K:      1,
				Lits:   games,
			})
		}
	}

	for t := 1; t <= n; t++ {
		for p := 1; p <= periods; p++ {
			var games []Lit
			for w := 1; w <= weeks; w++ {
				games = b.games(games, t, p, w)
			}
			b.add(Constraint{
				Family: Period,
				Label:  b.label("team %d period %d", t, p),
				Op:     AtMost,
				K:      2,
				Lits:   games,
			})
		}
	}
}

// games appends every atom in which t plays in (p, w), either side.
func (b *builder) games(dst []Lit, t, p, w int) []Lit {
	for o := 1; o <= b.in.Teams; o++ {
		if o != t {
			dst = b.plays(dst, t, o, p, w)
		}
	}
	return dst
}

// homeGames returns every atom in which t plays at home.
func (b *builder) homeGames(t int) []Lit {
	var out []Lit
	for p := 1; p <= b.in.Periods(); p++ {
		for w := 1; w <= b.in.Weeks(); w++ {
			for o := 1; o <= b.in.Teams; o++ {
				if o != t {
					out = append(out, b.home(t, o, p, w))
				}
			}
		}
	}
	return out
}
