package atoms

import (
	"fmt"
	"strconv"
	"strings"
)

// GrammarVersion identifies the atom naming scheme. Encoders stamp it
// into textual exports and decoders refuse text stamped with any other
// version.
const GrammarVersion = "sts-atoms v1"

// Name renders k in the canonical grammar:
//
//	home  := "H_" int "_" int "_P" int "_W" int
//	bound := "B_" int
func Name(k Key) string {
	switch k.Kind {
	case Home:
		return "H_" + strconv.Itoa(k.I) + "_" + strconv.Itoa(k.J) +
			"_P" + strconv.Itoa(k.P) + "_W" + strconv.Itoa(k.W)
	case Bound:
		return "B_" + strconv.Itoa(k.I)
	}
	return fmt.Sprintf("?%d_%d_%d_%d_%d", k.Kind, k.I, k.J, k.P, k.W)
}

// SyntaxError reports a name that does not follow the atom grammar.
type SyntaxError struct {
	Name   string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("atom %q: offset %d: %s", e.Name, e.Offset, e.Msg)
}

// Parse is the inverse of Name.
func Parse(name string) (Key, error) {
	sc := scanner{src: name}
	switch {
	case sc.literal("H_"):
		i := sc.number()
		sc.expect("_")
		j := sc.number()
		sc.expect("_P")
		p := sc.number()
		sc.expect("_W")
		w := sc.number()
		sc.end()
		if sc.err != nil {
			return Key{}, sc.err
		}
		return Match(i, j, p, w), nil
	case sc.literal("B_"):
		b := sc.number()
		sc.end()
		if sc.err != nil {
			return Key{}, sc.err
		}
		return Indicator(b), nil
	}
	return Key{}, &SyntaxError{Name: name, Msg: "unknown atom kind"}
}

// IsAtomName reports whether name belongs to the atom grammar, without
// validating its indices.
func IsAtomName(name string) bool {
	return strings.HasPrefix(name, "H_") || strings.HasPrefix(name, "B_")
}

type scanner struct {
	src string
	pos int
	err error
}

func (s *scanner) fail(msg string) {
	if s.err == nil {
		s.err = &SyntaxError{Name: s.src, Offset: s.pos, Msg: msg}
	}
}

func (s *scanner) literal(lit string) bool {
	if s.err != nil || !strings.HasPrefix(s.src[s.pos:], lit) {
		return false
	}
	s.pos += len(lit)
	return true
}

func (s *scanner) expect(lit string) {
	if !s.literal(lit) {
		s.fail(fmt.Sprintf("expected %q", lit))
	}
}

func (s *scanner) number() int {
	if s.err != nil {
		return 0
	}
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
	}
	if start == s.pos {
		s.fail("expected digits")
		return 0
	}
	v, err := strconv.Atoi(s.src[start:s.pos])
	if err != nil {
		s.fail(err.Error())
		return 0
	}
	return v
}

func (s *scanner) end() {
	if s.err == nil && s.pos != len(s.src) {
		s.fail("trailing characters")
	}
}
