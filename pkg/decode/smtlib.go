package decode

import (
	"bufio"
	"io"
	"strings"

	"github.com/tourney/sts/pkg/encoding/atoms"
	"github.com/tourney/sts/pkg/solver"
)

// SMTOutput is the verdict and model printed by an SMT solver after
// (check-sat) and (get-model).
type SMTOutput struct {
	Status solver.Status
	Values map[string]bool
}

// ParseSMT reads SMT-LIB solver output. Atom definitions may be either
// Bool (true/false) or Int (0/1); definitions of other names are
// ignored.
func ParseSMT(r io.Reader) (*SMTOutput, error) {
	exprs, err := readSexprs(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}
	out := &SMTOutput{Values: make(map[string]bool)}
	for _, e := range exprs {
		if !e.isList() {
			switch e.atom {
			case "sat":
				out.Status = solver.Sat
			case "unsat":
				out.Status = solver.Unsat
			case "unknown", "timeout":
				out.Status = solver.Unknown
			default:
				return nil, malformed("unexpected %q", e.atom)
			}
			continue
		}
		if err := collectDefinitions(e, out.Values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// collectDefinitions walks e for (define-fun name () sort value) forms.
func collectDefinitions(e sexpr, values map[string]bool) error {
	if !e.isList() {
		return nil
	}
	if len(e.list) == 5 && e.list[0].atom == "define-fun" {
		name := e.list[1].atom
		if !atoms.IsAtomName(name) {
			return nil
		}
		v, err := atomValue(name, e.list[3], e.list[4])
		if err != nil {
			return err
		}
		values[name] = v
		return nil
	}
	for _, sub := range e.list {
		if err := collectDefinitions(sub, values); err != nil {
			return err
		}
	}
	return nil
}

func atomValue(name string, sort, value sexpr) (bool, error) {
	switch {
	case sort.atom == "Bool" && value.atom == "true":
		return true, nil
	case sort.atom == "Bool" && value.atom == "false":
		return false, nil
	case sort.atom == "Int" && value.atom == "1":
		return true, nil
	case sort.atom == "Int" && value.atom == "0":
		return false, nil
	}
	return false, malformed("%s: value %s of sort %s is not boolean", name, value, sort)
}

// sexpr is either an atom or a list.
type sexpr struct {
	atom string
	list []sexpr
}

func (e sexpr) isList() bool {
	return e.list != nil
}

func (e sexpr) String() string {
	if !e.isList() {
		return e.atom
	}
	parts := make([]string, len(e.list))
	for i, sub := range e.list {
		parts[i] = sub.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// readSexprs reads every top-level expression in r. Comments run from
// ';' to the end of the line; |quoted| symbols lose their bars.
func readSexprs(r *bufio.Reader) ([]sexpr, error) {
	var (
		stack [][]sexpr
		top   []sexpr
		tok   strings.Builder
	)
	emit := func(e sexpr) {
		if len(stack) == 0 {
			top = append(top, e)
			return
		}
		stack[len(stack)-1] = append(stack[len(stack)-1], e)
	}
	flush := func() {
		if tok.Len() > 0 {
			emit(sexpr{atom: tok.String()})
			tok.Reset()
		}
	}

	for {
		c, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch {
		case c == '(':
			flush()
			stack = append(stack, []sexpr{})
		case c == ')':
			flush()
			if len(stack) == 0 {
				return nil, malformed("unbalanced ')'")
			}
			list := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			emit(sexpr{list: list})
		case c == ';':
			flush()
			if _, err := r.ReadString('\n'); err != nil && err != io.EOF {
				return nil, err
			}
		case c == '|':
			quoted, err := r.ReadString('|')
			if err != nil {
				return nil, malformed("unterminated quoted symbol")
			}
			tok.WriteString(strings.TrimSuffix(quoted, "|"))
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()
		default:
			tok.WriteByte(c)
		}
	}
	flush()
	if len(stack) != 0 {
		return nil, malformed("unbalanced '('")
	}
	return top, nil
}
