// Package export writes constraint sets in the text formats read by
// external solvers.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tourney/sts/pkg/encoding"
	"github.com/tourney/sts/pkg/encoding/atoms"
	"github.com/tourney/sts/pkg/encoding/cnf"
)

// Format is an export format.
type Format string

const (
	DIMACS Format = "cnf"
	WCNF   Format = "wcnf"
	SMTLIB Format = "smt2"
)

// FileName returns the conventional file name of an export for n teams.
// Only SMT-LIB exports carry a label.
func FileName(format Format, label string, n int) string {
	if format == SMTLIB && label != "" {
		return fmt.Sprintf("%s_%d.%s", label, n, format)
	}
	return fmt.Sprintf("%d.%s", n, format)
}

// WriteDIMACS writes the hard clauses of c. Soft clauses are dropped.
func WriteDIMACS(w io.Writer, c *cnf.CNF) error {
	bw := bufio.NewWriter(w)
	header(bw, "c", c)
	fmt.Fprintf(bw, "p cnf %d %d\n", c.Vars, len(c.Clauses))
	for _, cl := range c.Clauses {
		clause(bw, "", cl)
	}
	return bw.Flush()
}

// WriteWCNF writes c as weighted partial MaxSAT. Hard clauses carry
// the top weight, one more than the total soft weight.
func WriteWCNF(w io.Writer, c *cnf.CNF) error {
	top := c.TotalSoftWeight() + 1
	bw := bufio.NewWriter(w)
	header(bw, "c", c)
	fmt.Fprintf(bw, "p wcnf %d %d %d\n", c.Vars, len(c.Clauses)+len(c.Soft), top)
	hard := strconv.Itoa(top)
	for _, cl := range c.Clauses {
		clause(bw, hard, cl)
	}
	for _, s := range c.Soft {
		clause(bw, strconv.Itoa(s.Weight), s.Lits)
	}
	return bw.Flush()
}

func header(bw *bufio.Writer, comment string, c *cnf.CNF) {
	fmt.Fprintf(bw, "%s %s\n", comment, atoms.GrammarVersion)
	fmt.Fprintf(bw, "%s atoms 1..%d, true %d\n", comment, c.Atoms, c.True())
}

func clause(bw *bufio.Writer, weight string, lits []int) {
	if weight != "" {
		bw.WriteString(weight)
		bw.WriteByte(' ')
	}
	for _, m := range lits {
		bw.WriteString(strconv.Itoa(m))
		bw.WriteByte(' ')
	}
	bw.WriteString("0\n")
}

// WriteSMTLIB writes f as a QF_LIA problem over Bool atoms. Each
// cardinality group becomes a linear sum of (ite x 1 0) terms. Soft
// preferences are written as assert-soft.
func WriteSMTLIB(w io.Writer, f *encoding.Formula) error {
	a := f.Atoms()
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "; %s\n", atoms.GrammarVersion)
	fmt.Fprintf(bw, "; %s objective=%s symmetry=%s", f.Instance(), f.Objective(), f.Symmetry())
	if b, ok := f.Bound(); ok {
		fmt.Fprintf(bw, " bound=%d", b)
	}
	bw.WriteString("\n(set-logic QF_LIA)\n")
	for _, k := range a.Keys() {
		fmt.Fprintf(bw, "(declare-fun %s () Bool)\n", atoms.Name(k))
	}
	for _, c := range f.Constraints() {
		fmt.Fprintf(bw, "(assert %s)\n", smtConstraint(a, c))
	}
	for _, p := range f.Soft() {
		fmt.Fprintf(bw, "(assert-soft %s :weight %d)\n", smtLit(a, p.Lit), p.Weight)
	}
	bw.WriteString("(check-sat)\n(get-model)\n")
	return bw.Flush()
}

func smtConstraint(a *atoms.Allocator, c encoding.Constraint) string {
	body := "false"
	if !c.Contradiction() {
		terms := make([]string, len(c.Lits))
		for i, m := range c.Lits {
			terms[i] = fmt.Sprintf("(ite %s 1 0)", smtLit(a, m))
		}
		var sum string
		switch len(terms) {
		case 0:
			sum = "0"
		case 1:
			sum = terms[0]
		default:
			sum = "(+ " + strings.Join(terms, " ") + ")"
		}
		op := map[encoding.Op]string{
			encoding.AtLeast: ">=",
			encoding.AtMost:  "<=",
			encoding.Exactly: "=",
		}[c.Op]
		body = fmt.Sprintf("(%s %s %d)", op, sum, c.K)
	}
	if c.Guard != 0 {
		return fmt.Sprintf("(=> %s %s)", smtLit(a, c.Guard), body)
	}
	return body
}

func smtLit(a *atoms.Allocator, m encoding.Lit) string {
	k, _ := a.KeyOf(m.ID())
	if m.IsPos() {
		return atoms.Name(k)
	}
	return "(not " + atoms.Name(k) + ")"
}
