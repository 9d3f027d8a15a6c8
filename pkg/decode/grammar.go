package decode

import (
	"bufio"
	"io"
	"strings"

	"github.com/tourney/sts/pkg/encoding/atoms"
)

// CheckGrammar reads the stamp comment of an exported SMT-LIB, DIMACS or
// WCNF file and fails unless it names the current atom grammar.
func CheckGrammar(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		var stamp string
		switch {
		case strings.HasPrefix(line, ";"):
			stamp = strings.TrimPrefix(line, ";")
		case strings.HasPrefix(line, "c "):
			stamp = strings.TrimPrefix(line, "c ")
		default:
			continue
		}
		stamp = strings.TrimSpace(stamp)
		if !strings.HasPrefix(stamp, "sts-atoms ") {
			continue
		}
		if stamp != atoms.GrammarVersion {
			return malformed("atom grammar %q, want %q", stamp, atoms.GrammarVersion)
		}
		return nil
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return malformed("no atom grammar stamp")
}
