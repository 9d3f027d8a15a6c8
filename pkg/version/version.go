package version

import (
	"fmt"

	"github.com/tourney/sts/pkg/encoding/atoms"
)

// Version indicates what release of sts the binary belongs to
var Version string

// GitCommit indicates which git commit the binary was built from
var GitCommit string

// String returns a pretty string concatenation of Version, GitCommit
// and the atom grammar the binary reads and writes.
func String() string {
	return fmt.Sprintf("sts version:  %s\n Git commit: %s\n Atom grammar: %s\n", orUnknown(Version), orUnknown(GitCommit), atoms.GrammarVersion)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
