package solver

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrMissingBackend is returned by Lookup for an unregistered name.
var ErrMissingBackend = errors.New("no such backend")

var backends = map[string]func() Backend{
	"gini":      func() Backend { return NewGini() },
	"gophersat": func() Backend { return Gophersat{} },
	"maxsat":    func() Backend { return MaxSAT{} },
}

// Lookup returns a fresh instance of the named backend.
func Lookup(name string) (Backend, error) {
	newBackend, ok := backends[name]
	if !ok {
		return nil, errors.Wrapf(ErrMissingBackend, "%q (have %v)", name, Names())
	}
	return newBackend(), nil
}

// Names lists the registered backends in order.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
