// Package atoms maps canonical decision-atom keys to stable variable
// identities for a single encoding session.
package atoms

import "fmt"

// Kind distinguishes the families of decision atoms.
type Kind uint8

const (
	// Home is the directed match atom: team I plays at home against
	// team J in period P of week W.
	Home Kind = iota + 1
	// Bound is the fairness indicator atom for bound I: when true,
	// every team's home/away difference is at most I.
	Bound
)

func (k Kind) String() string {
	switch k {
	case Home:
		return "home"
	case Bound:
		return "bound"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Key is the canonical identity of a decision atom. Fields that do not
// apply to a Kind are zero.
type Key struct {
	Kind Kind
	I, J int
	P, W int
}

// Match returns the key of the atom "i home against j in (p, w)".
func Match(i, j, p, w int) Key {
	return Key{Kind: Home, I: i, J: j, P: p, W: w}
}

// Indicator returns the key of the fairness indicator for bound b.
func Indicator(b int) Key {
	return Key{Kind: Bound, I: b}
}

func (k Key) String() string {
	return Name(k)
}

// ID is the identity of an allocated atom. IDs start at 1 and are
// assigned in first-request order, so they double as DIMACS variables.
type ID int

// Allocator hands out IDs for Keys. It is scoped to one encoding
// session and is not safe for concurrent use; independent sessions use
// independent Allocators.
type Allocator struct {
	ids  map[Key]ID
	keys []Key
}

// NewAllocator returns an empty Allocator.
func NewAllocator() *Allocator {
	return &Allocator{ids: make(map[Key]ID)}
}

// NewAllocatorCap returns an empty Allocator sized for capHint atoms.
func NewAllocatorCap(capHint int) *Allocator {
	return &Allocator{
		ids:  make(map[Key]ID, capHint),
		keys: make([]Key, 0, capHint),
	}
}

// Allocate returns the ID of k, assigning the next free ID on first
// request. Repeated calls with the same key return the same ID.
func (a *Allocator) Allocate(k Key) ID {
	if id, ok := a.ids[k]; ok {
		return id
	}
	a.keys = append(a.keys, k)
	id := ID(len(a.keys))
	a.ids[k] = id
	return id
}

// Lookup returns the ID of k without allocating.
func (a *Allocator) Lookup(k Key) (ID, bool) {
	id, ok := a.ids[k]
	return id, ok
}

// KeyOf returns the key that was allocated id.
func (a *Allocator) KeyOf(id ID) (Key, bool) {
	if id < 1 || int(id) > len(a.keys) {
		return Key{}, false
	}
	return a.keys[id-1], true
}

// Len returns the number of allocated atoms.
func (a *Allocator) Len() int {
	return len(a.keys)
}

// Keys returns all allocated keys in ID order. The slice must not be
// modified.
func (a *Allocator) Keys() []Key {
	return a.keys
}
