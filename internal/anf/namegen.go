package anf

import (
	"strconv"

	"github.com/funvibe/jankgo/internal/config"
)

// NameGen hands out compiler-generated identifiers, grounded on the
// teacher's Compiler.localCount counter idiom (internal/vm/compiler.go):
// one monotonically increasing counter, stringified lazily at each call
// rather than pre-allocating a name table.
type NameGen struct {
	next int
}

func NewNameGen() *NameGen { return &NameGen{} }

// Fresh returns a new identifier prefixed with config.NameGenPrefix so it
// can never collide with a source-level identifier (source identifiers are
// rejected by the front end if they start with "jank$").
func (g *NameGen) Fresh(hint string) string {
	n := g.next
	g.next++
	if hint == "" {
		hint = "t"
	}
	return config.NameGenPrefix + hint + strconv.Itoa(n)
}
