// Package symbolic implements the symbolic (bounded enumeration + SMT)
// search strategy: semantically identical to pkg/search's enumerative
// strategy, but reframed around a search-mode selector and a per-query
// solver timeout, since every non-pruned candidate here pays for an SMT
// call. It dominates on small windows where candidate ranges are provably
// empty.
package symbolic

import (
	"log"

	"github.com/oisee/aarch64-optimizer/pkg/isa"
	"github.com/oisee/aarch64-optimizer/pkg/search"
	"github.com/oisee/aarch64-optimizer/pkg/state"
)

// Mode selects how candidate lengths are scanned.
type Mode int

const (
	// Linear scans candidate lengths in increasing order, same as
	// pkg/search's enumerative strategy.
	Linear Mode = iota
	// Binary (bisection on the cost bound) is accepted in configuration but
	// not implemented; Run falls back to Linear and says so.
	Binary
)

func (m Mode) String() string {
	if m == Binary {
		return "binary"
	}
	return "linear"
}

// Config holds the symbolic strategy's tunables: the shared search.Config
// plus the mode selector.
type Config struct {
	search.Config
	Mode Mode
}

// Run executes the symbolic strategy. Binary mode falls back to Linear with
// a logged notice.
func Run(isaDef isa.ISA, sem isa.Semantics, target []isa.Instruction, mask state.Mask, cfg Config) search.Result {
	if cfg.Mode == Binary {
		log.Printf("symbolic search: mode %s requested, falling back to %s (bisection not implemented)", Binary, Linear)
	}
	return search.Run(isaDef, sem, target, mask, cfg.Config)
}
