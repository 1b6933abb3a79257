// Package smt is a self-contained solver for a 64-bit bitvector theory:
// constants, bitwise ops, guarded arithmetic, shifts, equality,
// if-then-else, a boolean layer, and Assert/Check/Model with a per-query
// step budget. It avoids any cgo binding to a native solver (see DESIGN.md)
// by bit-blasting every bitvector term into CNF (Tseitin encoding, with
// constant folding and gate hash-consing) and discharging the formula with
// a small DPLL SAT search.
package smt

// Lit is a CNF literal: a positive value names a variable asserted true, the
// negative value asserted false. 0 is never a valid literal.
type Lit int32

func (l Lit) negate() Lit { return -l }

// Result is the outcome of a Check call.
type Result int

const (
	Unsat Result = iota
	Sat
	Unknown
)

func (r Result) String() string {
	switch r {
	case Unsat:
		return "unsat"
	case Sat:
		return "sat"
	default:
		return "unknown"
	}
}

// Context owns the CNF formula under construction: variable allocation, the
// clause database shared by every BV built from it, and a gate cache that
// hash-conses structurally identical gates so equal subcircuits share one
// literal instead of spawning redundant Tseitin variables.
type Context struct {
	nextVar  int32
	clauses  [][]Lit
	trueLit  Lit
	varNames map[int32]string
	gates    map[gateKey]Lit
}

type gateOp uint8

const (
	gateAnd gateOp = iota
	gateOr
	gateXor
	gateMux
)

// gateKey identifies a gate up to commutativity (and/or/xor store their
// operands in sorted order; mux keeps sel/a/b positional).
type gateKey struct {
	op      gateOp
	a, b, c Lit
}

// NewContext creates an empty solving context.
func NewContext() *Context {
	ctx := &Context{nextVar: 1, varNames: map[int32]string{}, gates: map[gateKey]Lit{}}
	ctx.trueLit = ctx.newVar("true")
	ctx.addClause(ctx.trueLit)
	return ctx
}

func (c *Context) newVar(name string) Lit {
	v := c.nextVar
	c.nextVar++
	if name != "" {
		c.varNames[v] = name
	}
	return Lit(v)
}

func (c *Context) addClause(lits ...Lit) {
	cl := make([]Lit, len(lits))
	copy(cl, lits)
	c.clauses = append(c.clauses, cl)
}

func (c *Context) falseLit() Lit { return c.trueLit.negate() }

func sortPair(a, b Lit) (Lit, Lit) {
	if a > b {
		return b, a
	}
	return a, b
}

// andGate returns a literal equivalent to a && b: constant-folded where an
// operand is a known constant or the operands coincide, hash-consed
// otherwise, with the Tseitin clauses pinning the fresh literal added once.
func (c *Context) andGate(a, b Lit) Lit {
	switch {
	case a == c.falseLit() || b == c.falseLit() || a == b.negate():
		return c.falseLit()
	case a == c.trueLit:
		return b
	case b == c.trueLit:
		return a
	case a == b:
		return a
	}
	a, b = sortPair(a, b)
	key := gateKey{op: gateAnd, a: a, b: b}
	if z, ok := c.gates[key]; ok {
		return z
	}
	z := c.newVar("")
	c.addClause(a.negate(), b.negate(), z)
	c.addClause(a, z.negate())
	c.addClause(b, z.negate())
	c.gates[key] = z
	return z
}

func (c *Context) orGate(a, b Lit) Lit {
	switch {
	case a == c.trueLit || b == c.trueLit || a == b.negate():
		return c.trueLit
	case a == c.falseLit():
		return b
	case b == c.falseLit():
		return a
	case a == b:
		return a
	}
	a, b = sortPair(a, b)
	key := gateKey{op: gateOr, a: a, b: b}
	if z, ok := c.gates[key]; ok {
		return z
	}
	z := c.newVar("")
	c.addClause(a, b, z.negate())
	c.addClause(a.negate(), z)
	c.addClause(b.negate(), z)
	c.gates[key] = z
	return z
}

func (c *Context) xorGate(a, b Lit) Lit {
	switch {
	case a == c.falseLit():
		return b
	case b == c.falseLit():
		return a
	case a == c.trueLit:
		return b.negate()
	case b == c.trueLit:
		return a.negate()
	case a == b:
		return c.falseLit()
	case a == b.negate():
		return c.trueLit
	}
	a, b = sortPair(a, b)
	key := gateKey{op: gateXor, a: a, b: b}
	if z, ok := c.gates[key]; ok {
		return z
	}
	z := c.newVar("")
	c.addClause(a.negate(), b.negate(), z.negate())
	c.addClause(a, b, z.negate())
	c.addClause(a, b.negate(), z)
	c.addClause(a.negate(), b, z)
	c.gates[key] = z
	return z
}

// muxGate implements if-then-else: sel ? a : b.
func (c *Context) muxGate(sel, a, b Lit) Lit {
	switch {
	case sel == c.trueLit:
		return a
	case sel == c.falseLit():
		return b
	case a == b:
		return a
	case a == c.trueLit && b == c.falseLit():
		return sel
	case a == c.falseLit() && b == c.trueLit:
		return sel.negate()
	}
	key := gateKey{op: gateMux, a: sel, b: a, c: b}
	if z, ok := c.gates[key]; ok {
		return z
	}
	z := c.newVar("")
	c.addClause(sel.negate(), a.negate(), z)
	c.addClause(sel.negate(), a, z.negate())
	c.addClause(sel, b.negate(), z)
	c.addClause(sel, b, z.negate())
	c.gates[key] = z
	return z
}

// fullAdder returns (sum, carryOut) for a + b + cin.
func (c *Context) fullAdder(a, b, cin Lit) (sum, cout Lit) {
	axb := c.xorGate(a, b)
	sum = c.xorGate(axb, cin)
	cout = c.orGate(c.andGate(a, b), c.andGate(axb, cin))
	return sum, cout
}

// Solver accumulates assertions over a Context and decides satisfiability.
type Solver struct {
	ctx       *Context
	assumed   []Lit
	stepLimit int
	lastModel map[int32]bool
}

// NewSolver creates a solver bound to ctx with a step budget standing in
// for a per-query millisecond timeout. A zero limit means unbounded.
func NewSolver(ctx *Context, stepLimit int) *Solver {
	return &Solver{ctx: ctx, stepLimit: stepLimit}
}

// Assert adds a boolean-valued literal as a hard constraint.
func (s *Solver) Assert(b Bool) {
	s.assumed = append(s.assumed, Lit(b))
}

// Check decides satisfiability of every asserted constraint.
func (s *Solver) Check() Result {
	s.lastModel = nil
	clauses := make([][]Lit, len(s.ctx.clauses), len(s.ctx.clauses)+len(s.assumed))
	copy(clauses, s.ctx.clauses)
	for _, a := range s.assumed {
		clauses = append(clauses, []Lit{a})
	}
	d := &dpll{steps: 0, limit: s.stepLimit}
	assign := make(map[int32]bool, s.ctx.nextVar)
	ok, timedOut := d.solve(clauses, assign, s.ctx.nextVar)
	if timedOut {
		return Unknown
	}
	if !ok {
		return Unsat
	}
	s.lastModel = assign
	return Sat
}

// Model returns a satisfying assignment from the most recent Check call that
// returned Sat. Calling it after Unsat/Unknown returns nil.
func (s *Solver) Model() map[int32]bool { return s.lastModel }
