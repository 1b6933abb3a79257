package smt

// Width is the bit width of every BV in this module; the theory covers
// 64-bit bitvectors only.
const Width = 64

// Bool is a single boolean-valued wire (one SAT literal).
type Bool Lit

// BV is a 64-bit bitvector term: Bits[0] is the least significant bit.
type BV struct {
	ctx  *Context
	Bits [Width]Lit
}

// Const builds a constant bitvector.
func (c *Context) Const(v uint64) BV {
	var bv BV
	bv.ctx = c
	for i := 0; i < Width; i++ {
		if v&(1<<uint(i)) != 0 {
			bv.Bits[i] = c.trueLit
		} else {
			bv.Bits[i] = c.falseLit()
		}
	}
	return bv
}

// Var creates a fresh, fully unconstrained symbolic bitvector.
func (c *Context) Var(name string) BV {
	var bv BV
	bv.ctx = c
	for i := 0; i < Width; i++ {
		bv.Bits[i] = c.newVar(name)
	}
	return bv
}

func (c *Context) boolConst(b bool) Bool {
	if b {
		return Bool(c.trueLit)
	}
	return Bool(c.falseLit())
}

// Not returns the bitwise complement. Bitwise NOT needs no new gates: each
// bit's literal negation already carries the opposite truth value.
func (a BV) Not() BV {
	out := BV{ctx: a.ctx}
	for i := range a.Bits {
		out.Bits[i] = a.Bits[i].negate()
	}
	return out
}

func zipBits(a, b BV, gate func(x, y Lit) Lit) BV {
	out := BV{ctx: a.ctx}
	for i := range a.Bits {
		out.Bits[i] = gate(a.Bits[i], b.Bits[i])
	}
	return out
}

func (a BV) And(b BV) BV { return zipBits(a, b, a.ctx.andGate) }
func (a BV) Or(b BV) BV  { return zipBits(a, b, a.ctx.orGate) }
func (a BV) Xor(b BV) BV { return zipBits(a, b, a.ctx.xorGate) }

// Add is a ripple-carry adder across all 64 bits, wrapping on overflow.
func (a BV) Add(b BV) BV {
	out := BV{ctx: a.ctx}
	cin := a.ctx.falseLit()
	for i := 0; i < Width; i++ {
		sum, cout := a.ctx.fullAdder(a.Bits[i], b.Bits[i], cin)
		out.Bits[i] = sum
		cin = cout
	}
	return out
}

// one returns the constant bitvector 1 in the same context as a.
func (a BV) one() BV { return a.ctx.Const(1) }

// Sub computes a - b via two's-complement: a + ^b + 1.
func (a BV) Sub(b BV) BV {
	return a.Add(b.Not()).Add(a.one())
}

// Neg computes the two's-complement negation of a.
func (a BV) Neg() BV {
	return a.ctx.Const(0).Sub(a)
}

// Mul is a shift-and-add multiplier: for each bit i of b, conditionally add
// a<<i into the accumulator.
func (a BV) Mul(b BV) BV {
	acc := a.ctx.Const(0)
	shifted := a
	for i := 0; i < Width; i++ {
		// partial = b.Bits[i] ? shifted : 0
		var partial BV
		partial.ctx = a.ctx
		for j := 0; j < Width; j++ {
			partial.Bits[j] = a.ctx.andGate(b.Bits[i], shifted.Bits[j])
		}
		acc = acc.Add(partial)
		if i != Width-1 {
			shifted = shifted.shlConst(1)
		}
	}
	return acc
}

// shlConst shifts left by a fixed, small constant amount (used internally by
// Mul and the barrel shifter).
func (a BV) shlConst(n int) BV {
	out := BV{ctx: a.ctx}
	for i := 0; i < Width; i++ {
		if i < n {
			out.Bits[i] = a.ctx.falseLit()
		} else {
			out.Bits[i] = a.Bits[i-n]
		}
	}
	return out
}

func (a BV) lshrConst(n int) BV {
	out := BV{ctx: a.ctx}
	for i := 0; i < Width; i++ {
		if i+n < Width {
			out.Bits[i] = a.Bits[i+n]
		} else {
			out.Bits[i] = a.ctx.falseLit()
		}
	}
	return out
}

func (a BV) ashrConst(n int) BV {
	out := BV{ctx: a.ctx}
	sign := a.Bits[Width-1]
	for i := 0; i < Width; i++ {
		if i+n < Width {
			out.Bits[i] = a.Bits[i+n]
		} else {
			out.Bits[i] = sign
		}
	}
	return out
}

// barrelShift builds a variable-amount shifter out of log2(Width) muxed
// stages, masking the shift amount to its low 6 bits (the ISA semantics for
// a 64-bit register), so symbolic shifts agree with the concrete
// interpreter.
func (a BV) barrelShift(amount BV, stage func(BV, int) BV) BV {
	cur := a
	for k := 0; k < 6; k++ { // 2^6 = 64, enough to cover the masked amount
		shifted := stage(cur, 1<<uint(k))
		sel := amount.Bits[k]
		var muxed BV
		muxed.ctx = a.ctx
		for i := range cur.Bits {
			muxed.Bits[i] = a.ctx.muxGate(sel, shifted.Bits[i], cur.Bits[i])
		}
		cur = muxed
	}
	return cur
}

// Shl is a logical shift left by a symbolic amount.
func (a BV) Shl(amount BV) BV {
	return a.barrelShift(amount, func(bv BV, n int) BV { return bv.shlConst(n) })
}

// Lshr is a logical shift right by a symbolic amount.
func (a BV) Lshr(amount BV) BV {
	return a.barrelShift(amount, func(bv BV, n int) BV { return bv.lshrConst(n) })
}

// Ashr is an arithmetic (sign-extending) shift right by a symbolic amount.
func (a BV) Ashr(amount BV) BV {
	return a.barrelShift(amount, func(bv BV, n int) BV { return bv.ashrConst(n) })
}

// isZero returns a boolean wire that is true iff a == 0.
func (a BV) isZero() Bool {
	nonzero := a.ctx.falseLit()
	for _, b := range a.Bits {
		nonzero = a.ctx.orGate(nonzero, b)
	}
	return Bool(nonzero.negate())
}

// Ite selects thenBV when cond holds, elseBV otherwise.
func Ite(cond Bool, thenBV, elseBV BV) BV {
	out := BV{ctx: thenBV.ctx}
	for i := range thenBV.Bits {
		out.Bits[i] = thenBV.ctx.muxGate(Lit(cond), thenBV.Bits[i], elseBV.Bits[i])
	}
	return out
}

// udivCircuit computes the unsigned quotient via restoring binary division:
// 64 iterations of shift-in/compare/conditional-subtract.
func (a BV) udivCircuit(b BV) BV {
	ctx := a.ctx
	rem := ctx.Const(0)
	quot := ctx.Const(0)
	for i := Width - 1; i >= 0; i-- {
		rem = rem.shlConst(1)
		rem.Bits[0] = a.Bits[i]
		geq := rem.uGeq(b)
		diff := rem.Sub(b)
		rem = Ite(geq, diff, rem)
		quot.Bits[i] = Lit(geq)
	}
	return quot
}

func (a BV) uremCircuit(b BV) BV {
	ctx := a.ctx
	rem := ctx.Const(0)
	for i := Width - 1; i >= 0; i-- {
		rem = rem.shlConst(1)
		rem.Bits[0] = a.Bits[i]
		geq := rem.uGeq(b)
		diff := rem.Sub(b)
		rem = Ite(geq, diff, rem)
	}
	return rem
}

// uGeq returns a >= b as an unsigned comparison.
func (a BV) uGeq(b BV) Bool {
	// a >= b  <=>  NOT(a - b causes a borrow) for unsigned subtraction,
	// computed by running the subtractor and inspecting the final carry.
	ctx := a.ctx
	borrow := ctx.falseLit()
	for i := 0; i < Width; i++ {
		// borrow-in bi: bit_i(b) + borrow > bit_i(a)
		nb := b.Bits[i]
		na := a.Bits[i]
		notA := na.negate()
		borrow = ctx.orGate(ctx.andGate(notA, nb), ctx.andGate(ctx.orGate(notA, nb), borrow))
	}
	return Bool(borrow.negate())
}

// UDiv computes the unsigned quotient, returning 0 when b is zero.
func (a BV) UDiv(b BV) BV {
	q := a.udivCircuit(b)
	return Ite(b.isZero(), a.ctx.Const(0), q)
}

// SDiv computes the signed quotient, returning 0 on a zero divisor and the
// dividend on INT64_MIN / -1, matching the concrete interpreter's policy.
func (a BV) SDiv(b BV) BV {
	ctx := a.ctx
	signA := Bool(a.Bits[Width-1])
	signB := Bool(b.Bits[Width-1])
	absA := Ite(signA, a.Neg(), a)
	absB := Ite(signB, b.Neg(), b)
	uq := absA.udivCircuit(absB)
	negResult := ctx.xorGate(Lit(signA), Lit(signB))
	signedQ := Ite(Bool(negResult), uq.Neg(), uq)

	minInt := ctx.Const(1 << (Width - 1))
	negOne := ctx.Const(^uint64(0))
	isMinOverNegOne := ctx.andGate(a.eqLit(minInt), b.eqLit(negOne))

	guarded := Ite(b.isZero(), ctx.Const(0), signedQ)
	return Ite(Bool(isMinOverNegOne), a, guarded)
}

func (a BV) eqLit(b BV) Lit {
	return Lit(a.Eq(b))
}

// ULt returns a < b as an unsigned comparison, the complement of uGeq.
func (a BV) ULt(b BV) Bool {
	return Bool(Lit(a.uGeq(b)).negate())
}

// SLt returns a < b as a signed comparison, by flipping the sign bit of both
// operands (mapping the signed range onto the unsigned one in order) and
// delegating to ULt.
func (a BV) SLt(b BV) Bool {
	signMask := a.ctx.Const(1 << (Width - 1))
	return a.Xor(signMask).ULt(b.Xor(signMask))
}

// Eq returns a boolean wire that is true iff a and b are bitwise equal.
func (a BV) Eq(b BV) Bool {
	ctx := a.ctx
	eq := ctx.trueLit
	for i := range a.Bits {
		xnor := ctx.xorGate(a.Bits[i], b.Bits[i]).negate()
		eq = ctx.andGate(eq, xnor)
	}
	return Bool(eq)
}

// Not is boolean negation.
func (b Bool) Not() Bool { return Bool(Lit(b).negate()) }

// And/Or are boolean connectives over single-bit wires.
func (c *Context) BoolAnd(a, b Bool) Bool { return Bool(c.andGate(Lit(a), Lit(b))) }
func (c *Context) BoolOr(a, b Bool) Bool  { return Bool(c.orGate(Lit(a), Lit(b))) }

// Value extracts a concrete uint64 from a model returned by Solver.Model.
func (a BV) Value(model map[int32]bool) uint64 {
	var v uint64
	for i, lit := range a.Bits {
		vr := int32(lit)
		neg := vr < 0
		if vr < 0 {
			vr = -vr
		}
		bit := model[vr]
		if neg {
			bit = !bit
		}
		if bit {
			v |= 1 << uint(i)
		}
	}
	return v
}
