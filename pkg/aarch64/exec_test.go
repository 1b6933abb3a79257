package aarch64

import (
	"testing"

	"github.com/oisee/aarch64-optimizer/pkg/state"
)

func TestMovToZeroRegisterDropped(t *testing.T) {
	var s state.Concrete
	s = Exec(s, MovImm(XZR, 42))
	if got := s.Get(ZeroIndex, ZeroIndex); got != 0 {
		t.Errorf("MovImm to XZR: got %d, want 0", got)
	}
}

func TestAddWrapsOnOverflow(t *testing.T) {
	var s state.Concrete
	s.Set(0, ZeroIndex, ^uint64(0)) // UINT64_MAX
	s.Set(1, ZeroIndex, 1)
	s = Exec(s, Add(X(2), X(0), RegOperand(X(1))))
	if got := s.Get(2, ZeroIndex); got != 0 {
		t.Errorf("UINT64_MAX + 1: got %d, want 0", got)
	}
}

func TestSubUnderflow(t *testing.T) {
	var s state.Concrete
	s.Set(0, ZeroIndex, 0)
	s.Set(1, ZeroIndex, 1)
	s = Exec(s, Sub(X(2), X(0), RegOperand(X(1))))
	if got := s.Get(2, ZeroIndex); got != ^uint64(0) {
		t.Errorf("0 - 1: got %d, want UINT64_MAX", got)
	}
}

func TestShiftMasksAmountToLow6Bits(t *testing.T) {
	var s state.Concrete
	s.Set(0, ZeroIndex, 1)
	s = Exec(s, Lsl(X(1), X(0), ImmOperand(64))) // 64 & 0x3F == 0
	if got := s.Get(1, ZeroIndex); got != 1 {
		t.Errorf("LSL by 64 (masked to 0): got %d, want 1", got)
	}
}

func TestAsrOfIntMin(t *testing.T) {
	var s state.Concrete
	s.Set(0, ZeroIndex, uint64(1)<<63) // INT64_MIN
	s = Exec(s, Asr(X(1), X(0), ImmOperand(63)))
	if got := int64(s.Get(1, ZeroIndex)); got != -1 {
		t.Errorf("ASR(INT64_MIN, 63): got %d, want -1", got)
	}
}

func TestUdivByZero(t *testing.T) {
	var s state.Concrete
	s.Set(0, ZeroIndex, 42)
	s.Set(1, ZeroIndex, 0)
	s = Exec(s, Udiv(X(2), X(0), X(1)))
	if got := s.Get(2, ZeroIndex); got != 0 {
		t.Errorf("UDIV by zero: got %d, want 0", got)
	}
}

func TestSdivByZero(t *testing.T) {
	var s state.Concrete
	s.Set(0, ZeroIndex, 42)
	s.Set(1, ZeroIndex, 0)
	s = Exec(s, Sdiv(X(2), X(0), X(1)))
	if got := s.Get(2, ZeroIndex); got != 0 {
		t.Errorf("SDIV by zero: got %d, want 0", got)
	}
}

func TestSdivIntMinByNegOne(t *testing.T) {
	var s state.Concrete
	s.Set(0, ZeroIndex, uint64(1)<<63) // INT64_MIN
	s.Set(1, ZeroIndex, ^uint64(0))    // -1
	s = Exec(s, Sdiv(X(2), X(0), X(1)))
	if got := s.Get(2, ZeroIndex); got != uint64(1)<<63 {
		t.Errorf("INT64_MIN / -1: got %d, want INT64_MIN (dividend)", got)
	}
}

func TestAddCommutativity(t *testing.T) {
	tests := []struct{ a, b uint64 }{
		{1, 2}, {0, 0}, {^uint64(0), 1}, {1 << 63, 1 << 63},
	}
	for _, tc := range tests {
		var s1, s2 state.Concrete
		s1.Set(1, ZeroIndex, tc.a)
		s1.Set(2, ZeroIndex, tc.b)
		s2.Set(1, ZeroIndex, tc.a)
		s2.Set(2, ZeroIndex, tc.b)

		s1 = Exec(s1, Add(X(0), X(1), RegOperand(X(2))))
		s2 = Exec(s2, Add(X(0), X(2), RegOperand(X(1))))

		if s1.Get(0, ZeroIndex) != s2.Get(0, ZeroIndex) {
			t.Errorf("ADD commutativity failed for a=%d b=%d", tc.a, tc.b)
		}
	}
}

func TestCmpFlags(t *testing.T) {
	tests := []struct {
		a, b                uint64
		wantZ, wantN, wantC bool
	}{
		{5, 5, true, false, true},
		{0, 1, false, true, false},
		{1, 0, false, false, true},
	}
	for _, tc := range tests {
		var s state.Concrete
		s.Set(0, ZeroIndex, tc.a)
		s.Set(1, ZeroIndex, tc.b)
		s = Exec(s, Cmp(X(0), RegOperand(X(1))))
		if s.Flags.Z != tc.wantZ || s.Flags.N != tc.wantN || s.Flags.C != tc.wantC {
			t.Errorf("CMP %d,%d: got flags %+v, want Z=%v N=%v C=%v", tc.a, tc.b, s.Flags, tc.wantZ, tc.wantN, tc.wantC)
		}
	}
}

func TestCselFamily(t *testing.T) {
	var s state.Concrete
	s.Set(1, ZeroIndex, 10)
	s.Set(2, ZeroIndex, 20)
	s.Flags.Z = true // EQ holds

	held := Exec(s, Csel(X(0), X(1), X(2), CondEQ))
	if got := held.Get(0, ZeroIndex); got != 10 {
		t.Errorf("CSEL (cond holds): got %d, want rn=10", got)
	}

	s.Flags.Z = false // EQ does not hold
	notHeld := Exec(s, Csinc(X(0), X(1), X(2), CondEQ))
	if got := notHeld.Get(0, ZeroIndex); got != 21 {
		t.Errorf("CSINC (cond fails): got %d, want rm+1=21", got)
	}

	notHeldInv := Exec(s, Csinv(X(0), X(1), X(2), CondEQ))
	if got := notHeldInv.Get(0, ZeroIndex); got != ^uint64(20) {
		t.Errorf("CSINV (cond fails): got %d, want ^rm", got)
	}

	notHeldNeg := Exec(s, Csneg(X(0), X(1), X(2), CondEQ))
	if got := int64(notHeldNeg.Get(0, ZeroIndex)); got != -20 {
		t.Errorf("CSNEG (cond fails): got %d, want -rm=-20", got)
	}
}

func TestSequenceIsLeftFold(t *testing.T) {
	var s state.Concrete
	s.Set(0, ZeroIndex, 1)
	seq := []Instruction{
		Add(X(0), X(0), ImmOperand(1)),
		Add(X(0), X(0), ImmOperand(1)),
		Add(X(0), X(0), ImmOperand(1)),
	}
	s = ExecSeq(s, seq)
	if got := s.Get(0, ZeroIndex); got != 4 {
		t.Errorf("sequence fold: got %d, want 4", got)
	}
}

func TestEncodabilityRanges(t *testing.T) {
	tests := []struct {
		name string
		i    Instruction
		want bool
	}{
		{"mov imm max", MovImm(X(0), 0xFFFF), true},
		{"mov imm over", MovImm(X(0), 0x10000), false},
		{"add imm max", Add(X(0), X(1), ImmOperand(0xFFF)), true},
		{"add imm over", Add(X(0), X(1), ImmOperand(0x1000)), false},
		{"shift amount max", Lsl(X(0), X(1), ImmOperand(63)), true},
		{"shift amount over", Lsl(X(0), X(1), ImmOperand(64)), false},
		{"and imm not encodable", And(X(0), X(1), ImmOperand(5)), false},
		{"and reg encodable", And(X(0), X(1), RegOperand(X(2))), true},
		{"tst imm not encodable", Tst(X(0), ImmOperand(5)), false},
	}
	for _, tc := range tests {
		if got := tc.i.Encodable(); got != tc.want {
			t.Errorf("%s: Encodable() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSelfXorClears(t *testing.T) {
	values := []uint64{1, 42, ^uint64(0), uint64(1) << 63, 0xAAAAAAAAAAAAAAAA}
	for _, v := range values {
		var s state.Concrete
		s.Set(3, ZeroIndex, v)
		s = Exec(s, Eor(X(3), X(3), RegOperand(X(3))))
		if got := s.Get(3, ZeroIndex); got != 0 {
			t.Errorf("eor x3, x3, x3 with x3=%#x: got %d, want 0", v, got)
		}
	}
}

func TestMovSelfIsIdentity(t *testing.T) {
	var s state.Concrete
	for i := 0; i < NumGeneral; i++ {
		s.Set(i, ZeroIndex, uint64(i)*0x0101010101010101)
	}
	got := Exec(s, MovReg(X(5), X(5)))
	if !got.Equal(s) {
		t.Errorf("mov x5, x5 must leave the state unchanged")
	}
}

func TestWriteSetConfinedToDestinationAndFlags(t *testing.T) {
	var s state.Concrete
	for i := 0; i < NumGeneral; i++ {
		s.Set(i, ZeroIndex, uint64(i)+100)
	}

	// A register-writing instruction touches only its destination.
	afterAdd := Exec(s, Add(X(7), X(1), RegOperand(X(2))))
	for i := 0; i < NumGeneral; i++ {
		if i == 7 {
			continue
		}
		if afterAdd.Get(i, ZeroIndex) != s.Get(i, ZeroIndex) {
			t.Errorf("add x7, x1, x2 modified x%d", i)
		}
	}
	if afterAdd.Flags != s.Flags {
		t.Errorf("add must not touch flags")
	}

	// A compare touches only the flags.
	afterCmp := Exec(s, Cmp(X(1), RegOperand(X(2))))
	for i := 0; i < NumGeneral; i++ {
		if afterCmp.Get(i, ZeroIndex) != s.Get(i, ZeroIndex) {
			t.Errorf("cmp x1, x2 modified x%d", i)
		}
	}
}

func TestZeroRegisterNeverWritten(t *testing.T) {
	var s state.Concrete
	s = Exec(s, Add(XZR, XZR, ImmOperand(5)))
	if got := s.Get(ZeroIndex, ZeroIndex); got != 0 {
		t.Errorf("write to XZR: got %d, want 0", got)
	}
}
