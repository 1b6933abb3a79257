package riscv

import (
	"testing"

	"github.com/oisee/aarch64-optimizer/pkg/state"
)

func TestMovToZeroRegisterDropped(t *testing.T) {
	var s state.Concrete
	s = Exec(s, MovImm(X(ZeroIndex), 42))
	if got := s.Get(ZeroIndex, ZeroIndex); got != 0 {
		t.Errorf("li to x0: got %d, want 0", got)
	}
}

func TestAddWrapsOnOverflow(t *testing.T) {
	var s state.Concrete
	s.Set(1, ZeroIndex, ^uint64(0))
	s.Set(2, ZeroIndex, 1)
	s = Exec(s, Add(X(3), X(1), RegOperand(X(2))))
	if got := s.Get(3, ZeroIndex); got != 0 {
		t.Errorf("UINT64_MAX + 1: got %d, want 0", got)
	}
}

func TestSubUnderflow(t *testing.T) {
	var s state.Concrete
	s.Set(1, ZeroIndex, 0)
	s.Set(2, ZeroIndex, 1)
	s = Exec(s, Sub(X(3), X(1), RegOperand(X(2))))
	if got := s.Get(3, ZeroIndex); got != ^uint64(0) {
		t.Errorf("0 - 1: got %d, want all-ones", got)
	}
}

func TestShiftMasksAmountToLow6Bits(t *testing.T) {
	var s state.Concrete
	s.Set(1, ZeroIndex, 1)
	s = Exec(s, Sll(X(2), X(1), ImmOperand(64)))
	if got := s.Get(2, ZeroIndex); got != 1 {
		t.Errorf("SLL by 64 (masked to 0): got %d, want 1", got)
	}
}

func TestSraOfIntMin(t *testing.T) {
	var s state.Concrete
	s.Set(1, ZeroIndex, uint64(1)<<63)
	s = Exec(s, Sra(X(2), X(1), ImmOperand(63)))
	if got := int64(s.Get(2, ZeroIndex)); got != -1 {
		t.Errorf("SRA(INT64_MIN, 63): got %d, want -1", got)
	}
}

func TestSltSigned(t *testing.T) {
	var s state.Concrete
	s.Set(1, ZeroIndex, ^uint64(0)) // -1
	s.Set(2, ZeroIndex, 1)
	s = Exec(s, Slt(X(3), X(1), X(2)))
	if got := s.Get(3, ZeroIndex); got != 1 {
		t.Errorf("SLT(-1, 1): got %d, want 1", got)
	}
}

func TestSltuTreatsNegativeAsLarge(t *testing.T) {
	var s state.Concrete
	s.Set(1, ZeroIndex, ^uint64(0)) // all-ones, huge unsigned
	s.Set(2, ZeroIndex, 1)
	s = Exec(s, Sltu(X(3), X(1), X(2)))
	if got := s.Get(3, ZeroIndex); got != 0 {
		t.Errorf("SLTU(-1 as unsigned, 1): got %d, want 0", got)
	}
}

func TestDivuByZero(t *testing.T) {
	var s state.Concrete
	s.Set(1, ZeroIndex, 42)
	s.Set(2, ZeroIndex, 0)
	s = Exec(s, Divu(X(3), X(1), X(2)))
	if got := s.Get(3, ZeroIndex); got != ^uint64(0) {
		t.Errorf("DIVU by zero: got %d, want all-ones", got)
	}
}

func TestDivByZero(t *testing.T) {
	var s state.Concrete
	s.Set(1, ZeroIndex, 42)
	s.Set(2, ZeroIndex, 0)
	s = Exec(s, Div(X(3), X(1), X(2)))
	if got := int64(s.Get(3, ZeroIndex)); got != -1 {
		t.Errorf("DIV by zero: got %d, want -1", got)
	}
}

func TestDivIntMinByNegOne(t *testing.T) {
	var s state.Concrete
	s.Set(1, ZeroIndex, uint64(1)<<63) // INT64_MIN
	s.Set(2, ZeroIndex, ^uint64(0))    // -1
	s = Exec(s, Div(X(3), X(1), X(2)))
	if got := s.Get(3, ZeroIndex); got != uint64(1)<<63 {
		t.Errorf("INT64_MIN / -1: got %d, want INT64_MIN (dividend)", got)
	}
}

func TestSelfXorClears(t *testing.T) {
	values := []uint64{1, 42, ^uint64(0), uint64(1) << 63, 0x5555555555555555}
	for _, v := range values {
		var s state.Concrete
		s.Set(3, ZeroIndex, v)
		s = Exec(s, Xor(X(3), X(3), RegOperand(X(3))))
		if got := s.Get(3, ZeroIndex); got != 0 {
			t.Errorf("xor x3, x3, x3 with x3=%#x: got %d, want 0", v, got)
		}
	}
}

func TestSequenceIsLeftFold(t *testing.T) {
	var s state.Concrete
	s.Set(1, ZeroIndex, 1)
	seq := []Instruction{
		Add(X(1), X(1), ImmOperand(1)),
		Add(X(1), X(1), ImmOperand(1)),
		Add(X(1), X(1), ImmOperand(1)),
	}
	s = ExecSeq(s, seq)
	if got := s.Get(1, ZeroIndex); got != 4 {
		t.Errorf("sequence fold: got %d, want 4", got)
	}
}

func TestEncodabilityRanges(t *testing.T) {
	tests := []struct {
		name string
		i    Instruction
		want bool
	}{
		{"li max", MovImm(X(1), 2047), true},
		{"li over", MovImm(X(1), 2048), false},
		{"li min", MovImm(X(1), -2048), true},
		{"li under", MovImm(X(1), -2049), false},
		{"add imm encodable", Add(X(1), X(2), ImmOperand(100)), true},
		{"add imm over", Add(X(1), X(2), ImmOperand(4096)), false},
		{"shift amount max", Sll(X(1), X(2), ImmOperand(63)), true},
		{"shift amount over", Sll(X(1), X(2), ImmOperand(64)), false},
		{"and imm not encodable", And(X(1), X(2), ImmOperand(5)), false},
		{"and reg encodable", And(X(1), X(2), RegOperand(X(3))), true},
		{"slt always encodable", Slt(X(1), X(2), X(3)), true},
	}
	for _, tc := range tests {
		if got := tc.i.Encodable(); got != tc.want {
			t.Errorf("%s: Encodable() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestZeroRegisterNeverWritten(t *testing.T) {
	var s state.Concrete
	s = Exec(s, Add(X(ZeroIndex), X(ZeroIndex), ImmOperand(5)))
	if got := s.Get(ZeroIndex, ZeroIndex); got != 0 {
		t.Errorf("write to x0: got %d, want 0", got)
	}
}
