package asmtext

import (
	"testing"

	"github.com/oisee/aarch64-optimizer/pkg/aarch64"
	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

func TestParseTextRoundTripsMnemonics(t *testing.T) {
	seq, err := ParseText("mov x0, x1 : add x0, x0, #1 : cmp x0, #0 : csel x2, x0, x1, eq")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if len(seq) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(seq))
	}
	want := []aarch64.Instruction{
		aarch64.MovReg(aarch64.X(0), aarch64.X(1)),
		aarch64.Add(aarch64.X(0), aarch64.X(0), aarch64.ImmOperand(1)),
		aarch64.Cmp(aarch64.X(0), aarch64.ImmOperand(0)),
		aarch64.Csel(aarch64.X(2), aarch64.X(0), aarch64.X(1), aarch64.CondEQ),
	}
	for i, w := range want {
		got, ok := seq[i].(aarch64.Instruction)
		if !ok || got != w {
			t.Errorf("instruction %d = %v, want %v", i, seq[i], w)
		}
	}
}

func TestParseTextRejectsUnknownMnemonic(t *testing.T) {
	if _, err := ParseText("frob x0, x1"); err == nil {
		t.Errorf("expected an error for an unrecognized mnemonic")
	}
}

func TestFormatIsInverseOfParseText(t *testing.T) {
	const text = "mov x0, x1 : add x0, x0, #1"
	seq, err := ParseText(text)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if got := Format(seq); got != text {
		t.Errorf("Format(ParseText(%q)) = %q, want %q", text, got, text)
	}
}

func TestDisassembleDropsUnsupportedWithWarning(t *testing.T) {
	entries := []Entry{
		{Addr: 0, Mnemonic: "mov", OperandText: "x0, x1"},
		{Addr: 4, Mnemonic: "ldr", OperandText: "x0, [x1]"}, // load: out of scope
	}
	seq, warnings := Disassemble(entries)
	if len(seq) != 1 {
		t.Fatalf("expected 1 surviving instruction, got %d", len(seq))
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning for the dropped mnemonic, got %d", len(warnings))
	}
}

func TestAssembleRefusesUnencodableImmediate(t *testing.T) {
	seq := []isa.Instruction{aarch64.MovImm(aarch64.X(0), 0x1_0000)} // > 0xFFFF
	_, err := Assemble(seq)
	if err == nil {
		t.Fatalf("expected an AssembleError for an out-of-range immediate")
	}
	var aerr *AssembleError
	if !asAssembleError(err, &aerr) {
		t.Fatalf("expected *AssembleError, got %T", err)
	}
	if aerr.Index != 0 {
		t.Errorf("AssembleError.Index = %d, want 0", aerr.Index)
	}
}

func asAssembleError(err error, target **AssembleError) bool {
	if e, ok := err.(*AssembleError); ok {
		*target = e
		return true
	}
	return false
}

func TestAssembleAcceptsEncodableSequence(t *testing.T) {
	seq := []isa.Instruction{
		aarch64.MovReg(aarch64.X(0), aarch64.X(1)),
		aarch64.Add(aarch64.X(0), aarch64.X(0), aarch64.ImmOperand(1)),
	}
	b, err := Assemble(seq)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(b) == 0 {
		t.Errorf("expected nonempty byte output")
	}
}
