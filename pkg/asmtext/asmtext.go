// Package asmtext implements the two assembly boundary contracts the core
// owns: the assembler contract (exposed: a patcher external to this module
// calls it to turn a winning sequence back into bytes) and the mapping half
// of the disassembler contract (consumed: an external disassembler hands us
// (addr, mnemonic, operand_text, raw_bytes) tuples, and this package maps
// mnemonic+operand_text into our own instruction union, dropping unsupported
// mnemonics with a warning rather than an error). It also includes the
// minimal text-assembly reader/writer the CLI needs, to the depth those
// contracts require and no further; no bitmask-immediate encodings, no
// control flow.
package asmtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oisee/aarch64-optimizer/pkg/aarch64"
	"github.com/oisee/aarch64-optimizer/pkg/ferr"
	"github.com/oisee/aarch64-optimizer/pkg/isa"
	"github.com/oisee/aarch64-optimizer/pkg/liveout"
)

// Entry is one tuple of the disassembler contract: an external
// disassembler's decoded view of one machine instruction.
type Entry struct {
	Addr        uint64
	Mnemonic    string
	OperandText string
	Raw         []byte
}

// Disassemble maps a sequence of externally-decoded entries into this
// module's instruction union. Unsupported mnemonics are dropped with a
// warning, never an error, so the search proceeds over what remains.
func Disassemble(entries []Entry) (seq []isa.Instruction, warnings []string) {
	for _, e := range entries {
		instr, err := parseMnemonicOperands(e.Mnemonic, e.OperandText)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s at 0x%x: %v", ferr.DisassemblyUnsupported, e.Addr, err))
			continue
		}
		seq = append(seq, instr)
	}
	return seq, warnings
}

// ParseText reads a ':'-separated line of assembly text
// (e.g. "mov x0, x1 : add x0, x0, #1") into a sequence, for CLI callers
// that have no external disassembler handy.
func ParseText(text string) ([]isa.Instruction, error) {
	parts := strings.Split(text, ":")
	var seq []isa.Instruction
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		instr, err := parseSingleInstruction(part)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q: %w", part, err)
		}
		seq = append(seq, instr)
	}
	if len(seq) == 0 {
		return nil, fmt.Errorf("no instructions parsed from %q", text)
	}
	return seq, nil
}

func parseSingleInstruction(text string) (aarch64.Instruction, error) {
	mnemonic, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	return parseMnemonicOperands(mnemonic, strings.TrimSpace(rest))
}

// parseMnemonicOperands builds one instruction from a lowercase mnemonic and
// its raw operand text (the part after the mnemonic, comma-separated).
func parseMnemonicOperands(mnemonic, operandText string) (aarch64.Instruction, error) {
	mnemonic = strings.ToLower(strings.TrimSpace(mnemonic))
	fields := splitOperands(operandText)

	switch mnemonic {
	case "mov":
		if len(fields) != 2 {
			return aarch64.Instruction{}, fmt.Errorf("%w: mov wants 2 operands, got %d", ferr.DisassemblyUnsupported, len(fields))
		}
		rd, err := liveout.ParseRegister(fields[0])
		if err != nil {
			return aarch64.Instruction{}, err
		}
		if op2, ok, err := parseOperand(fields[1]); ok {
			if err != nil {
				return aarch64.Instruction{}, err
			}
			if op2.IsImmediate() {
				return aarch64.MovImm(rd, op2.Immediate()), nil
			}
			return aarch64.MovReg(rd, op2.Reg()), nil
		}
		return aarch64.Instruction{}, fmt.Errorf("%w: bad mov operand %q", ferr.InvalidImmediate, fields[1])

	case "add", "sub", "and", "orr", "eor", "lsl", "lsr", "asr":
		if len(fields) != 3 {
			return aarch64.Instruction{}, fmt.Errorf("%w: %s wants 3 operands, got %d", ferr.DisassemblyUnsupported, mnemonic, len(fields))
		}
		rd, err := liveout.ParseRegister(fields[0])
		if err != nil {
			return aarch64.Instruction{}, err
		}
		rn, err := liveout.ParseRegister(fields[1])
		if err != nil {
			return aarch64.Instruction{}, err
		}
		op2, _, err := parseOperand(fields[2])
		if err != nil {
			return aarch64.Instruction{}, err
		}
		switch mnemonic {
		case "add":
			return aarch64.Add(rd, rn, op2), nil
		case "sub":
			return aarch64.Sub(rd, rn, op2), nil
		case "and":
			return aarch64.And(rd, rn, op2), nil
		case "orr":
			return aarch64.Orr(rd, rn, op2), nil
		case "eor":
			return aarch64.Eor(rd, rn, op2), nil
		case "lsl":
			return aarch64.Lsl(rd, rn, op2), nil
		case "lsr":
			return aarch64.Lsr(rd, rn, op2), nil
		default: // asr
			return aarch64.Asr(rd, rn, op2), nil
		}

	case "mul", "sdiv", "udiv":
		if len(fields) != 3 {
			return aarch64.Instruction{}, fmt.Errorf("%w: %s wants 3 register operands, got %d", ferr.DisassemblyUnsupported, mnemonic, len(fields))
		}
		rd, err := liveout.ParseRegister(fields[0])
		if err != nil {
			return aarch64.Instruction{}, err
		}
		rn, err := liveout.ParseRegister(fields[1])
		if err != nil {
			return aarch64.Instruction{}, err
		}
		rm, err := liveout.ParseRegister(fields[2])
		if err != nil {
			return aarch64.Instruction{}, err
		}
		switch mnemonic {
		case "mul":
			return aarch64.Mul(rd, rn, rm), nil
		case "sdiv":
			return aarch64.Sdiv(rd, rn, rm), nil
		default: // udiv
			return aarch64.Udiv(rd, rn, rm), nil
		}

	case "cmp", "cmn", "tst":
		if len(fields) != 2 {
			return aarch64.Instruction{}, fmt.Errorf("%w: %s wants 2 operands, got %d", ferr.DisassemblyUnsupported, mnemonic, len(fields))
		}
		rn, err := liveout.ParseRegister(fields[0])
		if err != nil {
			return aarch64.Instruction{}, err
		}
		op2, _, err := parseOperand(fields[1])
		if err != nil {
			return aarch64.Instruction{}, err
		}
		switch mnemonic {
		case "cmp":
			return aarch64.Cmp(rn, op2), nil
		case "cmn":
			return aarch64.Cmn(rn, op2), nil
		default: // tst
			return aarch64.Tst(rn, op2), nil
		}

	case "csel", "csinc", "csinv", "csneg":
		if len(fields) != 4 {
			return aarch64.Instruction{}, fmt.Errorf("%w: %s wants 4 operands, got %d", ferr.DisassemblyUnsupported, mnemonic, len(fields))
		}
		rd, err := liveout.ParseRegister(fields[0])
		if err != nil {
			return aarch64.Instruction{}, err
		}
		rn, err := liveout.ParseRegister(fields[1])
		if err != nil {
			return aarch64.Instruction{}, err
		}
		rm, err := liveout.ParseRegister(fields[2])
		if err != nil {
			return aarch64.Instruction{}, err
		}
		cond, err := parseCond(fields[3])
		if err != nil {
			return aarch64.Instruction{}, err
		}
		switch mnemonic {
		case "csel":
			return aarch64.Csel(rd, rn, rm, cond), nil
		case "csinc":
			return aarch64.Csinc(rd, rn, rm, cond), nil
		case "csinv":
			return aarch64.Csinv(rd, rn, rm, cond), nil
		default: // csneg
			return aarch64.Csneg(rd, rn, rm, cond), nil
		}
	}

	return aarch64.Instruction{}, fmt.Errorf("%w: unrecognized mnemonic %q", ferr.DisassemblyUnsupported, mnemonic)
}

func splitOperands(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	fields := strings.Split(text, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// parseOperand parses a register or "#imm" operand. ok is false only when
// the text is empty; a non-nil err on a nonempty malformed token is always
// returned alongside ok=true so callers don't need a separate not-found path.
func parseOperand(tok string) (op aarch64.Operand, ok bool, err error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return aarch64.Operand{}, false, nil
	}
	if strings.HasPrefix(tok, "#") {
		imm, perr := parseImmediate(tok[1:])
		if perr != nil {
			return aarch64.Operand{}, true, perr
		}
		return aarch64.ImmOperand(imm), true, nil
	}
	r, rerr := liveout.ParseRegister(tok)
	if rerr != nil {
		return aarch64.Operand{}, true, rerr
	}
	return aarch64.RegOperand(r), true, nil
}

// parseImmediate parses a decimal or 0x-hex signed 64-bit immediate.
func parseImmediate(tok string) (int64, error) {
	tok = strings.TrimSpace(tok)
	base := 10
	neg := false
	if strings.HasPrefix(tok, "-") {
		neg = true
		tok = tok[1:]
	}
	if strings.HasPrefix(strings.ToLower(tok), "0x") {
		base = 16
		tok = tok[2:]
	}
	v, err := strconv.ParseInt(tok, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad immediate %q", ferr.InvalidImmediate, tok)
	}
	if neg {
		v = -v
	}
	return v, nil
}

func parseCond(tok string) (aarch64.CondCode, error) {
	names := []string{"eq", "ne", "cs", "cc", "mi", "pl", "vs", "vc", "hi", "ls", "ge", "lt", "gt", "le", "al", "nv"}
	lower := strings.ToLower(strings.TrimSpace(tok))
	for i, n := range names {
		if n == lower {
			return aarch64.CondCode(i), nil
		}
	}
	switch lower {
	case "hs":
		return aarch64.CondCS, nil
	case "lo":
		return aarch64.CondCC, nil
	}
	return 0, fmt.Errorf("%w: unrecognized condition %q", ferr.InvalidImmediate, tok)
}

// Format renders a sequence as ':'-separated assembly text, the inverse of
// ParseText.
func Format(seq []isa.Instruction) string {
	var sb strings.Builder
	for i, instr := range seq {
		if i > 0 {
			sb.WriteString(" : ")
		}
		sb.WriteString(fmt.Sprint(instr))
	}
	return sb.String()
}

// AssembleError reports a sequence the assembler refused: it names the
// offending instruction's position.
type AssembleError struct {
	Index       int
	Instruction isa.Instruction
}

func (e *AssembleError) Error() string {
	return fmt.Sprintf("%v: instruction %d (%v) has an unencodable operand", ferr.NotEncodable, e.Index, e.Instruction)
}

func (e *AssembleError) Unwrap() error { return ferr.NotEncodable }

// Assemble encodes a sequence into this module's fixed-width pseudo machine
// code, 13 bytes per instruction: opcode, Rd, Rn, Cond, a tag byte (1 for
// an immediate, 0 for a register), and an 8-byte operand slot (big-endian
// immediate, or the register index followed by seven zero bytes). It refuses, with an *AssembleError naming the offending
// instruction, any instruction that fails Encodable().
func Assemble(seq []isa.Instruction) ([]byte, error) {
	out := make([]byte, 0, len(seq)*12)
	for i, ii := range seq {
		instr, ok := ii.(aarch64.Instruction)
		if !ok {
			return nil, &AssembleError{Index: i, Instruction: ii}
		}
		if !instr.Encodable() {
			return nil, &AssembleError{Index: i, Instruction: ii}
		}
		out = append(out, byte(instr.Op), regByte(instr.Rd), regByte(instr.Rn), byte(instr.Cond))
		if instr.Op2.IsImmediate() {
			out = append(out, 1)
			out = appendInt64(out, instr.Op2.Immediate())
		} else {
			out = append(out, 0, regByte(instr.Op2.Reg()), 0, 0, 0, 0, 0, 0, 0)
		}
	}
	return out, nil
}

func regByte(r aarch64.Reg) byte { return byte(r.Index()) }

func appendInt64(buf []byte, v int64) []byte {
	u := uint64(v)
	for shift := 56; shift >= 0; shift -= 8 {
		buf = append(buf, byte(u>>uint(shift)))
	}
	return buf
}
