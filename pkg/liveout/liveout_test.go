package liveout

import (
	"testing"

	"github.com/oisee/aarch64-optimizer/pkg/aarch64"
)

func TestParseCommaAndSpaceSeparated(t *testing.T) {
	mask, err := Parse("x0, x1  x2,x3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, idx := range []int{0, 1, 2, 3} {
		if !mask.Contains(idx) {
			t.Errorf("register %d should be live-out", idx)
		}
	}
	if mask.Contains(4) {
		t.Errorf("register 4 should not be live-out")
	}
}

func TestParseCaseInsensitive(t *testing.T) {
	mask, err := Parse("X0, XZR, SP")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !mask.Contains(0) {
		t.Errorf("X0 should be live-out")
	}
	if mask.Contains(aarch64.ZeroIndex) {
		t.Errorf("xzr must never be recorded live-out")
	}
	if !mask.SP {
		t.Errorf("sp should be live-out")
	}
}

func TestParseAliasesFPAndLR(t *testing.T) {
	mask, err := Parse("fp,lr")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !mask.Contains(29) {
		t.Errorf("fp should alias x29")
	}
	if !mask.Contains(30) {
		t.Errorf("lr should alias x30")
	}
}

func TestParseRejectsUnknownRegister(t *testing.T) {
	if _, err := Parse("x99"); err == nil {
		t.Errorf("expected an error for an out-of-range register")
	}
	if _, err := Parse("banana"); err == nil {
		t.Errorf("expected an error for a non-register token")
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	if _, err := Parse("   "); err == nil {
		t.Errorf("expected an error for an empty live-out list")
	}
}
