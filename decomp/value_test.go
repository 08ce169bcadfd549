// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import (
	"testing"

	"github.com/gbc-tools/gbcdis/gbc"
)

func mustParse(t *testing.T, data []byte, addr uint32) *gbc.Operation {
	t.Helper()
	op, err := gbc.Parse(data, addr)
	if err != nil {
		t.Fatalf("Parse(%#v, %d): %v", data, addr, err)
	}
	return op
}

func TestLeafDecompileFake(t *testing.T) {
	l := &Leaf{Fake: "combo_running(combo0)"}
	if got := l.Decompile(&Decoder{}); got != "combo_running(combo0)" {
		t.Errorf("Decompile = %q, want combo_running(combo0)", got)
	}
}

func TestLeafDecompileReal(t *testing.T) {
	data := []byte{0x05, 0x07, 0x00} // pushi 7
	op := mustParse(t, data, 0)
	l := &Leaf{Address: 0, Op: op}
	if got := l.Decompile(&Decoder{}); got != "7" {
		t.Errorf("Decompile = %q, want 7", got)
	}
}

func TestSinkDecompileSimpleTwoOperandAdd(t *testing.T) {
	data := []byte{0x12} // add
	op := mustParse(t, data, 0)
	sk := &Sink{
		Address: 0,
		Op:      op,
		Sources: map[uint32]Value{
			1: &Leaf{Address: 1, Op: mustParse(t, []byte{0x05, 0x02, 0x00}, 0)},
			2: &Leaf{Address: 2, Op: mustParse(t, []byte{0x05, 0x03, 0x00}, 0)},
		},
	}
	if got := sk.Decompile(&Decoder{}); got != "2 + 3" {
		t.Errorf("Decompile = %q, want 2 + 3", got)
	}
}

func TestSinkDecompileParenthesizesUnboundedNestedSink(t *testing.T) {
	addOp := mustParse(t, []byte{0x12}, 0) // add, unbounded
	inner := &Sink{
		Address: 5, Op: addOp, SinkSource: true,
		Sources: map[uint32]Value{
			1: &Leaf{Address: 1, Op: mustParse(t, []byte{0x05, 0x01, 0x00}, 0)},
			2: &Leaf{Address: 2, Op: mustParse(t, []byte{0x05, 0x02, 0x00}, 0)},
		},
	}
	mulOp := mustParse(t, []byte{0x14}, 0) // mul, also unbounded
	outer := &Sink{
		Address: 10, Op: mulOp, SinkSource: true,
		Sources: map[uint32]Value{
			5: inner,
			6: &Leaf{Address: 6, Op: mustParse(t, []byte{0x05, 0x03, 0x00}, 0)},
		},
	}
	got := outer.Decompile(&Decoder{})
	want := "(1 + 2) * 3"
	if got != want {
		t.Errorf("Decompile = %q, want %q", got, want)
	}
}

func TestSinkDecompileAppliesRetConstants(t *testing.T) {
	// get_console() returns an integer PIO route id; RetConstants
	// rewrites the literal the caller compares it against.
	gcnsl := mustParse(t, []byte{0x3C}, 0)
	eqOp := mustParse(t, []byte{0x0C}, 0) // eq
	sk := &Sink{
		Address: 0, Op: eqOp,
		Sources: map[uint32]Value{
			1: &Leaf{Address: 1, Op: gcnsl},
			2: &Leaf{Address: 2, Op: mustParse(t, []byte{0x05, 0x00, 0x00}, 0)}, // pushi 0
		},
	}
	got := sk.Decompile(&Decoder{})
	want := "get_console() == PIO_PS4"
	if got != want {
		t.Errorf("Decompile = %q, want %q", got, want)
	}
}

func TestFakeSinkDecompile(t *testing.T) {
	f := &FakeSink{Code: "combo_run(combo0);"}
	if got := f.Decompile(&Decoder{}); got != "combo_run(combo0);" {
		t.Errorf("Decompile = %q, want combo_run(combo0);", got)
	}
	if f.AllSources() != nil {
		t.Errorf("AllSources = %v, want nil", f.AllSources())
	}
}
