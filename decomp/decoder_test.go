// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import (
	"testing"

	"github.com/dolthub/swiss"

	"github.com/gbc-tools/gbcdis/gbc"
)

func TestVarNameFallsBackToSlotNumber(t *testing.T) {
	d := New(nil)
	if got := d.varName(4); got != "v4" {
		t.Errorf("varName(4) = %q, want v4", got)
	}
	d.Vars = swiss.NewMap[int64, string](1)
	d.Vars.Put(4, "v0[1]")
	if got := d.varName(4); got != "v0[1]" {
		t.Errorf("varName(4) = %q, want v0[1]", got)
	}
}

func TestDecodeAllPropagatesUnknownOpcodeError(t *testing.T) {
	d := New([]byte{0xFE})
	if err := d.FullDecode(); err == nil {
		t.Fatal("expected an error for an unknown opcode")
	}
}

func TestResolveAllocsArrayVariable(t *testing.T) {
	op, err := gbc.Parse([]byte{0x03, 0x03}, 0) // alloc 3
	if err != nil {
		t.Fatal(err)
	}
	d := &Decoder{Init: &Sub{Operations: map[uint32]*gbc.Operation{0: op}}}
	d.resolveAllocs()

	if d.Allocs[0] != 3 {
		t.Errorf("Allocs[0] = %d, want 3", d.Allocs[0])
	}
	if v, _ := d.Vars.Get(1); v != "v0[1]" {
		t.Errorf("Vars.Get(1) = %q, want v0[1]", v)
	}
	if d.ComboCount != 1 {
		t.Errorf("ComboCount = %d, want 1 (alloc count divisible by 3)", d.ComboCount)
	}
}

// TestFullDecodeRecoversPlainIf runs the complete FullDecode pipeline
// over a minimal program (one scalar alloc, then a main subroutine
// containing "if (1) { v0 = 5; }") and checks that the recovered main
// body matches the source-level control flow.
func TestFullDecodeRecoversPlainIf(t *testing.T) {
	data := []byte{
		0x03, 0x01, // 0: alloc 1
		0x01,             // 2: main
		0x05, 0x01, 0x00, // 3: pushi 1
		0x09, 0x0F, 0x00, // 6: jmpz loc_000F
		0x05, 0x05, 0x00, // 9: pushi 5
		0x06, 0x00, 0x00, // 12: pop var_0
		0x00, // 15: end
	}
	d := New(data)
	if err := d.FullDecode(); err != nil {
		t.Fatal(err)
	}
	if d.Main == nil {
		t.Fatal("Main subroutine not recovered")
	}
	if d.ComboCount != 0 {
		t.Errorf("ComboCount = %d, want 0", d.ComboCount)
	}

	got := d.Main.Body(d)
	want := []string{"\tif (TRUE) {", "\t\tv0 = 5;", "\t}"}
	if len(got) != len(want) {
		t.Fatalf("Body() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Body()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
