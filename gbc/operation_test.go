// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gbc

import "testing"

func noNames(slot int64) string { return "?" }

func TestParsePushi(t *testing.T) {
	data := []byte{0x05, 0x05, 0x00} // pushi 5
	op, err := Parse(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	if op.Size != 3 {
		t.Errorf("Size = %d, want 3", op.Size)
	}
	if op.Arguments[0] != 5 {
		t.Errorf("Arguments[0] = %d, want 5", op.Arguments[0])
	}
	if got := op.Decompile(nil, noNames); got != "5" {
		t.Errorf("Decompile = %q, want 5", got)
	}
}

func TestParsePushVariable(t *testing.T) {
	data := []byte{0x04, 0x03, 0x00} // push var_03
	op, err := Parse(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	names := func(slot int64) string { return "v3" }
	if got := op.Decompile(nil, names); got != "v3" {
		t.Errorf("Decompile = %q, want v3", got)
	}
}

func TestParseJmpzAppliesTruthTable(t *testing.T) {
	data := []byte{0x09, 0x10, 0x00} // jmpz loc_0010
	op, err := Parse(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	if op.JumpAddress != 0x10 {
		t.Errorf("JumpAddress = %#x, want 0x10", op.JumpAddress)
	}
	if got := op.Decompile([]string{"1"}, noNames); got != "if (TRUE)" {
		t.Errorf("Decompile = %q, want if (TRUE)", got)
	}
}

func TestParseJmpNegativeTargetReinterpretedUnsigned(t *testing.T) {
	// -1 as a little-endian i16 reinterprets as 0xFFFF, matching the GBC
	// front end's use of the full 16-bit range for addresses.
	data := []byte{0x08, 0xFF, 0xFF}
	op, err := Parse(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	if op.JumpAddress != 0xFFFF {
		t.Errorf("JumpAddress = %#x, want 0xFFFF", op.JumpAddress)
	}
}

func TestParseCallSetsDynamicArityAndTemplate(t *testing.T) {
	data := []byte{0x36, 0x10, 0x00, 0x01, 0x00} // call sub_0010, 1 pop, 0 push
	op, err := Parse(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	if op.Op.Pops != 1 || op.Op.Pushes != 0 {
		t.Errorf("Pops/Pushes = %d/%d, want 1/0", op.Op.Pops, op.Op.Pushes)
	}
	if op.JumpAddress != 0x10 {
		t.Errorf("JumpAddress = %#x, want 0x10", op.JumpAddress)
	}
	if got := op.Decompile([]string{"x"}, noNames); got != "sub_0010(x)" {
		t.Errorf("Decompile = %q, want sub_0010(x)", got)
	}
}

func TestParseRetWithValueRewritesTemplate(t *testing.T) {
	data := []byte{0x37, 0x01} // ret, 1 pop
	op, err := Parse(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := op.Decompile([]string{"5"}, noNames); got != "return 5" {
		t.Errorf("Decompile = %q, want return 5", got)
	}
}

func TestParseRetVoidKeepsDefaultTemplate(t *testing.T) {
	data := []byte{0x37, 0x00} // ret, 0 pops
	op, err := Parse(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := op.Decompile(nil, noNames); got != "return" {
		t.Errorf("Decompile = %q, want return", got)
	}
}

func TestParseUnknownOpcode(t *testing.T) {
	_, err := Parse([]byte{0xFE}, 0)
	if err == nil {
		t.Fatal("expected error for unknown opcode")
	}
	if _, ok := err.(*UnknownOpcodeError); !ok {
		t.Errorf("err = %T, want *UnknownOpcodeError", err)
	}
}

func TestParseUsesMissingOverride(t *testing.T) {
	Missing[0xFE] = 2
	defer delete(Missing, 0xFE)

	op, err := Parse([]byte{0xFE, 0x07}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if op.Size != 2 {
		t.Errorf("Size = %d, want 2", op.Size)
	}
	if got := op.Decompile(nil, noNames); got != "// OP_FE\t07" {
		t.Errorf("Decompile = %q, want // OP_FE\\t07", got)
	}
}

func TestParseShortRead(t *testing.T) {
	if _, err := Parse([]byte{0x05, 0x00}, 0); err == nil {
		t.Fatal("expected short-read error for truncated pushi")
	}
}

func TestStringFallsBackToNameWhenNoArgs(t *testing.T) {
	op, err := Parse([]byte{0x00}, 0) // end
	if err != nil {
		t.Fatal(err)
	}
	if got := op.String(); got != "end" {
		t.Errorf("String = %q, want end", got)
	}
}
