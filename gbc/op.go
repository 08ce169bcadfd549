// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gbc

import (
	"fmt"
	"strconv"
	"strings"
)

// Primitive identifies the wire width and signedness of one raw
// argument packed after an opcode byte.
type Primitive int

const (
	// U8 is an unsigned byte argument.
	U8 Primitive = iota
	// I16 is a signed little-endian 16-bit argument.
	I16
)

// Op is one row of the static opcode schema: everything about an
// instruction that does not depend on a particular occurrence of it in
// a byte stream. Rows are transcribed from the GBC front end's own
// opcode table; see DESIGN.md for the source this was ported from.
type Op struct {
	Code   byte
	Name   string
	Args   []Primitive // raw argument layout, in order; nil if none
	Pops   int
	Pushes int

	IsJump      bool
	Conditional bool
	IsCall      bool
	Bounded     bool // whether a sink's rendering needs no parenthesisation when embedded unbounded
	Simple      bool // straight-line arithmetic/load/store, eligible for init-value folding

	TargetArg int // index into the raw argument tuple holding a jump/call target

	ArgsFmt      string  // raw-argument dump template (e.g. "var_{0:0>2X}")
	DecompileFmt *string // decompile template; nil means "no template" (comment fallback)

	Constants    []ConstTable // per slot (raw args then stack children) constant table, or nil
	Variables    []bool       // per slot, whether that slot names a variable to type-infer
	RetConstants ConstTable   // rewrites a returned integer constant (e.g. PIO route ids)
}

func dstr(s string) *string { return &s }

// op is a terse constructor for a row with only a code and a name. The
// table below does not use it: overriding pops/pushes/flags per row via
// functional options would be noisier than the table wagon's own operator
// tables use, so each row is a struct literal, as wasm/operators/memory.go does.
func op(code byte, name string) Op {
	return Op{Code: code, Name: name}
}

// opcodeTable is the static schema, looked up by opcode id via Lookup().
// Transcribed from gpclib/opcodes.py.
var opcodeTable = []Op{
	{Code: 0x00, Name: "end", DecompileFmt: dstr("")},
	{Code: 0x02, Name: "remap", Args: []Primitive{U8, U8}, ArgsFmt: "{0:0>2X} {1:0>2X}",
		Constants: []ConstTable{BUTTONS, BUTTONS}, Bounded: true,
		DecompileFmt: dstr("remap {0} -> {1}")},
	{Code: 0x01, Name: "main", DecompileFmt: dstr("")},
	{Code: 0x03, Name: "alloc", Args: []Primitive{U8}, ArgsFmt: "{0:0>2X}", DecompileFmt: dstr("")},
	{Code: 0x04, Name: "push", Args: []Primitive{I16}, ArgsFmt: "var_{0:0>2X}", Pushes: 1,
		Variables: []bool{true}, DecompileFmt: dstr("{0}")},
	{Code: 0x05, Name: "pushi", Args: []Primitive{I16}, ArgsFmt: "0x{0:0>4X}", Pushes: 1,
		Simple: true, DecompileFmt: dstr("{0}")},
	{Code: 0x06, Name: "pop", Args: []Primitive{I16}, ArgsFmt: "var_{0:0>2X}", Pops: 1,
		Variables: []bool{true}, Bounded: true, Simple: true, DecompileFmt: dstr("{0} = {1}")},
	{Code: 0x07, Name: "wait", Args: []Primitive{I16}, Pops: 1, Bounded: true,
		DecompileFmt: dstr("wait({1})")},
	{Code: 0x08, Name: "jmp", Args: []Primitive{I16}, ArgsFmt: "loc_{0:0>4X}", IsJump: true,
		TargetArg: 0, DecompileFmt: dstr("")},
	{Code: 0x09, Name: "jmpz", Args: []Primitive{I16}, ArgsFmt: "loc_{0:0>4X}", IsJump: true,
		Conditional: true, TargetArg: 0, Pops: 1, Constants: []ConstTable{nil, TRUTHS},
		DecompileFmt: dstr("if ({1})")},
	{Code: 0x0A, Name: "and", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} && {1}")},
	{Code: 0x0B, Name: "or", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} || {1}")},
	{Code: 0x0C, Name: "eq", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} == {1}")},
	{Code: 0x0D, Name: "neq", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} != {1}")},
	{Code: 0x0E, Name: "lt", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} < {1}")},
	{Code: 0x0F, Name: "lte", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} <= {1}")},
	{Code: 0x10, Name: "gt", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} > {1}")},
	{Code: 0x11, Name: "gte", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} >= {1}")},
	{Code: 0x12, Name: "add", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} + {1}")},
	{Code: 0x13, Name: "sub", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} - {1}")},
	{Code: 0x14, Name: "mul", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} * {1}")},
	{Code: 0x15, Name: "div", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} / {1}")},
	{Code: 0x16, Name: "not", Pops: 1, Pushes: 1, Simple: true, Constants: []ConstTable{TRUTHS},
		DecompileFmt: dstr("!{0}")},
	{Code: 0x17, Name: "grtime", Pushes: 1, DecompileFmt: dstr("get_rtime()")},
	{Code: 0x18, Name: "sval", Pops: 2, Bounded: true, Constants: []ConstTable{BUTTONS},
		DecompileFmt: dstr("set_val({0}, {1})")},
	{Code: 0x19, Name: "gval", Pops: 1, Pushes: 1, Bounded: true, Constants: []ConstTable{BUTTONS},
		DecompileFmt: dstr("get_val({0})")},
	{Code: 0x1A, Name: "glval", Pops: 1, Pushes: 1, Bounded: true, Constants: []ConstTable{BUTTONS},
		DecompileFmt: dstr("get_lval({0})")},
	{Code: 0x1B, Name: "gptime", Pops: 1, Pushes: 1, Bounded: true, Constants: []ConstTable{BUTTONS},
		DecompileFmt: dstr("get_ptime({0})")},
	{Code: 0x1C, Name: "eventpress", Pops: 1, Pushes: 1, Bounded: true, Constants: []ConstTable{BUTTONS},
		DecompileFmt: dstr("event_press({0})")},
	{Code: 0x1D, Name: "eventrelease", Pops: 1, Pushes: 1, Bounded: true, Constants: []ConstTable{BUTTONS},
		DecompileFmt: dstr("event_release({0})")},
	{Code: 0x1E, Name: "turnoff", DecompileFmt: dstr("turn_off()")},
	{Code: 0x1F, Name: "swap", Pops: 2, Bounded: true, Constants: []ConstTable{BUTTONS, BUTTONS},
		DecompileFmt: dstr("swap({0}, {1})")},
	{Code: 0x20, Name: "block", Pops: 2, Bounded: true, Constants: []ConstTable{BUTTONS},
		DecompileFmt: dstr("block({0}, {1})")},
	{Code: 0x21, Name: "sens", Pops: 3, Bounded: true, Constants: []ConstTable{BUTTONS, nil, SENS},
		DecompileFmt: dstr("sensitivity({0}, {1}, {2})")},
	{Code: 0x22, Name: "sled", Pops: 2, Bounded: true, Constants: []ConstTable{LEDS},
		DecompileFmt: dstr("set_led({0}, {1})")},
	{Code: 0x23, Name: "gled", Pops: 1, Pushes: 1, Bounded: true, Constants: []ConstTable{LEDS},
		DecompileFmt: dstr("get_led({0})")},
	{Code: 0x24, Name: "srumble", Pops: 2, Bounded: true, Constants: []ConstTable{RUMBLE},
		DecompileFmt: dstr("set_rumble({0}, {1})")},
	{Code: 0x25, Name: "grumble", Pops: 1, Pushes: 1, Bounded: true, Constants: []ConstTable{RUMBLE},
		DecompileFmt: dstr("get_rumble({0})")},
	{Code: 0x26, Name: "loadslot", Pops: 1, Bounded: true, DecompileFmt: dstr("load_slot({0})")},
	{Code: 0x27, Name: "abs", Pops: 1, Pushes: 1, Bounded: true, Simple: true, DecompileFmt: dstr("abs({0})")},
	{Code: 0x28, Name: "resetleds", DecompileFmt: dstr("reset_leds()")},
	{Code: 0x29, Name: "blockrumble", DecompileFmt: dstr("block_rumble()")},
	{Code: 0x2A, Name: "resetrumble", DecompileFmt: dstr("reset_rumble()")},
	{Code: 0x2B, Name: "vmtctrl", Pops: 1, Bounded: true, DecompileFmt: dstr("vm_tctrl({0})")},
	{Code: 0x2C, Name: "inv", Pops: 1, Pushes: 1, Bounded: true, Simple: true, DecompileFmt: dstr("inv({0})")},
	{Code: 0x2D, Name: "wroscr", Pushes: 1, DecompileFmt: dstr("wiir_offscreen()")},
	{Code: 0x2E, Name: "pow", Pops: 2, Pushes: 1, Bounded: true, Simple: true, DecompileFmt: dstr("pow({0}, {1})")},
	{Code: 0x2F, Name: "isqrt", Pops: 1, Pushes: 1, Bounded: true, Simple: true, DecompileFmt: dstr("isqrt({0})")},
	{Code: 0x30, Name: "stickize", Pops: 3, Bounded: true, Constants: []ConstTable{BUTTONS, BUTTONS},
		DecompileFmt: dstr("stickize({0}, {1}, {2})")},
	{Code: 0x31, Name: "unmap", Args: []Primitive{U8}, ArgsFmt: "{0:0>2X}", Bounded: true,
		Constants: []ConstTable{BUTTONS}, DecompileFmt: dstr("unmap {0}")},
	{Code: 0x32, Name: "dzone", Pops: 4, Bounded: true, Constants: []ConstTable{BUTTONS, BUTTONS},
		DecompileFmt: dstr("deadzone({0}, {1}, {2}, {3})")},
	{Code: 0x33, Name: "mod", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} % {1}")},
	{Code: 0x34, Name: "spvar", Pops: 2, Bounded: true, Constants: []ConstTable{PVARS},
		DecompileFmt: dstr("set_pvar({0}, {1})")},
	{Code: 0x35, Name: "gpvar", Pops: 4, Pushes: 1, Bounded: true, Constants: []ConstTable{PVARS},
		DecompileFmt: dstr("get_pvar({0}, {1}, {2}, {3})")},
	{Code: 0x36, Name: "call", Args: []Primitive{I16, U8, U8}, ArgsFmt: "sub_{0:0>4X} {1:0>2X} {2:0>2X}",
		IsCall: true, TargetArg: 0, Bounded: true, DecompileFmt: dstr("sub_{0:0>4X}(")},
	{Code: 0x37, Name: "ret", Args: []Primitive{U8}, ArgsFmt: "{0:0>2X}", Bounded: true,
		DecompileFmt: dstr("return")},
	{Code: 0x38, Name: "pusha", Args: []Primitive{I16}, ArgsFmt: "a{0}", Pushes: 1, Simple: true,
		DecompileFmt: dstr("a{0}")},
	{Code: 0x39, Name: "popa", Args: []Primitive{I16}, ArgsFmt: "a{0}", Pops: 1, Simple: true,
		DecompileFmt: dstr("a{0} = {1}")},
	{Code: 0x3A, Name: "sledx", Pops: 2, Bounded: true, Constants: []ConstTable{LEDS},
		DecompileFmt: dstr("set_ledx({0}, {1})")},
	{Code: 0x3B, Name: "gledx", Pushes: 1, DecompileFmt: dstr("get_ledx()")},
	{Code: 0x3C, Name: "gcnsl", Pushes: 1, RetConstants: PIO, DecompileFmt: dstr("get_console()")},
	{Code: 0x3D, Name: "gctrl", Pushes: 1, RetConstants: PIO, DecompileFmt: dstr("get_controller()")},
	{Code: 0x3E, Name: "xor", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("{0} ^^ {1}")},
	{Code: 0x3F, Name: "pushidx", Args: []Primitive{I16}, Pops: 1, Pushes: 1, Variables: []bool{true},
		Simple: true, DecompileFmt: dstr("{0}[{1}]")},
	{Code: 0x40, Name: "popidx", Args: []Primitive{I16}, Pops: 2, Variables: []bool{true},
		Simple: true, DecompileFmt: dstr("{0}[{1}] = {2}")},
	{Code: 0x41, Name: "getslot", Pushes: 1, DecompileFmt: dstr("get_slot()")},
	{Code: 0x42, Name: "sbit", Args: []Primitive{I16}, ArgsFmt: "var_{0:0>2X}", Pops: 1,
		Variables: []bool{true}, Simple: true, DecompileFmt: dstr("set_bit({1}, {0})")},
	{Code: 0x43, Name: "cbit", Args: []Primitive{I16}, ArgsFmt: "var_{0:0>2X}", Pops: 1, Simple: true},
	{Code: 0x44, Name: "tbit", Pops: 2, Pushes: 1, Simple: true, DecompileFmt: dstr("test_bit({0}, {1})")},
	{Code: 0x45, Name: "sbits", Args: []Primitive{I16}, ArgsFmt: "var_{0:0>2X}", Pops: 3,
		Variables: []bool{true}, Simple: true, DecompileFmt: dstr("set_bits({0}, {1}, {2}, {3})")},
	{Code: 0x46, Name: "gbits", Pops: 3, Pushes: 1, Simple: true, DecompileFmt: dstr("get_bits({0}, {1}, {2})")},
	{Code: 0x47, Name: "dchar", Pops: 1, Pushes: 1, Bounded: true, DecompileFmt: dstr("dchar({0})")},
	{Code: 0x48, Name: "dbyte", Pops: 1, Pushes: 1, Bounded: true, DecompileFmt: dstr("dbyte({0})")},
	{Code: 0x49, Name: "dword", Pops: 1, Pushes: 1, Bounded: true, DecompileFmt: dstr("dword({0})")},
	{Code: 0x4A, Name: "sbita", Args: []Primitive{I16}, ArgsFmt: "arg_{0:0>2X}", Pops: 1,
		DecompileFmt: dstr("set_bit(a{0}, {1})")},
	{Code: 0x4B, Name: "cbita", Args: []Primitive{I16}, ArgsFmt: "arg_{0:0>2X}", Pops: 1,
		DecompileFmt: dstr("clear_bit(a{0}, {1})")},
	{Code: 0x4C, Name: "sbitsa", Args: []Primitive{I16}, ArgsFmt: "arg_{0:0>2X}", Pops: 3,
		DecompileFmt: dstr("set_bits(a{0}, {1}, {2}, {3})")},
	{Code: 0x4D, Name: "ps4tch", Args: []Primitive{I16}, Pops: 1, Pushes: 1, Bounded: true,
		Constants: []ConstTable{PS4}, DecompileFmt: dstr("ps4_touchpad({0})")},
	{Code: 0x4E, Name: "gbatt", Pushes: 1, DecompileFmt: dstr("get_battery()")},
	{Code: 0x4F, Name: "nop", DecompileFmt: dstr("NOP()")},
	{Code: 0x50, Name: "GetPS4AuthTimeout", Pushes: 1, DecompileFmt: dstr("ps4_authtimeout()")},
	{Code: 0x51, Name: "op_reconn", DecompileFmt: dstr("output_reconnection()")},
	{Code: 0x52, Name: "GetCtrlBtnOpCode", Pushes: 1, DecompileFmt: dstr("get_ctrlbutton()")},
}

var opByCode = func() map[byte]*Op {
	m := make(map[byte]*Op, len(opcodeTable))
	for i := range opcodeTable {
		m[opcodeTable[i].Code] = &opcodeTable[i]
	}
	return m
}()

// Lookup returns the static schema row for opcode, or nil if it is not
// in the table (the caller should then consult the missing overrides).
func Lookup(opcode byte) *Op {
	return opByCode[opcode]
}

// Missing is an optional override table: opcode id -> total instruction
// byte length, used to tolerate opcodes the schema does not (yet) know
// about. It starts empty, per spec.md §9's Open Question about whether
// encountering an unknown opcode should be a hard error; internal/config
// can populate it from a YAML file at startup.
var Missing = map[byte]int{}

// dataOp is the synthetic row used to cover unreached byte ranges found
// by gap filling.
var dataOp = Op{Name: ".data", Bounded: true}

// DataOp returns a synthetic Op describing an opaque length-byte data
// record, with a decompile template built for that specific length.
func DataOp(length int) Op {
	o := dataOp
	holes := make([]string, length)
	for i := range holes {
		holes[i] = "{" + strconv.Itoa(i) + "}"
	}
	s := "data(" + strings.Join(holes, ", ") + ")"
	o.DecompileFmt = &s
	o.ArgsFmt = buildHexDumpFmt(length)
	return o
}

// FailedOp returns the synthetic row used for opcodes hard-coded in
// Missing; it carries no DecompileFmt (nil), so the emitter falls back
// to a commented raw dump, matching FailedOpCode's lack of _fmt_decompile.
func FailedOp(opcode byte, length int) Op {
	o := Op{Code: opcode, Name: fmt.Sprintf("OP_%02X", opcode)}
	o.ArgsFmt = buildHexDumpFmt(length - 1)
	return o
}

func buildHexDumpFmt(n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = "{" + strconv.Itoa(i) + ":0>2X}"
	}
	return strings.Join(parts, " ")
}
