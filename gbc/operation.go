// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gbc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gbc-tools/gbcdis/gbc/args"
)

// Operation is one decoded instruction at a byte address: an opcode
// schema row plus its parsed argument tuple and any labels attached to
// it once subroutine/block discovery has run.
//
// Operation is immutable once parsed except for SubName/LocName (set by
// label discovery). For calls and rets, Parse takes Op.Pops/Op.Pushes
// from the instruction's own arguments rather than from the schema row.
type Operation struct {
	Op      Op
	Address uint32
	Size    int

	Arguments   []int64
	JumpAddress uint32

	SubName string
	LocName string
}

// Parse decodes one instruction at address in data, consulting the
// static opcode table and then the Missing override table. It reports
// the number of bytes consumed.
func Parse(data []byte, address uint32) (*Operation, error) {
	if int(address) >= len(data) {
		return nil, fmt.Errorf("gbc: address %04X out of range", address)
	}
	code := data[address]
	logger.Printf("parsing opcode 0x%02X at %04X", code, address)

	if row := Lookup(code); row != nil {
		logger.Println("matched", row.Name)
		return parseRow(*row, data, address)
	}
	if length, ok := Missing[code]; ok {
		logger.Printf("opcode 0x%02X not in table, using missing-table override (length %d)", code, length)
		row := FailedOp(code, length)
		raw, err := readRawBytes(data, int(address)+1, length-1)
		if err != nil {
			return nil, err
		}
		return &Operation{Op: row, Address: address, Size: length, Arguments: raw}, nil
	}
	logger.Printf("unknown opcode 0x%02X at %04X", code, address)
	return nil, &UnknownOpcodeError{Address: address, Byte: code}
}

func readRawBytes(data []byte, off, n int) ([]int64, error) {
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		v, _, err := args.ReadU8(data, off+i)
		if err != nil {
			return nil, err
		}
		out[i] = int64(v)
	}
	return out, nil
}

func parseRow(row Op, data []byte, address uint32) (*Operation, error) {
	off := int(address) + 1
	size := 1
	vals := make([]int64, len(row.Args))
	for i, prim := range row.Args {
		switch prim {
		case U8:
			v, n, err := args.ReadU8(data, off)
			if err != nil {
				return nil, err
			}
			vals[i] = int64(v)
			off += n
			size += n
		case I16:
			v, n, err := args.ReadI16(data, off)
			if err != nil {
				return nil, err
			}
			vals[i] = int64(v)
			off += n
			size += n
		}
	}

	o := &Operation{Op: row, Address: address, Size: size, Arguments: vals}

	switch {
	case row.IsCall:
		// call <target:i16> <arg_pops:u8> <arg_pushes:u8>; the callee's
		// arity is only known once the target sub is parsed, but the
		// call site's own stack effect is known immediately.
		o.Op.Pops = int(vals[1])
		o.Op.Pushes = int(vals[2])
		o.JumpAddress = uint32(uint16(vals[0]))
		logger.Printf("call at %04X targets %04X, pops=%d pushes=%d", address, o.JumpAddress, o.Op.Pops, o.Op.Pushes)
		holes := make([]string, o.Op.Pops)
		for i := range holes {
			holes[i] = "{" + strconv.Itoa(len(vals)+i) + "}"
		}
		tmpl := *row.DecompileFmt + strings.Join(holes, ", ") + ")"
		o.Op.DecompileFmt = &tmpl
	case row.Name == "ret":
		o.Op.Pops = int(vals[0])
		if o.Op.Pops > 0 {
			tmpl := "return {1}"
			o.Op.DecompileFmt = &tmpl
		}
	case row.IsJump:
		o.JumpAddress = uint32(uint16(vals[row.TargetArg]))
	}

	return o, nil
}

// IsPureSource reports whether the operation only pushes (a Source leaf
// in the expression tree).
func (o *Operation) IsPureSource() bool { return o.Op.Pushes > 0 && o.Op.Pops == 0 }

// IsSink reports whether the operation pops (a Sink or SinkSource node).
func (o *Operation) IsSink() bool { return o.Op.Pops > 0 }

// IsSinkSource reports whether the operation both pops and pushes.
func (o *Operation) IsSinkSource() bool { return o.Op.Pops > 0 && o.Op.Pushes > 0 }

// Neutral reports whether the operation neither pops nor pushes
// (typically a jump or other pure control-flow marker).
func (o *Operation) Neutral() bool { return o.Op.Pops == 0 && o.Op.Pushes == 0 }

// FormatArgs renders the raw-argument dump used by the "dump" CLI, e.g.
// "var_12" for push.
func (o *Operation) FormatArgs() string {
	if o.Op.ArgsFmt == "" {
		return ""
	}
	return FormatArgs(o.Op.ArgsFmt, o.Arguments)
}

// String renders one line of the raw opcode dump: "mnemonic\targs".
func (o *Operation) String() string {
	a := o.FormatArgs()
	if a == "" {
		return o.Op.Name
	}
	return o.Op.Name + "\t" + a
}

// argStrings returns the raw argument tuple pre-rendered as decimal
// strings, the way OpCode.decompile's `a = list(self.arguments)` prefix
// is built in the original before constants/variables substitution.
func (o *Operation) argStrings() []string {
	out := make([]string, len(o.Arguments))
	for i, v := range o.Arguments {
		out[i] = strconv.FormatInt(v, 10)
	}
	return out
}

// ApplyConstants rewrites entries of vals in place using the constant
// table (if any) bound to slot idx, where idx runs over the combined
// raw-argument-then-child-operand list exactly as OpCode.decompile's
// own `a` list is indexed.
func (o *Operation) ApplyConstants(vals []string) {
	for idx, table := range o.Op.Constants {
		if table == nil || idx >= len(vals) {
			continue
		}
		n, err := strconv.ParseInt(vals[idx], 10, 64)
		if err != nil {
			continue
		}
		if name := table.Lookup(n); name != "" {
			vals[idx] = name
		}
	}
}

// ApplyVariables rewrites entries of vals in place using the decoder's
// learned variable names, for slots this op flags as variable-typed.
func (o *Operation) ApplyVariables(vals []string, names func(slot int64) string) {
	for idx, isVar := range o.Op.Variables {
		if !isVar || idx >= len(vals) {
			continue
		}
		n, err := strconv.ParseInt(vals[idx], 10, 64)
		if err != nil {
			continue
		}
		vals[idx] = names(n)
	}
}

// Decompile renders this operation's text given its already-decompiled
// stack children (sources), in ascending source-address order. Calling
// code is responsible for substituting children in the right slots;
// Decompile only applies the raw-argument prefix, constants and
// variable names, then the decompile template.
func (o *Operation) Decompile(children []string, names func(slot int64) string) string {
	if o.Op.DecompileFmt == nil {
		return "// " + o.String()
	}
	vals := o.argStrings()
	vals = append(vals, children...)
	o.ApplyVariables(vals, names)
	o.ApplyConstants(vals)
	return FormatDecompile(*o.Op.DecompileFmt, vals)
}
