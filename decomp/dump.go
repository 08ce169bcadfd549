// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import (
	"fmt"
	"sort"
	"strings"
)

// DumpOperations renders the raw per-instruction disassembly: address,
// mnemonic and argument dump, with sub/loc label lines interleaved.
func (d *Decoder) DumpOperations() []string {
	var lines []string
	for _, addr := range sortedOpKeys(d.Operations) {
		op := d.Operations[addr]
		if op.SubName != "" {
			lines = append(lines, fmt.Sprintf("%04X %s:", addr, op.SubName))
		}
		if op.LocName != "" {
			lines = append(lines, fmt.Sprintf("%04X \t%s:", addr, op.LocName))
		}
		lines = append(lines, fmt.Sprintf("%04X\t\t%s", addr, op.String()))
	}
	return lines
}

// DumpBlocks renders the per-subroutine block/functional-group tree
// used to inspect structural recovery: one line per block and group
// giving its jump topology, followed by its expression tree.
func (d *Decoder) DumpBlocks() []string {
	subs := sortedSubsAsc(d.Subs)
	if d.Start != nil {
		subs = append([]*Sub{d.Start}, subs...)
		sort.Slice(subs, func(i, j int) bool { return subs[i].Address < subs[j].Address })
	}

	var lines []string
	for _, sub := range subs {
		lines = append(lines, fmt.Sprintf("%04X %s:", sub.Address, sub.Prototype()))
		lines = append(lines, dumpBlock(sub.Root, 0)...)
	}
	return lines
}

func dumpBlock(b *Block, i int) []string {
	indent := strings.Repeat("\t", i)
	lines := []string{fmt.Sprintf("%04X \t%sb_%04X", int(b.Address), indent, int(b.Address))}
	for _, item := range b.sortedChildren() {
		switch v := item.(type) {
		case *Block:
			lines = append(lines, dumpBlock(v, i+1)...)
		case *Group:
			jumpTo := ""
			if v.HasJump {
				jumpTo = fmt.Sprintf(" -> g_%04X", v.Jump)
			} else if v.HasJumpz {
				jumpTo = fmt.Sprintf(" ?> g_%04X", v.Jumpz)
			}
			jumpedFrom := ""
			if v.HasJumped {
				jumpedFrom = fmt.Sprintf("g_%04X -> ", v.Jumped)
			} else if v.HasJumpzed {
				jumpedFrom = fmt.Sprintf("g_%04X ?> ", v.Jumpzed)
			}
			lines = append(lines, fmt.Sprintf("%04X \t\t%s%s(g_%04X)%s", v.Address, indent, jumpedFrom, v.Address, jumpTo))
			lines = append(lines, dumpSink(v.FinalSink, i)...)
		}
	}
	return lines
}

func dumpSink(v Value, i int) []string {
	sk, ok := v.(*Sink)
	if !ok {
		return nil
	}
	var lines []string
	for _, addr := range sk.sortedAddrs() {
		src := sk.Sources[addr]
		if child, ok := src.(*Sink); ok {
			lines = append(lines, dumpSink(child, i+1)...)
			continue
		}
		if leaf, ok := src.(*Leaf); ok {
			lines = append(lines, fmt.Sprintf("%04X\t\t\t\t\t%s%s", leaf.Address, strings.Repeat("\t", i), leaf.Op.String()))
		}
	}
	lines = append(lines, fmt.Sprintf("%04X\t\t\t\t%s%s", sk.Address, strings.Repeat("\t", i), sk.Op.String()))
	return lines
}
