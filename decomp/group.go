// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import (
	"sort"

	"github.com/gbc-tools/gbcdis/gbc"
)

// Group is a functional group: a maximal run of instructions whose net
// stack effect starts and ends at depth zero, resolved into a single
// expression tree rooted at FinalSink.
type Group struct {
	Address    uint32
	Operations map[uint32]*gbc.Operation

	FinalSink Value

	HasJump, HasJumpz     bool
	Jump, Jumpz           uint32
	HasJumped, HasJumpzed bool
	Jumped, Jumpzed       uint32

	OpensBlock, ClosesBlock bool
	Complex                 bool

	Next  *Group
	Block *Block
}

func (g *Group) addr() float64 { return float64(g.Address) }

func (g *Group) sortedOpsDesc() []uint32 {
	addrs := make([]uint32, 0, len(g.Operations))
	for a := range g.Operations {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] > addrs[j] })
	return addrs
}

// Simple reports whether every instruction in the group is a plain
// arithmetic/load/store op, making the group eligible for constant
// folding when resolving the init subroutine's variable table.
func (g *Group) Simple() bool {
	if g.Complex {
		return false
	}
	for _, op := range g.Operations {
		if !op.Op.Simple {
			return false
		}
	}
	return true
}

// AllSinks returns the group's sink nodes usable for variable
// inference: just the final sink, since a functional group's operand
// tree only ever surfaces nested sinks as its final sink's transitive
// operands, never as additional top-level entries.
func (g *Group) AllSinks() []*Sink {
	if sk, ok := g.FinalSink.(*Sink); ok {
		return []*Sink{sk}
	}
	return nil
}

// overrideFinalTemplate rewrites the final sink's decompile template,
// used by structural control-flow recovery to turn a jumpz condition
// into "while (...)", "if (...)", "else if (...)" or a bare "break".
func (g *Group) overrideFinalTemplate(tmpl string) {
	sk, ok := g.FinalSink.(*Sink)
	if !ok {
		return
	}
	opCopy := *sk.Op
	t := tmpl
	opCopy.Op.DecompileFmt = &t
	sk.Op = &opCopy
}

// Resolve builds the group's expression tree from its instructions,
// walked in descending address order: the last instruction is the
// root sink, and earlier instructions are threaded onto whichever sink
// currently has unfilled operand slots.
func (g *Group) Resolve() error {
	addrs := g.sortedOpsDesc()
	var finalSink *Sink
	var sink *Sink
	var stack []*Sink

	for _, addr := range addrs {
		op := g.Operations[addr]
		if finalSink == nil {
			finalSink = &Sink{Address: addr, Op: op, Sources: map[uint32]Value{}}
			sink = finalSink
			g.FinalSink = finalSink
			if op.Op.IsJump && op.Op.Conditional {
				g.HasJumpz = true
				g.Jumpz = op.JumpAddress
			} else if op.Op.IsJump {
				g.HasJump = true
				g.Jump = op.JumpAddress
			}
			continue
		}

		switch {
		case op.Op.Pushes > 0 && op.Op.Pops == 0:
			sink.Sources[addr] = &Leaf{Address: addr, Op: op}
		case op.Op.Pops > 0 && op.Op.Pushes > 0:
			child := &Sink{Address: addr, Op: op, Sources: map[uint32]Value{}, SinkSource: true}
			sink.Sources[addr] = child
			stack = append(stack, sink)
			sink = child
		case op.Op.Pops > 0:
			return &MalformedGroupError{Address: addr, Reason: "sink-only instruction in the middle of a functional group"}
		}

		if len(sink.Sources) > sink.Op.Op.Pops {
			return &StackOverflowError{Address: sink.Address, Want: sink.Op.Op.Pops, Have: len(sink.Sources)}
		}
		for len(sink.Sources) == sink.Op.Op.Pops && len(stack) > 0 {
			sink = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
	}
	return nil
}
