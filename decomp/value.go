// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import (
	"sort"
	"strconv"

	"github.com/gbc-tools/gbcdis/gbc"
)

// Value is one node of a functional group's expression tree: a pure
// stack push (Leaf), an operation that consumes operands (Sink), or a
// combo-rewritten literal (FakeSink).
type Value interface {
	Decompile(dec *Decoder) string
	AllSources() []*Leaf
}

// Leaf is a pure stack push: an operand with no operands of its own.
type Leaf struct {
	Address uint32
	Op      *gbc.Operation

	// Fake, when non-empty, overrides Decompile entirely. Combo
	// recognition rewrites a push of a combo state variable into a
	// symbolic combo_running(comboN) call site this way.
	Fake string
}

func (l *Leaf) Decompile(dec *Decoder) string {
	if l.Fake != "" {
		return l.Fake
	}
	return l.Op.Decompile(nil, dec.varName)
}

func (l *Leaf) AllSources() []*Leaf { return nil }

// Sink is an operation together with the operand tree feeding its
// pops, keyed by the operand's address. A Sink with Pushes == 0 is a
// functional group's terminal statement; a Sink with Pushes > 0 (a
// SinkSource) is an intermediate operator nested inside another Sink's
// operand tree.
type Sink struct {
	Address    uint32
	Op         *gbc.Operation
	Sources    map[uint32]Value
	SinkSource bool
}

// AllSources collects every Leaf reachable from this sink's operand
// tree, in no particular order.
func (s *Sink) AllSources() []*Leaf {
	var out []*Leaf
	for _, v := range s.Sources {
		switch child := v.(type) {
		case *Sink:
			out = append(out, child.AllSources()...)
		case *Leaf:
			out = append(out, child)
		}
	}
	return out
}

func (s *Sink) sortedAddrs() []uint32 {
	addrs := make([]uint32, 0, len(s.Sources))
	for a := range s.Sources {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

func retConstantsOf(v Value) gbc.ConstTable {
	switch t := v.(type) {
	case *Sink:
		return t.Op.Op.RetConstants
	case *Leaf:
		return t.Op.Op.RetConstants
	}
	return nil
}

func (s *Sink) Decompile(dec *Decoder) string {
	addrs := s.sortedAddrs()
	children := make([]string, len(addrs))
	var retConst gbc.ConstTable
	for i, a := range addrs {
		v := s.Sources[a]
		rendered := v.Decompile(dec)
		if s.SinkSource && !s.Op.Op.Bounded {
			if child, ok := v.(*Sink); ok && !child.Op.Op.Bounded {
				rendered = "(" + rendered + ")"
			}
		}
		children[i] = rendered
		if retConst == nil {
			retConst = retConstantsOf(v)
		}
	}
	if retConst != nil {
		for k, name := range retConst {
			key := strconv.FormatInt(k, 10)
			for i, c := range children {
				if c == key {
					children[i] = name
				}
			}
		}
	}
	return s.Op.Decompile(children, dec.varName)
}

// FakeSink is a combo-rewritten statement: a literal line of text with
// no underlying operation, used in place of a Sink once combo
// recognition has matched a push/pop pattern against a symbolic
// combo_run/combo_restart/combo_stop call.
type FakeSink struct {
	Code string
}

func (f *FakeSink) Decompile(dec *Decoder) string { return f.Code }
func (f *FakeSink) AllSources() []*Leaf           { return nil }
