// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import (
	"sort"

	"github.com/gbc-tools/gbcdis/gbc"
)

// Loc is one label's worth of instructions: everything between a jump
// target (or subroutine entry) and the next one, split further into
// functional groups.
type Loc struct {
	Address    uint32
	Operations map[uint32]*gbc.Operation
	Groups     map[uint32]*Group
}

// SplitFunctionalGroups partitions the loc's instructions into
// functional groups by walking them in address order and starting a
// new group every time the virtual stack returns to depth zero, then
// peels any trailing instructions off the tail of each group that
// don't contribute to its final sink (a bare jump, or a call whose
// return value is discarded).
func (l *Loc) SplitFunctionalGroups() error {
	l.Groups = map[uint32]*Group{}
	stackDepth := 0
	var group *Group

	addrs := make([]uint32, 0, len(l.Operations))
	for a := range l.Operations {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	for _, addr := range addrs {
		op := l.Operations[addr]
		if stackDepth == 0 {
			if group != nil {
				l.Groups[group.Address] = group
			}
			group = &Group{Address: addr, Operations: map[uint32]*gbc.Operation{}}
		}
		if op.Op.Pops > stackDepth {
			return &StackUnderflowError{Address: op.Address, Want: op.Op.Pops, Have: stackDepth}
		}
		group.Operations[addr] = op
		stackDepth += op.Op.Pushes - op.Op.Pops
	}
	if group != nil {
		l.Groups[group.Address] = group
	}

	for _, g := range l.Groups {
	splitTail:
		for len(g.Operations) > 1 {
			addr := maxOpAddr(g.Operations)
			op := g.Operations[addr]
			switch {
			case op.Op.Pushes == 0 && op.Op.Pops == 0, op.Op.Pushes > 0:
				delete(g.Operations, addr)
				l.Groups[addr] = &Group{Address: addr, Operations: map[uint32]*gbc.Operation{addr: op}}
			default:
				break splitTail
			}
		}
	}

	for _, g := range l.Groups {
		if err := g.Resolve(); err != nil {
			return err
		}
	}
	return nil
}

func maxOpAddr(m map[uint32]*gbc.Operation) uint32 {
	var max uint32
	first := true
	for a := range m {
		if first || a > max {
			max = a
			first = false
		}
	}
	return max
}
