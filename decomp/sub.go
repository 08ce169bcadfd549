// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gbc-tools/gbcdis/gbc"
)

// Sub is a subroutine: start, init, main, or a named sub_XXXX reached
// only via call.
type Sub struct {
	Name       string
	Address    uint32
	Operations map[uint32]*gbc.Operation

	Locs   map[uint32]*Loc
	Groups map[uint32]*Group

	Pops, Pushes int
	Root         *Block
}

// Prototype renders the subroutine's declaration line.
func (s *Sub) Prototype() string {
	switch s.Name {
	case "start", "init", "main":
		return s.Name
	}
	args := make([]string, s.Pops)
	for i := range args {
		args[i] = fmt.Sprintf("a%d", i)
	}
	return fmt.Sprintf("function %s(%s)", s.Name, strings.Join(args, ", "))
}

func sortedOpsAsc(m map[uint32]*gbc.Operation) []uint32 {
	addrs := make([]uint32, 0, len(m))
	for a := range m {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

func sortedGroupsAsc(m map[uint32]*Group) []*Group {
	groups := make([]*Group, 0, len(m))
	for _, g := range m {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Address < groups[j].Address })
	return groups
}

// SplitLocs partitions the subroutine's instructions into Locs (label
// ranges) and those into functional groups, then links each
// conditional/unconditional jump group to the group at its target so
// structural resolution can walk jumped-to/jumped-from relationships.
func (s *Sub) SplitLocs() error {
	s.Locs = map[uint32]*Loc{}
	s.Groups = map[uint32]*Group{}

	var loc *Loc
	for _, addr := range sortedOpsAsc(s.Operations) {
		op := s.Operations[addr]
		if op.SubName != "" || op.LocName != "" {
			if loc != nil {
				s.Locs[loc.Address] = loc
			}
			loc = &Loc{Address: op.Address, Operations: map[uint32]*gbc.Operation{}}
		}
		loc.Operations[op.Address] = op
	}
	if loc != nil {
		s.Locs[loc.Address] = loc
	}

	for _, l := range s.Locs {
		if err := l.SplitFunctionalGroups(); err != nil {
			return err
		}
		for a, g := range l.Groups {
			s.Groups[a] = g
		}
	}

	var last *Group
	for _, group := range sortedGroupsAsc(s.Groups) {
		if group.HasJump && group.Address != 0 {
			if target, ok := s.Groups[group.Jump]; ok {
				target.HasJumped = true
				target.Jumped = group.Address
			}
		}
		if group.HasJumpz {
			if target, ok := s.Groups[group.Jumpz]; ok {
				target.HasJumpzed = true
				target.Jumpzed = group.Address
			}
		}
		if last != nil {
			last.Next = group
		}
		last = group
	}
	return nil
}

// Resolve recovers structured control flow from the jump/jumpz
// topology built by SplitLocs, producing the subroutine's Root block.
func (s *Sub) Resolve() error {
	var root, block *Block
	var stack []*Block

	for _, group := range sortedGroupsAsc(s.Groups) {
		if root == nil {
			root = newBlock(float64(group.Address), -1)
			block = root
		}

		for block.End == float64(group.Address) && len(stack) > 0 {
			block = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}

		switch {
		case !(group.HasJump || group.HasJumpz) && !(group.HasJumped || group.HasJumpzed):
			block.Groups[float64(group.Address)] = group
			group.Block = block

		case group.HasJumped && group.HasJumpz && group.Jumped > group.Address:
			group.overrideFinalTemplate("while ({1})")
			group.OpensBlock = true
			stack = append(stack, block)
			block.Groups[float64(group.Address)] = group
			group.Block = block

			b := newBlock(float64(group.Next.Address), float64(group.Jumpz))
			b.Condition = group
			b.While = true
			block.Groups[b.Address] = b
			block = b

		case block.Condition != nil && group.HasJump && group.Jump == block.Condition.Address:
			block.Groups[float64(group.Address)] = group
			group.Block = block
			block = stack[len(stack)-1]
			stack = stack[:len(stack)-1]

		case block.Condition != nil && group.HasJump:
			isBreak := false
			for _, p := range stack {
				if p.While && p.Condition != nil && p.Condition.HasJumpz && p.Condition.Jumpz == group.Jump {
					isBreak = true
					break
				}
			}
			if isBreak {
				group.overrideFinalTemplate("break")
				block.Groups[float64(group.Address)] = group
				group.Block = block
			} else {
				block.Groups[float64(group.Address)] = group
				group.Block = block
				block.Closing = true
				cond := block.Condition
				block = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				block.HasElsePending = true
				block.ElsePendingAddr = group.Jump
				block.ElseCondition = cond
			}

		case group.HasJumpzed && !(group.HasJump || group.HasJumpz) && block.HasElsePending:
			stack = append(stack, block)
			b := newBlock(float64(group.Address), float64(block.ElsePendingAddr))
			b.Groups[float64(group.Address)] = group
			block.HasElsePending = false
			b.Else = true
			b.Condition = block.ElseCondition
			block.Groups[b.Address] = b
			block = b

		case (group.HasJumped || group.HasJumpzed) && !(group.HasJump || group.HasJumpz):
			block.Groups[float64(group.Address)] = group
			group.Block = block

		case group.HasJumpzed && group.HasJumpz && block.HasElsePending:
			next, ok := s.Groups[group.Jumpz]
			found := false
			for ok && float64(next.Address) < float64(block.ElsePendingAddr) {
				if !next.HasJumpz {
					found = true
					break
				}
				next, ok = s.Groups[next.Jumpz]
			}
			if found {
				group.OpensBlock = true
				stack = append(stack, block)
				outer := newBlock(float64(group.Address), float64(block.ElsePendingAddr))
				block.HasElsePending = false
				outer.Else = true
				outer.Condition = block.ElseCondition
				block.Groups[outer.Address] = outer
				block = outer
				stack = append(stack, block)
				block.Groups[float64(group.Address)] = group
				group.Block = block

				b := newBlock(float64(group.Next.Address), float64(group.Jumpz))
				b.Condition = group
				block.Groups[b.Address] = b
				block = b
			} else {
				block.HasElsePending = false
				group.overrideFinalTemplate("else if ({1})")
				group.OpensBlock = true
				group.ClosesBlock = true
				stack = append(stack, block)
				block.Groups[float64(group.Address)] = group
				group.Block = block

				b := newBlock(float64(group.Next.Address), float64(group.Jumpz))
				b.Condition = group
				block.Groups[b.Address] = b
				block = b
			}

		case group.HasJumpz:
			group.OpensBlock = true
			stack = append(stack, block)
			block.Groups[float64(group.Address)] = group
			group.Block = block

			b := newBlock(float64(group.Next.Address), float64(group.Jumpz))
			b.Condition = group
			block.Groups[b.Address] = b
			block = b
		}
	}

	s.Root = root
	return nil
}

// Body renders the subroutine's statements at one tab of indentation,
// the depth the init, main and function bodies render at.
func (s *Sub) Body(dec *Decoder) []string {
	return s.Root.Decompile(dec, 1)
}

// BareBody renders the subroutine's statements with no indentation,
// used for the leading data segment (the "start" pseudo-subroutine),
// which is printed without a surrounding declaration.
func (s *Sub) BareBody(dec *Decoder) []string {
	return s.Root.Decompile(dec, 0)
}
