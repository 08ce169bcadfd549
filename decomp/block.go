// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// blockItem is a Block's child: either a nested Block (a recovered
// while/if/else body) or a Group (a single statement).
type blockItem interface {
	addr() float64
}

// Block is a recovered region of structured control flow: a straight
// run of groups, or a while/if/else body nested under a condition
// group. Address is the address of the first group of the block's body
// (for a while/if body, the group right after its condition), except
// that an empty block (Address == End, no body was ever reached) is
// nudged half a unit earlier so it still sorts uniquely among its
// siblings.
type Block struct {
	Address float64
	End     float64
	Groups  map[float64]blockItem

	Condition       *Group
	While           bool
	Else            bool
	Closing         bool
	HasElsePending  bool
	ElsePendingAddr uint32
	ElseCondition   *Group
}

func newBlock(address, end float64) *Block {
	b := &Block{Address: address, End: end, Groups: map[float64]blockItem{}}
	if b.Address == b.End {
		b.Address -= 0.5
	}
	return b
}

func (b *Block) addr() float64 { return b.Address }

func (b *Block) sortedChildren() []blockItem {
	items := make([]blockItem, 0, len(b.Groups))
	for _, v := range b.Groups {
		items = append(items, v)
	}
	slices.SortFunc(items, func(a, b blockItem) int {
		switch {
		case a.addr() < b.addr():
			return -1
		case a.addr() > b.addr():
			return 1
		default:
			return 0
		}
	})
	return items
}

// Decompile renders the block's body as C-like source lines, indented
// by level tabs.
func (b *Block) Decompile(dec *Decoder, level int) []string {
	var lines []string
	indent := strings.Repeat("\t", level)
	for _, item := range b.sortedChildren() {
		switch v := item.(type) {
		case *Block:
			if v.Else {
				lines = append(lines, fmt.Sprintf("%s} else {", indent))
			}
			lines = append(lines, v.Decompile(dec, level+1)...)
			if !v.Closing {
				lines = append(lines, fmt.Sprintf("%s}", indent))
			}
		case *Group:
			startl := ""
			endl := ";"
			if v.ClosesBlock {
				startl = "} "
			}
			if v.OpensBlock {
				endl = " {"
			}
			code := v.FinalSink.Decompile(dec)
			if code != "" {
				lines = append(lines, fmt.Sprintf("%s%s%s%s", indent, startl, code, endl))
			}
		}
	}
	return lines
}
