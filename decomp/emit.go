// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func sortedInt64Keys(m map[int64]int64) []int64 {
	out := maps.Keys(m)
	slices.Sort(out)
	return out
}

func sortedSubsAsc(m map[uint32]*Sub) []*Sub {
	out := maps.Values(m)
	slices.SortFunc(out, func(a, b *Sub) int {
		switch {
		case a.Address < b.Address:
			return -1
		case a.Address > b.Address:
			return 1
		default:
			return 0
		}
	})
	return out
}

func indentAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "\t" + l
	}
	return out
}

// Emit renders the full decompiled listing: data segment, mapping
// segment, variable segment, a titan-only init instruction if present,
// the main segment (init and main subroutines), the combo segment,
// then every other subroutine as its own function segment.
func (d *Decoder) Emit() []string {
	var lines []string

	if d.Start != nil {
		lines = append(lines, "// data segment")
		lines = append(lines, d.Start.BareBody(d)...)
		lines = append(lines, "")
	}

	if d.Maps != nil {
		lines = append(lines, "// mapping segment")
		lines = append(lines, d.Maps.Decompile(d, 0)...)
		lines = append(lines, "")
	}

	if len(d.Allocs) > 0 {
		lines = append(lines, "// variable segment")
		for _, index := range sortedInt64Keys(d.Allocs) {
			if index < d.ComboCount*3 {
				continue
			}
			count := d.Allocs[index]
			switch {
			case count > 1:
				lines = append(lines, fmt.Sprintf("int v%d[%d];", index, count))
			default:
				if v, ok := d.AllocValues[index]; ok {
					lines = append(lines, fmt.Sprintf("int %s;", v))
				} else {
					lines = append(lines, fmt.Sprintf("int v%d;", index))
				}
			}
		}
		lines = append(lines, "")
	}

	if d.T0 != nil {
		lines = append(lines, "// titan only instruction to prevent operation on cronus")
		lines = append(lines, fmt.Sprintf("%s;", d.T0.FinalSink.Decompile(d)))
		lines = append(lines, "")
	}

	lines = append(lines, "// main segment")
	for _, sub := range sortedSubsAsc(d.Subs) {
		if sub.Name != "init" && sub.Name != "main" {
			continue
		}
		lines = append(lines, sub.Prototype()+" {")
		lines = append(lines, sub.Body(d)...)
		lines = append(lines, "}", "")
	}

	if len(d.Combos) > 0 {
		lines = append(lines, "// combo segment")
		for idx, combo := range d.Combos {
			lines = append(lines, fmt.Sprintf("combo combo%d {", idx))
			lines = append(lines, indentAll(combo.Decompile(d, 0))...)
			lines = append(lines, "}", "")
		}
	}

	header := false
	for _, sub := range sortedSubsAsc(d.Subs) {
		if sub.Name == "init" || sub.Name == "main" {
			continue
		}
		if !header {
			lines = append(lines, "// function segment")
			header = true
		}
		lines = append(lines, sub.Prototype()+" {")
		lines = append(lines, sub.Body(d)...)
		lines = append(lines, "}", "")
	}

	return lines
}
