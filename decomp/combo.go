// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/gbc-tools/gbcdis/gbc"
)

// Combo recognition rewrites the generated-code idiom GPC's combo
// editor emits into main(): three allocated slots per combo
// (case/step/edge), a pair of state-machine groups appended to main
// for each configured combo, and scattered pop-3-variables assignments
// sprinkled through the rest of main wherever the script queries or
// restarts a combo. Recognizing the pattern lets the emitter print
// combo_run(comboN)/combo_restart(comboN)/combo_stop(comboN)/
// combo_running(comboN) instead of raw v0[...] arithmetic.

// splitCombos peels the 2*ComboCount groups that precede main's final
// root group off main's root block, pairing each combo's case-dispatch
// group with its state body; the final group itself stays in main.
func (d *Decoder) splitCombos() {
	if d.ComboCount == 0 || d.Main == nil || d.Main.Root == nil {
		return
	}
	groups := sortedChildGroups(d.Main.Root)
	take := int(d.ComboCount)*2 + 1
	if take > len(groups) {
		take = len(groups)
	}
	tail := groups[len(groups)-take:]
	if len(tail) > 0 {
		tail = tail[:len(tail)-1]
	}

	var combos []*Block
	for i := 0; i+1 < len(tail); i += 2 {
		caseGroup, bodyGroup := tail[i], tail[i+1]
		delete(d.Main.Root.Groups, caseGroup.addr())
		delete(d.Main.Root.Groups, bodyGroup.addr())
		b := newBlock(0, -1)
		b.Groups[caseGroup.addr()] = caseGroup
		b.Groups[bodyGroup.addr()] = bodyGroup
		combos = append(combos, b)
	}
	logger.Printf("split %d combo blocks off main", len(combos))
	d.Combos = combos
}

func sortedChildGroups(b *Block) []blockItem {
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

// resolveCombos flattens each combo's inner dispatch blocks into a
// flat statement list and rewrites the combo_run/restart/stop/running
// triples it finds there.
func (d *Decoder) resolveCombos() {
	for idx, superBlock := range d.Combos {
		logger.Println("flattening combo", idx)
		children := sortedChildGroups(superBlock)
		if len(children) == 0 {
			continue
		}
		outer, ok := children[len(children)-1].(*Block)
		if !ok {
			continue
		}
		var innerBlocks []*Block
		for _, c := range sortedChildGroups(outer) {
			if b, ok := c.(*Block); ok {
				innerBlocks = append(innerBlocks, b)
			}
		}
		if len(innerBlocks) > 2 {
			innerBlocks = innerBlocks[2:]
		} else {
			innerBlocks = nil
		}

		flat := newBlock(0, -1)
		for _, block := range innerBlocks {
			for addr, g := range d.flattenCombo(idx, block) {
				flat.Groups[addr] = g
			}
		}
		for _, item := range sortedChildGroups(flat) {
			d.fixComboCalls(item)
		}
		d.Combos[idx] = flat
		d.fixCombos(flat)
	}
}

// flattenCombo recursively strips away the dispatch scaffolding the
// GPC combo editor generates (the per-step case comparisons and the
// v0[3k+2]==0 edge guards), keeping only the groups that represent the
// combo body's actual remapped presses.
func (d *Decoder) flattenCombo(idx int, item blockItem) map[float64]blockItem {
	out := map[float64]blockItem{}
	expected := []string{
		fmt.Sprintf("v0[%d]", idx*3+0),
		fmt.Sprintf("v0[%d]", idx*3+1),
		fmt.Sprintf("v0[%d]", idx*3+2),
	}

	switch v := item.(type) {
	case *Block:
		if v.Condition == nil {
			out[v.addr()] = v
			return out
		}
		actual := sortedStrings(decompileLeaves(v.Condition.FinalSink.AllSources(), d))
		if len(actual) == 2 && expected[2] == actual[1] {
			for _, child := range sortedChildGroups(v) {
				for a, g := range d.flattenCombo(idx, child) {
					out[a] = g
				}
			}
		} else {
			out[v.addr()] = v
		}
	case *Group:
		sk, ok := v.FinalSink.(*Sink)
		if !ok {
			out[v.addr()] = v
			return out
		}
		actual := sortedStrings(decompileLeaves(v.FinalSink.AllSources(), d))
		switch {
		case sk.Op.Op.Name == "pop" && sliceContains(expected, fmt.Sprintf("v%d[%d]", 0, sk.Op.Arguments[0])) && len(actual) > 0 && actual[0] == "0":
		case len(actual) == 2 && expected[2] == actual[1]:
		default:
			out[v.addr()] = v
		}
	}
	return out
}

func decompileLeaves(leaves []*Leaf, dec *Decoder) []string {
	out := make([]string, len(leaves))
	for i, l := range leaves {
		out[i] = l.Decompile(dec)
	}
	return out
}

func sortedStrings(ss []string) []string {
	out := append([]string(nil), ss...)
	slices.Sort(out)
	return out
}

func sliceContains(ss []string, s string) bool {
	return slices.Contains(ss, s)
}

// fixComboCalls rewrites the two single-statement idioms the combo
// editor emits for an explicit call(comboN)/running-state poke: a
// pop(3k) := pushi(1) pair becomes a call(comboN) fake statement, and
// a pop(3k+1) := mul pair is dropped entirely (it just seeds the
// running-state product the interpreter already tracks).
func (d *Decoder) fixComboCalls(item blockItem) {
	block, ok := item.(*Block)
	if ok {
		for _, child := range sortedChildGroups(block) {
			d.fixComboCalls(child)
		}
		return
	}
	group, ok := item.(*Group)
	if !ok {
		return
	}
	sk, ok := group.FinalSink.(*Sink)
	if !ok {
		return
	}
	_, srcOp, ok := singleSource(sk)
	if !ok {
		return
	}
	if sk.Op.Op.Name == "pop" && sk.Op.Arguments[0]%3 == 0 && srcOp.Op.Name == "pushi" && srcOp.Arguments[0] == 1 {
		group.FinalSink = &FakeSink{Code: fmt.Sprintf("call(combo%d)", sk.Op.Arguments[0]/3)}
		return
	}
	if sk.Op.Op.Name == "pop" && (sk.Op.Arguments[0]-1)%3 == 0 && srcOp.Op.Name == "mul" {
		group.FinalSink = &FakeSink{Code: ""}
	}
}

// singleSource returns the sole operand of a sink expected to have
// exactly one (the combo scaffolding's pop-of-a-single-pushi shape),
// whether that operand is a leaf push or a nested sink-source.
func singleSource(sk *Sink) (Value, *gbc.Operation, bool) {
	if len(sk.Sources) != 1 {
		return nil, nil, false
	}
	for _, v := range sk.Sources {
		switch t := v.(type) {
		case *Leaf:
			return v, t.Op, true
		case *Sink:
			return v, t.Op, true
		}
	}
	return nil, nil, false
}

// fixCombos recognizes the three-statement combo_run/restart/stop
// idiom (three consecutive pop(3k..3k+2) assignments guarding a
// pushi(0 or 1)) across a block's sibling groups, and rewrites any
// push(3k) leaf elsewhere in the combo body as combo_running(comboN).
func (d *Decoder) fixCombos(block *Block) {
	for _, item := range sortedChildGroups(block) {
		if b, ok := item.(*Block); ok {
			d.fixCombos(b)
			continue
		}
		group, ok := item.(*Group)
		if !ok {
			continue
		}
		d.fixComboTriple(group)
		sk, ok := group.FinalSink.(*Sink)
		if ok {
			for _, leaf := range sk.AllSources() {
				if leaf.Op.Op.Name == "push" && leaf.Op.Arguments[0]%3 == 0 && leaf.Op.Arguments[0] < d.ComboCount*3 {
					leaf.Fake = fmt.Sprintf("combo_running(combo%d)", leaf.Op.Arguments[0]/3)
				}
			}
		}
	}
}

func (d *Decoder) fixComboTriple(group *Group) {
	sk1, ok := group.FinalSink.(*Sink)
	if !ok || group.Next == nil || group.Next.Next == nil {
		return
	}
	sk2, ok2 := group.Next.FinalSink.(*Sink)
	sk3, ok3 := group.Next.Next.FinalSink.(*Sink)
	if !ok2 || !ok3 {
		return
	}
	_, src1, ok1 := singleSource(sk1)
	_, src2, ok2b := singleSource(sk2)
	_, src3, ok3b := singleSource(sk3)
	if !ok1 || !ok2b || !ok3b {
		return
	}

	op1Valid := sk1.Op.Op.Name == "pop" && sk1.Op.Arguments[0]%3 == 0 && sk1.Op.Arguments[0] < d.ComboCount*3 && src1.Op.Op.Name == "pushi"
	op2Valid := sk2.Op.Op.Name == "pop" && (sk2.Op.Arguments[0]-1)%3 == 0 && sk2.Op.Arguments[0] < d.ComboCount*3 && src2.Op.Op.Name == "pushi" && src2.Op.Arguments[0] == 0
	op3Valid := sk3.Op.Op.Name == "pop" && (sk3.Op.Arguments[0]-2)%3 == 0 && sk3.Op.Arguments[0] < d.ComboCount*3 && src3.Op.Op.Name == "pushi" && src3.Op.Arguments[0] == 0

	if !op1Valid {
		return
	}
	comboIndex := sk1.Op.Arguments[0] / 3
	if op1Valid && op2Valid && op3Valid {
		if src1.Op.Arguments[0] == 1 {
			group.FinalSink = &FakeSink{Code: fmt.Sprintf("combo_restart(combo%d)", comboIndex)}
		} else {
			group.FinalSink = &FakeSink{Code: fmt.Sprintf("combo_stop(combo%d)", comboIndex)}
		}
		group.Complex = true
		group.Next.FinalSink = &FakeSink{Code: ""}
		group.Next.Complex = true
		group.Next.Next.FinalSink = &FakeSink{Code: ""}
		group.Next.Next.Complex = true
	} else {
		group.FinalSink = &FakeSink{Code: fmt.Sprintf("combo_run(combo%d)", comboIndex)}
	}
}

// fixRunCombo applies fixCombos over every ordinary subroutine, so a
// combo query (push(3k) as combo_running(comboN)) anywhere in the
// program is rewritten, not just inside main.
func (d *Decoder) fixRunCombo() {
	for _, sub := range d.Subs {
		if sub.Root != nil {
			d.fixCombos(sub.Root)
		}
	}
}
