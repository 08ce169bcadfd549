// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import (
	"testing"

	"github.com/gbc-tools/gbcdis/gbc"
)

func mustParseOp(t *testing.T, data []byte) *gbc.Operation {
	t.Helper()
	op, err := gbc.Parse(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	return op
}

// TestSplitCombosPairsTrailingGroupsLeavingHighestUnconsumed mirrors the
// Python reference's groups[combo_count*-2-1:] slice: of the trailing
// 2N+1 groups, the first 2N are paired off and the single highest-
// address group is left in main's root, unconsumed.
func TestSplitCombosPairsTrailingGroupsLeavingHighestUnconsumed(t *testing.T) {
	root := newBlock(0, -1)
	var groups []*Group
	for addr := uint32(0); addr < 5; addr++ {
		g := &Group{Address: addr}
		groups = append(groups, g)
		root.Groups[g.addr()] = g
	}
	d := &Decoder{
		ComboCount: 2,
		Main:       &Sub{Root: root},
	}
	d.splitCombos()

	if len(d.Combos) != 2 {
		t.Fatalf("len(Combos) = %d, want 2", len(d.Combos))
	}
	wantPairs := [][2]uint32{{0, 1}, {2, 3}}
	for i, b := range d.Combos {
		children := sortedChildGroups(b)
		if len(children) != 2 {
			t.Fatalf("combo %d has %d children, want 2", i, len(children))
		}
		got := [2]uint32{uint32(children[0].addr()), uint32(children[1].addr())}
		if got != wantPairs[i] {
			t.Errorf("combo %d = %v, want %v", i, got, wantPairs[i])
		}
	}

	if _, ok := root.Groups[groups[4].addr()]; !ok {
		t.Error("highest-address group (addr 4) was consumed, want it left in main's root")
	}
	for _, addr := range []uint32{0, 1, 2, 3} {
		if _, ok := root.Groups[float64(addr)]; ok {
			t.Errorf("group %d should have been removed from main's root", addr)
		}
	}
}

func TestSliceContains(t *testing.T) {
	if !sliceContains([]string{"a", "b"}, "b") {
		t.Error("sliceContains = false, want true")
	}
	if sliceContains([]string{"a", "b"}, "c") {
		t.Error("sliceContains = true, want false")
	}
}

func TestSortedStrings(t *testing.T) {
	got := sortedStrings([]string{"b", "a", "c"})
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sortedStrings = %v, want %v", got, want)
		}
	}
}

func TestSingleSourceRejectsMultipleOperands(t *testing.T) {
	sk := &Sink{Sources: map[uint32]Value{
		1: &Leaf{},
		2: &Leaf{},
	}}
	if _, _, ok := singleSource(sk); ok {
		t.Error("singleSource with two sources = ok, want false")
	}
}

func TestFixComboCallsRewritesPopPushi1ToCall(t *testing.T) {
	popOp := mustParseOp(t, []byte{0x06, 0x00, 0x00})   // pop var_0
	pushiOp := mustParseOp(t, []byte{0x05, 0x01, 0x00}) // pushi 1
	group := &Group{Address: 0, FinalSink: &Sink{
		Op:      popOp,
		Sources: map[uint32]Value{1: &Leaf{Op: pushiOp}},
	}}
	d := &Decoder{}
	d.fixComboCalls(group)
	fs, ok := group.FinalSink.(*FakeSink)
	if !ok {
		t.Fatalf("FinalSink = %T, want *FakeSink", group.FinalSink)
	}
	if fs.Code != "call(combo0)" {
		t.Errorf("Code = %q, want call(combo0)", fs.Code)
	}
}

func TestFixComboCallsDropsMulSeed(t *testing.T) {
	popOp := mustParseOp(t, []byte{0x06, 0x01, 0x00}) // pop var_1 (3k+1)
	mulOp := mustParseOp(t, []byte{0x14})              // mul
	innerSink := &Sink{Op: mulOp, SinkSource: true, Sources: map[uint32]Value{
		1: &Leaf{Op: mustParseOp(t, []byte{0x05, 0x02, 0x00})},
		2: &Leaf{Op: mustParseOp(t, []byte{0x05, 0x03, 0x00})},
	}}
	group := &Group{Address: 0, FinalSink: &Sink{
		Op:      popOp,
		Sources: map[uint32]Value{1: innerSink},
	}}
	d := &Decoder{}
	d.fixComboCalls(group)
	fs, ok := group.FinalSink.(*FakeSink)
	if !ok {
		t.Fatalf("FinalSink = %T, want *FakeSink", group.FinalSink)
	}
	if fs.Code != "" {
		t.Errorf("Code = %q, want empty", fs.Code)
	}
}

func TestFixComboTripleRestart(t *testing.T) {
	pop0 := mustParseOp(t, []byte{0x06, 0x00, 0x00})
	pop1 := mustParseOp(t, []byte{0x06, 0x01, 0x00})
	pop2 := mustParseOp(t, []byte{0x06, 0x02, 0x00})
	pushi1 := mustParseOp(t, []byte{0x05, 0x01, 0x00})
	pushi0a := mustParseOp(t, []byte{0x05, 0x00, 0x00})
	pushi0b := mustParseOp(t, []byte{0x05, 0x00, 0x00})

	g1 := &Group{Address: 0, FinalSink: &Sink{Op: pop0, Sources: map[uint32]Value{1: &Leaf{Op: pushi1}}}}
	g2 := &Group{Address: 3, FinalSink: &Sink{Op: pop1, Sources: map[uint32]Value{1: &Leaf{Op: pushi0a}}}}
	g3 := &Group{Address: 6, FinalSink: &Sink{Op: pop2, Sources: map[uint32]Value{1: &Leaf{Op: pushi0b}}}}
	g1.Next, g2.Next = g2, g3

	d := &Decoder{ComboCount: 1}
	d.fixComboTriple(g1)

	fs1, ok := g1.FinalSink.(*FakeSink)
	if !ok || fs1.Code != "combo_restart(combo0)" {
		t.Errorf("g1.FinalSink = %+v, want combo_restart(combo0)", g1.FinalSink)
	}
	if !g1.Complex {
		t.Error("g1.Complex = false, want true")
	}
	if fs2, ok := g2.FinalSink.(*FakeSink); !ok || fs2.Code != "" {
		t.Errorf("g2.FinalSink = %+v, want empty FakeSink", g2.FinalSink)
	}
	if fs3, ok := g3.FinalSink.(*FakeSink); !ok || fs3.Code != "" {
		t.Errorf("g3.FinalSink = %+v, want empty FakeSink", g3.FinalSink)
	}
}

func TestFixComboTripleRunWhenFollowersDontMatch(t *testing.T) {
	pop0 := mustParseOp(t, []byte{0x06, 0x00, 0x00})
	pop1 := mustParseOp(t, []byte{0x06, 0x01, 0x00})
	pop2 := mustParseOp(t, []byte{0x06, 0x02, 0x00})
	pushi1 := mustParseOp(t, []byte{0x05, 0x01, 0x00})
	pushi5 := mustParseOp(t, []byte{0x05, 0x05, 0x00}) // not the expected 0
	pushi0 := mustParseOp(t, []byte{0x05, 0x00, 0x00})

	g1 := &Group{Address: 0, FinalSink: &Sink{Op: pop0, Sources: map[uint32]Value{1: &Leaf{Op: pushi1}}}}
	g2 := &Group{Address: 3, FinalSink: &Sink{Op: pop1, Sources: map[uint32]Value{1: &Leaf{Op: pushi5}}}}
	g3 := &Group{Address: 6, FinalSink: &Sink{Op: pop2, Sources: map[uint32]Value{1: &Leaf{Op: pushi0}}}}
	g1.Next, g2.Next = g2, g3

	d := &Decoder{ComboCount: 1}
	d.fixComboTriple(g1)

	fs1, ok := g1.FinalSink.(*FakeSink)
	if !ok || fs1.Code != "combo_run(combo0)" {
		t.Errorf("g1.FinalSink = %+v, want combo_run(combo0)", g1.FinalSink)
	}
	// Followers are left alone since the triple didn't match.
	if _, ok := g2.FinalSink.(*FakeSink); ok {
		t.Error("g2.FinalSink rewritten, want untouched")
	}
}

func TestFixCombosRewritesComboRunningLeaf(t *testing.T) {
	popOp := mustParseOp(t, []byte{0x06, 0x03, 0x00}) // pop var_3 (an ordinary, unrelated slot)
	pushOp := mustParseOp(t, []byte{0x04, 0x00, 0x00}) // push var_0 (combo0's case slot)
	leaf := &Leaf{Op: pushOp}
	group := &Group{Address: 0, FinalSink: &Sink{
		Op:      popOp,
		Sources: map[uint32]Value{1: leaf},
	}}
	block := newBlock(0, -1)
	block.Groups[group.addr()] = group

	d := &Decoder{ComboCount: 1}
	d.fixCombos(block)

	if leaf.Fake != "combo_running(combo0)" {
		t.Errorf("leaf.Fake = %q, want combo_running(combo0)", leaf.Fake)
	}
}
