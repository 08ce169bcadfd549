// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import (
	"testing"

	"github.com/dolthub/swiss"
)

func TestSortedInt64Keys(t *testing.T) {
	m := map[int64]int64{5: 1, 1: 1, 3: 1}
	got := sortedInt64Keys(m)
	want := []int64{1, 3, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sortedInt64Keys = %v, want %v", got, want)
		}
	}
}

func TestSortedSubsAsc(t *testing.T) {
	m := map[uint32]*Sub{10: {Address: 10}, 2: {Address: 2}}
	got := sortedSubsAsc(m)
	if got[0].Address != 2 || got[1].Address != 10 {
		t.Errorf("sortedSubsAsc = %+v, want addresses [2, 10]", got)
	}
}

func TestIndentAll(t *testing.T) {
	got := indentAll([]string{"a", "b"})
	want := []string{"\ta", "\tb"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("indentAll = %v, want %v", got, want)
		}
	}
}

func TestEmitVariableSegmentSkipsComboSlots(t *testing.T) {
	d := &Decoder{
		Allocs:      map[int64]int64{0: 3, 3: 1},
		Vars:        swiss.NewMap[int64, string](1),
		AllocValues: map[int64]string{},
		ComboCount:  1, // slots 0,1,2 belong to combo state, skip in output
		Subs:        map[uint32]*Sub{},
	}
	lines := d.Emit()
	found := false
	for _, l := range lines {
		if l == "int v3;" {
			found = true
		}
		if l == "int v0[3];" {
			t.Errorf("combo-owned slot 0 rendered as a variable: %v", lines)
		}
	}
	if !found {
		t.Errorf("expected \"int v3;\" in output, got %v", lines)
	}
}
