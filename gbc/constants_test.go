// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gbc

import "testing"

func TestConstTableLookupKnown(t *testing.T) {
	if got := BUTTONS.Lookup(0); got != "PS4_CROSS" {
		t.Errorf("Lookup(0) = %q, want PS4_CROSS", got)
	}
}

func TestConstTableLookupUnknownFallsBackEmpty(t *testing.T) {
	if got := BUTTONS.Lookup(999); got != "" {
		t.Errorf("Lookup(999) = %q, want empty", got)
	}
}

func TestNilConstTableLookup(t *testing.T) {
	var table ConstTable
	if got := table.Lookup(0); got != "" {
		t.Errorf("Lookup on nil table = %q, want empty", got)
	}
}
