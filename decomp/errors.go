// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import "fmt"

// StackUnderflowError is returned when a functional group would need to
// pop more values than the virtual stack holds at that point.
type StackUnderflowError struct {
	Address uint32
	Want    int
	Have    int
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("decomp: tried to pop %d off stack of %d at %04X", e.Want, e.Have, e.Address)
}

// StackOverflowError is returned when a sink collects more operands
// than it declares pops — more children attached to it than it has
// room for.
type StackOverflowError struct {
	Address uint32
	Want    int
	Have    int
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("decomp: sink at %04X wants %d sources, has %d", e.Address, e.Want, e.Have)
}

// MalformedGroupError is returned when a functional group's instruction
// mix cannot be resolved into an expression tree: a sink-only
// instruction appears in the middle of a group.
type MalformedGroupError struct {
	Address uint32
	Reason  string
}

func (e *MalformedGroupError) Error() string {
	return fmt.Sprintf("decomp: malformed functional group at %04X: %s", e.Address, e.Reason)
}
