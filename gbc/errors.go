// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gbc

import "fmt"

// UnknownOpcodeError is returned by Parse when a byte has no entry in
// the static opcode table and no override was configured in Missing.
type UnknownOpcodeError struct {
	Address uint32
	Byte    byte
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("gbc: unknown opcode 0x%02X at address 0x%04X", e.Byte, e.Address)
}
