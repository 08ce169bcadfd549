// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gbc defines the GBC bytecode wire format: the static opcode
// schema, little-endian argument decoding, symbolic constant tables, and
// the parsed Operation type the decompilation pipeline builds on.
package gbc

import (
	"io"
	"log"
	"os"
)

// PrintDebugInfo controls whether the package logger writes to stderr.
var PrintDebugInfo = false

var logger *log.Logger

func init() {
	var w io.Writer = io.Discard
	if PrintDebugInfo {
		w = os.Stderr
	}
	logger = log.New(w, "gbc: ", log.Lshortfile)
}

// SetDebugMode turns the package logger on or off.
func SetDebugMode(v bool) {
	PrintDebugInfo = v
	w := io.Writer(io.Discard)
	if v {
		w = os.Stderr
	}
	logger.SetOutput(w)
}
