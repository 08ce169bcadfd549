// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gbcsource renders a GBC blob as a C-like source listing:
// data, mapping, variable, main and function segments, with combo
// state machines rewritten to their symbolic combo_run/combo_restart/
// combo_stop/combo_running form.
package main

import (
	"fmt"
	"os"

	"github.com/gbc-tools/gbcdis/decomp"
	"github.com/gbc-tools/gbcdis/gbc"
	"github.com/gbc-tools/gbcdis/internal/config"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s file.gbc\n", os.Args[0])
		os.Exit(1)
	}

	opts, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	gbc.SetDebugMode(opts.Verbose)
	decomp.SetDebugMode(opts.Verbose)

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	dec := decomp.New(data)
	if err := dec.FullDecode(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if dec.ComboCount > 0 {
		dec.ComboDecode()
	}
	dec.InitDecode()

	for _, line := range dec.Emit() {
		fmt.Println(line)
	}
}
