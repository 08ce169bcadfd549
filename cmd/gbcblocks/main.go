// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gbcblocks prints the recovered block/functional-group tree
// of a GBC blob, for inspecting structural control-flow recovery.
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

	for _, line := range dec.DumpBlocks() {
		fmt.Println(line)
	}
}
