// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the small set of options shared by the three
// command-line front ends (gbcdump, gbcblocks, gbcsource): whether to
// print debug logging, and an optional YAML file overriding the
// built-in "missing opcode" table for blobs generated by a front-end
// revision this tool doesn't know about yet.
package config

import (
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"

	"github.com/gbc-tools/gbcdis/gbc"
)

// Options is populated from environment variables via caarlos0/env,
// then optionally overlaid from a YAML file named by MissingTable.
type Options struct {
	Verbose      bool   `env:"GBC_VERBOSE" envDefault:"false"`
	MissingTable string `env:"GBC_MISSING_TABLE"`
}

// missingEntry is one row of the optional YAML override file: an
// opcode byte (decimal or 0x-hex, handled by yaml's own int parsing)
// and the total instruction length including the opcode byte.
type missingEntry struct {
	Opcode int `yaml:"opcode"`
	Length int `yaml:"length"`
}

// Load reads Options from the environment and, if MissingTable names a
// readable file, merges its entries into gbc.Missing.
func Load() (Options, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return opts, err
	}
	if opts.MissingTable == "" {
		return opts, nil
	}
	if err := loadMissingTable(opts.MissingTable); err != nil {
		return opts, err
	}
	return opts, nil
}

func loadMissingTable(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var entries []missingEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return err
	}
	for _, e := range entries {
		gbc.Missing[byte(e.Opcode)] = e.Length
	}
	return nil
}
