// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gbc

import (
	"fmt"
	"strconv"
	"strings"
)

// hole describes one "{N}" or "{N:0>WX}" substitution point recognised by
// the templates transcribed from the opcode table's print_fmt/decompile_fmt
// strings. This is a tiny format interpreter rather than a reflection-based
// one: each opcode row's template is scanned once per render, holes are
// indexed directly into the argument slice, and an optional zero-padded
// hex width ("0>2X" / "0>4X") covers the raw-argument dump format.
type hole struct {
	literal string // verbatim text preceding this hole; empty for the tail
	index   int
	width   int
	hex     bool
}

func parseTemplate(tmpl string) ([]hole, string) {
	var holes []hole
	var lit strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '{' {
			lit.WriteByte(tmpl[i])
			continue
		}
		end := strings.IndexByte(tmpl[i:], '}')
		if end < 0 {
			lit.WriteByte(tmpl[i])
			continue
		}
		body := tmpl[i+1 : i+end]
		parts := strings.SplitN(body, ":", 2)
		idx, err := strconv.Atoi(parts[0])
		if err != nil {
			// Not a recognised hole (e.g. a literal brace); pass through verbatim.
			lit.WriteString(tmpl[i : i+end+1])
			i += end
			continue
		}
		h := hole{literal: lit.String(), index: idx}
		lit.Reset()
		if len(parts) == 2 {
			spec := parts[1]
			if strings.HasSuffix(spec, "X") && strings.Contains(spec, ">") {
				h.hex = true
				widthPart := strings.TrimSuffix(strings.SplitN(spec, ">", 2)[1], "X")
				w, werr := strconv.Atoi(widthPart)
				if werr == nil {
					h.width = w
				}
			}
		}
		holes = append(holes, h)
		i += end
	}
	return holes, lit.String()
}

// FormatArgs renders an opcode's raw-argument dump template (print_fmt)
// against its decoded integer argument tuple, e.g. "var_{0:0>2X}" with
// vals=[18] renders "var_12".
func FormatArgs(tmpl string, vals []int64) string {
	holes, tail := parseTemplate(tmpl)
	var b strings.Builder
	for _, h := range holes {
		b.WriteString(h.literal)
		if h.index < 0 || h.index >= len(vals) {
			b.WriteString("?")
			continue
		}
		v := vals[h.index]
		if h.hex {
			fmt.Fprintf(&b, "%0*X", h.width, v)
		} else {
			fmt.Fprintf(&b, "%d", v)
		}
	}
	b.WriteString(tail)
	return b.String()
}

// FormatDecompile renders an opcode's decompile template (decompile_fmt)
// against a slice of already-rendered operand strings (raw arguments and/or
// decompiled child expressions, combined by the caller in argument order).
func FormatDecompile(tmpl string, vals []string) string {
	holes, tail := parseTemplate(tmpl)
	var b strings.Builder
	for _, h := range holes {
		b.WriteString(h.literal)
		if h.index < 0 || h.index >= len(vals) {
			b.WriteString("?")
			continue
		}
		if h.hex {
			n, err := strconv.ParseInt(vals[h.index], 10, 64)
			if err == nil {
				fmt.Fprintf(&b, "%0*X", h.width, n)
				continue
			}
		}
		b.WriteString(vals[h.index])
	}
	b.WriteString(tail)
	return b.String()
}
