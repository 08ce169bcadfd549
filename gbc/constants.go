// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gbc

// ConstTable maps a raw integer argument value to a symbolic name, used
// both to render an opcode's operand (e.g. a button id as "PS4_CROSS")
// and, via variable inference, to type a variable slot so later loads of
// it render symbolically too.
//
// The original gpclib/constants.py that defines the numeric ids behind
// these names was not part of the retrieved source bundle (only
// decode.py and opcodes.py were). The table below reconstructs the
// handful of entries the seed scenarios and common GPC scripts exercise,
// using the vocabulary real GPC scripts use (button/LED/PIO route
// names); anything outside that set decompiles as a bare integer, which
// is always a safe fallback.
type ConstTable map[int64]string

// Lookup returns the symbolic name for v, or the empty string if none
// is known (or the table is nil).
func (t ConstTable) Lookup(v int64) string {
	if t == nil {
		return ""
	}
	if name, ok := t[v]; ok {
		return name
	}
	return ""
}

var (
	// TRUTHS covers jmpz's condition operand and not's operand/result.
	TRUTHS = ConstTable{
		0: "FALSE",
		1: "TRUE",
	}

	// BUTTONS covers remap/unmap/set_val/get_val endpoints and similar
	// button-addressed operations. Ids follow the DS4 (PS4) controller
	// layout, the most common GPC target.
	BUTTONS = ConstTable{
		0:  "PS4_CROSS",
		1:  "PS4_CIRCLE",
		2:  "PS4_SQUARE",
		3:  "PS4_TRIANGLE",
		4:  "PS4_L1",
		5:  "PS4_R1",
		6:  "PS4_L2",
		7:  "PS4_R2",
		8:  "PS4_SHARE",
		9:  "PS4_OPTIONS",
		10: "PS4_L3",
		11: "PS4_R3",
		12: "PS4_PS",
		13: "PS4_TOUCH",
		14: "PS4_UP",
		15: "PS4_DOWN",
		16: "PS4_LEFT",
		17: "PS4_RIGHT",
		18: "PS4_LX",
		19: "PS4_LY",
		20: "PS4_RX",
		21: "PS4_RY",
	}

	// LEDS covers set_led/get_led/set_ledx addressing.
	LEDS = ConstTable{
		0: "LED_1",
		1: "LED_2",
		2: "LED_3",
		3: "LED_4",
		4: "LED_5",
	}

	// SENS covers the third argument to the sensitivity() builtin.
	SENS = ConstTable{
		0: "SENSITIVITY_DEFAULT",
		1: "SENSITIVITY_LOW",
		2: "SENSITIVITY_HIGH",
	}

	// RUMBLE covers set_rumble/get_rumble channel addressing.
	RUMBLE = ConstTable{
		0: "RUMBLE_LEFT",
		1: "RUMBLE_RIGHT",
	}

	// PVARS covers set_pvar/get_pvar slot addressing.
	PVARS = ConstTable{
		0: "PVAR_1",
		1: "PVAR_2",
		2: "PVAR_3",
		3: "PVAR_4",
		4: "PVAR_5",
		5: "PVAR_6",
		6: "PVAR_7",
		7: "PVAR_8",
	}

	// PS4 covers the ps4_touchpad() zone argument.
	PS4 = ConstTable{
		0: "PS4_TOUCH_OFF",
		1: "PS4_TOUCH_CLICK",
		2: "PS4_TOUCH_1",
		3: "PS4_TOUCH_2",
	}

	// PIO covers the integer return value of get_console()/get_controller(),
	// rewritten via ret_constants rather than an argument table.
	PIO = ConstTable{
		0: "PIO_PS4",
		1: "PIO_PS3",
		2: "PIO_XB1",
		3: "PIO_XB360",
		4: "PIO_SWITCH",
		5: "PIO_USB",
	}
)
