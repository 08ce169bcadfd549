// Copyright 2016 The gbcdis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package decomp recovers structured source from a decoded GBC
// instruction stream: it groups instructions into functional groups,
// resolves each group into an expression tree, recovers while/if/else
// control flow from jump topology, infers variable names, and
// recognizes combo state-machine idioms.
package decomp

import (
	"fmt"
	"sort"

	"github.com/dolthub/swiss"

	"github.com/gbc-tools/gbcdis/gbc"
)

// Decoder holds the full state of one decompilation run: the decoded
// instruction stream, the subroutines split out of it, and the
// variable/combo tables inferred along the way.
type Decoder struct {
	Data       []byte
	Operations map[uint32]*gbc.Operation

	Subs              map[uint32]*Sub
	Start, Init, Main *Sub

	Maps   *Block
	Combos []*Block

	ComboCount  int64
	T0          *Group
	Allocs      map[int64]int64
	// Vars maps an allocated slot number to its rendered variable name
	// (e.g. "v3" or "v0[1]" for an array element). It is built once by
	// resolveAllocs and only ever read or written a key at a time, which
	// is exactly the access pattern swiss.Map is good for.
	Vars        *swiss.Map[int64, string]
	AllocValues map[int64]string
}

// New prepares a Decoder over data; call FullDecode (and, when the
// blob encodes a combo count, ComboDecode) to run the pipeline.
func New(data []byte) *Decoder {
	return &Decoder{Data: data, Operations: map[uint32]*gbc.Operation{}}
}

func (d *Decoder) varName(slot int64) string {
	if d.Vars != nil {
		if n, ok := d.Vars.Get(slot); ok {
			return n
		}
	}
	return fmt.Sprintf("v%d", slot)
}

func sortedOpKeys(m map[uint32]*gbc.Operation) []uint32 { return sortedOpsAsc(m) }

// FullDecode runs linear decoding, gap filling, label/subroutine
// discovery, init normalization and variable inference: everything
// needed to render straight decompiled source, before combo
// recognition.
func (d *Decoder) FullDecode() error {
	logger.Println("decoding instruction stream from address 0")
	if err := d.decodeAll(0); err != nil {
		return err
	}
	logger.Printf("decoded %d instructions, filling gaps", len(d.Operations))
	d.fillGaps()
	d.generateLabels()
	d.splitSubs()
	logger.Printf("split into %d subroutines", len(d.Subs))
	d.resolveAllocs()
	logger.Printf("resolved %d allocations, combo count %d", len(d.Allocs), d.ComboCount)
	d.normalizeInit()
	if err := d.resolve(); err != nil {
		return err
	}
	d.resolveVariables()
	logger.Println("full decode complete")
	return nil
}

// ComboDecode runs combo idiom recognition; call only after FullDecode
// and only when ComboCount is nonzero.
func (d *Decoder) ComboDecode() {
	logger.Printf("recognizing %d combos", d.ComboCount)
	d.splitCombos()
	d.resolveCombos()
	d.fixRunCombo()
	logger.Println("combo decode complete")
}

// InitDecode folds the init subroutine's leading straight-line pop
// assignments into an allocation-value table, used by the source
// emitter to render "int v0 = 5;" instead of a separate init body.
func (d *Decoder) InitDecode() {
	d.renormalizeInit()
}

func (d *Decoder) decodeAll(start uint32) error {
	queue := []uint32{start}
	for len(queue) > 0 {
		addr := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if _, ok := d.Operations[addr]; ok {
			continue
		}
		if int(addr) >= len(d.Data) {
			continue
		}
		op, err := gbc.Parse(d.Data, addr)
		if err != nil {
			return err
		}
		d.Operations[addr] = op
		next := addr + uint32(op.Size)
		switch {
		case op.Op.IsJump && op.Op.Conditional:
			queue = append(queue, op.JumpAddress, next)
		case op.Op.IsJump:
			queue = append(queue, op.JumpAddress)
		default:
			queue = append(queue, next)
		}
	}
	return nil
}

func dataOperation(data []byte, address uint32, size int) *gbc.Operation {
	row := gbc.DataOp(size)
	args := make([]int64, size)
	for i := 0; i < size; i++ {
		args[i] = int64(data[int(address)+i])
	}
	return &gbc.Operation{Op: row, Address: address, Size: size, Arguments: args}
}

func (d *Decoder) fillGaps() {
	addrs := sortedOpKeys(d.Operations)
	for i, addr := range addrs {
		if i+1 >= len(addrs) {
			continue
		}
		op := d.Operations[addr]
		end := addr + uint32(op.Size)
		next := addrs[i+1]
		if end < next {
			d.Operations[end] = dataOperation(d.Data, end, int(next-end))
		}
	}
}

func (d *Decoder) generateLabels() {
	first := d.Operations[0]
	first.SubName = "start"
	if first.Op.Name == "jmp" {
		d.Operations[first.JumpAddress].SubName = "init"
	} else {
		first.SubName = "init"
	}
	for _, addr := range sortedOpKeys(d.Operations) {
		op := d.Operations[addr]
		switch {
		case op.Op.Name == "main":
			op.SubName = "main"
		case op.Op.IsCall:
			d.Operations[op.JumpAddress].SubName = fmt.Sprintf("sub_%04X", op.JumpAddress)
		case op.Op.IsJump && op.Address != 0:
			d.Operations[op.JumpAddress].LocName = fmt.Sprintf("loc_%04X", op.JumpAddress)
		}
	}
}

func (d *Decoder) splitSubs() {
	d.Subs = map[uint32]*Sub{}
	var sub *Sub
	for _, addr := range sortedOpKeys(d.Operations) {
		op := d.Operations[addr]
		if op.SubName != "" {
			if sub != nil && sub.Name != "start" {
				d.Subs[sub.Address] = sub
			}
			sub = &Sub{Name: op.SubName, Address: op.Address, Operations: map[uint32]*gbc.Operation{}}
			switch sub.Name {
			case "start":
				d.Start = sub
			case "init":
				d.Init = sub
			case "main":
				d.Main = sub
			}
		}
		sub.Operations[op.Address] = op
	}
	if sub != nil {
		d.Subs[sub.Address] = sub
	}

	for _, addr := range sortedOpKeys(d.Operations) {
		op := d.Operations[addr]
		if op.Op.IsCall {
			if target, ok := d.Subs[op.JumpAddress]; ok {
				target.Pops = int(op.Arguments[1])
				target.Pushes = int(op.Arguments[2])
			}
		}
	}

	if d.Start != nil {
		d.Start.SplitLocs()
		d.Start.Resolve()
	}
	if d.Init != nil {
		d.Init.SplitLocs()
		d.Init.Resolve()
	}
}

func (d *Decoder) resolveAllocs() {
	d.Allocs = map[int64]int64{}
	d.Vars = swiss.NewMap[int64, string](8)
	if d.Init == nil {
		return
	}
	var total int64
	for _, addr := range sortedOpKeys(d.Init.Operations) {
		op := d.Init.Operations[addr]
		if op.Op.Name != "alloc" {
			continue
		}
		count := op.Arguments[0]
		if count > 1 {
			for i := int64(0); i < count; i++ {
				d.Vars.Put(total+i, fmt.Sprintf("v%d[%d]", total, i))
			}
		} else {
			d.Vars.Put(total, fmt.Sprintf("v%d", total))
		}
		d.Allocs[total] = count
		total += count
	}
	if n, ok := d.Allocs[0]; ok && n%3 == 0 {
		d.ComboCount = n / 3
	}
}

func (d *Decoder) normalizeInit() {
	if d.Init == nil {
		return
	}
	d.Maps = newBlock(0, -1)
	for _, group := range sortedGroupsAsc(d.Init.Groups) {
		sk, ok := group.FinalSink.(*Sink)
		if !ok {
			continue
		}
		switch sk.Op.Op.Name {
		case "alloc":
			delete(d.Init.Groups, group.Address)
		case "remap", "unmap":
			delete(d.Init.Groups, group.Address)
			d.Maps.Groups[float64(group.Address)] = group
		}
	}
	if len(d.Maps.Groups) == 0 {
		d.Maps = nil
	}
	if len(d.Init.Operations) == 0 {
		delete(d.Subs, d.Init.Address)
		d.Init = nil
	}
}

func (d *Decoder) renormalizeInit() {
	if d.Init == nil {
		return
	}
	d.AllocValues = map[int64]string{}
	for _, group := range sortedGroupsAsc(d.Init.Groups) {
		sk, ok := group.FinalSink.(*Sink)
		if !ok {
			continue
		}
		if !group.Simple() {
			break
		}
		switch sk.Op.Op.Name {
		case "pop":
			slot := sk.Op.Arguments[0]
			d.AllocValues[slot] = sk.Decompile(d)
			delete(d.Init.Groups, group.Address)
		case "T0":
			// No opcode in the transcribed table is actually named
			// "T0"; this mirrors a check in the decoder this was
			// ported from that can never match.
			d.T0 = group
			delete(d.Init.Groups, group.Address)
		}
	}
	d.Init.Resolve()
}

func (d *Decoder) resolve() error {
	for _, sub := range d.Subs {
		if sub.Name == "init" {
			continue
		}
		logger.Println("resolving control flow for", sub.Name)
		if err := sub.SplitLocs(); err != nil {
			return err
		}
		if err := sub.Resolve(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) resolveVariables() {
	variables := map[int64]gbc.ConstTable{}
	var allSinks []*Sink
	for _, sub := range d.Subs {
		for _, g := range sub.Groups {
			allSinks = append(allSinks, g.AllSinks()...)
		}
	}

	for _, sink := range allSinks {
		if sink.Op.Op.Constants == nil {
			continue
		}
		addrs := sink.sortedAddrs()
		argLen := len(sink.Op.Arguments)
		for sidx, addr := range addrs {
			snkidx := sidx - argLen
			if snkidx < 0 || snkidx >= len(sink.Op.Op.Constants) || sink.Op.Op.Constants[snkidx] == nil {
				continue
			}
			var srcOp *gbc.Operation
			switch v := sink.Sources[addr].(type) {
			case *Leaf:
				srcOp = v.Op
			case *Sink:
				srcOp = v.Op
			default:
				continue
			}
			if srcOp.Op.Variables == nil || sidx >= len(srcOp.Op.Variables) || !srcOp.Op.Variables[sidx] {
				continue
			}
			variables[srcOp.Arguments[0]] = sink.Op.Op.Constants[snkidx]
		}
	}

	for _, sink := range allSinks {
		if sink.Op.Op.Variables == nil {
			continue
		}
		if table, ok := variables[sink.Op.Arguments[0]]; ok {
			cp := *sink.Op
			cp.Op.Constants = []gbc.ConstTable{nil, table}
			sink.Op = &cp
		}
	}
}

func sortedSinks(m map[*Sink]struct{}) []*Sink {
	out := make([]*Sink, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}
