// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "sort"

// A Debugger watches the CPU as it executes, stopping it at execution
// breakpoints and at stores to data breakpoint addresses.
type Debugger struct {
	Handler          DebuggerHandler
	breakpoints      map[uint16]*Breakpoint
	dataBreakpoints  map[uint16]*DataBreakpoint
	tcallBreakpoints map[byte]*TcallBreakpoint
}

// The DebuggerHandler interface should be implemented by any object that
// wishes to receive debugger notifications.
type DebuggerHandler interface {
	OnBreakpoint(cpu *CPU, b *Breakpoint)
	OnDataBreakpoint(cpu *CPU, b *DataBreakpoint)
	OnTcallBreakpoint(cpu *CPU, b *TcallBreakpoint)
}

// A Breakpoint represents an address that will cause the debugger to stop
// code execution when the program counter reaches it.
type Breakpoint struct {
	Address  uint16 // address of execution breakpoint
	Disabled bool   // this breakpoint is currently disabled
	StepOver bool   // this is a temporary step-over breakpoint
}

// A DataBreakpoint represents an address that will cause the debugger to
// stop executing code when a byte is stored to it.
type DataBreakpoint struct {
	Address     uint16 // breakpoint triggered by stores to this address
	Disabled    bool   // this breakpoint is currently disabled
	Conditional bool   // this breakpoint is conditional on a certain Value being stored
	Value       byte   // the value that must be stored if the breakpoint is conditional
}

// A TcallBreakpoint stops code execution after a TCALL instruction calls
// through its vector, whatever address the vector holds.
type TcallBreakpoint struct {
	Index    byte // TCALL number, 0-15
	Disabled bool
}

// NewDebugger creates a new CPU debugger.
func NewDebugger(handler DebuggerHandler) *Debugger {
	return &Debugger{
		Handler:          handler,
		breakpoints:      make(map[uint16]*Breakpoint),
		dataBreakpoints:  make(map[uint16]*DataBreakpoint),
		tcallBreakpoints: make(map[byte]*TcallBreakpoint),
	}
}

// GetBreakpoint looks up a breakpoint by address and returns it if found.
// Otherwise it returns nil.
func (d *Debugger) GetBreakpoint(addr uint16) *Breakpoint {
	return d.breakpoints[addr]
}

// GetBreakpoints returns all breakpoints currently set in the debugger,
// ordered by address.
func (d *Debugger) GetBreakpoints() []*Breakpoint {
	var breakpoints []*Breakpoint
	for _, b := range d.breakpoints {
		breakpoints = append(breakpoints, b)
	}
	sort.Slice(breakpoints, func(i, j int) bool {
		return breakpoints[i].Address < breakpoints[j].Address
	})
	return breakpoints
}

// AddBreakpoint adds a new breakpoint address to the debugger. Adding a
// breakpoint at an address that already has one replaces it.
func (d *Debugger) AddBreakpoint(addr uint16) *Breakpoint {
	b := &Breakpoint{Address: addr}
	d.breakpoints[addr] = b
	return b
}

// RemoveBreakpoint removes a breakpoint from the debugger.
func (d *Debugger) RemoveBreakpoint(addr uint16) {
	delete(d.breakpoints, addr)
}

// GetDataBreakpoint looks up a data breakpoint on the provided address
// and returns it if found. Otherwise it returns nil.
func (d *Debugger) GetDataBreakpoint(addr uint16) *DataBreakpoint {
	return d.dataBreakpoints[addr]
}

// GetDataBreakpoints returns all data breakpoints currently set in the
// debugger, ordered by address.
func (d *Debugger) GetDataBreakpoints() []*DataBreakpoint {
	var breakpoints []*DataBreakpoint
	for _, b := range d.dataBreakpoints {
		breakpoints = append(breakpoints, b)
	}
	sort.Slice(breakpoints, func(i, j int) bool {
		return breakpoints[i].Address < breakpoints[j].Address
	})
	return breakpoints
}

// AddDataBreakpoint adds an unconditional data breakpoint on the requested
// address.
func (d *Debugger) AddDataBreakpoint(addr uint16) *DataBreakpoint {
	b := &DataBreakpoint{Address: addr}
	d.dataBreakpoints[addr] = b
	return b
}

// AddConditionalDataBreakpoint adds a conditional data breakpoint on the
// requested address.
func (d *Debugger) AddConditionalDataBreakpoint(addr uint16, value byte) *DataBreakpoint {
	b := &DataBreakpoint{Address: addr, Conditional: true, Value: value}
	d.dataBreakpoints[addr] = b
	return b
}

// RemoveDataBreakpoint removes a (conditional or unconditional) data
// breakpoint at the requested address.
func (d *Debugger) RemoveDataBreakpoint(addr uint16) {
	delete(d.dataBreakpoints, addr)
}

// GetTcallBreakpoint returns the breakpoint on TCALL 'n', or nil if there
// isn't one.
func (d *Debugger) GetTcallBreakpoint(n byte) *TcallBreakpoint {
	return d.tcallBreakpoints[n]
}

// GetTcallBreakpoints returns all TCALL breakpoints, ordered by TCALL
// number.
func (d *Debugger) GetTcallBreakpoints() []*TcallBreakpoint {
	var breakpoints []*TcallBreakpoint
	for n := byte(0); n < 16; n++ {
		if b, ok := d.tcallBreakpoints[n]; ok {
			breakpoints = append(breakpoints, b)
		}
	}
	return breakpoints
}

// AddTcallBreakpoint adds a breakpoint on TCALL 'n'. Only the low four
// bits of 'n' are used.
func (d *Debugger) AddTcallBreakpoint(n byte) *TcallBreakpoint {
	b := &TcallBreakpoint{Index: n & 0x0f}
	d.tcallBreakpoints[b.Index] = b
	return b
}

// RemoveTcallBreakpoint removes the breakpoint on TCALL 'n'.
func (d *Debugger) RemoveTcallBreakpoint(n byte) {
	delete(d.tcallBreakpoints, n&0x0f)
}

func (d *Debugger) onTcall(cpu *CPU, n byte) {
	if d.Handler != nil {
		if b, ok := d.tcallBreakpoints[n]; ok && !b.Disabled {
			d.Handler.OnTcallBreakpoint(cpu, b)
		}
	}
}

func (d *Debugger) onUpdatePC(cpu *CPU, addr uint16) {
	if d.Handler != nil {
		if b, ok := d.breakpoints[addr]; ok && !b.Disabled {
			d.Handler.OnBreakpoint(cpu, b)
		}
	}
}

func (d *Debugger) onDataStore(cpu *CPU, addr uint32, v byte) {
	if d.Handler == nil || addr >= MemorySize {
		return
	}
	if b, ok := d.dataBreakpoints[uint16(addr)]; ok && !b.Disabled {
		if !b.Conditional || b.Value == v {
			d.Handler.OnDataBreakpoint(cpu, b)
		}
	}
}
