// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"os"
	"path/filepath"

	"github.com/beevik/spc700/cpu"
	"github.com/bradleyjkemp/memviz"
)

// debugState is the part of the host graphed by the memviz command.
type debugState struct {
	Registers        cpu.Registers
	Steps            uint64
	Breakpoints      []*cpu.Breakpoint
	DataBreakpoints  []*cpu.DataBreakpoint
	TcallBreakpoints []*cpu.TcallBreakpoint
	Annotations      map[uint16]string
}

func (h *Host) snapshot() *debugState {
	return &debugState{
		Registers:        h.cpu.Reg,
		Steps:            h.cpu.Steps,
		Breakpoints:      h.debugger.GetBreakpoints(),
		DataBreakpoints:  h.debugger.GetDataBreakpoints(),
		TcallBreakpoints: h.debugger.GetTcallBreakpoints(),
		Annotations:      h.annotations,
	}
}

func (h *Host) cmdMemviz(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return nil
	}

	filename := c.args[0]
	if filepath.Ext(filename) == "" {
		filename += ".dot"
	}

	file, err := os.Create(filename)
	if err != nil {
		h.printf("Failed to create '%s': %v\n", filepath.Base(filename), err)
		return nil
	}
	defer file.Close()

	memviz.Map(file, h.snapshot())
	h.printf("Debugger state written to '%s'.\n", filepath.Base(filename))
	return nil
}
