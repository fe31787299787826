// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Return the host's Lua state, creating it and registering the emulator
// functions on first use.
func (h *Host) luaState() *lua.LState {
	if h.lua != nil {
		return h.lua
	}

	var L *lua.LState
	if h.noFiles {
		L = newRestrictedState()
	} else {
		L = lua.NewState()
	}

	funcs := map[string]lua.LGFunction{
		"print":  h.luaPrint,
		"step":   h.luaStep,
		"run":    h.luaRun,
		"reg":    h.luaReg,
		"setreg": h.luaSetReg,
		"peek":   h.luaPeek,
		"peekw":  h.luaPeekWord,
		"poke":   h.luaPoke,
		"cmd":    h.luaCmd,
	}
	for name, fn := range funcs {
		L.SetGlobal(name, L.NewFunction(fn))
	}

	h.lua = L
	return L
}

// Create a Lua state holding only the libraries that cannot reach the
// file system or other processes.
func newRestrictedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	// The base library can still reach files through these.
	for _, name := range []string{"dofile", "loadfile", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func (h *Host) cmdScript(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return nil
	}

	filename := scriptFilename(h.settings.ScriptPath, c.args[0], ".lua")
	if err := h.luaState().DoFile(filename); err != nil {
		return h.luaError(filepath.Base(filename), err)
	}
	return nil
}

func (h *Host) cmdLua(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return nil
	}

	if err := h.luaState().DoString(strings.Join(c.args, " ")); err != nil {
		return h.luaError("lua", err)
	}
	return nil
}

// Report a script failure. A quit command issued from within the script
// is passed on to the caller.
func (h *Host) luaError(source string, err error) error {
	if h.luaQuit {
		h.luaQuit = false
		return ErrQuit
	}
	h.printf("Script error in %s: %v\n", source, err)
	return nil
}

// print(...) writes its arguments to the host's output, separated by tabs.
func (h *Host) luaPrint(L *lua.LState) int {
	n := L.GetTop()
	args := make([]string, n)
	for i := 1; i <= n; i++ {
		args[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	h.println(strings.Join(args, "\t"))
	return 0
}

// step([count]) executes instructions and returns the new PC.
func (h *Host) luaStep(L *lua.LState) int {
	count := L.OptInt(1, 1)

	h.beginRun()
	for i := 0; i < count && h.state == stateRunning; i++ {
		h.step()
	}
	h.state = stateProcessingCommands

	L.Push(lua.LNumber(h.cpu.Reg.PC))
	return 1
}

// run([limit]) runs until a breakpoint is hit or until 'limit'
// instructions have executed, and returns the number executed.
func (h *Host) luaRun(L *lua.LState) int {
	limit := L.OptInt(1, 0)

	h.beginRun()
	for h.state == stateRunning && (limit <= 0 || h.runSteps < limit) {
		h.step()
	}
	h.state = stateProcessingCommands

	L.Push(lua.LNumber(h.runSteps))
	return 1
}

func (h *Host) luaReg(L *lua.LState) int {
	name := L.CheckString(1)
	if bit, _, ok := flagByName(strings.ToLower(name)); ok {
		L.Push(lua.LBool(h.cpu.Reg.Flag(bit)))
		return 1
	}

	v, err := h.resolveIdentifier(name)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (h *Host) luaSetReg(L *lua.LState) int {
	name := L.CheckString(1)

	var v int64
	switch lv := L.Get(2).(type) {
	case lua.LBool:
		if lv {
			v = 1
		}
	default:
		v = int64(L.CheckInt(2))
	}

	if _, err := h.setRegister(name, v); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *Host) luaPeek(L *lua.LState) int {
	addr := L.CheckInt(1)
	L.Push(lua.LNumber(h.mem.LoadByte(uint32(addr & 0xffff))))
	return 1
}

func (h *Host) luaPeekWord(L *lua.LState) int {
	addr := L.CheckInt(1)
	L.Push(lua.LNumber(h.mem.LoadWord(uint32(addr & 0xffff))))
	return 1
}

func (h *Host) luaPoke(L *lua.LState) int {
	addr := L.CheckInt(1)
	v := L.CheckInt(2)
	h.mem.StoreByte(uint32(addr&0xffff), byte(v))
	return 0
}

// cmd(line) executes a host command line.
func (h *Host) luaCmd(L *lua.LState) int {
	line := L.CheckString(1)
	if err := h.execLine(line); err != nil {
		h.luaQuit = errors.Is(err, ErrQuit)
		L.RaiseError("%v", err)
	}
	return 0
}
