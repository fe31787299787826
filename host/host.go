// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host allows you to create a "host" that emulates the sound
// processor of a Super Nintendo: an SPC700 CPU, its 64K of memory, a
// built-in debugger, and other useful tools.
//
// Within the host it is possible to load SPC sound files and raw binary
// data into memory, debug and step through machine code, set address and
// data breakpoints, dump the contents of memory, disassemble the contents
// of memory, manipulate CPU registers and memory, evaluate arbitrary
// expressions, and drive the emulator from Lua scripts.
package host

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/beevik/cmd"
	"github.com/beevik/spc700/cpu"
	"github.com/beevik/spc700/disasm"
	"github.com/beevik/spc700/spc"
	lua "github.com/yuin/gopher-lua"
)

// ErrQuit is returned by Execute when the command line asked the host to
// quit.
var ErrQuit = errors.New("exiting program")

type displayFlags uint8

const (
	displayRegisters displayFlags = 1 << iota
	displaySteps
	displayAnnotations

	displayAll = displayRegisters | displaySteps | displayAnnotations
)

type state byte

const (
	stateProcessingCommands state = iota
	stateRunning
	stateBreakpoint
	stateStepOverBreakpoint
)

// A Host represents a fully emulated SPC700 system, 64K of memory, a
// built-in debugger, and other useful tools.
type Host struct {
	input          *bufio.Scanner
	output         *bufio.Writer
	interactive    bool
	mem            *cpu.FlatMemory
	cpu            *cpu.CPU
	debugger       *cpu.Debugger
	lastCmd        *selection
	state          state
	runSteps       int
	breakRequested atomic.Bool
	exprParser     *exprParser
	settings       *settings
	annotations    map[uint16]string
	spcFile        *spc.File
	lua            *lua.LState
	luaQuit        bool
	noFiles        bool
	startupFile    string
	log            *log.Logger
	memOpts        []cpu.MemoryOption
}

// An Option configures a Host.
type Option func(h *Host)

// WithLogger routes the diagnostics of the host and its CPU to the
// provided logger.
func WithLogger(l *log.Logger) Option {
	return func(h *Host) {
		h.log = l
	}
}

// WithLegacyWordStores makes the emulated memory store both bytes of a
// 16-bit word to the same address, as older SPC tooling did.
func WithLegacyWordStores() Option {
	return func(h *Host) {
		h.memOpts = append(h.memOpts, cpu.WithLegacyWordStores())
	}
}

// WithRunLimit stops the run command after 'n' instructions. Hosts that
// cannot be interrupted from a keyboard use it to bound each command.
func WithRunLimit(n int) Option {
	return func(h *Host) {
		h.settings.RunLimit = n
	}
}

// WithoutFileAccess removes the commands that read or write files, and
// limits Lua scripts to the base, table, string and math libraries. Hosts
// serving untrusted clients should use it.
func WithoutFileAccess() Option {
	return func(h *Host) {
		h.noFiles = true
	}
}

// WithStartupFile loads an SPC file when the host is created. The load's
// messages are written to the host's logger.
func WithStartupFile(filename string) Option {
	return func(h *Host) {
		h.startupFile = filename
	}
}

// New creates a new SPC700 host environment.
func New(opts ...Option) *Host {
	h := &Host{
		state:       stateProcessingCommands,
		exprParser:  newExprParser(),
		settings:    newSettings(),
		annotations: make(map[uint16]string),
		log:         log.New(io.Discard, "", 0),
		output:      bufio.NewWriter(io.Discard),
	}
	for _, opt := range opts {
		opt(h)
	}

	// Create the emulated CPU and memory.
	h.mem = cpu.NewFlatMemory(h.memOpts...)
	h.cpu = cpu.NewCPU(h.mem, cpu.WithLogger(h.log))

	// Create a CPU debugger and attach it to the CPU.
	h.debugger = cpu.NewDebugger(newDebugHandler(h))
	h.cpu.AttachDebugger(h.debugger)

	if h.startupFile != "" {
		h.output = bufio.NewWriter(h.log.Writer())
		h.load(h.startupFile, -1)
		h.output = bufio.NewWriter(io.Discard)
	}

	return h
}

// CPU returns the host's emulated CPU.
func (h *Host) CPU() *cpu.CPU {
	return h.cpu
}

// Close releases the host's scripting environment.
func (h *Host) Close() {
	if h.lua != nil {
		h.lua.Close()
		h.lua = nil
	}
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	if interactive {
		h.println()
	}

	h.displayPC()

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		if err := h.execLine(line); err != nil {
			break
		}
	}
	h.flush()
}

// Execute runs a single command line and writes its output to 'w'. It
// returns ErrQuit if the command asked the host to quit.
func (h *Host) Execute(line string, w io.Writer) error {
	prev := h.output
	h.output = bufio.NewWriter(w)
	defer func() {
		h.flush()
		h.output = prev
	}()
	return h.execLine(line)
}

// Break interrupts a running CPU. It may be called from any goroutine.
func (h *Host) Break() {
	h.breakRequested.Store(true)
}

func (h *Host) execLine(line string) error {
	var c selection
	line = strings.TrimSpace(line)
	if line != "" {
		n, args, err := cmds.Lookup(line)
		switch {
		case err == cmd.ErrNotFound:
			h.println("Command not found.")
			return nil
		case err == cmd.ErrAmbiguous:
			h.println("Command is ambiguous.")
			return nil
		case err != nil:
			h.printf("ERROR: %v.\n", err)
			return nil
		}

		cm, ok := n.(*cmd.Command)
		if !ok {
			h.displayGroup(line)
			return nil
		}
		c = selection{cmd: cm.Data.(*command), args: args}
	} else if h.lastCmd != nil {
		c = *h.lastCmd
	} else {
		return nil
	}

	if !h.allowed(c.cmd) {
		h.printf("Command '%s' is not available in this session.\n", c.cmd.name)
		return nil
	}
	h.lastCmd = &c

	return c.cmd.fn(h, c)
}

// Report whether the host permits the command.
func (h *Host) allowed(c *command) bool {
	return !h.noFiles || !c.files
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

func (h *Host) displayPC() {
	if h.interactive {
		d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
		h.println(d)
	}
}

func (h *Host) cmdAnnotate(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return nil
	}

	addr, err := h.parseExpr(c.args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	var annotation string
	if len(c.args) >= 2 {
		annotation = strings.Join(c.args[1:], " ")
	}

	if annotation == "" {
		delete(h.annotations, addr)
		h.printf("Annotation removed at $%04X.\n", addr)
	} else {
		h.annotations[addr] = annotation
		h.printf("Annotation added at $%04X.\n", addr)
	}

	return nil
}

func (h *Host) cmdBreakpointList(c selection) error {
	h.println("Addr  Enabled")
	h.println("----- -------")
	for _, b := range h.debugger.GetBreakpoints() {
		h.printf("$%04X %v\n", b.Address, !b.Disabled)
	}
	for _, b := range h.debugger.GetTcallBreakpoints() {
		h.printf("T%-4d %v\n", b.Index, !b.Disabled)
	}
	return nil
}

func (h *Host) cmdBreakpointAdd(c selection) error {
	addr, ok := h.addressArg(c)
	if !ok {
		return nil
	}

	h.debugger.AddBreakpoint(addr)
	h.printf("Breakpoint added at $%04X.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointTcall(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return nil
	}

	n, err := h.parseExpr(c.args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	if n > 15 {
		h.println("TCALL number must be 0-15.")
		return nil
	}

	if len(c.args) >= 2 && strings.EqualFold(c.args[1], "off") {
		if h.debugger.GetTcallBreakpoint(byte(n)) == nil {
			h.printf("No breakpoint was set on TCALL %d.\n", n)
			return nil
		}
		h.debugger.RemoveTcallBreakpoint(byte(n))
		h.printf("Breakpoint on TCALL %d removed.\n", n)
		return nil
	}

	h.debugger.AddTcallBreakpoint(byte(n))
	h.printf("Breakpoint added on TCALL %d.\n", n)
	return nil
}

func (h *Host) cmdBreakpointRemove(c selection) error {
	addr, ok := h.addressArg(c)
	if !ok {
		return nil
	}

	if h.debugger.GetBreakpoint(addr) == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}

	h.debugger.RemoveBreakpoint(addr)
	h.printf("Breakpoint at $%04X removed.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointEnable(c selection) error {
	return h.enableBreakpoint(c, true)
}

func (h *Host) cmdBreakpointDisable(c selection) error {
	return h.enableBreakpoint(c, false)
}

func (h *Host) enableBreakpoint(c selection, enable bool) error {
	addr, ok := h.addressArg(c)
	if !ok {
		return nil
	}

	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}

	b.Disabled = !enable
	h.printf("Breakpoint at $%04X %s.\n", addr, enabledString(enable))
	return nil
}

func (h *Host) cmdDataBreakpointList(c selection) error {
	h.println("Addr  Enabled  Value")
	h.println("----- -------  -----")
	for _, b := range h.debugger.GetDataBreakpoints() {
		if b.Conditional {
			h.printf("$%04X %-5v    $%02X\n", b.Address, !b.Disabled, b.Value)
		} else {
			h.printf("$%04X %-5v    <none>\n", b.Address, !b.Disabled)
		}
	}
	return nil
}

func (h *Host) cmdDataBreakpointAdd(c selection) error {
	addr, ok := h.addressArg(c)
	if !ok {
		return nil
	}

	if len(c.args) > 1 {
		value, err := h.parseExpr(c.args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.debugger.AddConditionalDataBreakpoint(addr, byte(value))
		h.printf("Conditional data breakpoint added at $%04X for value $%02X.\n", addr, byte(value))
	} else {
		h.debugger.AddDataBreakpoint(addr)
		h.printf("Data breakpoint added at $%04X.\n", addr)
	}

	return nil
}

func (h *Host) cmdDataBreakpointRemove(c selection) error {
	addr, ok := h.addressArg(c)
	if !ok {
		return nil
	}

	if h.debugger.GetDataBreakpoint(addr) == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}

	h.debugger.RemoveDataBreakpoint(addr)
	h.printf("Data breakpoint at $%04X removed.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointEnable(c selection) error {
	return h.enableDataBreakpoint(c, true)
}

func (h *Host) cmdDataBreakpointDisable(c selection) error {
	return h.enableDataBreakpoint(c, false)
}

func (h *Host) enableDataBreakpoint(c selection, enable bool) error {
	addr, ok := h.addressArg(c)
	if !ok {
		return nil
	}

	b := h.debugger.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}

	b.Disabled = !enable
	h.printf("Data breakpoint at $%04X %s.\n", addr, enabledString(enable))
	return nil
}

func (h *Host) cmdDisassemble(c selection) error {
	if len(c.args) == 0 {
		c.args = []string{"$"}
	}

	var addr uint16
	switch c.args[0] {
	case "$":
		addr = h.settings.NextDisasmAddr
		if addr == 0 {
			addr = h.cpu.Reg.PC
		}

	case ".":
		addr = h.cpu.Reg.PC

	default:
		a, err := h.parseExpr(c.args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	lines := h.settings.DisasmLines
	if len(c.args) > 1 {
		l, err := h.parseCount(c.args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = l
	}

	for i := 0; i < lines; i++ {
		d, next := h.disassemble(addr, displayAnnotations)
		h.println(d)
		addr = next
	}

	h.settings.NextDisasmAddr = addr
	h.lastCmd.args = []string{"$", fmt.Sprintf("%d", lines)}
	return nil
}

func (h *Host) cmdEvaluate(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return nil
	}

	expr := strings.Join(c.args, " ")
	v, err := h.exprParser.Parse(expr, h)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.printf("$%04X (%d)\n", uint16(v), v)
	return nil
}

func (h *Host) cmdExecute(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return nil
	}

	filename := scriptFilename(h.settings.ScriptPath, c.args[0], ".cmd")
	file, err := os.Open(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		return nil
	}
	defer file.Close()

	// The script's commands must not be repeated by an empty line typed
	// at the prompt afterwards.
	defer func() { h.lastCmd = nil }()

	s := bufio.NewScanner(file)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := h.execLine(line); err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		h.printf("Failed to read '%s': %v\n", filepath.Base(filename), err)
	}
	return nil
}

func (h *Host) cmdHelp(c selection) error {
	if len(c.args) == 0 {
		h.displayCommands(rootGroup, subgroups)
		return nil
	}

	line := strings.Join(c.args, " ")
	n, _, err := cmds.Lookup(line)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	switch n := n.(type) {
	case *cmd.Tree:
		h.displayGroup(line)
	case *cmd.Command:
		cm := n.Data.(*command)
		if cm.usage != "" {
			h.printf("Syntax: %s\n\n", cm.usage)
		}
		switch {
		case cm.description != "":
			h.printf("Description:\n%s\n\n", indentWrap(3, cm.description))
		case cm.brief != "":
			h.printf("Description:\n%s.\n\n", indentWrap(3, cm.brief))
		}
		if sc := n.Shortcuts(); len(sc) > 0 {
			h.printf("Shortcuts: %s\n\n", strings.Join(sc, ", "))
		}
	}
	return nil
}

func (h *Host) cmdInfo(c selection) error {
	if h.spcFile == nil {
		h.println("No SPC file loaded.")
		return nil
	}

	t := &h.spcFile.Tag
	h.printf("Song:       %s\n", t.SongTitle)
	h.printf("Game:       %s\n", t.GameTitle)
	h.printf("Artist:     %s\n", t.Artist)
	h.printf("Dumper:     %s\n", t.Dumper)
	h.printf("Comment:    %s\n", t.Comment)
	switch {
	case !t.Date.IsZero():
		h.printf("Dumped:     %s\n", t.Date.Format("2006-01-02"))
	case t.DateText != "":
		h.printf("Dumped:     %s\n", t.DateText)
	}
	h.printf("Length:     %d seconds (fade %d ms)\n", t.SongLength, t.FadeLength)
	h.printf("Emulator:   %d\n", t.Emulator)
	if t.Binary {
		h.println("Tag format: binary")
	} else {
		h.println("Tag format: text")
	}
	return nil
}

func (h *Host) cmdLoad(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return nil
	}

	loadAddr := -1
	if len(c.args) >= 2 {
		addr, err := h.parseExpr(c.args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		loadAddr = int(addr)
	}

	h.load(c.args[0], loadAddr)
	return nil
}

func (h *Host) cmdMemoryDump(c selection) error {
	if len(c.args) == 0 {
		c.args = []string{"$"}
	}

	var addr uint16
	switch c.args[0] {
	case "$":
		addr = h.settings.NextMemDumpAddr

	case ".":
		addr = h.cpu.Reg.PC

	default:
		a, err := h.parseExpr(c.args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	count := h.settings.MemDumpBytes
	if len(c.args) >= 2 {
		var err error
		count, err = h.parseCount(c.args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	h.dumpMemory(addr, count)

	h.settings.NextMemDumpAddr = addr + uint16(count)
	h.lastCmd.args = []string{"$", fmt.Sprintf("%d", count)}
	return nil
}

func (h *Host) cmdMemorySet(c selection) error {
	if len(c.args) < 2 {
		h.displayUsage(c)
		return nil
	}

	addr, err := h.parseExpr(c.args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := make([]byte, 0, len(c.args)-1)
	for _, arg := range c.args[1:] {
		v, err := h.parseExpr(arg)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		b = append(b, byte(v))
	}

	if err := cpu.StoreImage(h.mem, uint32(addr), b); err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.dumpMemory(addr, len(b))
	return nil
}

func (h *Host) cmdMemoryCopy(c selection) error {
	if len(c.args) < 3 {
		h.displayUsage(c)
		return nil
	}

	var addr [3]uint16
	for i := range addr {
		a, err := h.parseExpr(c.args[i])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr[i] = a
	}

	dst, src0, src1 := addr[0], addr[1], addr[2]
	if src1 < src0 {
		h.println("Source end address must not precede the start address.")
		return nil
	}

	b := make([]byte, int(src1)-int(src0)+1)
	h.mem.LoadBytes(uint32(src0), b)
	if err := cpu.StoreImage(h.mem, uint32(dst), b); err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.printf("Copied $%04X bytes from $%04X to $%04X.\n", len(b), src0, dst)
	return nil
}

func (h *Host) cmdQuit(c selection) error {
	return ErrQuit
}

func (h *Host) cmdRegister(c selection) error {
	if len(c.args) == 0 {
		d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
		h.println(d)
		return nil
	}

	if len(c.args) < 2 {
		h.displayUsage(c)
		return nil
	}

	v, err := h.exprParser.Parse(strings.Join(c.args[1:], " "), h)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	msg, err := h.setRegister(c.args[0], v)
	if err != nil {
		h.printf("%v.\n", err)
		return nil
	}
	h.println(msg)
	return nil
}

// Assign a value to a register, a register pair or a status flag.
func (h *Host) setRegister(name string, v int64) (string, error) {
	key := strings.ToLower(name)
	reg := &h.cpu.Reg
	switch key {
	case "a":
		reg.A = byte(v)
	case "x":
		reg.X = byte(v)
	case "y":
		reg.Y = byte(v)
	case "sp":
		reg.SP = byte(v)
	case "psw":
		reg.PSW = byte(v)
	case "ya":
		reg.SetYA(cpu.Word(v))
		return fmt.Sprintf("Register YA set to $%04X.", uint16(v)), nil
	case ".", "pc":
		reg.PC = uint16(v)
		h.settings.NextDisasmAddr = reg.PC
		return fmt.Sprintf("Register PC set to $%04X.", uint16(v)), nil
	default:
		bit, flag, ok := flagByName(key)
		if !ok {
			return "", fmt.Errorf("unknown register '%s'", name)
		}
		reg.SetFlag(bit, v != 0)
		return fmt.Sprintf("Flag %s set to %v.", flag, v != 0), nil
	}
	return fmt.Sprintf("Register %s set to $%02X.", strings.ToUpper(key), byte(v)), nil
}

var flagNames = []struct {
	short, long string
	bit         byte
}{
	{"n", "negative", cpu.NegativeBit},
	{"v", "overflow", cpu.OverflowBit},
	{"p", "directpage", cpu.DirectPageBit},
	{"b", "break", cpu.BreakBit},
	{"h", "halfcarry", cpu.HalfCarryBit},
	{"i", "interrupt", cpu.InterruptBit},
	{"z", "zero", cpu.ZeroBit},
	{"c", "carry", cpu.CarryBit},
}

func flagByName(s string) (bit byte, name string, ok bool) {
	for _, f := range flagNames {
		if s == f.short || s == f.long {
			return f.bit, strings.ToUpper(f.short), true
		}
	}
	return 0, "", false
}

func (h *Host) cmdReset(c selection) error {
	if h.spcFile != nil {
		if err := h.spcFile.Apply(h.cpu); err != nil {
			h.printf("%v\n", err)
			return nil
		}
	} else {
		h.cpu.Reg.Init()
	}

	h.settings.NextDisasmAddr = 0
	h.println("CPU reset.")
	h.displayPC()
	return nil
}

func (h *Host) cmdRun(c selection) error {
	if len(c.args) > 0 {
		pc, err := h.parseExpr(c.args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.cpu.SetPC(pc)
	}

	h.printf("Running from $%04X. Press ctrl-C to break.\n", h.cpu.Reg.PC)

	h.beginRun()
	for h.state == stateRunning {
		h.step()
	}
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdSet(c selection) error {
	switch len(c.args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage(c)

	default:
		value := strings.Join(c.args[1:], " ")
		name, err := h.settings.Set(c.args[0], value, h.exprParser, h)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.printf("Setting %s updated.\n", name)
		h.onSettingsUpdate()
	}

	return nil
}

func (h *Host) cmdStepIn(c selection) error {
	return h.stepCommand(c, (*Host).step)
}

func (h *Host) cmdStepOver(c selection) error {
	return h.stepCommand(c, (*Host).stepOver)
}

func (h *Host) stepCommand(c selection, stepFn func(h *Host)) error {
	// Parse the number of steps.
	count := 1
	if len(c.args) > 0 {
		n, err := h.parseCount(c.args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		count = n
	}

	// Step the CPU count times.
	h.beginRun()
	for i := count - 1; i >= 0 && h.state == stateRunning; i-- {
		stepFn(h)
		switch {
		case i == h.settings.MaxStepLines:
			h.println("...")
		case i < h.settings.MaxStepLines:
			h.displayPC()
		}
	}
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdStepOut(c selection) error {
	h.beginRun()
	h.stepOut()
	h.state = stateProcessingCommands

	h.displayPC()
	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

// Load an SPC file, or raw binary data at 'addr'. An address of -1 means
// none was given.
func (h *Host) load(filename string, addr int) {
	b, err := os.ReadFile(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		return
	}

	if bytes.HasPrefix(b, []byte(spc.Magic)) {
		f, err := spc.Parse(b)
		if err == nil {
			err = f.Apply(h.cpu)
		}
		if err != nil {
			h.printf("Failed to load '%s': %v\n", filepath.Base(filename), err)
			return
		}

		h.spcFile = f
		h.settings.NextDisasmAddr = 0
		h.printf("Loaded SPC file '%s', PC=$%04X\n", filepath.Base(filename), h.cpu.Reg.PC)
		if f.Tag.SongTitle != "" {
			h.printf("Song: %s\n", f.Tag.SongTitle)
		}
		h.log.Printf("loaded spc file %s", filename)
		return
	}

	if addr == -1 {
		h.printf("File '%s' is not an SPC file and requires an address\n", filepath.Base(filename))
		return
	}

	if err := cpu.StoreImage(h.mem, uint32(addr), b); err != nil {
		h.printf("Failed to load '%s': %v\n", filepath.Base(filename), err)
		return
	}

	h.printf("Loaded '%s' to $%04X..$%04X\n", filepath.Base(filename), addr, addr+len(b)-1)
	h.cpu.SetPC(uint16(addr))
	h.settings.NextDisasmAddr = 0
}

func (h *Host) beginRun() {
	h.state = stateRunning
	h.runSteps = 0
	h.breakRequested.Store(false)
}

func (h *Host) step() {
	h.cpu.Step()
	h.runSteps++

	if h.state != stateRunning {
		return
	}
	if h.breakRequested.Swap(false) {
		h.println()
		h.state = stateProcessingCommands
		d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
		h.println(d)
		return
	}
	if limit := h.settings.RunLimit; limit > 0 && h.runSteps >= limit {
		h.printf("Stopped after %d instructions.\n", h.runSteps)
		h.state = stateProcessingCommands
	}
}

// Step over subroutine calls. Breaks and table calls return through the
// same RET or RETI as an ordinary call, so all of them are handled with a
// temporary breakpoint on the following instruction.
func (h *Host) stepOver() {
	cpu := h.cpu

	inst := cpu.GetInstruction(cpu.Reg.PC)
	switch inst.Name {
	case "CALL", "PCALL", "TCALL", "BRK":
	default:
		h.step()
		return
	}

	// Place a step-over breakpoint on the instruction following the call.
	// Either modify an already existing breakpoint on that instruction, or
	// create a temporary one.
	next := cpu.Reg.PC + uint16(inst.Length)
	tmpBreakpointCreated := false
	b := h.debugger.GetBreakpoint(next)
	if b == nil {
		b = h.debugger.AddBreakpoint(next)
		tmpBreakpointCreated = true
	}
	b.StepOver = true

	// Run until interrupted.
	for h.state == stateRunning {
		h.step()
	}
	b.StepOver = false

	// If we were interrupted by the temporary step-over breakpoint,
	// then continue as normal.
	if h.state == stateStepOverBreakpoint {
		h.state = stateRunning
	}

	// Remove the temporarily created breakpoint.
	if tmpBreakpointCreated {
		h.debugger.RemoveBreakpoint(next)
	}
}

// Run until the current subroutine returns.
func (h *Host) stepOut() {
	depth := 0
	for h.state == stateRunning {
		inst := h.cpu.GetInstruction(h.cpu.Reg.PC)
		h.step()
		switch inst.Name {
		case "CALL", "PCALL", "TCALL", "BRK":
			depth++
		case "RET", "RETI":
			if depth == 0 {
				return
			}
			depth--
		}
		if h.state == stateStepOverBreakpoint {
			h.state = stateRunning
		}
	}
}

func (h *Host) onSettingsUpdate() {
	h.exprParser.hexMode = h.settings.HexMode
}

func (h *Host) parseExpr(expr string) (uint16, error) {
	v, err := h.exprParser.Parse(expr, h)
	if err != nil {
		return 0, err
	}

	if v < 0 {
		v = 0x10000 + v
	}
	return uint16(v), nil
}

func (h *Host) parseCount(expr string) (int, error) {
	v, err := h.exprParser.Parse(expr, h)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > cpu.MemorySize {
		return 0, fmt.Errorf("count %d out of range", v)
	}
	return int(v), nil
}

// Parse the address argument shared by the breakpoint commands.
func (h *Host) addressArg(c selection) (uint16, bool) {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return 0, false
	}

	addr, err := h.parseExpr(c.args[0])
	if err != nil {
		h.printf("%v\n", err)
		return 0, false
	}
	return addr, true
}

func (h *Host) disassemble(addr uint16, flags displayFlags) (str string, next uint16) {
	cpu := h.cpu

	var line string
	line, next = disasm.Disassemble(cpu.Mem, addr)

	b := make([]byte, cpu.GetInstruction(addr).Length)
	cpu.Mem.LoadBytes(uint32(addr), b)

	str = fmt.Sprintf("%04X-   %-8s    %-15s", addr, codeString(b), line)

	if (flags & displayRegisters) != 0 {
		if h.settings.CompactMode {
			str += " " + disasm.GetCompactRegisterString(&cpu.Reg)
		} else {
			str += " " + disasm.GetRegisterString(&cpu.Reg)
			str += fmt.Sprintf(" L=%04X", uint16(cpu.LastAddress()))
		}
	}

	if (flags&displaySteps) != 0 && !h.settings.CompactMode {
		str += fmt.Sprintf(" S=%-10d", cpu.Steps)
	}

	if (flags & displayAnnotations) != 0 {
		if anno, ok := h.annotations[addr]; ok {
			str += " ; " + anno
		}
	}

	return str, next
}

func (h *Host) dumpMemory(addr0 uint16, count int) {
	if count <= 0 {
		return
	}

	addr1 := uint32(addr0) + uint32(count) - 1
	if addr1 > 0xffff {
		addr1 = 0xffff
	}

	buf := []byte("    -" + strings.Repeat(" ", 35))

	// Don't align display for short dumps.
	if addr1-uint32(addr0) < 8 {
		addrToBuf(addr0, buf[0:4])
		for a, c1, c2 := uint32(addr0), 6, 32; a <= addr1; a, c1, c2 = a+1, c1+3, c2+1 {
			m := h.mem.LoadByte(a)
			byteToBuf(m, buf[c1:c1+2])
			buf[c2] = toPrintableChar(m)
		}
		h.println(strings.TrimRight(string(buf), " "))
		return
	}

	// Align addr0 and addr1 to 8-byte boundaries.
	start := uint32(addr0) & 0xfff8
	stop := (addr1 + 8) & 0xffff8
	if stop > 0x10000 {
		stop = 0x10000
	}

	a := start
	for r := start; r < stop; r += 8 {
		addrToBuf(uint16(a), buf[0:4])
		for c1, c2 := 6, 32; c1 < 29; c1, c2, a = c1+3, c2+1, a+1 {
			if a >= uint32(addr0) && a <= addr1 {
				m := h.mem.LoadByte(a)
				byteToBuf(m, buf[c1:c1+2])
				buf[c2] = toPrintableChar(m)
			} else {
				buf[c1] = ' '
				buf[c1+1] = ' '
				buf[c2] = ' '
			}
		}
		h.println(strings.TrimRight(string(buf), " "))
	}
}

func (h *Host) displayUsage(c selection) {
	if c.cmd.usage != "" {
		h.printf("Syntax: %s\n", c.cmd.usage)
	} else {
		h.println("<no help text>")
	}
}

func (h *Host) displayCommands(g *commandGroup, groups []*commandGroup) {
	title := "SPC700 commands"
	if g.name != "" {
		title = g.brief
	}
	h.printf("%s:\n", title)
	for _, c := range g.commands {
		name := c.name
		if g.name != "" {
			name = strings.TrimPrefix(name, g.name+" ")
		}
		h.printf("    %-15s  %s\n", name, c.brief)
	}
	for _, sg := range groups {
		h.printf("    %-15s  %s\n", sg.name, sg.brief)
	}
}

// Display the commands of the group whose name starts with 'prefix'.
func (h *Host) displayGroup(prefix string) {
	g, err := groupIndex.FindValue(strings.ToLower(strings.Fields(prefix)[0]))
	if err != nil {
		h.println("Command not found.")
		return
	}
	h.displayCommands(g, nil)
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func (h *Host) resolveIdentifier(s string) (int64, error) {
	s = strings.ToLower(s)

	reg := &h.cpu.Reg
	switch s {
	case "a":
		return int64(reg.A), nil
	case "x":
		return int64(reg.X), nil
	case "y":
		return int64(reg.Y), nil
	case "ya":
		return int64(reg.YA()), nil
	case "sp":
		return int64(reg.SP) | 0x0100, nil
	case "psw":
		return int64(reg.PSW), nil
	case ".", "pc":
		return int64(reg.PC), nil
	case "last":
		return int64(h.cpu.LastAddress() & 0xffff), nil
	}

	return 0, fmt.Errorf("identifier '%s' not found", s)
}

func (h *Host) resolveMemory(addr int64) int64 {
	return int64(h.mem.LoadByte(uint32(addr & 0xffff)))
}

func (h *Host) onBreakpoint(cpu *cpu.CPU, b *cpu.Breakpoint) {
	if b.StepOver {
		h.state = stateStepOverBreakpoint
	} else {
		h.state = stateBreakpoint
		h.printf("Breakpoint hit at $%04X.\n", b.Address)
		h.displayPC()
	}
}

func (h *Host) onTcallBreakpoint(cpu *cpu.CPU, b *cpu.TcallBreakpoint) {
	h.state = stateBreakpoint
	h.printf("TCALL %d breakpoint hit, called $%04X.\n", b.Index, cpu.Reg.PC)
	h.displayPC()
}

func (h *Host) onDataBreakpoint(cpu *cpu.CPU, b *cpu.DataBreakpoint) {
	h.printf("Data breakpoint hit on address $%04X.\n", b.Address)

	h.state = stateBreakpoint

	if cpu.LastPC != cpu.Reg.PC {
		d, _ := h.disassemble(cpu.LastPC, displayAll)
		h.println(d)
	}

	h.displayPC()
}
