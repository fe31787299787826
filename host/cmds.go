// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/prefixtree/v2"
)

// A command describes a host command and holds the host method that
// handles it. It is stored as the data of each command tree entry.
type command struct {
	name        string // full name, including the group name
	brief       string
	description string
	usage       string
	files       bool // reads or writes the host's file system
	fn          func(h *Host, c selection) error
}

// A selection is a command looked up from a command line, together with
// the arguments that followed the command's name.
type selection struct {
	cmd  *command
	args []string
}

// A commandGroup is a named collection of related commands, such as the
// breakpoint commands. The root group has no name.
type commandGroup struct {
	name     string
	brief    string
	commands []*command
	register func(d cmd.CommandDescriptor)
}

func (g *commandGroup) add(c *command) {
	if g.name != "" {
		c.name = g.name + " " + c.name
	}
	g.commands = append(g.commands, c)

	fields := strings.Fields(c.name)
	g.register(cmd.CommandDescriptor{
		Name:        fields[len(fields)-1],
		Brief:       c.brief,
		Description: c.description,
		Usage:       c.usage,
		Data:        c,
	})
}

var (
	cmds       *cmd.Tree
	rootGroup  *commandGroup
	subgroups  []*commandGroup
	groupIndex = prefixtree.New[*commandGroup]()
)

func newSubgroup(root *cmd.Tree, name, brief string) *commandGroup {
	tree := root.AddSubtree(cmd.TreeDescriptor{Name: name, Brief: brief})
	g := &commandGroup{
		name:     name,
		brief:    brief,
		register: func(d cmd.CommandDescriptor) { tree.AddCommand(d) },
	}
	subgroups = append(subgroups, g)
	groupIndex.Add(name, g)
	return g
}

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "spc700"})
	rootGroup = &commandGroup{
		register: func(d cmd.CommandDescriptor) { root.AddCommand(d) },
	}

	rootGroup.add(&command{
		name:        "help",
		brief:       "Display help for a command",
		description: "Display help for a command or a group of commands.",
		usage:       "help [<command>]",
		fn:          (*Host).cmdHelp,
	})
	rootGroup.add(&command{
		name:  "annotate",
		brief: "Annotate an address",
		description: "Provide a code annotation at a memory address." +
			" When disassembling code at this address, the annotation will" +
			" be displayed. Omit the annotation text to remove it.",
		usage: "annotate <address> [<string>]",
		fn:    (*Host).cmdAnnotate,
	})

	// Breakpoint commands
	bp := newSubgroup(root, "breakpoint", "Breakpoint commands")
	bp.add(&command{
		name:        "list",
		brief:       "List breakpoints",
		description: "List all current breakpoints.",
		usage:       "breakpoint list",
		fn:          (*Host).cmdBreakpointList,
	})
	bp.add(&command{
		name:  "add",
		brief: "Add a breakpoint",
		description: "Add a breakpoint at the specified address." +
			" The breakpoint starts enabled.",
		usage: "breakpoint add <address>",
		fn:    (*Host).cmdBreakpointAdd,
	})
	bp.add(&command{
		name:        "remove",
		brief:       "Remove a breakpoint",
		description: "Remove a breakpoint at the specified address.",
		usage:       "breakpoint remove <address>",
		fn:          (*Host).cmdBreakpointRemove,
	})
	bp.add(&command{
		name:        "enable",
		brief:       "Enable a breakpoint",
		description: "Enable a previously added breakpoint.",
		usage:       "breakpoint enable <address>",
		fn:          (*Host).cmdBreakpointEnable,
	})
	bp.add(&command{
		name:  "disable",
		brief: "Disable a breakpoint",
		description: "Disable a previously added breakpoint. This" +
			" prevents the breakpoint from being hit when running the CPU.",
		usage: "breakpoint disable <address>",
		fn:    (*Host).cmdBreakpointDisable,
	})

	bp.add(&command{
		name:  "tcall",
		brief: "Break on a TCALL vector",
		description: "Stop the CPU after it executes TCALL <n>, whatever" +
			" address the vector for <n> holds. Add 'off' to remove the" +
			" breakpoint.",
		usage: "breakpoint tcall <n> [off]",
		fn:    (*Host).cmdBreakpointTcall,
	})

	// Data breakpoint commands
	db := newSubgroup(root, "databreakpoint", "Data breakpoint commands")
	db.add(&command{
		name:        "list",
		brief:       "List data breakpoints",
		description: "List all current data breakpoints.",
		usage:       "databreakpoint list",
		fn:          (*Host).cmdDataBreakpointList,
	})
	db.add(&command{
		name:  "add",
		brief: "Add a data breakpoint",
		description: "Add a new data breakpoint at the specified" +
			" memory address. When the CPU stores data at this address, the" +
			" breakpoint will stop the CPU. Optionally, a byte value may be" +
			" specified, and the CPU will stop only when this value is" +
			" stored. The data breakpoint starts enabled.",
		usage: "databreakpoint add <address> [<value>]",
		fn:    (*Host).cmdDataBreakpointAdd,
	})
	db.add(&command{
		name:  "remove",
		brief: "Remove a data breakpoint",
		description: "Remove a previously added data breakpoint at" +
			" the specified memory address.",
		usage: "databreakpoint remove <address>",
		fn:    (*Host).cmdDataBreakpointRemove,
	})
	db.add(&command{
		name:        "enable",
		brief:       "Enable a data breakpoint",
		description: "Enable a previously added data breakpoint.",
		usage:       "databreakpoint enable <address>",
		fn:          (*Host).cmdDataBreakpointEnable,
	})
	db.add(&command{
		name:        "disable",
		brief:       "Disable a data breakpoint",
		description: "Disable a previously added data breakpoint.",
		usage:       "databreakpoint disable <address>",
		fn:          (*Host).cmdDataBreakpointDisable,
	})

	rootGroup.add(&command{
		name:  "disassemble",
		brief: "Disassemble code",
		description: "Disassemble machine code starting at the requested" +
			" address. The number of instruction lines to disassemble may be" +
			" specified as an option. If no address is specified, the" +
			" disassembly continues from where the last disassembly left off.",
		usage: "disassemble [<address>] [<lines>]",
		fn:    (*Host).cmdDisassemble,
	})
	rootGroup.add(&command{
		name:  "evaluate",
		brief: "Evaluate an expression",
		description: "Evaluate a mathematical expression. Register names" +
			" may be used as identifiers, and [<address>] reads a byte of" +
			" memory. The identifier 'last' holds the address of the CPU's" +
			" most recent data read or write.",
		usage: "evaluate <expression>",
		fn:    (*Host).cmdEvaluate,
	})
	rootGroup.add(&command{
		name:  "execute",
		brief: "Execute a command script file",
		description: "Load a script file from disk and execute the host" +
			" commands it contains.",
		usage: "execute <filename>",
		files: true,
		fn:    (*Host).cmdExecute,
	})
	rootGroup.add(&command{
		name:  "info",
		brief: "Display SPC file information",
		description: "Display the song information stored in the ID666 tag" +
			" of the most recently loaded SPC file.",
		usage: "info",
		fn:    (*Host).cmdInfo,
	})
	rootGroup.add(&command{
		name:  "load",
		brief: "Load an SPC or binary file",
		description: "Load an SPC sound file, replacing the contents of memory" +
			" and the CPU registers with the file's snapshot. Any other file" +
			" is treated as raw binary data, which is stored at the address" +
			" you must specify.",
		usage: "load <filename> [<address>]",
		files: true,
		fn:    (*Host).cmdLoad,
	})
	rootGroup.add(&command{
		name:  "lua",
		brief: "Run a line of Lua",
		description: "Run a Lua statement in the host's scripting" +
			" environment. See the script command for the functions the" +
			" environment provides.",
		usage: "lua <statement>",
		fn:    (*Host).cmdLua,
	})

	// Memory commands
	me := newSubgroup(root, "memory", "Memory commands")
	me.add(&command{
		name:  "dump",
		brief: "Dump memory at address",
		description: "Dump the contents of memory starting from the" +
			" specified address. The number of bytes to dump may be" +
			" specified as an option. If no address is specified, the" +
			" memory dump continues from where the last dump left off.",
		usage: "memory dump [<address>] [<bytes>]",
		fn:    (*Host).cmdMemoryDump,
	})
	me.add(&command{
		name:  "set",
		brief: "Set memory at address",
		description: "Set the contents of memory starting from the specified" +
			" address. The values to assign should be a series of" +
			" space-separated byte values. You may use an expression for each" +
			" byte value.",
		usage: "memory set <address> <byte> [<byte> ...]",
		fn:    (*Host).cmdMemorySet,
	})
	me.add(&command{
		name:  "copy",
		brief: "Copy memory",
		description: "Copy memory from one range of addresses to another. You" +
			" must specify the destination address, the first byte of the source" +
			" address, and the last byte of the source address.",
		usage: "memory copy <dst addr> <src addr begin> <src addr end>",
		fn:    (*Host).cmdMemoryCopy,
	})

	rootGroup.add(&command{
		name:  "memviz",
		brief: "Write a graph of the debugger state",
		description: "Write a Graphviz description of the CPU registers," +
			" breakpoints and annotations to the specified file.",
		usage: "memviz <filename>",
		files: true,
		fn:    (*Host).cmdMemviz,
	})
	rootGroup.add(&command{
		name:        "quit",
		brief:       "Quit the program",
		description: "Quit the program.",
		usage:       "quit",
		fn:          (*Host).cmdQuit,
	})
	rootGroup.add(&command{
		name:  "register",
		brief: "View or change register values",
		description: "When used without arguments, this command displays the current" +
			" contents of the CPU registers. When used with arguments, this" +
			" command changes the value of a register or one of the CPU's status" +
			" flags. Allowed register names include A, X, Y, YA, PC, SP and PSW." +
			" Allowed status flag names include N (Negative), V (Overflow)," +
			" P (DirectPage), B (Break), H (HalfCarry), I (Interrupt), Z (Zero)" +
			" and C (Carry).",
		usage: "register [<name> <value>]",
		fn:    (*Host).cmdRegister,
	})
	rootGroup.add(&command{
		name:  "reset",
		brief: "Reset the CPU",
		description: "Restore the CPU registers and memory from the most" +
			" recently loaded SPC file. Without one, the registers are cleared.",
		usage: "reset",
		fn:    (*Host).cmdReset,
	})
	rootGroup.add(&command{
		name:  "run",
		brief: "Run the CPU",
		description: "Run the CPU until a breakpoint is hit or until the" +
			" user types Ctrl-C. An optional starting address may be given.",
		usage: "run [<address>]",
		fn:    (*Host).cmdRun,
	})
	rootGroup.add(&command{
		name:  "script",
		brief: "Run a Lua script file",
		description: "Run a Lua script. Scripts may call step(n), run(n)," +
			" reg(name), setreg(name, value), peek(addr), peekw(addr)," +
			" poke(addr, value) and cmd(line) to drive the emulator.",
		usage: "script <filename>",
		files: true,
		fn:    (*Host).cmdScript,
	})
	rootGroup.add(&command{
		name:  "set",
		brief: "Set a configuration variable",
		description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		usage: "set [<var> <value>]",
		fn:    (*Host).cmdSet,
	})

	// Step commands
	st := newSubgroup(root, "step", "Step the debugger")
	st.add(&command{
		name:  "in",
		brief: "Step into next instruction",
		description: "Step the CPU by a single instruction. If the" +
			" instruction is a subroutine call, step into the subroutine." +
			" The number of steps may be specified as an option.",
		usage: "step in [<count>]",
		fn:    (*Host).cmdStepIn,
	})
	st.add(&command{
		name:  "over",
		brief: "Step over next instruction",
		description: "Step the CPU by a single instruction. If the" +
			" instruction is a CALL, PCALL, TCALL or BRK, step over the" +
			" subroutine. The number of steps may be specified as an option.",
		usage: "step over [<count>]",
		fn:    (*Host).cmdStepOver,
	})
	st.add(&command{
		name:  "out",
		brief: "Step out of the current subroutine",
		description: "Step the CPU until it executes a RET or RETI" +
			" instruction belonging to the current subroutine.",
		usage: "step out",
		fn:    (*Host).cmdStepOut,
	})

	// Add command shortcuts.
	root.AddShortcut("ba", "breakpoint add")
	root.AddShortcut("br", "breakpoint remove")
	root.AddShortcut("bl", "breakpoint list")
	root.AddShortcut("be", "breakpoint enable")
	root.AddShortcut("bd", "breakpoint disable")
	root.AddShortcut("bt", "breakpoint tcall")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("dbl", "databreakpoint list")
	root.AddShortcut("dba", "databreakpoint add")
	root.AddShortcut("dbr", "databreakpoint remove")
	root.AddShortcut("dbe", "databreakpoint enable")
	root.AddShortcut("dbd", "databreakpoint disable")
	root.AddShortcut("e", "evaluate")
	root.AddShortcut("m", "memory dump")
	root.AddShortcut("mc", "memory copy")
	root.AddShortcut("ms", "memory set")
	root.AddShortcut("r", "register")
	root.AddShortcut("s", "step over")
	root.AddShortcut("si", "step in")
	root.AddShortcut("so", "step out")
	root.AddShortcut("?", "help")
	root.AddShortcut(".", "register")

	cmds = root
}
