// Package maincmd implements the wisp command-line tool: argument parsing,
// command dispatch, and exit-code mapping around pkg/driver.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"

	"github.com/wisplang/wisp/internal/config"
)

const binName = "wisp"

// exitCompileError and exitRuntimeError are local mainer.ExitCode values:
// mainer only predefines Success/Failure/InvalidArgs, but ExitCode is just
// a thin int wrapper, so the language family's conventional 65/70 codes
// are ordinary values of that same type.
const (
	exitCompileError mainer.ExitCode = 65
	exitRuntimeError mainer.ExitCode = 70
)

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<command>] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] run <path>
       %[1]s [<option>...] tokenize <path>
       %[1]s [<option>...] disasm <path>
       %[1]s [<option>...]
       %[1]s -h|--help
       %[1]s -v|--version

With no command, wisp reads lines from standard input and runs each one
as it is entered (an interactive prompt), retaining global variables
between lines until EOF or a line consisting of "exit".

The <command> can be one of:
       run <path>                Compile and run the script at <path>.
       tokenize <path>           Print the token stream for <path>.
       disasm <path>             Compile <path> and print its bytecode
                                 disassembly without running it.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
`, binName)
)

// Cmd is the command-line entry point, parsed by mainer.Parser into its
// flag fields before Validate and Main run.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Limits config.VMLimits

	args    []string
	cmdFn   func(context.Context, mainer.Stdio, []string) error
	cmdArgs []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

// Validate resolves which command this invocation runs: a known
// subcommand name in args[0], or the REPL when args is empty. Anything
// else is an error, surfaced by mainer as InvalidArgs.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		c.cmdFn = c.Repl
		c.cmdArgs = nil
		return nil
	}

	commands := buildCmds(c)
	cmdName := c.args[0]
	fn, ok := commands[cmdName]
	if !ok {
		return fmt.Errorf("unknown command: %s", cmdName)
	}
	rest := c.args[1:]
	if len(rest) != 1 {
		return fmt.Errorf("%s: expected exactly one file path", cmdName)
	}
	c.cmdFn = fn
	c.cmdArgs = rest
	return nil
}

// Main is the process entry point: parse flags, validate, dispatch, map
// the outcome to an exit code.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	lim, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid configuration: %s\n", err)
		return mainer.InvalidArgs
	}
	c.Limits = lim

	p := mainer.Parser{EnvVars: true, EnvPrefix: "WISP_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	err = c.cmdFn(ctx, stdio, c.cmdArgs)
	switch {
	case err == nil:
		return mainer.Success
	case errors.Is(err, errCompile):
		return exitCompileError
	case errors.Is(err, errRuntime):
		return exitRuntimeError
	default:
		return mainer.Failure
	}
}

// valid commands are methods on *Cmd shaped like buildCmds expects:
// func(context.Context, mainer.Stdio, []string) error.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
