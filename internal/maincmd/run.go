package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/wisplang/wisp/pkg/driver"
)

// Run compiles and executes the single script named in args, per the
// distilled spec's "one argument (path)" invocation mode.
func (c *Cmd) Run(_ context.Context, stdio mainer.Stdio, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	d := driver.New(c.Limits, stdio.Stdout)
	status, err := d.Interpret(string(src))
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return wrapStatus(status, err)
}

// wrapStatus attaches the sentinel errCompile/errRuntime to err so Main can
// recover the exit code with errors.Is, without err itself losing its
// message (it still prints exactly as returned by pkg/driver).
func wrapStatus(status driver.Status, err error) error {
	switch status {
	case driver.StatusCompileError:
		return fmt.Errorf("%w: %v", errCompile, err)
	case driver.StatusRuntimeError:
		return fmt.Errorf("%w: %v", errRuntime, err)
	default:
		return err
	}
}
