package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/wisplang/wisp/pkg/driver"
)

// Repl reads one line at a time from stdio.Stdin, runs it, and prints any
// error without ending the session: a bad line never kills the prompt, and
// globals survive from one line to the next (the distilled spec's REPL
// convenience). The session ends on EOF or a line that is exactly "exit".
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, _ []string) error {
	d := driver.New(c.Limits, stdio.Stdout)
	scan := bufio.NewScanner(stdio.Stdin)

	fmt.Fprint(stdio.Stdout, "> ")
	for scan.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scan.Text()
		if line == "exit" {
			return nil
		}

		_, err := d.Interpret(line)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
		}
		fmt.Fprint(stdio.Stdout, "> ")
	}
	return scan.Err()
}
