package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/wisplang/wisp/pkg/scanner"
	"github.com/wisplang/wisp/pkg/token"
)

// Tokenize prints the token stream of the single file named in args, one
// token per line: "line N: <kind> <lexeme>".
func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	s := scanner.New(string(src))
	for {
		tok := s.Scan()
		fmt.Fprintf(stdio.Stdout, "line %d: %s", tok.Line, tok.Kind)
		if tok.Lexeme != "" {
			fmt.Fprintf(stdio.Stdout, " %q", tok.Lexeme)
		}
		fmt.Fprintln(stdio.Stdout)
		if tok.Kind == token.EOF {
			return nil
		}
	}
}
