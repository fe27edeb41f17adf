package maincmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"

	"github.com/wisplang/wisp/pkg/bytecode"
	"github.com/wisplang/wisp/pkg/compiler"
	"github.com/wisplang/wisp/pkg/value"
)

// Disasm compiles the single file named in args and prints its bytecode
// disassembly (and that of every nested function, depth first) without
// running it.
func (c *Cmd) Disasm(_ context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	fn, err := compiler.Compile(string(src), value.NewInterner(), c.Limits)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return fmt.Errorf("%w: %v", errCompile, err)
	}

	printDisassembly(stdio.Stdout, fn)
	return nil
}

func printDisassembly(w io.Writer, fn *bytecode.ObjFunction) {
	name := fn.Name
	if name == "" {
		name = "<script>"
	}
	fmt.Fprint(w, bytecode.Disassemble(&fn.Chunk, name))
	for _, c := range fn.Chunk.Constants {
		if !c.IsObj() {
			continue
		}
		if nested, ok := c.AsObj().(*bytecode.ObjFunction); ok {
			printDisassembly(w, nested)
		}
	}
}
