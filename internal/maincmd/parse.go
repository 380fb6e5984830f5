package maincmd

import (
	"context"
	"os"

	"github.com/mna/mainer"
	"github.com/nickolasddiaz/16bitcomputer/lang/ast"
	"github.com/nickolasddiaz/16bitcomputer/lang/parser"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, args...)
}

// ParseFiles runs the parser over each file and prints the resulting
// parse tree to stdio.Stdout.
func ParseFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return printError(stdio, err)
		}
		prog, err := parser.Parse(src)
		if err != nil {
			return printError(stdio, err)
		}
		p := ast.Printer{Output: stdio.Stdout}
		if err := p.Print(prog); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}
