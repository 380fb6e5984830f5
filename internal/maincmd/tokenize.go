package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/nickolasddiaz/16bitcomputer/lang/scanner"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, args...)
}

// TokenizeFiles runs the scanner over each file and writes one
// "line:col: token [literal]" line per token to stdio.Stdout.
func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return printError(stdio, err)
		}
		toks, err := scanner.Scan(src)
		for _, t := range toks {
			fmt.Fprintf(stdio.Stdout, "%s: %s", t.Pos, t.Token)
			if t.Lit != "" {
				fmt.Fprintf(stdio.Stdout, " %s", t.Lit)
			}
			fmt.Fprintln(stdio.Stdout)
		}
		if err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}
