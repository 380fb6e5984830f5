package maincmd

import (
	"context"
	"os"

	"github.com/mna/mainer"
	"github.com/nickolasddiaz/16bitcomputer/lang/compiler"
)

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return CompileFiles(ctx, stdio, args...)
}

func (c *Cmd) Hex(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return HexFiles(ctx, stdio, args...)
}

// CompileFiles runs the full pipeline over each file and writes the
// resulting assembly listing to stdio.Stdout.
func CompileFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return printError(stdio, err)
		}
		res, err := compiler.Compile(src)
		if err != nil {
			return printError(stdio, err)
		}
		asm, err := res.Driver.EmitAssembly()
		if err != nil {
			return printError(stdio, err)
		}
		if _, err := stdio.Stdout.Write([]byte(asm)); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}

// HexFiles runs the full pipeline over each file and writes the
// resulting machine code, as 4-digit hex words, to stdio.Stdout.
func HexFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return printError(stdio, err)
		}
		res, err := compiler.Compile(src)
		if err != nil {
			return printError(stdio, err)
		}
		hex, err := res.Driver.EmitHex()
		if err != nil {
			return printError(stdio, err)
		}
		if _, err := stdio.Stdout.Write([]byte(hex)); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}
