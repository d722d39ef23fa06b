package cmd

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/salmonumbrella/notion-normalize/internal/iocontext"
	"github.com/salmonumbrella/notion-normalize/internal/output"
)

func stdinFromContext(ctx context.Context) io.Reader {
	return iocontext.StdinOrDefault(ctx, os.Stdin)
}

func stdoutFromContext(ctx context.Context) io.Writer {
	return iocontext.StdoutOrDefault(ctx, os.Stdout)
}

func stderrFromContext(ctx context.Context) io.Writer {
	return iocontext.StderrOrDefault(ctx, os.Stderr)
}

func printerForContext(ctx context.Context) *output.Printer {
	return output.NewPrinter(stdoutFromContext(ctx), output.FormatFromContext(ctx))
}

// isTerminal reports whether v is an *os.File attached to a terminal.
// Buffers and pipes are not.
func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
