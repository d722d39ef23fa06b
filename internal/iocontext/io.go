// Package iocontext carries stdin, stdout and stderr through a context so
// commands can be driven from tests without touching the process streams.
package iocontext

import (
	"context"
	"io"
)

type ctxKey int

const (
	stdinKey ctxKey = iota
	stdoutKey
	stderrKey
)

// WithIO injects stdout and stderr writers into context.
func WithIO(ctx context.Context, stdout, stderr io.Writer) context.Context {
	ctx = context.WithValue(ctx, stdoutKey, stdout)
	return context.WithValue(ctx, stderrKey, stderr)
}

// WithStdin injects the reader used for "-" inputs.
func WithStdin(ctx context.Context, stdin io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey, stdin)
}

// Stdin returns the injected reader, or nil.
func Stdin(ctx context.Context) io.Reader {
	r, _ := ctx.Value(stdinKey).(io.Reader)
	return r
}

// Stdout returns the injected stdout writer, or nil.
func Stdout(ctx context.Context) io.Writer {
	return writer(ctx, stdoutKey)
}

// Stderr returns the injected stderr writer, or nil.
func Stderr(ctx context.Context) io.Writer {
	return writer(ctx, stderrKey)
}

// StdinOrDefault returns stdin from context or def.
func StdinOrDefault(ctx context.Context, def io.Reader) io.Reader {
	if r := Stdin(ctx); r != nil {
		return r
	}
	return def
}

// StdoutOrDefault returns stdout from context or def.
func StdoutOrDefault(ctx context.Context, def io.Writer) io.Writer {
	if w := Stdout(ctx); w != nil {
		return w
	}
	return def
}

// StderrOrDefault returns stderr from context or def.
func StderrOrDefault(ctx context.Context, def io.Writer) io.Writer {
	if w := Stderr(ctx); w != nil {
		return w
	}
	return def
}

func writer(ctx context.Context, key ctxKey) io.Writer {
	w, _ := ctx.Value(key).(io.Writer)
	return w
}
