package iocontext

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()
	if Stdin(ctx) != nil {
		t.Error("expected nil stdin for empty context")
	}
	if Stdout(ctx) != nil {
		t.Error("expected nil stdout for empty context")
	}
	if Stderr(ctx) != nil {
		t.Error("expected nil stderr for empty context")
	}
}

func TestWithIO_InjectsWriters(t *testing.T) {
	var stdout, stderr bytes.Buffer
	ctx := WithIO(context.Background(), &stdout, &stderr)

	if Stdout(ctx) != &stdout {
		t.Error("expected injected stdout")
	}
	if Stderr(ctx) != &stderr {
		t.Error("expected injected stderr")
	}
}

func TestWithIO_NilWriters(t *testing.T) {
	ctx := WithIO(context.Background(), nil, nil)
	if Stdout(ctx) != nil || Stderr(ctx) != nil {
		t.Error("expected nil writers when nil injected")
	}
}

func TestWithStdin(t *testing.T) {
	in := strings.NewReader(`{"results": []}`)
	ctx := WithStdin(context.Background(), in)

	r := Stdin(ctx)
	if r != io.Reader(in) {
		t.Fatal("expected injected stdin")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"results": []}` {
		t.Errorf("unexpected stdin content %q", data)
	}
}

func TestOrDefault(t *testing.T) {
	var ctxOut, ctxErr, defOut, defErr bytes.Buffer
	ctxIn := strings.NewReader("a")
	defIn := strings.NewReader("b")

	empty := context.Background()
	if StdinOrDefault(empty, defIn) != io.Reader(defIn) {
		t.Error("expected default stdin")
	}
	if StdoutOrDefault(empty, &defOut) != &defOut {
		t.Error("expected default stdout")
	}
	if StderrOrDefault(empty, &defErr) != &defErr {
		t.Error("expected default stderr")
	}

	ctx := WithStdin(WithIO(empty, &ctxOut, &ctxErr), ctxIn)
	if StdinOrDefault(ctx, defIn) != io.Reader(ctxIn) {
		t.Error("expected context stdin")
	}
	if StdoutOrDefault(ctx, &defOut) != &ctxOut {
		t.Error("expected context stdout")
	}
	if StderrOrDefault(ctx, &defErr) != &ctxErr {
		t.Error("expected context stderr")
	}
}
