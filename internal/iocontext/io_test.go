package iocontext

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDefaultIO(t *testing.T) {
	io := DefaultIO()
	if io.Out == nil || io.ErrOut == nil || io.In == nil {
		t.Error("DefaultIO should return non-nil streams")
	}
}

func TestWithIO(t *testing.T) {
	out := &bytes.Buffer{}
	ctx := WithIO(context.Background(), &IO{Out: out, ErrOut: &bytes.Buffer{}})

	if got := GetIO(ctx); got.Out != out {
		t.Error("GetIO should return the IO set with WithIO")
	}
	if GetIO(context.Background()) == nil {
		t.Error("GetIO should return default IO when not set")
	}
}

func TestIsTerminal_Buffers(t *testing.T) {
	s := &IO{In: strings.NewReader(""), Out: &bytes.Buffer{}}
	if s.InIsTerminal() || s.OutIsTerminal() {
		t.Error("buffers are never terminals")
	}
}

func TestReadSecret_Pipe(t *testing.T) {
	s := &IO{In: strings.NewReader("dnsimple_a_token\r\nignored\n")}
	got, err := s.ReadSecret()
	if err != nil {
		t.Fatalf("ReadSecret() error = %v", err)
	}
	if got != "dnsimple_a_token" {
		t.Errorf("ReadSecret() = %q", got)
	}
}

func TestReadSecret_NoNewline(t *testing.T) {
	got, err := (&IO{In: strings.NewReader("abc")}).ReadSecret()
	if err != nil || got != "abc" {
		t.Errorf("ReadSecret() = %q, %v", got, err)
	}

	_, err = (&IO{In: strings.NewReader("")}).ReadSecret()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("empty input error = %v, want ErrUnexpectedEOF", err)
	}
}
