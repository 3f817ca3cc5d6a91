package prompt

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestTerminal_NonInteractiveDeclines(t *testing.T) {
	var out bytes.Buffer
	p := &Terminal{
		out:         &out,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		interactive: func() bool { return false },
	}

	if p.Confirm("Move all windows?", "Confirm") {
		t.Fatalf("expected non-interactive confirm to decline")
	}
	p.Notify("All windows have been centered", "Completed")
	if out.Len() != 0 {
		t.Fatalf("expected no terminal output, got %q", out.String())
	}
}

func TestTerminal_NotifyRendersBox(t *testing.T) {
	var out bytes.Buffer
	p := &Terminal{
		out:         &out,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		interactive: func() bool { return true },
	}

	p.Notify("nothing to do", "Send Windows Home")
	got := out.String()
	if !strings.Contains(got, "Send Windows Home") || !strings.Contains(got, "nothing to do") {
		t.Fatalf("expected title and message in output, got %q", got)
	}
}

func TestAuto(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if !(Auto{Answer: true, Logger: logger}).Confirm("m", "t") {
		t.Fatalf("expected Auto{Answer: true} to confirm")
	}
	if (Auto{Logger: logger}).Confirm("m", "t") {
		t.Fatalf("expected zero Auto to decline")
	}
}
