package input

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/chzyer/readline"

	"mshell/internal/history"
)

func newTestReadline(t *testing.T, keys string, lines ...string) (*Readline, *history.History) {
	t.Helper()
	hist, err := history.New("")
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range lines {
		hist.Add(l)
	}
	rl, err := newReadline(hist, &readline.Config{
		Stdin:          io.NopCloser(strings.NewReader(keys)),
		Stdout:         &bytes.Buffer{},
		Stderr:         &bytes.Buffer{},
		FuncIsTerminal: func() bool { return false },
		FuncMakeRaw:    func() error { return nil },
		FuncExitRaw:    func() error { return nil },
	})
	if err != nil {
		t.Fatalf("newReadline: %v", err)
	}
	t.Cleanup(func() { rl.Close() })
	return rl, hist
}

func TestReadlineLinesFeedHistory(t *testing.T) {
	rl, hist := newTestReadline(t, "echo one\n\necho two\n", "old")

	for _, want := range []string{"echo one", "", "echo two"} {
		got, err := rl.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if got != want {
			t.Errorf("ReadLine() = %q, want %q", got, want)
		}
	}

	want := []string{"old", "echo one", "echo two"}
	got := hist.GetAll()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("history = %q, want %q", got, want)
	}
}

func TestReadlineInterruptAndEOF(t *testing.T) {
	rl, hist := newTestReadline(t, "abc\x03\x04")

	line, err := rl.ReadLine()
	if err != nil || line != "" {
		t.Fatalf("interrupt: ReadLine() = %q, %v; want empty line", line, err)
	}
	if _, err := rl.ReadLine(); err != io.EOF {
		t.Errorf("ctrl-d: err = %v, want io.EOF", err)
	}
	if hist.Len() != 0 {
		t.Errorf("history has %d entries, want none", hist.Len())
	}
}
