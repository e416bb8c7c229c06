package shell

import (
	"os"
	"testing"

	"mshell/internal/syntax"
)

func TestOpenRedirectionsLastWins(t *testing.T) {
	ts := newTestShell(t, "")
	if err := os.WriteFile("in1", []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("in2", []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := &syntax.Command{
		Args: []string{"cat"},
		Redirs: []syntax.Redirection{
			{Filename: "in1", Mode: syntax.RedirIn},
			{Filename: "out1", Mode: syntax.RedirOut},
			{Filename: "in2", Mode: syntax.RedirIn},
			{Filename: "out2", Mode: syntax.RedirAppend},
		},
	}
	in, out, closeAll, err := ts.openRedirections(cmd, ts.stdin, ts.stdout)
	if err != nil {
		t.Fatal(err)
	}
	defer closeAll()

	if in.Name() != "in2" || out.Name() != "out2" {
		t.Errorf("streams = %q, %q", in.Name(), out.Name())
	}
	// Earlier targets are still created.
	if _, err := os.Stat("out1"); err != nil {
		t.Errorf("out1 not created: %v", err)
	}
}

func TestOpenRedirectionsStopsAtFirstFailure(t *testing.T) {
	ts := newTestShell(t, "")
	cmd := &syntax.Command{
		Args: []string{"cat"},
		Redirs: []syntax.Redirection{
			{Filename: "x", Mode: syntax.RedirOut},
			{Filename: "missing", Mode: syntax.RedirIn},
			{Filename: "y", Mode: syntax.RedirOut},
		},
	}
	if _, _, _, err := ts.openRedirections(cmd, ts.stdin, ts.stdout); err == nil {
		t.Fatal("expected error")
	}
	if got := ts.errBuf.String(); got != "missing: no such file or directory\n" {
		t.Errorf("stderr = %q", got)
	}
	if _, err := os.Stat("x"); err != nil {
		t.Errorf("x should exist: %v", err)
	}
	if _, err := os.Stat("y"); !os.IsNotExist(err) {
		t.Errorf("y should not be created, stat err = %v", err)
	}
}

func TestOpenRedirectionsNone(t *testing.T) {
	ts := newTestShell(t, "")
	in, out, closeAll, err := ts.openRedirections(&syntax.Command{Args: []string{"ls"}}, ts.stdin, ts.stdout)
	if err != nil {
		t.Fatal(err)
	}
	closeAll()
	if in != ts.stdin || out != ts.stdout {
		t.Error("streams replaced without redirections")
	}
}

func TestReportFile(t *testing.T) {
	tests := []struct {
		err  error
		exec bool
		want string
	}{
		{ErrNotFound, false, "f: no such file or directory\n"},
		{os.ErrPermission, true, "f: permission denied\n"},
		{os.ErrInvalid, true, "f: exec error\n"},
		{os.ErrInvalid, false, "unknown redir on file f\n"},
	}
	for _, tt := range tests {
		ts := newTestShell(t, "")
		ts.reportFile("f", tt.err, tt.exec)
		if got := ts.errBuf.String(); got != tt.want {
			t.Errorf("reportFile(%v, %v) = %q, want %q", tt.err, tt.exec, got, tt.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(exitStatus(ExitFailure)); got != ExitFailure {
		t.Errorf("exitCode = %d", got)
	}
	// Signal 9 in the low bits.
	if got := exitCode(9); got != 137 {
		t.Errorf("exitCode(killed) = %d", got)
	}
}
