package shell

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestEchoBuiltin(t *testing.T) {
	ts := newTestShell(t, "")
	var out bytes.Buffer
	if status := ts.echo([]string{"lecho", "a", "b  c"}, &out); status != 0 {
		t.Fatalf("status = %d", status)
	}
	if got := out.String(); got != "a b  c\n" {
		t.Errorf("output = %q", got)
	}

	out.Reset()
	ts.echo([]string{"lecho"}, &out)
	if got := out.String(); got != "\n" {
		t.Errorf("bare lecho = %q", got)
	}
}

func TestChangeDirectory(t *testing.T) {
	ts := newTestShell(t, "")
	sub := filepath.Join(ts.dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	if status := ts.changeDirectory([]string{"lcd", "sub"}, io.Discard); status != 0 {
		t.Fatalf("lcd sub = %d", status)
	}
	if wd, _ := os.Getwd(); filepath.Base(wd) != "sub" {
		t.Errorf("cwd = %q", wd)
	}

	ts.config.HomeDir = sub
	if err := os.Chdir(ts.dir); err != nil {
		t.Fatal(err)
	}
	if status := ts.changeDirectory([]string{"cd"}, io.Discard); status != 0 {
		t.Fatalf("cd = %d", status)
	}
	if wd, _ := os.Getwd(); filepath.Base(wd) != "sub" {
		t.Errorf("cd without argument left cwd at %q", wd)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"lcd", "missing-dir"}, "Builtin lcd error.\n"},
		{[]string{"lcd", "a", "b"}, "Builtin lcd error.\n"},
		{[]string{"lkill"}, "Builtin lkill error.\n"},
		{[]string{"lkill", "abc"}, "Builtin lkill error.\n"},
		{[]string{"lkill", "-9"}, "Builtin lkill error.\n"},
		{[]string{"lkill", "-x", "1"}, "Builtin lkill error.\n"},
		{[]string{"lkill", "1", "2"}, "Builtin lkill error.\n"},
		{[]string{"lkill", "99999999999"}, "Builtin lkill error.\n"},
		{[]string{"lls", "dir"}, "Builtin lls error.\n"},
		{[]string{"exit", "1", "2"}, "Builtin exit error.\n"},
		{[]string{"exit", "nope"}, "Builtin exit error.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			ts := newTestShell(t, "")
			b, ok := ts.lookupBuiltin(tt.args[0])
			if !ok {
				t.Fatalf("%s is not a builtin", tt.args[0])
			}
			if status := b.run(ts.Shell, tt.args, io.Discard); status != builtinError {
				t.Errorf("%v: status = %d", tt.args, status)
			}
			if got := ts.errBuf.String(); got != tt.want {
				t.Errorf("%v: stderr = %q, want %q", tt.args, got, tt.want)
			}
			if ts.exiting {
				t.Errorf("%v: shell marked as exiting", tt.args)
			}
		})
	}
}

func TestKillBuiltinSignalsProcess(t *testing.T) {
	ts := newTestShell(t, "")
	ts.jobs.Start()
	defer ts.jobs.Stop()

	runLine(t, ts.Shell, "sleep 30 &")
	ts.jobs.Block()
	running := ts.jobs.Jobs()
	ts.jobs.Unblock()
	if len(running) != 1 {
		t.Fatalf("got %d jobs", len(running))
	}
	pid := running[0].Pid

	if status := ts.kill([]string{"lkill", "-9", strconv.Itoa(pid)}, io.Discard); status != 0 {
		t.Fatalf("lkill = %d, stderr %q", status, ts.errBuf)
	}

	waitForReport(t, ts)
}

func waitForReport(t *testing.T, ts *testShell) {
	t.Helper()
	ts.interactive = true
	for i := 0; i < 1000; i++ {
		ts.jobs.Block()
		ts.reapJobs()
		left := len(ts.jobs.Jobs())
		ts.jobs.Unblock()
		if left == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never reaped")
}

func TestListDirectory(t *testing.T) {
	ts := newTestShell(t, "")
	for _, name := range []string{"b", "a", ".hidden"} {
		if err := os.WriteFile(name, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	var out bytes.Buffer
	if status := ts.listDirectory([]string{"lls"}, &out); status != 0 {
		t.Fatalf("status = %d", status)
	}
	if got := out.String(); got != "a\nb\n" {
		t.Errorf("lls = %q", got)
	}
}

func TestShowHistory(t *testing.T) {
	ts := newTestShell(t, "")
	ts.history.Add("ls")
	ts.history.Add("lecho hi")
	var out bytes.Buffer
	ts.showHistory([]string{"history"}, &out)
	if got := out.String(); got != "1: ls\n2: lecho hi\n" {
		t.Errorf("history = %q", got)
	}
}

func TestListJobs(t *testing.T) {
	ts := newTestShell(t, "")
	ts.jobs.AddBackground(4242, "sleep 5")
	var out bytes.Buffer
	ts.listJobs([]string{"jobs"}, &out)
	if got := out.String(); got != "[4242] Running\tsleep 5\n" {
		t.Errorf("jobs = %q", got)
	}
}

func TestExitBuiltin(t *testing.T) {
	ts := newTestShell(t, "")
	if status := ts.exit([]string{"exit", "42"}, io.Discard); status != 0 {
		t.Fatalf("status = %d", status)
	}
	if !ts.exiting || ts.exitCode != 42 {
		t.Errorf("exiting = %v, code = %d", ts.exiting, ts.exitCode)
	}

	ts = newTestShell(t, "")
	ts.jobs.SetLastStatus(exitStatus(3))
	ts.exit([]string{"exit"}, io.Discard)
	if ts.exitCode != 3 {
		t.Errorf("exit without argument = %d, want 3", ts.exitCode)
	}
}

type fakePlugin struct {
	fail bool
}

func (*fakePlugin) Name() string { return "greet" }

func (p *fakePlugin) Execute(args []string, out io.Writer) error {
	if p.fail {
		return errors.New("boom")
	}
	_, err := io.WriteString(out, "hello "+args[0]+"\n")
	return err
}

func TestPluginBuiltin(t *testing.T) {
	ts := newTestShell(t, "greet world\n")
	ts.registerPlugin(&fakePlugin{})
	if code := ts.Run(); code != 0 {
		t.Fatalf("Run() = %d", code)
	}
	if got := ts.output(t); got != "hello world\n" {
		t.Errorf("output = %q", got)
	}

	ts = newTestShell(t, "")
	ts.registerPlugin(&fakePlugin{fail: true})
	b, _ := ts.lookupBuiltin("greet")
	if status := b.run(ts.Shell, []string{"greet", "x"}, io.Discard); status != builtinError {
		t.Errorf("status = %d", status)
	}
	if got := ts.errBuf.String(); got != "Builtin greet error.\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestBuiltinsShadowPlugins(t *testing.T) {
	ts := newTestShell(t, "")
	ts.registerPlugin(namedPlugin("lecho"))
	var out bytes.Buffer
	b, _ := ts.lookupBuiltin("lecho")
	b.run(ts.Shell, []string{"lecho", "x"}, &out)
	if got := out.String(); got != "x\n" {
		t.Errorf("lecho = %q, want the builtin", got)
	}
}

type namedPlugin string

func (p namedPlugin) Name() string { return string(p) }

func (namedPlugin) Execute([]string, io.Writer) error { return nil }
