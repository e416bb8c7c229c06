package shell

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"mshell/internal/plugin"
)

const builtinError = 1

type builtinFunc func(s *Shell, args []string, out io.Writer) int

type builtin struct {
	name string
	run  builtinFunc
}

func defaultBuiltins() []builtin {
	return []builtin{
		{"exit", (*Shell).exit},
		{"lecho", (*Shell).echo},
		{"lcd", (*Shell).changeDirectory},
		{"cd", (*Shell).changeDirectory},
		{"lkill", (*Shell).kill},
		{"lls", (*Shell).listDirectory},
		{"history", (*Shell).showHistory},
		{"jobs", (*Shell).listJobs},
	}
}

// lookupBuiltin finds name by exact match. Earlier entries win.
func (s *Shell) lookupBuiltin(name string) (builtin, bool) {
	for _, b := range s.builtins {
		if b.name == name {
			return b, true
		}
	}
	return builtin{}, false
}

func (s *Shell) registerPlugin(p plugin.Plugin) {
	s.builtins = append(s.builtins, builtin{
		name: p.Name(),
		run: func(s *Shell, args []string, out io.Writer) int {
			if err := p.Execute(args[1:], out); err != nil {
				return s.die(p.Name())
			}
			return 0
		},
	})
}

func (s *Shell) die(name string) int {
	fmt.Fprintf(s.errOut, msgBuiltin+"\n", name)
	return builtinError
}

func parseInt(str string) (int, bool) {
	v, err := strconv.ParseInt(str, 10, 64)
	if err != nil || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

// exit asks the main loop to stop. Without an argument the shell exits
// with the status of the last foreground pipeline.
func (s *Shell) exit(args []string, _ io.Writer) int {
	if len(args) > 2 {
		return s.die("exit")
	}

	code := 0
	if len(args) == 2 {
		n, ok := parseInt(args[1])
		if !ok {
			return s.die("exit")
		}
		code = n
	} else if status, ok := s.jobs.LastStatus(); ok {
		code = exitCode(status)
	}

	s.exiting = true
	s.exitCode = code
	return 0
}

func (s *Shell) echo(args []string, out io.Writer) int {
	fmt.Fprintln(out, strings.Join(args[1:], " "))
	return 0
}

func (s *Shell) changeDirectory(args []string, _ io.Writer) int {
	if len(args) > 2 {
		return s.die("lcd")
	}

	dir := s.config.HomeDir
	if len(args) == 2 {
		dir = args[1]
	}
	if err := os.Chdir(dir); err != nil {
		return s.die("lcd")
	}
	if s.prompt != nil {
		s.prompt.Invalidate()
	}
	return 0
}

// kill accepts "pid" (SIGTERM) or "-sig pid".
func (s *Shell) kill(args []string, _ io.Writer) int {
	if len(args) < 2 || len(args) > 3 {
		return s.die("lkill")
	}

	sig, target := int(unix.SIGTERM), args[1]
	if strings.HasPrefix(args[1], "-") {
		if len(args) != 3 {
			return s.die("lkill")
		}
		n, ok := parseInt(args[1][1:])
		if !ok {
			return s.die("lkill")
		}
		sig, target = n, args[2]
	} else if len(args) != 2 {
		return s.die("lkill")
	}

	pid, ok := parseInt(target)
	if !ok {
		return s.die("lkill")
	}
	if err := unix.Kill(pid, unix.Signal(sig)); err != nil {
		return s.die("lkill")
	}
	return 0
}

func (s *Shell) listDirectory(args []string, out io.Writer) int {
	if len(args) > 1 {
		return s.die("lls")
	}

	entries, err := os.ReadDir(".")
	if err != nil {
		return s.die("lls")
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			fmt.Fprintln(out, e.Name())
		}
	}
	return 0
}

func (s *Shell) showHistory(_ []string, out io.Writer) int {
	for i, cmd := range s.history.GetAll() {
		fmt.Fprintf(out, "%d: %s\n", i+1, cmd)
	}
	return 0
}

func (s *Shell) listJobs(_ []string, out io.Writer) int {
	for _, job := range s.jobs.Jobs() {
		state := "Running"
		if _, done := job.Status(); done {
			state = "Done"
		}
		fmt.Fprintf(out, "[%d] %s\t%s\n", job.Pid, state, job.Command)
	}
	return 0
}
