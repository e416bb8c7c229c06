package shell

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"mshell/internal/syntax"
)

// runSequence validates seq and then runs its pipelines one after another.
// Only fatal errors are returned.
func (s *Shell) runSequence(seq *syntax.Sequence) error {
	switch s.validate(seq) {
	case malformed:
		fmt.Fprintln(s.errOut, msgSyntax)
		return nil
	case rejected:
		return nil
	}

	for _, p := range seq.Pipelines {
		if err := s.runPipeline(p); err != nil {
			return err
		}
		if s.exiting {
			return nil
		}
	}
	return nil
}

// runPipeline starts one process per command, each reading the previous
// one's pipe, and waits for them unless the pipeline is in the background.
// Must be called with child handling blocked.
func (s *Shell) runPipeline(p *syntax.Pipeline) error {
	if len(p.Commands) == 1 {
		cmd := p.Commands[0]
		if cmd.Empty() {
			s.touchRedirections(cmd, p.Background)
			return nil
		}
		if b, ok := s.lookupBuiltin(cmd.Name()); ok && !p.Background {
			s.runBuiltin(b, cmd)
			return nil
		}
	}

	if !p.Background {
		s.jobs.BeginPipeline()
	}

	in := s.stdin
	for i, cmd := range p.Commands {
		last := i == len(p.Commands)-1

		out, next := s.stdout, (*os.File)(nil)
		if !last {
			r, w, err := os.Pipe()
			if err != nil {
				return fatal(msgPipe, err)
			}
			out, next = w, r
		}

		err := s.spawn(cmd, in, out, p.Background, last)

		// The child holds its own copies now.
		if out != s.stdout {
			out.Close()
		}
		if in != s.stdin {
			in.Close()
		}
		if err != nil {
			if next != nil {
				next.Close()
			}
			return err
		}
		in = next
	}

	if p.Background {
		return nil
	}

	status, ok := s.jobs.WaitForeground()
	if s.interactive && ok && status.Signaled() && status.Signal() == unix.SIGINT {
		fmt.Fprintln(s.out)
	}
	return nil
}

// spawn starts cmd with in and out as its standard streams. A stage that
// cannot start is reported and counts as having exited with ExitFailure;
// only fork failure is returned.
func (s *Shell) spawn(cmd *syntax.Command, in, out *os.File, background, last bool) error {
	stdin, stdout, closeRedirs, err := s.openRedirections(cmd, in, out)
	if err != nil {
		s.stageFailed(background, last)
		return nil
	}
	defer closeRedirs()

	name := cmd.Name()
	path, err := s.resolver.Resolve(name)
	if err != nil {
		s.reportFile(name, err, true)
		s.stageFailed(background, last)
		return nil
	}

	proc, err := os.StartProcess(path, cmd.Args, &os.ProcAttr{
		Files: []*os.File{stdin, stdout, s.stderr},
		Sys:   &syscall.SysProcAttr{Setsid: background},
	})
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.ENOMEM) {
			return fatal(msgFork, err)
		}
		s.reportFile(name, err, true)
		s.stageFailed(background, last)
		return nil
	}

	pid := proc.Pid
	_ = proc.Release()

	if background {
		s.jobs.AddBackground(pid, cmd.String())
	} else {
		s.jobs.AddForeground(pid, last)
	}
	s.log.Debug("spawned process",
		zap.Int("pid", pid),
		zap.String("path", path),
		zap.Strings("args", cmd.Args),
		zap.Bool("background", background))
	return nil
}

func (s *Shell) stageFailed(background, last bool) {
	if last && !background {
		s.jobs.SetLastStatus(exitStatus(ExitFailure))
	}
}

// touchRedirections handles a command made only of redirections, such as
// "> out.txt": output targets are created or truncated, nothing runs.
func (s *Shell) touchRedirections(cmd *syntax.Command, background bool) {
	_, _, closeRedirs, err := s.openRedirections(cmd, s.stdin, s.stdout)
	if err != nil {
		s.stageFailed(background, true)
		return
	}
	closeRedirs()
}

// runBuiltin runs b inside the shell. Output redirections apply to what
// the builtin prints.
func (s *Shell) runBuiltin(b builtin, cmd *syntax.Command) {
	_, out, closeRedirs, err := s.openRedirections(cmd, s.stdin, s.stdout)
	if err != nil {
		return
	}
	defer closeRedirs()

	w := s.out
	if out != s.stdout {
		w = out
	}
	status := b.run(s, cmd.Args, w)
	s.log.Debug("builtin finished", zap.String("name", b.name), zap.Int("status", status))
}
