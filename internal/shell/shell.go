package shell

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"mshell/internal/config"
	"mshell/internal/history"
	"mshell/internal/input"
	"mshell/internal/jobs"
	"mshell/internal/plugin"
	"mshell/internal/syntax"
)

type lineReader interface {
	ReadLine() (string, error)
}

type promptSetter interface {
	SetPrompt(prompt string)
}

type Shell struct {
	config   *config.Config
	log      *zap.Logger
	history  *history.History
	jobs     *jobs.Control
	resolver *Resolver
	builtins []builtin
	prompt   *Prompt
	reader   lineReader
	term     *input.Terminal

	// Standard streams handed to children.
	stdin  *os.File
	stdout *os.File
	stderr *os.File
	// Where the shell and its builtins write.
	out    io.Writer
	errOut io.Writer

	interactive bool
	interrupts  chan os.Signal

	exiting  bool
	exitCode int
}

func New(cfg *config.Config, log *zap.Logger) (*Shell, error) {
	hist, err := history.New(cfg.HistoryFile)
	if err != nil {
		return nil, fmt.Errorf("error initializing history: %w", err)
	}

	s := &Shell{
		config:      cfg,
		log:         log,
		history:     hist,
		jobs:        jobs.NewControl(log),
		resolver:    NewResolver(os.Getenv("PATH")),
		builtins:    defaultBuiltins(),
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		out:         os.Stdout,
		errOut:      os.Stderr,
		interactive: input.IsTerminal(int(os.Stdin.Fd())),
	}

	plugins, err := plugin.LoadAll(cfg.Plugins)
	if err != nil {
		return nil, fmt.Errorf("error loading plugins: %w", err)
	}
	for _, p := range plugins {
		s.registerPlugin(p)
	}

	if err := s.setupInput(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Shell) setupInput() error {
	if !s.interactive {
		s.reader = input.NewBatch(s.stdin)
		return nil
	}

	prompt, err := NewPrompt(s.config.Prompt, s.config.HomeDir)
	if err != nil {
		return err
	}
	s.prompt = prompt

	term, err := input.OpenTerminal(int(s.stdin.Fd()))
	if err != nil {
		return err
	}
	s.term = term

	switch s.config.Editor {
	case config.EditorReadline:
		rl, err := input.NewReadline(s.history)
		if err != nil {
			return err
		}
		s.reader = rl
	case config.EditorBuiltin:
		s.reader = input.NewEditor(s.stdin, s.out, term, s.history, s.config.QuickCommand)
	default:
		return fmt.Errorf("unknown editor %q", s.config.Editor)
	}
	return nil
}

// Run reads and executes lines until end of input, the exit builtin or a
// fatal error, and returns the shell's exit status.
func (s *Shell) Run() int {
	s.setupSignalHandling()
	s.jobs.Start()

	s.jobs.Block()
	code, err := s.loop()
	s.jobs.Unblock()

	s.jobs.Stop()
	s.stopSignalHandling()
	s.close()

	if err != nil {
		s.log.Error("fatal error", zap.Error(err))
		fmt.Fprintln(s.errOut, err)
		return ExitFailure
	}
	return code
}

// loop runs with child handling blocked except while waiting for input
// and while a foreground pipeline runs.
func (s *Shell) loop() (int, error) {
	for {
		s.reapJobs()
		if err := s.printPrompt(); err != nil {
			return 0, err
		}

		s.jobs.Unblock()
		line, err := s.reader.ReadLine()
		s.jobs.Block()

		switch {
		case err == io.EOF:
			return 0, nil
		case errors.Is(err, input.ErrLineTooLong):
			fmt.Fprintln(s.errOut, msgSyntax)
			continue
		case err != nil:
			return 0, fatal(msgRead, err)
		}

		s.log.Debug("received command", zap.String("line", line))
		seq, err := syntax.Parse(line)
		if err != nil {
			s.log.Debug("parse failed", zap.Error(err))
			fmt.Fprintln(s.errOut, msgSyntax)
			continue
		}

		if err := s.runSequence(seq); err != nil {
			return 0, err
		}
		if s.exiting {
			return s.exitCode, nil
		}
	}
}

func (s *Shell) printPrompt() error {
	if !s.interactive || s.prompt == nil {
		return nil
	}
	header, line, err := s.prompt.Render()
	if err != nil {
		return err
	}
	io.WriteString(s.out, header)
	if ps, ok := s.reader.(promptSetter); ok {
		ps.SetPrompt(line)
	}
	return nil
}

// reapJobs forgets finished background jobs, announcing them when a user
// is watching.
func (s *Shell) reapJobs() {
	s.jobs.ReapBackground(func(job *jobs.Job, status unix.WaitStatus) {
		s.log.Debug("background job reaped", zap.Int("pid", job.Pid), zap.String("command", job.Command))
		if !s.interactive {
			return
		}
		if status.Exited() {
			fmt.Fprintf(s.out, msgBgExited+"\n", job.Pid, status.ExitStatus())
		} else {
			fmt.Fprintf(s.out, msgBgKilled+"\n", job.Pid, int(status.Signal()))
		}
	})
}

func (s *Shell) close() {
	if err := s.history.Save(); err != nil {
		s.log.Warn("error saving history", zap.Error(err))
		fmt.Fprintf(s.errOut, "Error saving history: %v\n", err)
	}
	if c, ok := s.reader.(io.Closer); ok {
		c.Close()
	}
	if s.term != nil {
		_ = s.term.Restore()
	}
}
