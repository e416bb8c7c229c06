package input

import (
	"fmt"
	"io"

	"github.com/chzyer/readline"

	"mshell/internal/history"
)

// Readline is the alternative line editor backed by chzyer/readline. It
// shares the shell's History so both editors recall the same lines.
type Readline struct {
	reader  *readline.Instance
	history *history.History
}

func NewReadline(hist *history.History) (*Readline, error) {
	return newReadline(hist, &readline.Config{})
}

// newReadline fills in the shell's settings on cfg, which may carry its own
// streams.
func newReadline(hist *history.History, cfg *readline.Config) (*Readline, error) {
	cfg.Prompt = "$ "
	cfg.DisableAutoSaveHistory = true
	cfg.InterruptPrompt = "^C"

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, fmt.Errorf("error initializing readline: %w", err)
	}

	for _, line := range hist.GetAll() {
		if err := rl.SaveHistory(line); err != nil {
			rl.Close()
			return nil, fmt.Errorf("error seeding readline history: %w", err)
		}
	}
	return &Readline{reader: rl, history: hist}, nil
}

func (r *Readline) SetPrompt(prompt string) {
	r.reader.SetPrompt(prompt)
}

func (r *Readline) ReadLine() (string, error) {
	line, err := r.reader.Readline()
	switch {
	case err == readline.ErrInterrupt:
		return "", nil
	case err == io.EOF:
		return "", io.EOF
	case err != nil:
		return "", err
	}

	if line != "" {
		r.history.Add(line)
		_ = r.reader.SaveHistory(line)
	}
	return line, nil
}

func (r *Readline) Close() error {
	return r.reader.Close()
}
