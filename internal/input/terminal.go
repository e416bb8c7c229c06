package input

import (
	"fmt"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// Terminal remembers the mode a tty had when the shell started so every
// raw-mode section can hand it back.
type Terminal struct {
	fd    int
	saved unix.Termios
}

func OpenTerminal(fd int) (*Terminal, error) {
	saved, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("error reading terminal mode: %w", err)
	}
	return &Terminal{fd: fd, saved: *saved}, nil
}

// Raw switches off canonical mode, echo and signal keys. Output processing
// is left alone so "\n" still returns the carriage. The returned func
// restores the saved mode.
func (t *Terminal) Raw() (func(), error) {
	raw := t.saved
	raw.Lflag &^= unix.ICANON | unix.ECHO | unix.ISIG
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(t.fd, unix.TCSETS, &raw); err != nil {
		return nil, fmt.Errorf("error entering raw mode: %w", err)
	}
	return func() { _ = t.Restore() }, nil
}

func (t *Terminal) Restore() error {
	return unix.IoctlSetTermios(t.fd, unix.TCSETS, &t.saved)
}
