package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"mshell/internal/history"
)

const (
	keyCtrlC     = 3
	keyEOT       = 4
	keyNewline   = 10
	keyCtrlQ     = 17
	keyEscape    = 27
	keyBackspace = 127

	printableStart = 32
	printableEnd   = 126
)

// Far enough left to hit column 0 from anywhere on a maximal line.
const homeColumns = MaxLineLength + 3

// Editor reads one key at a time from a raw terminal and keeps the whole
// line redrawn after every edit.
type Editor struct {
	in      io.Reader
	out     io.Writer
	term    *Terminal
	history *history.History
	prompt  string
	quick   string

	buf   []byte
	index int
}

// NewEditor builds an editor reading keys from in. term may be nil, in
// which case the terminal mode is left untouched.
func NewEditor(in io.Reader, out io.Writer, term *Terminal, hist *history.History, quick string) *Editor {
	return &Editor{
		in:      in,
		out:     out,
		term:    term,
		history: hist,
		prompt:  "$ ",
		quick:   quick,
		buf:     make([]byte, 0, MaxLineLength),
	}
}

func (e *Editor) SetPrompt(prompt string) {
	e.prompt = prompt
}

// ReadLine edits a line until it is submitted. Ctrl-D on an empty line
// yields io.EOF; Ctrl-C on a non-empty line yields an empty line; Ctrl-Q
// yields the quick command.
func (e *Editor) ReadLine() (string, error) {
	if e.term != nil {
		restore, err := e.term.Raw()
		if err != nil {
			return "", err
		}
		defer restore()
	}

	e.buf = e.buf[:0]
	e.index = 0
	io.WriteString(e.out, e.prompt)
	e.history.ResetBrowse()

	for {
		c, err := e.readByte()
		if err != nil {
			return "", err
		}

		switch {
		case c == keyEOT && len(e.buf) == 0:
			return "", io.EOF
		case c == keyCtrlC && len(e.buf) != 0:
			if n := len(e.buf) - e.index; n > 0 {
				fmt.Fprintf(e.out, "\x1b[%dC", n)
			}
			io.WriteString(e.out, "^C\n")
			return "", nil
		case c == keyCtrlQ:
			io.WriteString(e.out, "\n")
			return e.quick, nil
		case c >= printableStart && c <= printableEnd && len(e.buf) < MaxLineLength:
			e.insert(c)
		case c == keyNewline:
			fmt.Fprintf(e.out, "\x1b[%dD\n", homeColumns)
			line := string(e.buf)
			e.history.Add(line)
			return line, nil
		case c == keyEscape:
			if err := e.escape(); err != nil {
				return "", err
			}
		case c == keyBackspace && e.index > 0:
			e.buf = append(e.buf[:e.index-1], e.buf[e.index:]...)
			e.index--
		default:
			continue
		}
		e.redraw()
	}
}

func (e *Editor) insert(c byte) {
	e.buf = append(e.buf, 0)
	copy(e.buf[e.index+1:], e.buf[e.index:])
	e.buf[e.index] = c
	e.index++
}

// escape handles ESC [ A..D and the ctrl+arrow form ESC [ 1 ; 5 C/D.
func (e *Editor) escape() error {
	c, err := e.readByte()
	if err != nil || c != '[' {
		return err
	}
	if c, err = e.readByte(); err != nil {
		return err
	}

	switch c {
	case 'D':
		e.index = max(0, e.index-1)
	case 'C':
		e.index = min(len(e.buf), e.index+1)
	case 'A', 'B':
		e.browse(c == 'A')
	case '1':
		for _, want := range []byte{';', '5'} {
			if c, err = e.readByte(); err != nil || c != want {
				return err
			}
		}
		if c, err = e.readByte(); err != nil {
			return err
		}
		switch c {
		case 'D':
			e.index = wordLeft(e.buf, e.index)
		case 'C':
			e.index = wordRight(e.buf, e.index)
		}
	}
	return nil
}

// browse saves a fresh line before the first step so it can be recalled.
func (e *Editor) browse(up bool) {
	if e.history.IsBrowseReset() {
		e.history.Add(string(e.buf))
	}
	if up {
		e.history.Up()
	} else {
		e.history.Down()
	}
	e.buf = append(e.buf[:0], e.history.Entry()...)
	e.index = len(e.buf)
}

func (e *Editor) redraw() {
	var b bytes.Buffer
	fmt.Fprintf(&b, "\x1b[%dD\x1b[0K", homeColumns)
	b.WriteString(e.prompt)
	b.Write(e.buf)
	if n := len(e.buf) - e.index; n > 0 {
		fmt.Fprintf(&b, "\x1b[%dD", n)
	}
	e.out.Write(b.Bytes())
}

func (e *Editor) readByte() (byte, error) {
	var one [1]byte
	for {
		n, err := e.in.Read(one[:])
		if n == 1 {
			return one[0], nil
		}
		if errors.Is(err, unix.EAGAIN) {
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}

func wordLeft(buf []byte, index int) int {
	i := index - 1
	for i >= 0 && buf[i] == ' ' {
		i--
	}
	for i >= 0 && buf[i] != ' ' {
		i--
	}
	return i + 1
}

func wordRight(buf []byte, index int) int {
	i := index
	for i < len(buf) && buf[i] == ' ' {
		i++
	}
	for i < len(buf) && buf[i] != ' ' {
		i++
	}
	return i
}
