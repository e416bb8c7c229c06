// Package input produces shell lines from a terminal or from a plain byte
// stream.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

const (
	MaxLineLength = 2048
	bufferSize    = 16 * MaxLineLength
)

// ErrLineTooLong is returned once for every stretch of over-length input.
// The offending bytes are dropped up to and including the next newline.
var ErrLineTooLong = errors.New("line too long")

type batchState int

const (
	stateScan batchState = iota
	stateSkip
)

// Batch splits a non-interactive stream into lines. The unconsumed window
// is buf[begin:end]; bytes before begin are consumed, bytes from end on
// are free capacity.
type Batch struct {
	r     io.Reader
	buf   []byte
	begin int
	end   int
	eof   bool
	max   int
	state batchState
	// quiet suppresses ErrLineTooLong until a line is emitted again.
	quiet bool
}

func NewBatch(r io.Reader) *Batch {
	return newBatch(r, MaxLineLength, bufferSize)
}

func newBatch(r io.Reader, maxLine, size int) *Batch {
	return &Batch{
		r:   r,
		buf: make([]byte, size),
		max: maxLine,
	}
}

// ReadLine returns the next line without its terminator. It returns io.EOF
// once the stream is exhausted.
func (b *Batch) ReadLine() (string, error) {
	for {
		window := b.buf[b.begin:b.end]
		nl := bytes.IndexByte(window, '\n')

		switch b.state {
		case stateScan:
			n := nl
			if nl < 0 {
				n = len(window)
			}
			if n >= b.max {
				b.state = stateSkip
				if !b.quiet {
					b.quiet = true
					return "", ErrLineTooLong
				}
				continue
			}
			if nl >= 0 {
				line := string(window[:nl])
				b.consume(nl + 1)
				b.quiet = false
				return line, nil
			}
			if b.eof {
				if len(window) == 0 {
					return "", io.EOF
				}
				line := string(window)
				b.consume(len(window))
				b.quiet = false
				return line, nil
			}

		case stateSkip:
			if nl >= 0 {
				b.consume(nl + 1)
				b.state = stateScan
				continue
			}
			b.consume(len(window))
			if b.eof {
				b.state = stateScan
				continue
			}
		}

		if err := b.fill(); err != nil {
			return "", err
		}
	}
}

func (b *Batch) consume(n int) {
	b.begin += n
	if b.begin == b.end {
		b.begin, b.end = 0, 0
	}
}

// fill reads more input after end, compacting the window to offset 0 first
// when there is no room left.
func (b *Batch) fill() error {
	if b.end == len(b.buf) {
		n := copy(b.buf, b.buf[b.begin:b.end])
		b.begin, b.end = 0, n
	}
	for {
		n, err := b.r.Read(b.buf[b.end:])
		b.end += n
		switch {
		case errors.Is(err, unix.EAGAIN):
			if n > 0 {
				return nil
			}
			continue
		case err == io.EOF || (n == 0 && err == nil):
			b.eof = true
			return nil
		case err != nil:
			return fmt.Errorf("error reading input: %w", err)
		}
		return nil
	}
}
