// Package syntax turns a submitted line into a Sequence of pipelines.
package syntax

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

type RedirMode int

const (
	RedirIn RedirMode = iota
	RedirOut
	RedirAppend
)

func (m RedirMode) String() string {
	switch m {
	case RedirIn:
		return "<"
	case RedirOut:
		return ">"
	case RedirAppend:
		return ">>"
	default:
		return "?"
	}
}

type Redirection struct {
	Filename string
	Mode     RedirMode
}

// Command is one stage of a pipeline. A command without arguments is the
// empty command, e.g. the middle stage of "ls | | wc".
type Command struct {
	Args   []string
	Redirs []Redirection
}

func (c *Command) Empty() bool {
	return len(c.Args) == 0
}

func (c *Command) Name() string {
	if c.Empty() {
		return ""
	}
	return c.Args[0]
}

func (c *Command) String() string {
	parts := []string{shellquote.Join(c.Args...)}
	for _, r := range c.Redirs {
		parts = append(parts, r.Mode.String()+" "+shellquote.Join(r.Filename))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

type Pipeline struct {
	Commands   []*Command
	Background bool
}

func (p *Pipeline) String() string {
	cmds := make([]string, len(p.Commands))
	for i, c := range p.Commands {
		cmds[i] = c.String()
	}
	s := strings.Join(cmds, " | ")
	if p.Background {
		s += " &"
	}
	return s
}

// Sequence holds the pipelines of one line in submission order.
type Sequence struct {
	Pipelines []*Pipeline
}

func (s *Sequence) Empty() bool {
	return len(s.Pipelines) == 0
}
