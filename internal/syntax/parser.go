package syntax

import (
	"errors"
	"fmt"

	"github.com/kballard/go-shellquote"
)

var ErrSyntax = errors.New("syntax error")

type token struct {
	op   string
	text string
}

// lex cuts line at unquoted operators. Word chunks keep their quoting so
// shellquote can split them afterwards.
func lex(line string) []token {
	var (
		toks    []token
		cur     []byte
		single  bool
		double  bool
		escaped bool
	)
	flush := func() {
		if len(cur) > 0 {
			toks = append(toks, token{text: string(cur)})
			cur = cur[:0]
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && !single:
			escaped = true
		case c == '\'' && !double:
			single = !single
		case c == '"' && !single:
			double = !double
		case single || double:
		case c == '|' || c == ';' || c == '&' || c == '<':
			flush()
			toks = append(toks, token{op: string(c)})
			continue
		case c == '>':
			flush()
			if i+1 < len(line) && line[i+1] == '>' {
				toks = append(toks, token{op: ">>"})
				i++
			} else {
				toks = append(toks, token{op: ">"})
			}
			continue
		}
		cur = append(cur, c)
	}
	flush()
	return toks
}

var redirOps = map[string]RedirMode{
	"<":  RedirIn,
	">":  RedirOut,
	">>": RedirAppend,
}

// Parse builds the Sequence for line. Any error wraps ErrSyntax.
func Parse(line string) (*Sequence, error) {
	seq := &Sequence{}
	p := &Pipeline{}
	cmd := &Command{}
	var pending *RedirMode

	endPipeline := func(background bool) error {
		p.Commands = append(p.Commands, cmd)
		p.Background = background
		if len(p.Commands) == 1 && cmd.Empty() && len(cmd.Redirs) == 0 {
			if background {
				return fmt.Errorf("%w: nothing to run in background", ErrSyntax)
			}
		} else {
			seq.Pipelines = append(seq.Pipelines, p)
		}
		p, cmd = &Pipeline{}, &Command{}
		return nil
	}

	for _, tok := range lex(line) {
		if tok.op == "" {
			words, err := shellquote.Split(tok.text)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
			}
			if pending != nil && len(words) > 0 {
				cmd.Redirs = append(cmd.Redirs, Redirection{Filename: words[0], Mode: *pending})
				words = words[1:]
				pending = nil
			}
			cmd.Args = append(cmd.Args, words...)
			continue
		}

		if pending != nil {
			return nil, fmt.Errorf("%w: missing file name before %q", ErrSyntax, tok.op)
		}
		if mode, ok := redirOps[tok.op]; ok {
			pending = &mode
			continue
		}

		switch tok.op {
		case "|":
			p.Commands = append(p.Commands, cmd)
			cmd = &Command{}
		case ";", "&":
			if err := endPipeline(tok.op == "&"); err != nil {
				return nil, err
			}
		}
	}

	if pending != nil {
		return nil, fmt.Errorf("%w: missing file name after redirection", ErrSyntax)
	}
	if err := endPipeline(false); err != nil {
		return nil, err
	}
	return seq, nil
}
