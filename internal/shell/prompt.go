package shell

import (
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

const (
	colorReset  = "\x1b[0m"
	colorGold   = "\x1b[33m"
	colorPurple = "\x1b[35m"
	colorGreen  = "\x1b[32m"
)

// Prompt expands %u, %h and %c in the configured format. The working
// directory is only looked up again after a directory change.
type Prompt struct {
	format string
	user   string
	host   string
	home   string
	cwd    string
	stale  bool
}

func NewPrompt(format, home string) (*Prompt, error) {
	if home == "" {
		return nil, fatal(msgPrompt, errors.New("HOME is not set"))
	}
	u, err := user.Current()
	if err != nil {
		return nil, fatal(msgPrompt, err)
	}
	host, err := os.Hostname()
	if err != nil {
		return nil, fatal(msgPrompt, err)
	}
	return &Prompt{
		format: format,
		user:   u.Username,
		host:   host,
		home:   filepath.Clean(home),
		stale:  true,
	}, nil
}

func (p *Prompt) Invalidate() {
	p.stale = true
}

// Render returns the prompt split after its first newline: header is
// printed by the shell, line is handed to the line editor.
func (p *Prompt) Render() (header, line string, err error) {
	if p.stale {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", fatal(msgPrompt, err)
		}
		p.cwd = abbreviateHome(cwd, p.home)
		p.stale = false
	}

	var b strings.Builder
	for i := 0; i < len(p.format); i++ {
		if p.format[i] == '%' && i+1 < len(p.format) {
			switch p.format[i+1] {
			case 'u':
				b.WriteString(colorGold + p.user + colorReset)
				i++
				continue
			case 'h':
				b.WriteString(colorPurple + p.host + colorReset)
				i++
				continue
			case 'c':
				b.WriteString(colorGreen + p.cwd + colorReset)
				i++
				continue
			}
		}
		b.WriteByte(p.format[i])
	}

	s := b.String()
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i+1], s[i+1:], nil
	}
	return "", s, nil
}

func abbreviateHome(cwd, home string) string {
	if cwd == home {
		return "~"
	}
	if home != "/" && strings.HasPrefix(cwd, home+"/") {
		return "~" + cwd[len(home):]
	}
	return cwd
}
