package shell

import (
	"os"

	"mshell/internal/syntax"
)

const redirPerm = 0o600

// openRedirections applies cmd's redirections in order on top of in and
// out. The first failure is reported, everything opened so far is closed
// and no further redirection is tried. The returned func closes the files
// that were opened.
func (s *Shell) openRedirections(cmd *syntax.Command, in, out *os.File) (*os.File, *os.File, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, r := range cmd.Redirs {
		var (
			f   *os.File
			err error
		)
		switch r.Mode {
		case syntax.RedirIn:
			f, err = os.Open(r.Filename)
		case syntax.RedirOut:
			f, err = os.OpenFile(r.Filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, redirPerm)
		case syntax.RedirAppend:
			f, err = os.OpenFile(r.Filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, redirPerm)
		}
		if err != nil {
			s.reportFile(r.Filename, err, false)
			closeAll()
			return nil, nil, nil, err
		}

		opened = append(opened, f)
		if r.Mode == syntax.RedirIn {
			in = f
		} else {
			out = f
		}
	}
	return in, out, closeAll, nil
}
