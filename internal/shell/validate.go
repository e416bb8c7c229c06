package shell

import (
	"mshell/internal/syntax"
)

type validation int

const (
	valid validation = iota
	// rejected: a command or input redirection was reported as unusable.
	rejected
	// malformed: an empty command sits inside a multi-command pipeline.
	malformed
)

// validate checks the whole sequence before anything runs.
func (s *Shell) validate(seq *syntax.Sequence) validation {
	for _, p := range seq.Pipelines {
		if v := s.validatePipeline(p); v != valid {
			return v
		}
	}
	return valid
}

func (s *Shell) validatePipeline(p *syntax.Pipeline) validation {
	empty := false
	for i, cmd := range p.Commands {
		if cmd.Empty() {
			empty = true
		} else if !s.validCommand(cmd) {
			return rejected
		}
		if i > 0 && empty {
			return malformed
		}
	}
	return valid
}

func (s *Shell) validCommand(cmd *syntax.Command) bool {
	name := cmd.Name()
	if _, ok := s.lookupBuiltin(name); !ok {
		if _, err := s.resolver.Resolve(name); err != nil {
			s.reportFile(name, err, false)
			return false
		}
	}

	for _, r := range cmd.Redirs {
		if r.Mode != syntax.RedirIn {
			continue
		}
		if err := readable(r.Filename); err != nil {
			s.reportFile(r.Filename, err, false)
			return false
		}
	}
	return true
}
