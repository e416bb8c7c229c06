package shell

import (
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/sys/unix"
)

// ExitFailure is the status of a stage that could not be executed and of
// the shell itself after a fatal error.
const ExitFailure = 127

const (
	msgSyntax   = "Syntax error."
	msgNoFile   = "no such file or directory"
	msgNoPerm   = "permission denied"
	msgExec     = "exec error"
	msgRedir    = "unknown redir on file "
	msgFork     = "fork failure."
	msgPipe     = "pipe failure."
	msgRead     = "read failure."
	msgPrompt   = "error while getting username/hostname/cwd"
	msgBuiltin  = "Builtin %s error."
	msgBgExited = "Background process %d terminated. (exited with status %d)"
	msgBgKilled = "Background process %d terminated. (killed by signal %d)"
)

// fatalError ends the shell. Everything else is reported and the shell
// carries on with the next line.
type fatalError struct {
	msg string
	err error
}

func (e *fatalError) Error() string {
	return e.msg
}

func (e *fatalError) Unwrap() error {
	return e.err
}

func fatal(msg string, err error) error {
	return &fatalError{msg: msg, err: err}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ENOENT)
}

func isPermission(err error) bool {
	return errors.Is(err, ErrPermission) || errors.Is(err, fs.ErrPermission) || errors.Is(err, unix.EACCES)
}

// reportFile prints "<name>: <reason>". Generic failures only get a reason
// for exec errors.
func (s *Shell) reportFile(name string, err error, exec bool) {
	switch {
	case isNotFound(err):
		fmt.Fprintf(s.errOut, "%s: %s\n", name, msgNoFile)
	case isPermission(err):
		fmt.Fprintf(s.errOut, "%s: %s\n", name, msgNoPerm)
	case exec:
		fmt.Fprintf(s.errOut, "%s: %s\n", name, msgExec)
	default:
		fmt.Fprintf(s.errOut, "%s%s\n", msgRedir, name)
	}
}

func exitStatus(code int) unix.WaitStatus {
	return unix.WaitStatus(code << 8)
}

// exitCode folds a wait status into a shell exit code.
func exitCode(status unix.WaitStatus) int {
	if status.Signaled() {
		return 128 + int(status.Signal())
	}
	return status.ExitStatus()
}
