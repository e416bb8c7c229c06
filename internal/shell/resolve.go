package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

var (
	ErrNotFound   = errors.New(msgNoFile)
	ErrPermission = errors.New(msgNoPerm)
)

// Resolver finds executables along a search path read once at startup.
type Resolver struct {
	dirs []string
}

func NewResolver(path string) *Resolver {
	var dirs []string
	for _, dir := range strings.Split(path, ":") {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return &Resolver{dirs: dirs}
}

// Resolve returns the file to execute for name. Names containing a slash
// are checked as given; bare names are looked up in every directory.
func (r *Resolver) Resolve(name string) (string, error) {
	if name == "" {
		return "", ErrNotFound
	}
	if strings.ContainsRune(name, '/') {
		return name, executable(name)
	}

	denied := false
	for _, dir := range r.dirs {
		candidate := filepath.Join(dir, name)
		err := executable(candidate)
		if err == nil {
			return candidate, nil
		}
		if errors.Is(err, ErrPermission) {
			denied = true
		}
	}
	if denied {
		return "", ErrPermission
	}
	return "", ErrNotFound
}

func executable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if isPermission(err) {
			return ErrPermission
		}
		return ErrNotFound
	}
	if info.IsDir() {
		return ErrPermission
	}
	if err := unix.Access(path, unix.X_OK); err != nil {
		return ErrPermission
	}
	return nil
}

func readable(path string) error {
	err := unix.Access(path, unix.R_OK)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENOTDIR):
		return ErrNotFound
	case errors.Is(err, unix.EACCES):
		return ErrPermission
	default:
		return fmt.Errorf("%s: %w", path, err)
	}
}
