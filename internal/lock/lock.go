// Package lock provides the process-wide mutation lock.
//
// A lock is an flock(2) exclusive lock on <dir>/<name>.lock. It is shared by
// every sidecar process on the machine, so at most one holder of a given name
// runs at a time. Acquisition has no timeout.
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// DirName is the directory created under the user cache directory.
const DirName = "notes-sidecar"

// DefaultDir returns <user cache dir>/notes-sidecar, falling back to the
// temporary directory when no cache directory is known.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, DirName)
}

// FileLocker hands out file-backed locks under Dir.
type FileLocker struct {
	Dir string
}

// NewFileLocker returns a FileLocker rooted at dir (DefaultDir when empty).
func NewFileLocker(dir string) *FileLocker {
	if dir == "" {
		dir = DefaultDir()
	}
	return &FileLocker{Dir: dir}
}

// Path returns the lock file path for name.
func (l *FileLocker) Path(name string) string {
	return filepath.Join(l.Dir, name+".lock")
}

// Acquire blocks until the named lock is held and returns its release func.
// The context is not consulted while blocked in flock.
func (l *FileLocker) Acquire(_ context.Context, name string) (func() error, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return nil, sidecar.Wrap(sidecar.CodeInternal, err, "Failed to create lock directory: %s", l.Dir)
	}

	path := l.Path(name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, sidecar.Wrap(sidecar.CodeInternal, err, "Failed to open lock file: %s", path)
	}

	if err := flock(f, unix.LOCK_EX); err != nil {
		f.Close()
		return nil, sidecar.Wrap(sidecar.CodeInternal, err, "Failed to acquire lock: %s", path)
	}

	release := func() error {
		unlockErr := flock(f, unix.LOCK_UN)
		closeErr := f.Close()
		if unlockErr != nil {
			return fmt.Errorf("release lock %s: %w", path, unlockErr)
		}
		return closeErr
	}
	return release, nil
}

// flock retries when interrupted by a signal.
func flock(f *os.File, how int) error {
	for {
		err := unix.Flock(int(f.Fd()), how)
		if err != unix.EINTR {
			return err
		}
	}
}

// Acquirer is anything that can hand out a named exclusive lock.
type Acquirer interface {
	Acquire(ctx context.Context, name string) (release func() error, err error)
}

// With runs body while holding the named lock and releases it on every exit
// path, including panics. Body's result is returned unchanged.
func With[T any](ctx context.Context, l Acquirer, name string, body func() (T, error)) (result T, err error) {
	release, err := l.Acquire(ctx, name)
	if err != nil {
		return result, err
	}
	defer func() {
		if relErr := release(); relErr != nil && err == nil {
			err = sidecar.Wrap(sidecar.CodeInternal, relErr, "Failed to release lock: %s", name)
		}
	}()

	return body()
}
