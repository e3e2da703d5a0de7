// Package lock keeps a single textreplacer instance per user.
//
// Two engines hooking the same keyboard would each retype the other's
// replacements.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another textreplacer instance is running")

// FileName is the lock file name inside the runtime directory.
const FileName = "textreplacer.lock"

// Lock is a held instance lock. The lock is released when the process
// exits, even without Release.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes the lock at path without waiting. It returns an error
// wrapping ErrLocked when the lock is held; the holder's PID is included
// when known.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := tryLock(f); err != nil {
		pid := readPID(f)
		f.Close()
		if errors.Is(err, ErrLocked) && pid > 0 {
			return nil, fmt.Errorf("%w (pid %d)", ErrLocked, pid)
		}
		return nil, err
	}

	if err := writePID(f); err != nil {
		unlock(f)
		f.Close()
		return nil, err
	}

	return &Lock{path: path, file: f}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. The file is left in place; removing it would race
// with a process that has just opened it.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil

	if err := f.Truncate(0); err != nil {
		f.Close()
		return fmt.Errorf("clear lock file: %w", err)
	}
	if err := unlock(f); err != nil {
		f.Close()
		return fmt.Errorf("unlock: %w", err)
	}
	return f.Close()
}

func writePID(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("truncate lock file: %w", err)
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0); err != nil {
		return fmt.Errorf("write lock file: %w", err)
	}
	return f.Sync()
}

func readPID(f *os.File) int {
	buf := make([]byte, 32)
	n, _ := f.ReadAt(buf, 0)
	pid, err := strconv.Atoi(strings.TrimSpace(string(buf[:n])))
	if err != nil {
		return 0
	}
	return pid
}
