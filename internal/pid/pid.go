package pid

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"

	"codeberg.org/seliv/tempwatch/internal/errors"
)

const (
	pidFile = "tempwatch.pid"
)

// Write writes the current process ID to a PID file. A PID file pointing
// at a live process means another instance is already running.
func Write() error {
	errFactory := errors.New()
	pid := os.Getpid()
	path := filepath.Join(os.TempDir(), pidFile)

	if _, err := os.Stat(path); err == nil {
		bytes, err := os.ReadFile(path)
		if err != nil {
			return errFactory.Wrap(errors.ErrInternal, err)
		}

		oldPid, err := strconv.Atoi(string(bytes))
		if err != nil {
			return errFactory.Wrap(errors.ErrInternal, err)
		}

		if processAlive(oldPid) {
			return errFactory.WithData(errors.ErrAlreadyRunning, oldPid)
		}
	}

	err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o600)
	if err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the PID file.
func Remove() error {
	errFactory := errors.New()
	path := filepath.Join(os.TempDir(), pidFile)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(path); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// processAlive reports whether pid belongs to a running process. Signal
// zero is the Unix existence check but is unsupported on Windows; there
// FindProcess itself opens a process handle and fails for a dead pid.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}

	return process.Signal(syscall.Signal(0)) == nil
}
