package os

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

type logger interface {
	Info(msg string, keyvals ...any)
}

// TrapSignal catches SIGTERM and SIGINT, executes the cleanup function,
// and exits with code 0.
func TrapSignal(logger logger, cb func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-c
		logger.Info("signal trapped", "msg", fmt.Sprintf("captured %v, exiting...", sig))
		if cb != nil {
			cb()
		}
		os.Exit(0)
	}()
}

// Kill the running process by sending itself SIGTERM.
func Kill() error {
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		return err
	}
	return p.Signal(syscall.SIGTERM)
}

// EnsureDir ensures the given directory exists, creating it if necessary.
// Errors if the path already exists as a non-directory.
func EnsureDir(dir string, mode os.FileMode) error {
	err := os.MkdirAll(dir, mode)
	if err != nil {
		return fmt.Errorf("could not create directory %q: %w", dir, err)
	}
	return nil
}

// FileExists reports whether filePath exists.
func FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !errors.Is(err, os.ErrNotExist)
}

// ReadFile reads the named file.
func ReadFile(filePath string) ([]byte, error) {
	return os.ReadFile(filePath)
}

// MustReadFile reads the named file and panics if that fails.
func MustReadFile(filePath string) []byte {
	fileBytes, err := os.ReadFile(filePath)
	if err != nil {
		panic(fmt.Sprintf("MustReadFile failed: %v", err))
	}
	return fileBytes
}

// WriteFile writes contents to filePath with the given mode.
func WriteFile(filePath string, contents []byte, mode os.FileMode) error {
	return os.WriteFile(filePath, contents, mode)
}

// MustWriteFile writes contents to filePath and panics if that fails.
func MustWriteFile(filePath string, contents []byte, mode os.FileMode) {
	err := WriteFile(filePath, contents, mode)
	if err != nil {
		panic(fmt.Sprintf("MustWriteFile failed: %v", err))
	}
}

// WriteFileAtomic creates a temporary file next to filePath, writes contents
// to it, and renames it over filePath once the data has been synced. A partial
// write never leaves a truncated file behind.
func WriteFileAtomic(filePath string, contents []byte, mode os.FileMode) (err error) {
	f, err := os.CreateTemp(dirOf(filePath), ".tmp-")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	if err = f.Chmod(mode); err != nil {
		f.Close()
		return err
	}
	n, err := f.Write(contents)
	if err == nil && n < len(contents) {
		err = io.ErrShortWrite
	}
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	return os.Rename(f.Name(), filePath)
}

func dirOf(filePath string) string {
	for i := len(filePath) - 1; i >= 0; i-- {
		if os.IsPathSeparator(filePath[i]) {
			return filePath[:i]
		}
	}
	return "."
}
