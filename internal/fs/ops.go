package fs

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrNameCollision is returned when a rename target already exists.
	ErrNameCollision = errors.New("a file or folder with that name already exists")
	// ErrInvalidName is returned for empty names or names containing separators.
	ErrInvalidName = errors.New("invalid file name")
)

// Rename renames path to newName inside the same directory and returns the
// new full path. It refuses to overwrite an existing entry.
func Rename(path, newName string) (string, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == "." || newName == ".." || strings.ContainsAny(newName, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, newName)
	}

	path = filepath.Clean(path)
	if _, err := os.Lstat(path); err != nil {
		return "", err
	}
	if filepath.Base(path) == newName {
		return path, nil
	}

	target := filepath.Join(filepath.Dir(path), newName)
	if _, err := os.Lstat(target); err == nil {
		return "", fmt.Errorf("%w: %s", ErrNameCollision, newName)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.Rename(path, target); err != nil {
		return "", err
	}
	return target, nil
}

var startCommand = func(name string, args ...string) error {
	_, err := startDetached(exec.Command(name, args...))
	return err
}

// startDetached starts cmd and reaps it in the background once it exits. The
// returned channel receives the result of Wait.
func startDetached(cmd *exec.Cmd) (<-chan error, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()
	return done, nil
}

// OpenWithDefaultApp hands path to the operating system's default application.
func OpenWithDefaultApp(path string) error {
	return openWith(runtime.GOOS, path, startCommand)
}

func openWith(goos, path string, start func(string, ...string) error) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return err
	}

	name, args := launcherCommand(goos, path)
	if err := start(name, args...); err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}
	return nil
}

func launcherCommand(goos, path string) (string, []string) {
	switch strings.ToLower(goos) {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	case "darwin":
		return "open", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}

// HashPrefix returns the first 16 hex characters of the file's MD5 digest.
func HashPrefix(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}
