package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EnsureDir creates dir (and parents) if needed and returns it unchanged.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// WriteAtomic streams fn's output into dir/name. The data goes to a
// temporary file first and is renamed into place only when fn and Close
// succeed, so a failed write never leaves a partial file behind.
func WriteAtomic(dir, name string, fn func(w io.Writer) error) (path string, err error) {
	if _, err := EnsureDir(dir); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if werr := fn(tmp); werr != nil {
		_ = tmp.Close()
		return "", werr
	}
	if cerr := tmp.Close(); cerr != nil {
		return "", fmt.Errorf("close temp: %w", cerr)
	}

	path = filepath.Join(dir, name)
	if rerr := os.Rename(tmp.Name(), path); rerr != nil {
		return "", fmt.Errorf("rename %s: %w", path, rerr)
	}
	return path, nil
}
