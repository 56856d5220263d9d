package writers

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrOutputExists is returned by CommitFile when path exists and force is off.
var ErrOutputExists = errors.New("output file exists (use --force to overwrite)")

// CheckWritable fails early when path exists and may not be replaced.
func CheckWritable(path string, force bool) error {
	if path == "-" || force {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, ErrOutputExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// CommitFile runs fn against a temporary file next to path and renames it
// into place only when fn and the close succeed. path "-" writes straight to
// stdout. A failed fn leaves no file behind.
func CommitFile(path string, force bool, stdout io.Writer, fn func(io.Writer) error) (err error) {
	if path == "-" {
		err = fn(stdout)
		if IsBrokenPipe(err) {
			return nil
		}
		return err
	}
	if err := CheckWritable(path, force); err != nil {
		return err
	}
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = fn(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
