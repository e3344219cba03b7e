package common

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
)

var ErrOutputExists = errors.New("output file exists")

// Sha256OfBytes hashes an in-memory buffer.
func Sha256OfBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// CheckOutputFree fails with ErrOutputExists when path is already taken.
func CheckOutputFree(path string) error {
	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("%s: %w", path, ErrOutputExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// OutputFile is a buffered, create-only output. Writes are sequential; a
// failed write makes every later write fail with the same error.
type OutputFile struct {
	path string
	f    *os.File
	w    *bufio.Writer
	err  error
}

// CreateOutput creates path, refusing to replace an existing file.
func CreateOutput(path string) (*OutputFile, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrOutputExists)
		}
		return nil, err
	}
	return &OutputFile{path: path, f: f, w: bufio.NewWriterSize(f, 1<<20)}, nil
}

func (o *OutputFile) Path() string {
	return o.path
}

func (o *OutputFile) Write(p []byte) (int, error) {
	if o.err != nil {
		return 0, o.err
	}
	n, err := o.w.Write(p)
	if err != nil {
		o.err = fmt.Errorf("write %s: %w", o.path, err)
		return n, o.err
	}
	return n, nil
}

// Commit flushes, syncs and closes the file.
func (o *OutputFile) Commit() error {
	if o.f == nil {
		return o.err
	}
	if o.err == nil {
		if err := o.w.Flush(); err != nil {
			o.err = fmt.Errorf("write %s: %w", o.path, err)
		}
	}
	if o.err == nil {
		if err := o.f.Sync(); err != nil {
			o.err = fmt.Errorf("sync %s: %w", o.path, err)
		}
	}
	if err := o.f.Close(); err != nil && o.err == nil {
		o.err = fmt.Errorf("close %s: %w", o.path, err)
	}
	o.f = nil
	return o.err
}

// Abort closes the file and removes it so no partial output is left behind.
func (o *OutputFile) Abort() error {
	if o.f != nil {
		o.f.Close()
		o.f = nil
	}
	if err := os.Remove(o.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
