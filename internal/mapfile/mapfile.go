// Package mapfile exposes the whole content of a file as a read-only byte
// slice.
package mapfile

import "errors"

var errClosed = errors.New("mapfile: file closed")

// File is a read-only view of a file's bytes. The slice returned by Bytes is
// valid until Close and must not be written to.
type File struct {
	path  string
	data  []byte
	unmap func() error
}

// Path returns the name the file was opened with.
func (f *File) Path() string {
	return f.path
}

// Bytes returns the file content.
func (f *File) Bytes() []byte {
	return f.data
}

// Size returns the content length.
func (f *File) Size() int64 {
	return int64(len(f.data))
}

// Close releases the view.
func (f *File) Close() error {
	if f.unmap == nil {
		if f.data == nil {
			return errClosed
		}
		f.data = nil
		return nil
	}
	err := f.unmap()
	f.unmap = nil
	f.data = nil
	return err
}
