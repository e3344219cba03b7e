//go:build !unix

package mapfile

import "os"

// Open reads path into memory.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return &File{path: path, data: data}, nil
}
