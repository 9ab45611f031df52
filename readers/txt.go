// Package readers turns transcript files dropped into the watched directory
// into plain text.
package readers

import (
	"fmt"
	"os"
	"path/filepath"
)

type TxtReader struct{}

func (r *TxtReader) CanRead(path string) bool {
	return filepath.Ext(path) == ".txt"
}

func (r *TxtReader) ReadText(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript file: %w", err)
	}

	return string(buf), nil
}
