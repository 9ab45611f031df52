package readers

import (
	"fmt"
	"path/filepath"

	"code.sajari.com/docconv/v2"
)

// UniversalReader handles transcript exports in richer formats (pdf, docx,
// odt, xml) via docconv.
type UniversalReader struct{}

func (r *UniversalReader) CanRead(path string) bool {
	switch filepath.Ext(path) {
	case ".txt", ".docx", ".odt", ".pdf", ".xml":
		return true
	}
	return false
}

func (r *UniversalReader) ReadText(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to convert transcript file: %w", err)
	}

	return res.Body, nil
}
