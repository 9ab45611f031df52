package main

import "fmt"

// Chunkify splits text into windows of at most size bytes, each window
// starting size-overlap bytes after the previous one. The final window may be
// shorter than size. Boundaries fall on byte offsets, not word boundaries.
func Chunkify(text string, size int, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", ErrInvalidConfig, size, overlap)
	}

	l := len(text)
	if l == 0 {
		return []string{}, nil
	}

	step := size - overlap
	pos := 0
	res := make([]string, 0, l/step+1)

	for {
		end := min(pos+size, l)
		res = append(res, text[pos:end])
		if end >= l {
			break
		}

		pos += step
	}

	return res, nil
}
