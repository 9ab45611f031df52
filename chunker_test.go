package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Chunkify(t *testing.T) {
	var cases = []struct {
		input   string
		size    int
		overlap int
		output  []string
	}{
		{input: "abcdefg", size: 3, overlap: 0, output: []string{"abc", "def", "g"}},
		{input: "abcdefg", size: 3, overlap: 1, output: []string{"abc", "cde", "efg"}},
		{input: "abcdefg", size: 9, overlap: 5, output: []string{"abcdefg"}},
		{input: "ABCDEFGHIJ", size: 4, overlap: 1, output: []string{"ABCD", "DEFG", "GHIJ"}},
		{input: "", size: 9, overlap: 5, output: []string{}},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			out, err := Chunkify(c.input, c.size, c.overlap)
			require.NoError(t, err)
			assert.Equal(t, c.output, out)
		})
	}
}

func Test_Chunkify_InvalidParams(t *testing.T) {
	var cases = []struct {
		size    int
		overlap int
	}{
		{size: 0, overlap: 0},
		{size: -1, overlap: 0},
		{size: 3, overlap: 3},
		{size: 3, overlap: 5},
		{size: 3, overlap: -1},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			out, err := Chunkify("abcdefg", c.size, c.overlap)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, out)
		})
	}
}

func Test_Chunkify_ChunkCount(t *testing.T) {
	text := strings.Repeat("transcripts are long ", 200)
	size, overlap := 800, 150
	step := size - overlap

	chunks, err := Chunkify(text, size, overlap)
	require.NoError(t, err)

	// ceil((len - overlap) / step) windows for non-empty text
	want := (len(text) - overlap + step - 1) / step
	assert.Len(t, chunks, want)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), size)
		// every window starts step bytes after the previous one
		assert.Equal(t, text[i*step:min(i*step+size, len(text))], c)
	}
}

func Test_Chunkify_Idempotent(t *testing.T) {
	text := strings.Repeat("same text in, same chunks out. ", 50)

	a, err := Chunkify(text, 100, 20)
	require.NoError(t, err)
	b, err := Chunkify(text, 100, 20)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
