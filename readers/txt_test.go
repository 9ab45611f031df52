package readers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TxtReader_CanRead(t *testing.T) {
	r := TxtReader{}
	assert.True(t, r.CanRead("some/interview.txt"))
	assert.False(t, r.CanRead("some/interview.pdf"))
}

func Test_TxtReader_ReadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interview.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	r := TxtReader{}
	txt, err := r.ReadText(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", txt)
}

func Test_TxtReader_ReadText_MissingFile(t *testing.T) {
	r := TxtReader{}
	_, err := r.ReadText(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func Test_UniversalReader_CanRead(t *testing.T) {
	r := UniversalReader{}
	assert.True(t, r.CanRead("some/interview.docx"))
	assert.True(t, r.CanRead("some/interview.odt"))
	assert.True(t, r.CanRead("some/interview.pdf"))
	assert.True(t, r.CanRead("some/interview.txt"))
	assert.True(t, r.CanRead("some/interview.xml"))
	assert.False(t, r.CanRead("some/interview.mp4"))
}
