package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOutputFilename(t *testing.T) {
	tests := []struct {
		input, prefix, suffix, format string
		want                          string
	}{
		{"in/photo.png", "", "_cropped", "jpg", "out/photo_cropped.jpg"},
		{"photo.webp", "x-", "", "", "out/x-photo.webp"},
		{"noext", "", "", "", "out/noext.jpg"},
		{"a.png", "", "_16:9", "png", "out/a_16_9.png"},
	}
	for _, tt := range tests {
		got := GenerateOutputFilename(tt.input, "out", tt.prefix, tt.suffix, tt.format)
		assert.Equal(t, filepath.FromSlash(tt.want), got)
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.PNG", "notes.txt", "sub/c.webp"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}

	files, err := ExpandInputs([]string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.PNG"),
		filepath.Join(dir, "sub", "c.webp"),
	}, files)

	_, err = ExpandInputs([]string{filepath.Join(dir, "notes.txt")})
	assert.Error(t, err)

	_, err = ExpandInputs([]string{filepath.Join(dir, "missing.jpg")})
	assert.Error(t, err)
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "x", "y")
	require.NoError(t, EnsureDir(nested))
	assert.False(t, FileExists(nested))

	path := filepath.Join(nested, "f.png")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	assert.True(t, FileExists(path))
	assert.Equal(t, "png", GetFileExtension(path))
	assert.True(t, IsImageFile("X.JPEG"))
	assert.False(t, IsImageFile("x.gif"))

	assert.Equal(t, "a_b", SanitizeFilename(" a/b. "))
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", FormatFileSize(2*1024*1024))
}
