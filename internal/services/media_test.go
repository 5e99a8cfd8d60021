package services

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v123/abc123.jpg", "abc123"},
		{"https://res.cloudinary.com/demo/image/upload/abc123.png", "abc123"},
		{"https://res.cloudinary.com/demo/image/upload/no-extension", "no-extension"},
		{"abc123.jpg", "abc123"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PublicIDFromURL(c.url), "url %q", c.url)
	}
}

func TestStageUpload_WritesAndNamesFile(t *testing.T) {
	fileHeader := multipartFileHeader(t, "avatar", "photo.jpg", []byte("fake image bytes"))

	dir := t.TempDir()
	path, err := StageUpload(fileHeader, dir)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })

	assert.Contains(t, path, dir)
	assert.Contains(t, path, ".jpg", "staged file keeps the original extension")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake image bytes"), data)
}

func TestStageUpload_DistinctNamesForSameFilename(t *testing.T) {
	dir := t.TempDir()

	first, err := StageUpload(multipartFileHeader(t, "avatar", "photo.jpg", []byte("a")), dir)
	require.NoError(t, err)
	second, err := StageUpload(multipartFileHeader(t, "avatar", "photo.jpg", []byte("b")), dir)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

// multipartFileHeader builds a *multipart.FileHeader the way the HTTP layer
// would hand it to the handler.
func multipartFileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	files := req.MultipartForm.File[field]
	require.Len(t, files, 1)
	return files[0]
}
