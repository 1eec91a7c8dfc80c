package storage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okaneren/inkpost/pkg/logger"
)

// uploadRequest builds a real multipart request and returns the parsed file
// headers, the same shape gin hands the store.
func uploadRequest(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["images"]
}

func TestMediaStore_Save(t *testing.T) {
	logger.Init(false)

	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)

	headers := uploadRequest(t, map[string][]byte{"photo.PNG": []byte("image bytes")})
	require.Len(t, headers, 1)

	name, err := store.Save(headers[0])
	require.NoError(t, err)

	// Server-chosen name, lowercased original extension only
	assert.NotEqual(t, "photo.PNG", name)
	assert.Equal(t, ".png", filepath.Ext(name))

	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, []byte("image bytes"), data)
}

func TestMediaStore_SaveStripsClientPath(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)

	headers := uploadRequest(t, map[string][]byte{"../../etc/passwd.jpg": []byte("payload")})
	require.Len(t, headers, 1)

	name, err := store.Save(headers[0])
	require.NoError(t, err)

	// The stored name never contains path components
	assert.Equal(t, filepath.Base(name), name)
	assert.Equal(t, ".jpg", filepath.Ext(name))

	_, err = os.Stat(filepath.Join(store.Dir(), name))
	assert.NoError(t, err)
}

func TestMediaStore_SaveAll(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)

	headers := uploadRequest(t, map[string][]byte{
		"a.png": []byte("aaa"),
		"b.jpg": []byte("bbb"),
	})
	require.Len(t, headers, 2)

	names, err := store.SaveAll(headers)
	require.NoError(t, err)
	require.Len(t, names, 2)

	for _, name := range names {
		_, err := os.Stat(filepath.Join(store.Dir(), name))
		assert.NoError(t, err)
	}

	// Names are unique even for same-extension uploads
	assert.NotEqual(t, names[0], names[1])
}

func TestMediaStore_Remove(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)

	headers := uploadRequest(t, map[string][]byte{"a.png": []byte("aaa")})
	name, err := store.Save(headers[0])
	require.NoError(t, err)

	store.Remove(name)

	_, err = os.Stat(filepath.Join(store.Dir(), name))
	assert.True(t, os.IsNotExist(err))

	// Removing a missing file is a no-op
	store.Remove("never-existed.png")
}
