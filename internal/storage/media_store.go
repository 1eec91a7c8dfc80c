package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/okaneren/inkpost/pkg/logger"
	"go.uber.org/zap"
)

// MediaStore persists uploaded files under a local directory and hands back
// the stored filenames. Posts keep only the filenames; the directory is
// served statically at /images.
type MediaStore struct {
	dir string
}

func NewMediaStore(dir string) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &MediaStore{dir: dir}, nil
}

// Save writes one uploaded file with a fresh unique name, keeping only the
// original extension. Returns the stored filename.
func (s *MediaStore) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Never trust the client-supplied path; keep just the extension.
	ext := strings.ToLower(filepath.Ext(filepath.Base(fh.Filename)))
	name := uuid.New().String() + ext

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}

	logger.Log.Debug("media stored",
		zap.String("filename", name),
		zap.Int64("size", fh.Size),
	)

	return name, nil
}

// SaveAll stores a batch of uploads. On failure it removes the files written
// so far, so a rejected post leaves nothing behind.
func (s *MediaStore) SaveAll(fhs []*multipart.FileHeader) ([]string, error) {
	var names []string
	for _, fh := range fhs {
		name, err := s.Save(fh)
		if err != nil {
			s.Remove(names...)
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Remove deletes stored files, best effort.
func (s *MediaStore) Remove(names ...string) {
	for _, name := range names {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			logger.Log.Warn("media remove failed",
				zap.String("filename", name),
				zap.Error(err),
			)
		}
	}
}

// Dir returns the backing directory (for static file serving).
func (s *MediaStore) Dir() string {
	return s.dir
}
