package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

func UploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	return dir
}

func AllowedImageFile(filename string) bool {
	return allowedImageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SaveUploadedImage writes the image bytes under the uploads dir with a
// randomized filename and returns that filename. The original name only
// contributes its extension.
func SaveUploadedImage(data []byte, originalName string) (string, error) {
	if !AllowedImageFile(originalName) {
		return "", errors.New("unsupported image type")
	}

	dir := UploadDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	filename := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", err
	}
	return filename, nil
}

// DeleteUploadedImage removes a locally stored image. Missing files are not
// an error; the row is the source of truth.
func DeleteUploadedImage(filename string) error {
	if filename == "" || strings.Contains(filename, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(UploadDir(), filepath.Base(filename)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
