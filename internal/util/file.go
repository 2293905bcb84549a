package util

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// NewStoredFileName keeps the lowercased extension of the uploaded name.
// Example output for "Cat.PNG": "0b5f2c1e-3d4a-4d8e-9a57-2f7c9b0e6a11.png"
func NewStoredFileName(originalName string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
}

func IsAllowedExtension(fileName string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		return false
	}
	return slices.Contains(allowed, ext)
}

// StripExt returns the file name without directory and extension. "a/b/img.png" -> "img"
func StripExt(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func GetTempDir() string {
	return filepath.Join(os.TempDir(), strings.ToLower(GetAppName()))
}

func CreateTemp(pattern string) (*os.File, error) {
	tempDir := GetTempDir()
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return os.CreateTemp(tempDir, pattern)
}
