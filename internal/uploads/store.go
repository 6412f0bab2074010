// Package uploads stores leaf images on disk under random names.
package uploads

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedImage is returned for content that is not JPEG, PNG or WebP.
	ErrUnsupportedImage = errors.New("unsupported image type")
	// ErrTooLarge is returned for images over the configured size limit.
	ErrTooLarge = errors.New("image too large")
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// DefaultMaxBytes caps uploads at 10 MiB.
const DefaultMaxBytes = 10 << 20

// Image is a stored upload.
type Image struct {
	Path     string
	MIMEType string
	Data     []byte
}

// Store writes uploads below a directory
type Store struct {
	dir      string
	maxBytes int64
	logger   *zap.Logger
}

// NewStore creates dir if needed.
func NewStore(dir string, maxBytes int64, logger *zap.Logger) (*Store, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes, logger: logger}, nil
}

// Detect sniffs the image type of data. The client-supplied file name and
// content type are never trusted.
func Detect(data []byte) (*mimetype.MIME, error) {
	mt := mimetype.Detect(data)
	for _, allowed := range allowedTypes {
		if mt.Is(allowed) {
			return mt, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
}

// Save validates and writes data, returning the stored image. original is
// only logged.
func (s *Store) Save(original string, data []byte) (*Image, error) {
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}

	mt, err := Detect(data)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, uuid.New().String()+mt.Extension())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}

	s.logger.Info("Image stored",
		zap.String("original", original),
		zap.String("path", path),
		zap.String("mime", mt.String()),
		zap.Int("bytes", len(data)))

	return &Image{Path: path, MIMEType: mt.String(), Data: data}, nil
}

// Load reads a stored image back.
func (s *Store) Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	mt, err := Detect(data)
	if err != nil {
		return nil, err
	}
	return &Image{Path: path, MIMEType: mt.String(), Data: data}, nil
}

// Remove deletes a stored image. Missing files are ignored.
func (s *Store) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}
