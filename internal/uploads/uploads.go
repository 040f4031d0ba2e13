// Package uploads manages the shared file namespace for attachments
// and images. Files are written once at upload; deletion is best-effort
// and never fails the calling operation.
package uploads

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes an uploaded file under a generated name and returns the
// relative path stored in document fields and served under /uploads/.
func (s *Store) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	defer file.Close()
	ext := filepath.Ext(header.Filename)
	name := uuid.NewString() + strings.ToLower(ext)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return name, nil
}

// Remove deletes stored files by relative path. Failures are logged and
// swallowed: file cleanup must never abort the delete that triggered it.
func (s *Store) Remove(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		full := filepath.Join(s.dir, filepath.Base(p))
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			slog.WarnContext(ctx, "file cleanup failed", "path", p, "err", err)
		}
	}
}

// Dir returns the backing directory, for the static file server.
func (s *Store) Dir() string { return s.dir }
