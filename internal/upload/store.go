package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// Store saves product images under a single directory, keyed by the
// sanitized original filename.
type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: cannot create dir %s: %w", dir, err)
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) Save(file *multipart.FileHeader) (string, error) {
	name := SanitizeFilename(file.Filename)
	if name == "" {
		return "", fmt.Errorf("upload: empty filename")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("upload: open failed: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("upload: create failed: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("upload: write failed: %w", err)
	}

	return name, nil
}

// SanitizeFilename strips path components and anything outside a safe
// character set.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	out := b.String()
	if out == "." || out == ".." {
		return ""
	}
	return strings.Trim(out, ".")
}
