package uploads

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store кладёт загруженные файлы во временную папку под уникальными именами.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save spools r to disk. The returned cleanup must be called on every path.
func (s *Store) Save(r io.Reader, filename string) (path string, cleanup func(), err error) {
	name := uuid.NewString() + extension(filename)
	path = filepath.Join(s.dir, name)

	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", nil, fmt.Errorf("create upload file: %w", err)
	}

	cleanup = func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("[uploads] remove %s: %v", path, rmErr)
		}
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		cleanup()
		return "", nil, fmt.Errorf("write upload file: %w", err)
	}
	if err := out.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close upload file: %w", err)
	}

	return path, cleanup, nil
}

// extension keeps the client's audio extension so providers can sniff the format.
func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
