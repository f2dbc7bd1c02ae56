package fs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/crux"
)

// FileStore writes pages with atomic update semantics. Pages are saved to
// a temporary directory which replaces the output directory on Commit.
type FileStore struct {
	baseDir string
	name    string
	now     func() time.Time
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
		now:     time.Now,
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes r to the temporary directory and returns its relative path.
func (s *FileStore) Save(ctx context.Context, r *crux.Resource) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r == nil || r.URL == nil {
		return "", crux.Errorf(crux.EINVALID, "resource has no url")
	}

	relPath, err := URLToPath(r.URL.String())
	if err != nil {
		return "", err
	}
	content, err := FormatResource(r, s.now())
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", crux.WrapError(crux.EINTERNAL, err, "create directory for %s", relPath)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		return "", crux.WrapError(crux.EINTERNAL, err, "write %s", relPath)
	}
	return relPath, nil
}

// Commit replaces the output directory with the saved pages.
func (s *FileStore) Commit() error {
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return crux.WrapError(crux.EINTERNAL, err, "remove %s", s.finalDir())
	}
	if err := os.Rename(s.tempDir(), s.finalDir()); err != nil {
		return crux.WrapError(crux.EINTERNAL, err, "commit %s", s.finalDir())
	}
	return nil
}

// Abort discards the saved pages.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
