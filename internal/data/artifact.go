package data

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/DevRickLin/daily-digest/internal/biz/repo"
)

// fileArtifactRepo writes reports as UTF-8 text files under one directory
type fileArtifactRepo struct {
	dir string
}

// NewFileArtifactRepo creates a report store rooted at dir
func NewFileArtifactRepo(dir string) repo.ArtifactRepo {
	return &fileArtifactRepo{dir: dir}
}

func (r *fileArtifactRepo) Save(ctx context.Context, name, text string) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create output dir %s", r.dir)
	}
	path := filepath.Join(r.dir, filepath.Base(name))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", errors.Wrapf(err, "write report %s", path)
	}
	return path, nil
}
