package uploadsvc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasahub/core/resource"
)

// LocalUploader stores files under a directory served at baseURL.
type LocalUploader struct {
	dir     string
	baseURL string
}

var _ resource.Uploader = (*LocalUploader)(nil)

func NewLocalUploader(dir, baseURL string) *LocalUploader {
	return &LocalUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (u *LocalUploader) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", resource.NewUploadError(resource.UploadGeneric, u.dir, err)
	}
	dst := filepath.Join(u.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", resource.NewUploadError(resource.UploadGeneric, u.dir, errors.Wrap(err, "creating upload directory"))
	}

	f, err := os.Create(dst)
	if err != nil {
		kind := resource.UploadGeneric
		if os.IsPermission(err) {
			kind = resource.UploadAccessPolicy
		}
		return "", resource.NewUploadError(kind, u.dir, errors.Wrap(err, "creating file"))
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", resource.NewUploadError(resource.UploadGeneric, u.dir, errors.Wrap(err, "writing file"))
	}
	if err := f.Close(); err != nil {
		return "", resource.NewUploadError(resource.UploadGeneric, u.dir, errors.Wrap(err, "closing file"))
	}
	return u.baseURL + "/" + name, nil
}
