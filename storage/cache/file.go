package cache

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasahub/core/resource"
)

// FileCache keeps the last fetched forest in a local file.
type FileCache struct {
	path string
}

var _ resource.Cache = (*FileCache)(nil)

func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

func (c *FileCache) Path() string { return c.path }

func (c *FileCache) Read() ([]byte, error) {
	data, err := ioutil.ReadFile(c.path)
	if err != nil {
		return nil, errors.Wrap(err, "reading forest cache")
	}
	return data, nil
}

// Write replaces the cache file atomically.
func (c *FileCache) Write(data []byte) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating cache directory")
	}
	tmp, err := ioutil.TempFile(dir, ".forest-*")
	if err != nil {
		return errors.Wrap(err, "creating cache file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing cache file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing cache file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), c.path), "replacing cache file")
}
