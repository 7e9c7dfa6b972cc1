package testutil

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/trezcool/madrasahub/core"
	"github.com/trezcool/madrasahub/core/resource"
	logsvc "github.com/trezcool/madrasahub/services/logger"
	inmemdb "github.com/trezcool/madrasahub/storage/database/inmem"
)

// Leaf returns a node without children.
func Leaf(id, label string, media ...resource.MediaSet) resource.Node {
	n := resource.Node{ID: id, Label: label}
	if len(media) > 0 {
		n.MediaSet = media[0]
	}
	return n
}

// Folder returns a node holding children.
func Folder(id, label string, children ...resource.Node) resource.Node {
	return resource.Node{ID: id, Label: label, Children: children}
}

// Forest builds a forest holding a single category tree.
func Forest(class, category string, tree resource.CategoryTree) resource.Forest {
	return resource.Forest{
		class: resource.ClassBucket{
			Categories: map[string]resource.CategoryTree{category: tree},
		},
	}
}

// SeedSettings writes forest into repo under the forest settings key.
func SeedSettings(t *testing.T, repo resource.Repository, forest resource.Forest) {
	t.Helper()
	data, err := forest.Encode()
	if err != nil {
		t.Fatalf("SeedSettings(): %v", err)
	}
	if err = repo.SetSetting(context.Background(), resource.KeyForest, data); err != nil {
		t.Fatalf("SeedSettings(): %v", err)
	}
}

// NewService returns a loaded service backed by an in-memory settings store seeded with forest.
func NewService(t *testing.T, forest resource.Forest, uploader resource.Uploader, logger core.Logger) (*resource.Service, resource.Repository) {
	t.Helper()
	repo := inmemdb.NewSettingsRepository(inmemdb.Open())
	if forest != nil {
		SeedSettings(t, repo, forest)
	}
	svc := resource.NewService(repo, nil, uploader, logger)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("NewService(): %v", err)
	}
	return svc, repo
}

// Logger returns a core.Logger writing to the test log.
func Logger(t *testing.T) core.Logger {
	return logsvc.NewZapLoggerFrom(zaptest.NewLogger(t))
}
