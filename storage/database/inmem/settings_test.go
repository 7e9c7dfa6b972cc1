package inmemdb

import (
	"context"
	"testing"

	"github.com/trezcool/madrasahub/core/resource"
)

func TestSettingsRepository(t *testing.T) {
	repo := NewSettingsRepository(Open())
	ctx := context.Background()

	if _, err := repo.GetSetting(ctx, resource.KeyForest); err != resource.ErrSettingNotFound {
		t.Fatalf("GetSetting() error = %v, want %v", err, resource.ErrSettingNotFound)
	}

	value := []byte(`{"Class 1":{}}`)
	if err := repo.SetSetting(ctx, resource.KeyForest, value); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	value[0] = 'X' // the stored copy is not shared with the caller

	got, err := repo.GetSetting(ctx, resource.KeyForest)
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if string(got) != `{"Class 1":{}}` {
		t.Errorf("GetSetting() = %s", got)
	}
}
