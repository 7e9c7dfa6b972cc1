package resource

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/madrasahub/core"
)

func TestHardHidden(t *testing.T) {
	tests := []struct {
		class    string
		category string
		want     bool
	}{
		{"Class 1", CategoryVideoClasses, true},
		{"Class 1", CategoryBookGuide, true},
		{"Class 1", CategoryTranslatedGuide, true},
		{"Class 1", CategoryDua, false},
		{"Class 2", CategoryVideoClasses, true},
		{"Class 4", CategoryTranslatedGuide, true},
		{"Class 4", CategoryBookGuide, false},
		{"Class 5", CategoryVideoClasses, false},
		{"Plus One", CategoryTranslatedGuide, false},
		{"Plus Two", CategoryTranslatedGuide, true},
		{"Plus Two", CategoryVideoClasses, false},
	}
	for _, tt := range tests {
		t.Run(tt.class+"/"+tt.category, func(t *testing.T) {
			if got := HardHidden(tt.class, tt.category); got != tt.want {
				t.Errorf("HardHidden() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisibleCategories(t *testing.T) {
	bucket := ClassBucket{HiddenFeatureIDs: []string{CategoryRhymes}}
	var ids []string
	for _, c := range VisibleCategories("Class 2", bucket) {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{
		CategoryBookGuide, CategoryDua, CategorySyllabus, CategoryTimetable, CategoryModelPapers, CategoryAlphabets,
	}, ids)
}

func TestLabels(t *testing.T) {
	l := NewLabels()
	assert.Equal(t, "Dua", l.Label(CategoryDua))
	assert.Equal(t, "Dua", l.Label(CategoryDua, "en-US"))
	assert.Equal(t, "പ്രാർത്ഥനകൾ", l.Label(CategoryDua, "ml"))
	assert.Equal(t, "Rhymes", l.Label(CategoryRhymes, "fr"))
	assert.Equal(t, "unknown", l.Label("unknown", "ml"))
}

func TestRegisterValidators(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	RegisterValidators(validate, translator)

	type req struct {
		Class    string `json:"class" validate:"classlevel"`
		Category string `json:"category" validate:"category"`
		Kind     string `json:"kind" validate:"mediakind"`
		Key      string `json:"key" validate:"appimage"`
	}

	require.NoError(t, validate.Struct(req{"Plus Two", CategoryTimetable, "audio", "quran"}))

	err := validate.Struct(req{"Class 0", "quran", "gif", "syl"})
	require.Error(t, err)
	errs := err.(validator.ValidationErrors)
	got := make(map[string]string, len(errs))
	for _, fe := range errs {
		got[fe.Field()] = fe.Translate(translator)
	}
	assert.Equal(t, map[string]string{
		"class":    classLevelText,
		"category": categoryText,
		"kind":     mediaKindText,
		"key":      appImageText,
	}, got)
}
