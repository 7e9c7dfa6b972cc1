package resource

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Category ids.
const (
	CategoryVideoClasses    = "videoClasses"
	CategoryBookGuide       = "bookGuide"
	CategoryTranslatedGuide = "translatedGuide"
	CategoryDua             = "dua"
	CategorySyllabus        = "syl"
	CategoryTimetable       = "tim"
	CategoryModelPapers     = "mod"
	CategoryAlphabets       = "alphabets"
	CategoryRhymes          = "rhymes"
)

// Category is a registered resource category.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	// LocalLabel is the Malayalam label.
	LocalLabel string `json:"localLabel"`
	Color      string `json:"color"`
}

var categories = []Category{
	{CategoryVideoClasses, "Video Classes", "വീഡിയോ ക്ലാസുകൾ", "#2D235C"},
	{CategoryBookGuide, "Book Guide", "പുസ്തക സഹായി", "#1976D2"},
	{CategoryTranslatedGuide, "Translated Guide", "വിവർത്തനം", "#00796B"},
	{CategoryDua, "Dua", "പ്രാർത്ഥനകൾ", "#D32F2F"},
	{CategorySyllabus, "Syllabus", "സിലബസ്", "#3949AB"},
	{CategoryTimetable, "Timetable", "ടൈംടേബിൾ", "#8E24AA"},
	{CategoryModelPapers, "Model Papers", "മോഡൽ പേപ്പേഴ്സ്", "#0288D1"},
	{CategoryAlphabets, "Alphabets", "അക്ഷരങ്ങൾ", "#00897B"},
	{CategoryRhymes, "Rhymes", "പാട്ടുകൾ", "#F4511E"},
}

// Classes are the grade levels, in display order.
var Classes = []string{
	"Class 1", "Class 2", "Class 3", "Class 4", "Class 5", "Class 6",
	"Class 7", "Class 8", "Class 9", "Class 10", "Plus One", "Plus Two",
}

// hardHidden lists categories never shown for a class, whatever its bucket says.
var hardHidden = map[string][]string{
	"Class 1":  {CategoryVideoClasses, CategoryBookGuide, CategoryTranslatedGuide},
	"Class 2":  {CategoryVideoClasses, CategoryTranslatedGuide},
	"Class 3":  {CategoryVideoClasses, CategoryTranslatedGuide},
	"Class 4":  {CategoryVideoClasses, CategoryTranslatedGuide},
	"Plus Two": {CategoryTranslatedGuide},
}

// AppImageKeys are the cards whose cover image can be customized.
var AppImageKeys = []string{
	CategoryVideoClasses, "quran", CategoryBookGuide, CategoryTranslatedGuide, CategoryDua, "toLearn",
}

// Categories returns every registered category.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

func LookupCategory(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func IsClass(class string) bool {
	for _, c := range Classes {
		if c == class {
			return true
		}
	}
	return false
}

func IsAppImageKey(key string) bool {
	for _, k := range AppImageKeys {
		if k == key {
			return true
		}
	}
	return false
}

// HardHidden reports whether category is unconditionally hidden for class.
func HardHidden(class, category string) bool {
	for _, id := range hardHidden[class] {
		if id == category {
			return true
		}
	}
	return false
}

// VisibleCategories returns the categories a learner of class may open.
func VisibleCategories(class string, bucket ClassBucket) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if !HardHidden(class, c.ID) && !bucket.IsHidden(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// Labels localizes category labels. English is the default; Malayalam ("ml") uses the
// registry's local labels.
type Labels struct {
	bundle *i18n.Bundle
}

func NewLabels() *Labels {
	bundle := i18n.NewBundle(language.English)
	for _, c := range categories {
		_ = bundle.AddMessages(language.English, &i18n.Message{ID: c.ID, Other: c.Label})
		_ = bundle.AddMessages(language.Malayalam, &i18n.Message{ID: c.ID, Other: c.LocalLabel})
	}
	return &Labels{bundle: bundle}
}

// Label returns the label of category id for the first matching of langs
// (e.g. an Accept-Language header value). Unknown ids are returned as is.
func (l *Labels) Label(id string, langs ...string) string {
	s, err := i18n.NewLocalizer(l.bundle, langs...).Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return s
}
