package resource

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/madrasahub/core"
)

var (
	mediaKindTag  = "mediakind"
	mediaKindText = "must be one of pdf, audio, video or image"

	classLevelTag  = "classlevel"
	classLevelText = "unknown class level"

	categoryTag  = "category"
	categoryText = "unknown category"

	appImageTag  = "appimage"
	appImageText = "unknown app image"
)

// RegisterValidators registers the resource validation tags on validate.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(mediaKindTag, stringValidation(func(s string) bool {
		_, err := ParseMediaKind(s)
		return err == nil
	}))
	core.RegisterCustomTranslation(validate, translator, mediaKindTag, mediaKindText)

	_ = validate.RegisterValidation(classLevelTag, stringValidation(IsClass))
	core.RegisterCustomTranslation(validate, translator, classLevelTag, classLevelText)

	_ = validate.RegisterValidation(categoryTag, stringValidation(func(s string) bool {
		_, ok := LookupCategory(s)
		return ok
	}))
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)

	_ = validate.RegisterValidation(appImageTag, stringValidation(IsAppImageKey))
	core.RegisterCustomTranslation(validate, translator, appImageTag, appImageText)
}

func stringValidation(fn func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if str, ok := fl.Field().Interface().(string); ok {
			return fn(str)
		}
		return false
	}
}
