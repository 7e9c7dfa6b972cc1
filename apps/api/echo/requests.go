package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/madrasahub/core"
	"github.com/trezcool/madrasahub/core/resource"
)

type (
	LoginRequest struct {
		Passcode string `json:"passcode" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	SessionRequest struct {
		Class    string `json:"class" validate:"required,classlevel"`
		Category string `json:"category" validate:"required,category"`
	}

	DescendRequest struct {
		ID string `json:"id" validate:"required"`
	}

	JumpRequest struct {
		Index int `json:"index" validate:"min=0"`
	}

	NodeRequest struct {
		Label string `json:"label"`
	}

	RenameRequest struct {
		Label string `json:"label" validate:"required,notblank"`
	}

	MediaRequest struct {
		Kind string `json:"kind" validate:"required,mediakind"`
		URL  string `json:"url" validate:"omitempty,url"`
	}

	BannerRequest struct {
		URL string `json:"url" validate:"required,url"`
	}

	AppImageRequest struct {
		Key string `json:"key" validate:"required,appimage"`
		URL string `json:"url" validate:"omitempty,url"`
	}

	HiddenRequest struct {
		Category string `json:"category" validate:"required,category"`
		Hidden   bool   `json:"hidden"`
	}

	SelectRequest struct {
		ID string `json:"id" validate:"required"`
	}

	TabRequest struct {
		Kind string `json:"kind" validate:"required,mediakind"`
	}
)

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r *SessionRequest) Validate(validate *validator.Validate) error {
	r.Class = core.CleanString(r.Class)
	r.Category = core.CleanString(r.Category)
	return validate.Struct(r)
}

func (r *DescendRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r *JumpRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r *RenameRequest) Validate(validate *validator.Validate) error {
	r.Label = core.CleanString(r.Label)
	return validate.Struct(r)
}

func (r *MediaRequest) Validate(validate *validator.Validate) error {
	r.URL = core.CleanString(r.URL)
	return validate.Struct(r)
}

func (r *BannerRequest) Validate(validate *validator.Validate) error {
	r.URL = core.CleanString(r.URL)
	return validate.Struct(r)
}

func (r *AppImageRequest) Validate(validate *validator.Validate) error {
	r.URL = core.CleanString(r.URL)
	return validate.Struct(r)
}

func (r *HiddenRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r *SelectRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r *TabRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

// Responses

type (
	Crumb struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	}

	EditorResponse struct {
		ID       string            `json:"id"`
		Class    string            `json:"class"`
		Category string            `json:"category"`
		Path     []Crumb           `json:"path"`
		Items    []resource.Node   `json:"items"`
		Media    resource.MediaSet `json:"media"`
		Busy     bool              `json:"busy"`
		Dirty    bool              `json:"dirty"`
	}

	ViewerResponse struct {
		ID       string               `json:"id"`
		Class    string               `json:"class"`
		Category string               `json:"category"`
		State    resource.ViewerState `json:"state"`
		Listing  *resource.Listing    `json:"listing,omitempty"`
		Media    *resource.MediaView  `json:"media,omitempty"`
	}

	ClassResponse struct {
		Class      string              `json:"class"`
		Categories []resource.Category `json:"categories"`
	}
)

func newEditorResponse(id string, sess *resource.EditorSession, items []resource.Node, media resource.MediaSet) EditorResponse {
	path := make([]Crumb, 0, sess.Path.Depth())
	for _, n := range sess.Path.Nodes() {
		path = append(path, Crumb{ID: n.ID, Label: n.Label})
	}
	if items == nil {
		items = []resource.Node{}
	}
	return EditorResponse{
		ID:       id,
		Class:    sess.Class,
		Category: sess.Category,
		Path:     path,
		Items:    items,
		Media:    media,
		Busy:     sess.Busy,
	}
}

func newViewerResponse(id string, v *resource.Viewer) ViewerResponse {
	resp := ViewerResponse{ID: id, Class: v.Class, Category: v.Category, State: v.State()}
	switch resp.State {
	case resource.ViewerListing:
		l := v.Listing()
		resp.Listing = &l
	case resource.ViewerMedia:
		resp.Media = v.Media()
	}
	return resp
}
