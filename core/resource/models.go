package resource

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MediaKind names one slot of a MediaSet.
type MediaKind string

const (
	MediaPDF   MediaKind = "pdf"
	MediaVideo MediaKind = "video"
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
)

// MediaPriority is the order in which a media view picks its initial tab.
var MediaPriority = []MediaKind{MediaPDF, MediaVideo, MediaImage, MediaAudio}

func ParseMediaKind(s string) (MediaKind, error) {
	switch k := MediaKind(s); k {
	case MediaPDF, MediaVideo, MediaImage, MediaAudio:
		return k, nil
	}
	return "", errors.Wrapf(ErrInvalidMediaKind, "%q", s)
}

// MediaSet holds at most one URL per kind. An empty string means "absent".
type MediaSet struct {
	PDF   string `json:"pdf,omitempty"`
	Audio string `json:"audio,omitempty"`
	Video string `json:"video,omitempty"`
	Image string `json:"image,omitempty"`
}

func (m MediaSet) Get(kind MediaKind) string {
	switch kind {
	case MediaPDF:
		return m.PDF
	case MediaAudio:
		return m.Audio
	case MediaVideo:
		return m.Video
	case MediaImage:
		return m.Image
	}
	return ""
}

// With returns a copy of m with the given field set; url "" clears it.
func (m MediaSet) With(kind MediaKind, url string) MediaSet {
	switch kind {
	case MediaPDF:
		m.PDF = url
	case MediaAudio:
		m.Audio = url
	case MediaVideo:
		m.Video = url
	case MediaImage:
		m.Image = url
	}
	return m
}

// IsEmpty reports whether no field is populated.
func (m MediaSet) IsEmpty() bool {
	return m.PDF == "" && m.Audio == "" && m.Video == "" && m.Image == ""
}

// Kinds returns the populated kinds in priority order.
func (m MediaSet) Kinds() []MediaKind {
	kinds := make([]MediaKind, 0, len(MediaPriority))
	for _, k := range MediaPriority {
		if m.Get(k) != "" {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Node is an element of a category tree. A node with one or more children is a folder,
// otherwise a leaf. Media is flattened into the node's JSON object.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	MediaSet
	Children []Node `json:"children,omitempty"`
}

func (n Node) IsFolder() bool { return len(n.Children) > 0 }

func (n Node) HasMedia() bool { return !n.MediaSet.IsEmpty() }

// NewNodeID returns a fresh, globally unique node id.
func NewNodeID() string { return uuid.NewString() }

// NewNode returns an empty leaf with a fresh id.
func NewNode(label string) Node {
	return Node{ID: NewNodeID(), Label: label}
}

// CategoryTree is the content of one category for one class.
// On disk it is either a bare list of nodes (legacy) or {rootMedia, items}.
type CategoryTree struct {
	RootMedia MediaSet `json:"rootMedia"`
	Items     []Node   `json:"items"`

	legacy bool
}

// Legacy reports whether the tree was decoded from the bare-list shape and has not
// been written since.
func (ct CategoryTree) Legacy() bool { return ct.legacy }

type wrappedTree struct {
	RootMedia *MediaSet `json:"rootMedia"`
	Items     []Node    `json:"items"`
}

// categoryTreeShape is the decoding boundary: exactly one of Bare or Wrapped is set.
type categoryTreeShape struct {
	Bare    []Node
	Wrapped *wrappedTree
}

func (s *categoryTreeShape) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '[':
		return errors.Wrap(json.Unmarshal(data, &s.Bare), "decoding bare category list")
	default:
		s.Wrapped = new(wrappedTree)
		return errors.Wrap(json.Unmarshal(data, s.Wrapped), "decoding category object")
	}
}

func (ct *CategoryTree) UnmarshalJSON(data []byte) error {
	var shape categoryTreeShape
	if err := shape.UnmarshalJSON(data); err != nil {
		return err
	}
	*ct = CategoryTree{}
	switch {
	case shape.Bare != nil:
		ct.Items = shape.Bare
		ct.legacy = true
	case shape.Wrapped != nil:
		ct.Items = shape.Wrapped.Items
		if shape.Wrapped.RootMedia != nil {
			ct.RootMedia = *shape.Wrapped.RootMedia
		}
	}
	if ct.Items == nil {
		ct.Items = []Node{}
	}
	return nil
}

// MarshalJSON always writes the canonical object shape.
func (ct CategoryTree) MarshalJSON() ([]byte, error) {
	items := ct.Items
	if items == nil {
		items = []Node{}
	}
	return json.Marshal(struct {
		RootMedia MediaSet `json:"rootMedia"`
		Items     []Node   `json:"items"`
	}{ct.RootMedia, items})
}

// ClassBucket holds all categories of one grade level.
type ClassBucket struct {
	HiddenFeatureIDs []string                `json:"hiddenFeatures"`
	Categories       map[string]CategoryTree `json:"features"`
}

func (b ClassBucket) IsHidden(category string) bool {
	for _, id := range b.HiddenFeatureIDs {
		if id == category {
			return true
		}
	}
	return false
}

// Forest maps a grade level to its bucket. It is persisted as one opaque value.
type Forest map[string]ClassBucket

// DecodeForest decodes a serialized forest; empty input yields an empty forest.
func DecodeForest(data []byte) (Forest, error) {
	forest := make(Forest)
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return forest, nil
	}
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, errors.Wrap(err, "decoding forest")
	}
	return forest, nil
}

func (f Forest) Encode() ([]byte, error) {
	if f == nil {
		f = Forest{}
	}
	data, err := json.Marshal(f)
	return data, errors.Wrap(err, "encoding forest")
}

// Clone returns a deep copy of the forest.
func (f Forest) Clone() Forest {
	out := make(Forest, len(f))
	for class, b := range f {
		nb := ClassBucket{
			HiddenFeatureIDs: append([]string{}, b.HiddenFeatureIDs...),
			Categories:       make(map[string]CategoryTree, len(b.Categories)),
		}
		for id, ct := range b.Categories {
			nb.Categories[id] = CategoryTree{RootMedia: ct.RootMedia, Items: cloneNodes(ct.Items), legacy: ct.legacy}
		}
		out[class] = nb
	}
	return out
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].Children = cloneNodes(n.Children)
	}
	return out
}
