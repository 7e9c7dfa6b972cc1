package resource

import "github.com/pkg/errors"

// ViewerState is the screen a Viewer is on.
type ViewerState string

const (
	ViewerListing ViewerState = "listing"
	ViewerMedia   ViewerState = "media"
	ViewerClosed  ViewerState = "closed"
)

// ListingItem is one row of a viewer listing.
type ListingItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	// Folders is the number of children; 0 for leaves.
	Folders int `json:"folders"`
	// Badges lists the leaf's pdf/video/audio media, empty for folders.
	Badges []MediaKind `json:"badges"`
	// ExtraResources is set on folders that also carry their own media.
	ExtraResources bool `json:"extraResources"`
}

// Listing is what a viewer shows when no media is open.
type Listing struct {
	Title  string        `json:"title"`
	Crumbs []string      `json:"crumbs"`
	Items  []ListingItem `json:"items"`
	// MainResource is offered at the category root when rootMedia is populated.
	MainResource bool `json:"mainResource"`
	// LessonContent is offered inside a folder that carries its own media.
	LessonContent bool `json:"lessonContent"`
	Empty         bool `json:"empty"`
}

// MediaView is an opened media presentation.
type MediaView struct {
	Title string   `json:"title"`
	Media MediaSet `json:"media"`
	// Tabs holds the present kinds among pdf, video and image, in that order.
	Tabs         []MediaKind `json:"tabs"`
	Active       MediaKind   `json:"active"`
	AudioPlaying bool        `json:"audioPlaying"`

	// opened by the auto-open of a single-resource category
	auto bool
}

var tabKinds = []MediaKind{MediaPDF, MediaVideo, MediaImage}

var badgeKinds = []MediaKind{MediaPDF, MediaVideo, MediaAudio}

func newMediaView(title string, media MediaSet) *MediaView {
	mv := &MediaView{Title: title, Media: media, Tabs: []MediaKind{}}
	for _, k := range tabKinds {
		if media.Get(k) != "" {
			mv.Tabs = append(mv.Tabs, k)
		}
	}
	if kinds := media.Kinds(); len(kinds) > 0 {
		mv.Active = kinds[0]
	}
	return mv
}

// Viewer is the learner's read-only traversal of one category tree snapshot.
type Viewer struct {
	Class    string
	Category string
	Title    string

	tree   CategoryTree
	nav    Navigator
	media  *MediaView
	closed bool
}

// NewViewer opens a viewer on tree. A category with root media and no items skips the
// listing and opens its media directly.
func NewViewer(class, category, title string, tree CategoryTree) *Viewer {
	if tree.Items == nil {
		tree.Items = []Node{}
	}
	v := &Viewer{Class: class, Category: category, Title: title, tree: tree}
	if len(tree.Items) == 0 && !tree.RootMedia.IsEmpty() {
		v.media = newMediaView(title, tree.RootMedia)
		v.media.auto = true
	}
	return v
}

func (v *Viewer) State() ViewerState {
	switch {
	case v.closed:
		return ViewerClosed
	case v.media != nil:
		return ViewerMedia
	}
	return ViewerListing
}

// Media returns the open media view, or nil.
func (v *Viewer) Media() *MediaView {
	if v.media == nil {
		return nil
	}
	mv := *v.media
	mv.Tabs = append([]MediaKind(nil), v.media.Tabs...)
	return &mv
}

func (v *Viewer) Depth() int { return v.nav.Depth() }

func (v *Viewer) items() []Node {
	if v.nav.AtRoot() {
		return v.tree.Items
	}
	return v.nav.TailChildren()
}

// Listing describes the current level.
func (v *Viewer) Listing() Listing {
	l := Listing{Title: v.Title, Crumbs: []string{}, Items: []ListingItem{}}
	for _, n := range v.nav.Nodes() {
		l.Crumbs = append(l.Crumbs, n.Label)
	}
	if tail, ok := v.nav.Tail(); ok {
		l.Title = tail.Label
		l.LessonContent = tail.HasMedia()
	} else {
		l.MainResource = !v.tree.RootMedia.IsEmpty()
	}

	for _, n := range v.items() {
		item := ListingItem{ID: n.ID, Label: n.Label, Folders: len(n.Children), Badges: []MediaKind{}}
		if n.IsFolder() {
			item.ExtraResources = n.HasMedia()
		} else {
			for _, k := range badgeKinds {
				if n.Get(k) != "" {
					item.Badges = append(item.Badges, k)
				}
			}
		}
		l.Items = append(l.Items, item)
	}
	l.Empty = len(l.Items) == 0 && v.nav.AtRoot() && v.tree.RootMedia.IsEmpty()
	return l
}

// Select descends into a folder or opens a leaf's media.
func (v *Viewer) Select(id string) error {
	if err := v.listingOpen(); err != nil {
		return err
	}
	items := v.items()
	i := indexOf(items, id)
	if i < 0 {
		return errors.Wrapf(ErrNodeNotFound, "selecting %q", id)
	}
	n := items[i]
	if n.IsFolder() {
		v.nav.Descend(n)
		return nil
	}
	v.media = newMediaView(n.Label, n.MediaSet)
	return nil
}

// OpenMainResource opens the category root media from the root listing.
func (v *Viewer) OpenMainResource() error {
	if err := v.listingOpen(); err != nil {
		return err
	}
	if !v.nav.AtRoot() || v.tree.RootMedia.IsEmpty() {
		return ErrMediaUnavailable
	}
	v.media = newMediaView(v.Title, v.tree.RootMedia)
	return nil
}

// OpenLessonContent opens the current folder's own media.
func (v *Viewer) OpenLessonContent() error {
	if err := v.listingOpen(); err != nil {
		return err
	}
	tail, ok := v.nav.Tail()
	if !ok || !tail.HasMedia() {
		return ErrMediaUnavailable
	}
	v.media = newMediaView(tail.Label, tail.MediaSet)
	return nil
}

// SelectTab switches the active tab of the open media view.
func (v *Viewer) SelectTab(kind MediaKind) error {
	if v.closed {
		return ErrViewerClosed
	}
	if v.media == nil {
		return ErrNoMediaOpen
	}
	for _, k := range v.media.Tabs {
		if k == kind {
			v.media.Active = kind
			return nil
		}
	}
	return errors.Wrapf(ErrMediaUnavailable, "tab %q", kind)
}

// ToggleAudio starts or stops the shared audio player and returns whether it is playing.
func (v *Viewer) ToggleAudio() (bool, error) {
	if v.closed {
		return false, ErrViewerClosed
	}
	if v.media == nil {
		return false, ErrNoMediaOpen
	}
	if v.media.Media.Audio == "" {
		return false, errors.Wrap(ErrMediaUnavailable, "audio")
	}
	v.media.AudioPlaying = !v.media.AudioPlaying
	return v.media.AudioPlaying, nil
}

// Back leaves the media view (stopping audio), pops one level, or closes the viewer at
// root. It returns the resulting state.
func (v *Viewer) Back() ViewerState {
	switch {
	case v.closed:
	case v.media != nil:
		auto := v.media.auto
		v.media.AudioPlaying = false
		v.media = nil
		if auto && v.nav.AtRoot() && len(v.tree.Items) == 0 {
			v.closed = true
		}
	case !v.nav.AtRoot():
		v.nav.AscendOne()
	default:
		v.closed = true
	}
	return v.State()
}

func (v *Viewer) listingOpen() error {
	switch {
	case v.closed:
		return ErrViewerClosed
	case v.media != nil:
		return ErrMediaOpen
	}
	return nil
}
