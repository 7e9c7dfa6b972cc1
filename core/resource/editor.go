package resource

import (
	"strings"

	"github.com/pkg/errors"
)

// DefaultNodeLabel is the label given to nodes added without one.
const DefaultNodeLabel = "New Resource"

// EditorSession is the explicit state of one admin editing a category.
type EditorSession struct {
	Class    string
	Category string
	Path     Navigator
	// Busy is set while a save is in flight; structural edits are refused meanwhile.
	Busy bool
}

func NewEditorSession(class, category string) *EditorSession {
	return &EditorSession{Class: class, Category: category}
}

// Editor applies admin mutations at a session's current path: read the current
// children, compute the new list, write it back, then refresh the session's path.
type Editor struct {
	store *Store
}

func NewEditor(store *Store) *Editor {
	return &Editor{store: store}
}

// Children returns the listing at the session's current path. The path is re-derived
// from the store first; ErrStalePath means it was reset to root.
func (e *Editor) Children(sess *EditorSession) ([]Node, error) {
	if sess.Category == "" {
		return nil, ErrNoCategory
	}
	if !sess.Path.Sync(e.store, sess.Class, sess.Category) {
		return e.store.GetChildren(sess.Class, sess.Category, nil), ErrStalePath
	}
	return e.store.GetChildren(sess.Class, sess.Category, sess.Path.IDs()), nil
}

// RootMedia returns the media edited by SetRootMedia at the current path: the category
// root media at root, the current folder's own media below it.
func (e *Editor) RootMedia(sess *EditorSession) (MediaSet, error) {
	if _, err := e.Children(sess); err != nil {
		return MediaSet{}, err
	}
	if tail, ok := sess.Path.Tail(); ok {
		return tail.MediaSet, nil
	}
	return e.store.GetRootMedia(sess.Class, sess.Category), nil
}

// Descend moves into the child id of the current listing. Leaves may be entered too:
// that is how an admin starts a sub-list under an item.
func (e *Editor) Descend(sess *EditorSession, id string) error {
	children, err := e.Children(sess)
	if err != nil {
		return err
	}
	i := indexOf(children, id)
	if i < 0 {
		return errors.Wrapf(ErrNodeNotFound, "descending into %q", id)
	}
	sess.Path.Descend(children[i])
	return nil
}

func (e *Editor) Ascend(sess *EditorSession) { sess.Path.AscendOne() }

func (e *Editor) JumpTo(sess *EditorSession, index int) { sess.Path.JumpTo(index) }

func (e *Editor) Reset(sess *EditorSession) { sess.Path.Reset() }

// AddNode appends a new leaf with a fresh id.
func (e *Editor) AddNode(sess *EditorSession, label string) (Node, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultNodeLabel
	}
	node := NewNode(label)
	err := e.mutate(sess, func(children []Node) ([]Node, error) {
		return append(children, node), nil
	})
	if err != nil {
		return Node{}, err
	}
	return node, nil
}

func (e *Editor) RenameNode(sess *EditorSession, id, label string) error {
	return e.mutate(sess, replaceByID(id, func(n Node) Node {
		n.Label = label
		return n
	}))
}

// SetMedia sets one media field of the child id; url "" clears it.
// Folders are not blocked here: hiding the per-item form for folders is a UI policy.
func (e *Editor) SetMedia(sess *EditorSession, id string, kind MediaKind, url string) error {
	return e.mutate(sess, replaceByID(id, func(n Node) Node {
		n.MediaSet = n.MediaSet.With(kind, url)
		return n
	}))
}

// DeleteNode removes the child id together with its whole subtree.
func (e *Editor) DeleteNode(sess *EditorSession, id string) error {
	return e.mutate(sess, func(children []Node) ([]Node, error) {
		out := make([]Node, 0, len(children))
		for _, n := range children {
			if n.ID != id {
				out = append(out, n)
			}
		}
		if len(out) == len(children) {
			return nil, errors.Wrapf(ErrNodeNotFound, "deleting %q", id)
		}
		return out, nil
	})
}

// SetRootMedia sets the category's root media at root, or the current folder's own
// ("lesson-level") media below it.
func (e *Editor) SetRootMedia(sess *EditorSession, kind MediaKind, url string) error {
	if sess.Busy {
		return ErrBusy
	}
	if _, err := e.Children(sess); err != nil {
		return err
	}
	ids := sess.Path.IDs()
	if !e.store.SetMediaField(sess.Class, sess.Category, ids, kind, url) {
		sess.Path.Reset()
		return ErrStalePath
	}
	if len(ids) > 0 {
		sess.Path.Sync(e.store, sess.Class, sess.Category)
	}
	return nil
}

func (e *Editor) mutate(sess *EditorSession, fn func([]Node) ([]Node, error)) error {
	if sess.Busy {
		return ErrBusy
	}
	children, err := e.Children(sess)
	if err != nil {
		return err
	}
	newList, err := fn(children)
	if err != nil {
		return err
	}
	if !e.store.SetChildren(sess.Class, sess.Category, sess.Path.IDs(), newList) {
		sess.Path.Reset()
		return ErrStalePath
	}
	sess.Path.RefreshTail(newList)
	return nil
}

func replaceByID(id string, fn func(Node) Node) func([]Node) ([]Node, error) {
	return func(children []Node) ([]Node, error) {
		i := indexOf(children, id)
		if i < 0 {
			return nil, errors.Wrapf(ErrNodeNotFound, "updating %q", id)
		}
		out := make([]Node, len(children))
		copy(out, children)
		out[i] = fn(out[i])
		return out, nil
	}
}
