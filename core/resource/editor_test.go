package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reachable collects every id reachable from the category root by GetChildren calls.
func reachable(s *Store, class, category string) map[string]bool {
	ids := make(map[string]bool)
	var walk func(path []string)
	walk = func(path []string) {
		for _, n := range s.GetChildren(class, category, path) {
			ids[n.ID] = true
			walk(append(append([]string(nil), path...), n.ID))
		}
	}
	walk(nil)
	return ids
}

func TestEditor_AddNode(t *testing.T) {
	s := NewStore(nil)
	e := NewEditor(s)
	sess := NewEditorSession(testClass, testCategory)

	n1, err := e.AddNode(sess, "Unit 1")
	require.NoError(t, err)
	n2, err := e.AddNode(sess, "  ")
	require.NoError(t, err)

	assert.NotEqual(t, n1.ID, n2.ID)
	assert.Equal(t, DefaultNodeLabel, n2.Label)
	children, err := e.Children(sess)
	require.NoError(t, err)
	assert.Equal(t, []Node{n1, n2}, children)
}

func TestEditor_AddNodeAtDepthRefreshesTail(t *testing.T) {
	s := deepStore()
	e := NewEditor(s)
	sess := NewEditorSession(testClass, testCategory)
	require.NoError(t, e.Descend(sess, "a"))
	require.NoError(t, e.Descend(sess, "b"))

	n, err := e.AddNode(sess, "Lesson")
	require.NoError(t, err)

	tail := sess.Path.TailChildren()
	require.Len(t, tail, 2)
	assert.Equal(t, n.ID, tail[1].ID)
	assert.Equal(t, s.GetChildren(testClass, testCategory, []string{"a", "b"}), tail)
}

func TestEditor_RenameAndSetMedia(t *testing.T) {
	s := deepStore()
	e := NewEditor(s)
	sess := NewEditorSession(testClass, testCategory)
	require.NoError(t, e.Descend(sess, "a"))

	require.NoError(t, e.RenameNode(sess, "b2", "Renamed"))
	require.NoError(t, e.SetMedia(sess, "b2", MediaVideo, "v.mp4"))
	require.NoError(t, e.SetMedia(sess, "b", MediaPDF, "folder.pdf"), "media on folders is allowed")

	children, err := e.Children(sess)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", children[1].Label)
	assert.Equal(t, "v.mp4", children[1].Video)
	assert.Equal(t, "folder.pdf", children[0].PDF)
	assert.Len(t, children[0].Children, 1)

	assert.ErrorIs(t, e.RenameNode(sess, "nope", "x"), ErrNodeNotFound)
	assert.ErrorIs(t, e.SetMedia(sess, "nope", MediaPDF, "x"), ErrNodeNotFound)
}

func TestEditor_DeleteNodeRemovesSubtree(t *testing.T) {
	s := deepStore()
	e := NewEditor(s)
	sess := NewEditorSession(testClass, testCategory)

	require.NoError(t, e.DeleteNode(sess, "a"))

	ids := reachable(s, testClass, testCategory)
	for _, id := range []string{"a", "b", "b2", "c", "d"} {
		assert.False(t, ids[id], "%q still reachable", id)
	}
	assert.True(t, ids["a2"])
	assert.ErrorIs(t, e.DeleteNode(sess, "a"), ErrNodeNotFound)
}

func TestEditor_SetRootMedia(t *testing.T) {
	s := deepStore()
	e := NewEditor(s)
	sess := NewEditorSession(testClass, testCategory)

	require.NoError(t, e.SetRootMedia(sess, MediaPDF, "main.pdf"))
	assert.Equal(t, "main.pdf", s.GetRootMedia(testClass, testCategory).PDF)

	require.NoError(t, e.Descend(sess, "a"))
	require.NoError(t, e.SetRootMedia(sess, MediaAudio, "lesson.mp3"))

	media, err := e.RootMedia(sess)
	require.NoError(t, err)
	assert.Equal(t, MediaSet{Audio: "lesson.mp3"}, media)
	assert.Equal(t, "lesson.mp3", s.GetChildren(testClass, testCategory, nil)[0].Audio)
	assert.Equal(t, "main.pdf", s.GetRootMedia(testClass, testCategory).PDF, "category root media is untouched")
}

func TestEditor_StalePathResets(t *testing.T) {
	s := deepStore()
	e := NewEditor(s)
	sess := NewEditorSession(testClass, testCategory)
	require.NoError(t, e.Descend(sess, "a"))
	require.NoError(t, e.Descend(sess, "b"))

	other := NewEditorSession(testClass, testCategory)
	require.NoError(t, e.DeleteNode(other, "a"))

	_, err := e.AddNode(sess, "orphan")
	assert.ErrorIs(t, err, ErrStalePath)
	assert.True(t, sess.Path.AtRoot())

	children, err := e.Children(sess)
	require.NoError(t, err)
	assert.Equal(t, []Node{{ID: "a2", Label: "A2"}}, children)
}

func TestEditor_Busy(t *testing.T) {
	s := deepStore()
	e := NewEditor(s)
	sess := NewEditorSession(testClass, testCategory)
	sess.Busy = true
	v := s.Version()

	_, err := e.AddNode(sess, "x")
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, e.RenameNode(sess, "a", "x"), ErrBusy)
	assert.ErrorIs(t, e.DeleteNode(sess, "a"), ErrBusy)
	assert.ErrorIs(t, e.SetMedia(sess, "a", MediaPDF, "x"), ErrBusy)
	assert.ErrorIs(t, e.SetRootMedia(sess, MediaPDF, "x"), ErrBusy)
	assert.Equal(t, v, s.Version())

	// navigation stays available
	assert.NoError(t, e.Descend(sess, "a"))
}

func TestEditor_NoCategory(t *testing.T) {
	e := NewEditor(NewStore(nil))
	_, err := e.AddNode(&EditorSession{Class: testClass}, "x")
	assert.ErrorIs(t, err, ErrNoCategory)
}

func TestEditor_Navigation(t *testing.T) {
	s := deepStore()
	e := NewEditor(s)
	sess := NewEditorSession(testClass, testCategory)

	require.NoError(t, e.Descend(sess, "a"))
	require.NoError(t, e.Descend(sess, "b2"), "leaves can be entered to start a sub-list")
	assert.ErrorIs(t, e.Descend(sess, "zz"), ErrNodeNotFound)

	e.Ascend(sess)
	assert.Equal(t, []string{"a"}, sess.Path.IDs())
	require.NoError(t, e.Descend(sess, "b"))
	require.NoError(t, e.Descend(sess, "c"))
	e.JumpTo(sess, 0)
	assert.Equal(t, []string{"a"}, sess.Path.IDs())
	e.Reset(sess)
	assert.True(t, sess.Path.AtRoot())
}
