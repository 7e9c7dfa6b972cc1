package resource

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryTree_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantItems  []Node
		wantMedia  MediaSet
		wantLegacy bool
	}{
		{
			name:       "bare list",
			data:       `[{"id":"a","label":"A","pdf":"a.pdf"}]`,
			wantItems:  []Node{{ID: "a", Label: "A", MediaSet: MediaSet{PDF: "a.pdf"}}},
			wantLegacy: true,
		},
		{
			name:      "wrapped",
			data:      `{"rootMedia":{"video":"v.mp4"},"items":[{"id":"a","label":"A"}]}`,
			wantItems: []Node{{ID: "a", Label: "A"}},
			wantMedia: MediaSet{Video: "v.mp4"},
		},
		{name: "wrapped without items", data: `{"rootMedia":{"pdf":"x"}}`, wantItems: []Node{}, wantMedia: MediaSet{PDF: "x"}},
		{name: "wrapped without root media", data: `{"items":[]}`, wantItems: []Node{}},
		{name: "empty bare list", data: `[]`, wantItems: []Node{}, wantLegacy: true},
		{name: "null", data: `null`, wantItems: []Node{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ct CategoryTree
			require.NoError(t, json.Unmarshal([]byte(tt.data), &ct))
			assert.Equal(t, tt.wantItems, ct.Items)
			assert.Equal(t, tt.wantMedia, ct.RootMedia)
			assert.Equal(t, tt.wantLegacy, ct.Legacy())
		})
	}

	t.Run("invalid", func(t *testing.T) {
		var ct CategoryTree
		assert.Error(t, json.Unmarshal([]byte(`"nope"`), &ct))
	})
}

func TestCategoryTree_MarshalJSONIsCanonical(t *testing.T) {
	var ct CategoryTree
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"a","label":"A"}]`), &ct))

	data, err := json.Marshal(ct)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rootMedia":{},"items":[{"id":"a","label":"A"}]}`, string(data))

	data, err = json.Marshal(CategoryTree{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rootMedia":{},"items":[]}`, string(data))
}

func TestNode_JSONFlattensMedia(t *testing.T) {
	n := Node{
		ID:       "u1",
		Label:    "Unit 1",
		MediaSet: MediaSet{PDF: "u.pdf", Audio: "u.mp3"},
		Children: []Node{{ID: "l1", Label: "Lesson 1"}},
	}
	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":"u1","label":"Unit 1","pdf":"u.pdf","audio":"u.mp3","children":[{"id":"l1","label":"Lesson 1"}]}`,
		string(data))

	var got Node
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, n, got)
	assert.True(t, got.IsFolder())
	assert.True(t, got.HasMedia())
	assert.False(t, got.Children[0].IsFolder())
}

func TestDecodeForest(t *testing.T) {
	data := []byte(`{
		"Class 5": {
			"hiddenFeatures": ["dua"],
			"features": {
				"syl": [{"id":"a","label":"A"}],
				"mod": {"rootMedia":{"pdf":"m.pdf"},"items":[]}
			}
		}
	}`)
	forest, err := DecodeForest(data)
	require.NoError(t, err)

	b := forest["Class 5"]
	assert.True(t, b.IsHidden("dua"))
	assert.False(t, b.IsHidden("syl"))
	assert.True(t, b.Categories["syl"].Legacy())
	assert.Equal(t, "m.pdf", b.Categories["mod"].RootMedia.PDF)

	out, err := forest.Encode()
	require.NoError(t, err)
	again, err := DecodeForest(out)
	require.NoError(t, err)
	assert.False(t, again["Class 5"].Categories["syl"].Legacy(), "encoding rewrites the canonical shape")
	assert.Equal(t, b.Categories["syl"].Items, again["Class 5"].Categories["syl"].Items)

	for _, empty := range []string{"", "  ", "null"} {
		f, err := DecodeForest([]byte(empty))
		require.NoError(t, err)
		assert.Empty(t, f)
	}
	_, err = DecodeForest([]byte("{"))
	assert.Error(t, err)
}

func TestForest_CloneIsDeep(t *testing.T) {
	f := Forest{"Class 1": {
		HiddenFeatureIDs: []string{"dua"},
		Categories: map[string]CategoryTree{
			"syl": {Items: []Node{{ID: "a", Label: "A", Children: []Node{{ID: "b", Label: "B"}}}}},
		},
	}}
	c := f.Clone()
	c["Class 1"].Categories["syl"].Items[0].Children[0].Label = "changed"
	c["Class 1"].HiddenFeatureIDs[0] = "mod"

	assert.Equal(t, "B", f["Class 1"].Categories["syl"].Items[0].Children[0].Label)
	assert.Equal(t, "dua", f["Class 1"].HiddenFeatureIDs[0])
}

func TestMediaSet(t *testing.T) {
	m := MediaSet{}.With(MediaAudio, "a.mp3").With(MediaImage, "i.png").With(MediaPDF, "p.pdf")
	assert.Equal(t, []MediaKind{MediaPDF, MediaImage, MediaAudio}, m.Kinds())
	assert.Equal(t, "i.png", m.Get(MediaImage))

	m = m.With(MediaPDF, "")
	assert.Equal(t, "", m.PDF)
	assert.False(t, m.IsEmpty())
	assert.True(t, MediaSet{}.IsEmpty())

	_, err := ParseMediaKind("gif")
	assert.ErrorIs(t, err, ErrInvalidMediaKind)
	k, err := ParseMediaKind("video")
	assert.NoError(t, err)
	assert.Equal(t, MediaVideo, k)
}

func TestNewNodeIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewNodeID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
