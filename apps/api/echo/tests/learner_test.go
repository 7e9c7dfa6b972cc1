package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/madrasahub/apps/api/echo"
	"github.com/trezcool/madrasahub/core/resource"
	"github.com/trezcool/madrasahub/tests"
)

func lessonForest() resource.Forest {
	return testutil.Forest(class, category, resource.CategoryTree{
		RootMedia: resource.MediaSet{PDF: "syllabus.pdf"},
		Items: []resource.Node{
			{ID: "u1", Label: "Unit 1", MediaSet: resource.MediaSet{Video: "u1.mp4"}, Children: []resource.Node{
				testutil.Leaf("l1", "Lesson 1", resource.MediaSet{PDF: "l1.pdf", Audio: "l1.mp3"}),
				testutil.Leaf("l2", "Lesson 2", resource.MediaSet{Image: "l2.png"}),
			}},
			testutil.Leaf("u2", "Unit 2", resource.MediaSet{Audio: "u2.mp3"}),
		},
	})
}

func Test_learnerApi_categories(t *testing.T) {
	a := setup(t, lessonForest())

	var classes []string
	rec := a.do(t, http.MethodGet, "/v1/classes", "", nil, &classes)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, resource.Classes, classes)

	var resp ClassResponse
	rec = a.do(t, http.MethodGet, "/v1/classes/Class%201/categories", "", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Class 1", resp.Class)
	for _, c := range resp.Categories {
		assert.False(t, resource.HardHidden("Class 1", c.ID), c.ID)
	}

	req, rec := newRequest(http.MethodGet, "/v1/classes/"+classURL+"/categories")
	req.Header.Set("Accept-Language", "ml")
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, jsonDecode(rec, &resp))
	var found bool
	for _, c := range resp.Categories {
		if c.ID == resource.CategoryDua {
			found = true
			assert.Equal(t, "പ്രാർത്ഥനകൾ", c.Label)
		}
	}
	assert.True(t, found)

	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marshallObj(t, httpErr{Error: resource.ErrUnknownClass.Error()}),
	}, a.do(t, http.MethodGet, "/v1/classes/Class%2099/categories", "", nil, nil))
}

func Test_learnerApi_viewer(t *testing.T) {
	a := setup(t, lessonForest())

	var v ViewerResponse
	rec := a.do(t, http.MethodPost, "/v1/viewer/sessions", "", SessionRequest{Class: class, Category: category}, &v)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, resource.ViewerListing, v.State)
	require.NotNil(t, v.Listing)
	assert.True(t, v.Listing.MainResource)
	assert.Len(t, v.Listing.Items, 2)
	base := "/v1/viewer/sessions/" + v.ID

	rec = a.do(t, http.MethodPost, base+"/select", "", SelectRequest{ID: "u1"}, &v)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Unit 1"}, v.Listing.Crumbs)
	assert.True(t, v.Listing.LessonContent)

	rec = a.do(t, http.MethodPost, base+"/select", "", SelectRequest{ID: "l1"}, &v)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, resource.ViewerMedia, v.State)
	assert.Equal(t, resource.MediaPDF, v.Media.Active)
	assert.Equal(t, []resource.MediaKind{resource.MediaPDF}, v.Media.Tabs)

	rec = a.do(t, http.MethodPost, base+"/audio", "", nil, &v)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, v.Media.AudioPlaying)

	tests := []httpTest{
		{
			name:     "select while media open",
			method:   http.MethodPost,
			path:     base + "/select",
			body:     []byte(`{"id": "l2"}`),
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: resource.ErrMediaOpen.Error()}),
		},
		{
			name:     "missing tab",
			method:   http.MethodPost,
			path:     base + "/tab",
			body:     []byte(`{"kind": "video"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: resource.ErrMediaUnavailable.Error()}),
		},
		{
			name:     "unknown session",
			method:   http.MethodPost,
			path:     "/v1/viewer/sessions/nope/back",
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			a.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	rec = a.do(t, http.MethodPost, base+"/back", "", nil, &v)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, resource.ViewerListing, v.State)
	assert.Equal(t, []string{"Unit 1"}, v.Listing.Crumbs)

	rec = a.do(t, http.MethodPost, base+"/lesson", "", nil, &v)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Unit 1", v.Media.Title)
	assert.Equal(t, resource.MediaVideo, v.Media.Active)

	a.do(t, http.MethodPost, base+"/back", "", nil, &v)
	a.do(t, http.MethodPost, base+"/back", "", nil, &v)
	rec = a.do(t, http.MethodPost, base+"/back", "", nil, &v)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, resource.ViewerClosed, v.State)

	rec = a.do(t, http.MethodDelete, base, "", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, http.MethodGet, base, "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_learnerApi_autoOpen(t *testing.T) {
	a := setup(t, testutil.Forest(class, resource.CategoryTimetable, resource.CategoryTree{
		RootMedia: resource.MediaSet{Image: "timetable.png"},
	}))

	var v ViewerResponse
	rec := a.do(t, http.MethodPost, "/v1/viewer/sessions", "",
		SessionRequest{Class: class, Category: resource.CategoryTimetable}, &v)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, resource.ViewerMedia, v.State)
	assert.Equal(t, resource.MediaImage, v.Media.Active)

	rec = a.do(t, http.MethodPost, "/v1/viewer/sessions/"+v.ID+"/back", "", nil, &v)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, resource.ViewerClosed, v.State)
}

func Test_learnerApi_home(t *testing.T) {
	a := setup(t, nil)
	require.NoError(t, a.svc.AddBanner("https://cdn.test/b.png"))

	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: []byte(`{"banners": ["https://cdn.test/b.png"], "appImages": {}, "offline": false}`),
	}, a.do(t, http.MethodGet, "/v1/home", "", nil, nil))
}
