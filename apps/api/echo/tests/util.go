package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	. "github.com/trezcool/madrasahub/apps/api/echo"
	"github.com/trezcool/madrasahub/core"
	"github.com/trezcool/madrasahub/core/resource"
	uploadsvc "github.com/trezcool/madrasahub/services/upload"
	"github.com/trezcool/madrasahub/tests"
)

const (
	testPasscode = "4321"
	mediaBaseURL = "http://localhost:8000/media"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type app struct {
	Server
	conf *core.Config
	svc  *resource.Service
	repo resource.Repository
}

func setup(t *testing.T, forest resource.Forest) app {
	hash, err := bcrypt.GenerateFromPassword([]byte(testPasscode), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("setup(): %v", err)
	}
	conf := &core.Config{
		TestMode:          true,
		AppName:           "Madrasa Hub",
		SecretKey:         "test-secret",
		AdminPasscodeHash: string(hash),
		Server:            core.ServerConfig{JWTExpirationDelta: time.Hour},
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	resource.RegisterValidators(validate, translator)

	logger := testutil.Logger(t)
	uploader := uploadsvc.NewLocalUploader(t.TempDir(), mediaBaseURL)
	svc, repo := testutil.NewService(t, forest, uploader, logger)

	server := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Service:    svc,
		Validate:   validate,
		Translator: translator,
	})
	return app{Server: server, conf: conf, svc: svc, repo: repo}
}

func (a app) adminToken(t *testing.T) string {
	token, err := GenerateToken(a.conf, GetAdminClaims(a.conf))
	if err != nil {
		t.Fatalf("adminToken(): %v", err)
	}
	return token
}

// do serves a JSON request and decodes the response into out when it is not nil.
func (a app) do(t *testing.T, method, path, token string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	if body != nil {
		data = marshallObj(t, body)
	}
	req, rec := newAuthRequest(method, path, token, data)
	a.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decoding %s %s response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func newUploadRequest(t *testing.T, path, token, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}
	if _, err = part.Write(content); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func jsonDecode(rec *httptest.ResponseRecorder, out interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), out)
}
