package uploadsvc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/trezcool/madrasahub/core/resource"
)

// GCSUploader stores files in a Google Cloud Storage bucket.
type GCSUploader struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

var _ resource.Uploader = (*GCSUploader)(nil)

// NewGCSUploader connects to GCS with the default credentials. baseURL may point at a CDN
// in front of the bucket; it defaults to the public storage.googleapis.com URL.
func NewGCSUploader(ctx context.Context, bucket, baseURL string, opts ...option.ClientOption) (*GCSUploader, error) {
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating storage client")
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://storage.googleapis.com/%s", bucket)
	}
	return &GCSUploader{client: client, bucket: bucket, baseURL: baseURL}, nil
}

func (u *GCSUploader) Close() error { return u.client.Close() }

func (u *GCSUploader) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := u.client.Bucket(u.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType(name)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", classify(u.bucket, errors.Wrap(err, "writing object"))
	}
	if err := w.Close(); err != nil {
		return "", classify(u.bucket, errors.Wrap(err, "closing object writer"))
	}
	return u.baseURL + "/" + name, nil
}

// classify maps storage failures onto the upload error kinds.
func classify(bucket string, err error) *resource.UploadError {
	if errors.Is(err, storage.ErrBucketNotExist) {
		return resource.NewUploadError(resource.UploadMissingBucket, bucket, err)
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case http.StatusForbidden, http.StatusUnauthorized:
			return resource.NewUploadError(resource.UploadAccessPolicy, bucket, err)
		case http.StatusNotFound:
			return resource.NewUploadError(resource.UploadMissingBucket, bucket, err)
		}
	}
	return resource.NewUploadError(resource.UploadGeneric, bucket, err)
}
