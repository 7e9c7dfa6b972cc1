package resource

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrStalePath means a path references an id that is no longer present in the store.
	// The navigator holding that path must be reset to the category root.
	ErrStalePath        = errors.New("path no longer matches the resource tree; navigation was reset")
	ErrNodeNotFound     = errors.New("resource not found")
	ErrBusy             = errors.New("a save is in progress; try again when it completes")
	ErrNoCategory       = errors.New("no category selected")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownClass     = errors.New("unknown class level")
	ErrInvalidMediaKind = errors.New("invalid media kind")
	ErrViewerClosed     = errors.New("viewer is closed")
	ErrNoMediaOpen      = errors.New("no media is open")
	ErrMediaOpen        = errors.New("close the open media first")
	ErrMediaUnavailable = errors.New("media not available for this resource")
)

// UploadErrorKind classifies upload failures.
type UploadErrorKind string

const (
	UploadAccessPolicy  UploadErrorKind = "access-policy"
	UploadMissingBucket UploadErrorKind = "missing-bucket"
	UploadGeneric       UploadErrorKind = "generic"
)

// UploadError is returned by Uploader implementations.
type UploadError struct {
	Kind   UploadErrorKind
	Bucket string
	Err    error
}

func NewUploadError(kind UploadErrorKind, bucket string, err error) *UploadError {
	return &UploadError{Kind: kind, Bucket: bucket, Err: err}
}

func (e *UploadError) Error() string {
	switch e.Kind {
	case UploadAccessPolicy:
		return fmt.Sprintf("upload blocked by the storage access policy of bucket %q: %v", e.Bucket, e.Err)
	case UploadMissingBucket:
		return fmt.Sprintf("bucket %q does not exist", e.Bucket)
	default:
		return fmt.Sprintf("upload failed: %v", e.Err)
	}
}

func (e *UploadError) Unwrap() error { return e.Err }

// Remediation returns operator instructions, only for failures the operator can fix.
func (e *UploadError) Remediation() string {
	switch e.Kind {
	case UploadAccessPolicy:
		return fmt.Sprintf("Grant the uploading account write access to bucket %q "+
			"(an insert/create storage policy on the bucket) and retry the upload.", e.Bucket)
	case UploadMissingBucket:
		return fmt.Sprintf("Create the bucket %q or point the upload bucket setting at an existing one.", e.Bucket)
	}
	return ""
}

// SaveError is returned when the forest could not be written to the settings store.
// The in-memory forest is kept as is; the operator must retry.
type SaveError struct {
	Key string
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving %q failed, changes are kept in memory, retry the save: %v", e.Key, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
