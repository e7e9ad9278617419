package minio

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrUploadFailed   = errors.New(errors.ErrCodeStorageError, "upload failed")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid request")
)

// Kind selects the bucket an object lives in.
type Kind string

const (
	KindContract Kind = "contract"
	KindReport   Kind = "report"
)

const (
	ContentTypePDF = "application/pdf"

	// ReportFilename is the name a generated report is stored and downloaded under.
	ReportFilename = "contract_risk_report.pdf"
)

// Object describes an archived file. Key has the form
// <workspace>/<yyyy>/<mm>/<dd>/<id>-<name>.
type Object struct {
	Kind        Kind      `json:"kind"`
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
	Workspace   string    `json:"workspace"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	ETag        string    `json:"etag,omitempty"`
	StoredAt    time.Time `json:"stored_at"`
}

// Archive stores uploaded contracts and backend-generated reports.
type Archive struct {
	client *Client
	logger logging.Logger
	now    func() time.Time
	newID  func() string
}

func NewArchive(client *Client, log logging.Logger) *Archive {
	return &Archive{
		client: client,
		logger: logging.OrNop(log),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

func (a *Archive) bucket(kind Kind) (string, error) {
	switch kind {
	case KindContract:
		return a.client.config.Buckets.Contracts, nil
	case KindReport:
		return a.client.config.Buckets.Reports, nil
	default:
		return "", ErrInvalidRequest.WithDetail("unknown kind " + string(kind))
	}
}

// PutContract archives an uploaded contract PDF.
func (a *Archive) PutContract(ctx context.Context, workspace, name string, data []byte) (*Object, error) {
	return a.put(ctx, KindContract, workspace, name, data)
}

// PutReport archives a generated risk report.
func (a *Archive) PutReport(ctx context.Context, workspace string, data []byte) (*Object, error) {
	return a.put(ctx, KindReport, workspace, ReportFilename, data)
}

func (a *Archive) put(ctx context.Context, kind Kind, workspace, name string, data []byte) (*Object, error) {
	if len(data) == 0 {
		return nil, ErrInvalidRequest.WithDetail("empty object")
	}
	bucket, err := a.bucket(kind)
	if err != nil {
		return nil, err
	}
	workspace = cleanSegment(workspace, "default")
	name = cleanSegment(name, "unnamed.pdf")
	now := a.now().UTC()
	key := path.Join(workspace, now.Format("2006/01/02"), a.newID()+"-"+name)

	info, err := a.client.api.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: ContentTypePDF,
		UserMetadata: map[string]string{
			"workspace": workspace,
			"filename":  name,
		},
	})
	if err != nil {
		a.logger.Error("archive upload failed", logging.String("bucket", bucket), logging.String("key", key), logging.Err(err))
		return nil, ErrUploadFailed.WithCause(err)
	}

	a.logger.Debug("archived object", logging.String("bucket", bucket), logging.String("key", key), logging.Int64("size", info.Size))
	return &Object{
		Kind:        kind,
		Bucket:      bucket,
		Key:         key,
		Workspace:   workspace,
		Name:        name,
		Size:        int64(len(data)),
		ContentType: ContentTypePDF,
		ETag:        info.ETag,
		StoredAt:    now,
	}, nil
}

// Stat returns the metadata of one archived object.
func (a *Archive) Stat(ctx context.Context, kind Kind, key string) (*Object, error) {
	bucket, err := a.bucket(kind)
	if err != nil {
		return nil, err
	}
	info, err := a.client.api.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, translateError(err)
	}
	obj := objectFromKey(kind, bucket, key)
	obj.Size = info.Size
	obj.ContentType = info.ContentType
	obj.ETag = info.ETag
	obj.StoredAt = info.LastModified
	return obj, nil
}

// List returns a workspace's archived objects of one kind, newest first.
func (a *Archive) List(ctx context.Context, kind Kind, workspace string) ([]Object, error) {
	bucket, err := a.bucket(kind)
	if err != nil {
		return nil, err
	}
	prefix := cleanSegment(workspace, "default") + "/"

	out := []Object{}
	for info := range a.client.api.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, errors.Wrap(info.Err, errors.ErrCodeStorageError, "failed to list archive")
		}
		obj := objectFromKey(kind, bucket, info.Key)
		obj.Size = info.Size
		obj.ETag = info.ETag
		obj.StoredAt = info.LastModified
		out = append(out, *obj)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StoredAt.After(out[j].StoredAt) })
	return out, nil
}

// PresignedURL returns a time-limited download link that saves the object
// under its original name.
func (a *Archive) PresignedURL(ctx context.Context, kind Kind, key string, expiry time.Duration) (string, error) {
	bucket, err := a.bucket(kind)
	if err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = a.client.config.PresignExpiry
	}
	params := url.Values{}
	params.Set("response-content-disposition", `attachment; filename="`+objectFromKey(kind, bucket, key).Name+`"`)
	u, err := a.client.api.PresignedGetObject(ctx, bucket, key, expiry, params)
	if err != nil {
		return "", translateError(err)
	}
	return u.String(), nil
}

func (a *Archive) Delete(ctx context.Context, kind Kind, key string) error {
	bucket, err := a.bucket(kind)
	if err != nil {
		return err
	}
	if err := a.client.api.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return translateError(err)
	}
	return nil
}

func translateError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrObjectNotFound.WithCause(err)
	}
	return errors.Wrap(err, errors.ErrCodeStorageError, "archive request failed")
}

func objectFromKey(kind Kind, bucket, key string) *Object {
	obj := &Object{Kind: kind, Bucket: bucket, Key: key}
	if i := strings.IndexByte(key, '/'); i > 0 {
		obj.Workspace = key[:i]
	}
	base := path.Base(key)
	// strip the "<uuid>-" prefix
	if len(base) > 37 && base[36] == '-' {
		if _, err := uuid.Parse(base[:36]); err == nil {
			base = base[37:]
		}
	}
	obj.Name = base
	return obj
}

// cleanSegment keeps a caller-supplied value from adding path levels.
func cleanSegment(s, fallback string) string {
	s = strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		return fallback
	}
	return s
}
