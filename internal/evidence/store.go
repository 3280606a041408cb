package evidence

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Item is the metadata for one uploaded evidence file. The blob lives
// in S3 under Key; the metadata travels with the case.
type Item struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"case_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Key         string    `json:"-"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// MetadataStore keeps the evidence index. Implemented over the case
// database; tests use the in-memory version.
type MetadataStore interface {
	Insert(ctx context.Context, item *Item) error
	ListByCase(ctx context.Context, caseID string) ([]*Item, error)
}

// Store uploads evidence blobs to S3 and records their metadata. If
// bucket is empty, uploads are rejected as unconfigured.
type Store struct {
	bucket   string
	s3Client S3API
	meta     MetadataStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore creates an evidence Store.
func NewStore(s3Client S3API, bucket string, meta MetadataStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{bucket: bucket, s3Client: s3Client, meta: meta, logger: logger, now: time.Now}
}

// Enabled returns true if uploads are configured (bucket is set).
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// ErrNotConfigured is returned when evidence storage has no bucket.
var ErrNotConfigured = fmt.Errorf("evidence: storage not configured")

// Put uploads one file and records its metadata.
func (s *Store) Put(ctx context.Context, caseID, filename, contentType string, size int64, r io.Reader) (*Item, error) {
	if !s.Enabled() {
		return nil, ErrNotConfigured
	}

	item := &Item{
		ID:          uuid.NewString(),
		CaseID:      caseID,
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   size,
		UploadedAt:  s.now().UTC(),
	}
	item.Key = fmt.Sprintf("evidence/v1/%s/%s", caseID, item.ID)

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(item.Key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("evidence: s3 put %s: %w", item.Key, err)
	}

	if s.meta != nil {
		if err := s.meta.Insert(ctx, item); err != nil {
			return nil, fmt.Errorf("evidence: record metadata: %w", err)
		}
	}

	s.logger.Info("evidence uploaded",
		"case_id", caseID,
		"evidence_id", item.ID,
		"s3_key", item.Key,
		"content_type", contentType)
	return item, nil
}

// Open streams one evidence blob back.
func (s *Store) Open(ctx context.Context, item *Item) (io.ReadCloser, error) {
	if !s.Enabled() {
		return nil, ErrNotConfigured
	}
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(item.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("evidence: s3 get %s: %w", item.Key, err)
	}
	return out.Body, nil
}

// List returns the metadata for a case's evidence.
func (s *Store) List(ctx context.Context, caseID string) ([]*Item, error) {
	if s.meta == nil {
		return nil, nil
	}
	return s.meta.ListByCase(ctx, caseID)
}
