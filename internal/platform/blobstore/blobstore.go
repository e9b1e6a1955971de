// Package blobstore is the object-storage collaborator for uploaded files:
// patient documents, scans, insurance forms. It defines the BlobStore
// interface, an in-memory implementation for tests, a filesystem
// implementation for single-node deployments, and HMAC presigned URLs for
// time-limited downloads.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBlobNotFound       = errors.New("blob not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrMissingFileName    = errors.New("file name is required")
	ErrInvalidBucket      = errors.New("unknown bucket")
)

// MaxFileSize is the maximum allowed blob size in bytes (50 MB).
const MaxFileSize = 50 * 1024 * 1024

// Buckets partition uploads by purpose.
var AllowedBuckets = map[string]bool{
	"patient-documents": true,
	"lab-reports":       true,
	"insurance-forms":   true,
	"staff-files":       true,
}

// AllowedContentTypes lists the file MIME types the hospital accepts.
var AllowedContentTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"application/pdf": true,
	"text/plain":      true,
	"text/csv":        true,
}

// BlobMetadata describes a stored blob.
type BlobMetadata struct {
	Key         string    `json:"key"`
	Bucket      string    `json:"bucket"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}

// BlobStore defines the contract for object-storage backends.
type BlobStore interface {
	Upload(ctx context.Context, bucket string, meta BlobMetadata, content io.Reader) (*BlobMetadata, error)
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, *BlobMetadata, error)
	Delete(ctx context.Context, bucket, key string) error
	GetMetadata(ctx context.Context, bucket, key string) (*BlobMetadata, error)
}

// validate applies the shared upload checks and fills derived metadata.
func validate(bucket string, meta *BlobMetadata) error {
	if !AllowedBuckets[bucket] {
		return fmt.Errorf("%w: %s", ErrInvalidBucket, bucket)
	}
	if strings.TrimSpace(meta.FileName) == "" {
		return ErrMissingFileName
	}
	if !AllowedContentTypes[meta.ContentType] {
		return fmt.Errorf("%w: %s", ErrInvalidContentType, meta.ContentType)
	}
	return nil
}

// readAllLimited reads content up to MaxFileSize, failing when exceeded.
func readAllLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read blob content: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

type storedBlob struct {
	metadata BlobMetadata
	content  []byte
}

// MemoryStore keeps blobs in memory. Used in tests and development.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]*storedBlob // bucket + "/" + key
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]*storedBlob)}
}

func (s *MemoryStore) Upload(_ context.Context, bucket string, meta BlobMetadata, content io.Reader) (*BlobMetadata, error) {
	if err := validate(bucket, &meta); err != nil {
		return nil, err
	}
	data, err := readAllLimited(content)
	if err != nil {
		return nil, err
	}

	meta.Key = uuid.NewString()
	meta.Bucket = bucket
	meta.Size = int64(len(data))
	meta.Hash = fmt.Sprintf("%x", sha256.Sum256(data))
	meta.CreatedAt = time.Now()

	s.mu.Lock()
	s.blobs[bucket+"/"+meta.Key] = &storedBlob{metadata: meta, content: data}
	s.mu.Unlock()

	return &meta, nil
}

func (s *MemoryStore) Download(_ context.Context, bucket, key string) (io.ReadCloser, *BlobMetadata, error) {
	s.mu.RLock()
	blob, ok := s.blobs[bucket+"/"+key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrBlobNotFound
	}
	meta := blob.metadata
	return io.NopCloser(bytes.NewReader(blob.content)), &meta, nil
}

func (s *MemoryStore) Delete(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[bucket+"/"+key]; !ok {
		return ErrBlobNotFound
	}
	delete(s.blobs, bucket+"/"+key)
	return nil
}

func (s *MemoryStore) GetMetadata(_ context.Context, bucket, key string) (*BlobMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[bucket+"/"+key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	meta := blob.metadata
	return &meta, nil
}
