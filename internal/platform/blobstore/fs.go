package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FSStore persists blobs under a root directory: one content file and one
// metadata sidecar per blob, partitioned by bucket.
type FSStore struct {
	root string
}

func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) contentPath(bucket, key string) string {
	return filepath.Join(s.root, bucket, key)
}

func (s *FSStore) metaPath(bucket, key string) string {
	return filepath.Join(s.root, bucket, key+".meta.json")
}

func (s *FSStore) Upload(_ context.Context, bucket string, meta BlobMetadata, content io.Reader) (*BlobMetadata, error) {
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

	if err := os.MkdirAll(filepath.Join(s.root, bucket), 0o750); err != nil {
		return nil, fmt.Errorf("create bucket dir: %w", err)
	}
	if err := os.WriteFile(s.contentPath(bucket, meta.Key), data, 0o640); err != nil {
		return nil, fmt.Errorf("write blob content: %w", err)
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal blob metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(bucket, meta.Key), metaJSON, 0o640); err != nil {
		return nil, fmt.Errorf("write blob metadata: %w", err)
	}

	return &meta, nil
}

func (s *FSStore) Download(ctx context.Context, bucket, key string) (io.ReadCloser, *BlobMetadata, error) {
	meta, err := s.GetMetadata(ctx, bucket, key)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(s.contentPath(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrBlobNotFound
		}
		return nil, nil, fmt.Errorf("open blob content: %w", err)
	}
	return f, meta, nil
}

func (s *FSStore) Delete(_ context.Context, bucket, key string) error {
	if err := os.Remove(s.contentPath(bucket, key)); err != nil {
		if os.IsNotExist(err) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("delete blob content: %w", err)
	}
	_ = os.Remove(s.metaPath(bucket, key))
	return nil
}

func (s *FSStore) GetMetadata(_ context.Context, bucket, key string) (*BlobMetadata, error) {
	data, err := os.ReadFile(s.metaPath(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("read blob metadata: %w", err)
	}
	var meta BlobMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal blob metadata: %w", err)
	}
	return &meta, nil
}
