package document

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/careaxis/hms/internal/platform/blobstore"
)

// LinkTTL is how long a presigned download link stays valid.
const LinkTTL = 10 * time.Minute

type Service struct {
	docs   Repository
	store  blobstore.BlobStore
	signer *blobstore.Signer
}

func NewService(docs Repository, store blobstore.BlobStore, signer *blobstore.Signer) *Service {
	return &Service{docs: docs, store: store, signer: signer}
}

// Upload stores the file content in the blob store and records its metadata.
// patientID is nil for files that belong to no patient (staff-files).
func (s *Service) Upload(ctx context.Context, bucket string, patientID *uuid.UUID, uploadedBy, fileName, contentType string, content io.Reader) (*Document, error) {
	meta, err := s.store.Upload(ctx, bucket, blobstore.BlobMetadata{
		FileName:    fileName,
		ContentType: contentType,
		CreatedBy:   uploadedBy,
	}, content)
	if err != nil {
		return nil, err
	}

	d := &Document{
		PatientID:   patientID,
		Bucket:      meta.Bucket,
		BlobKey:     meta.Key,
		FileName:    meta.FileName,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		UploadedBy:  uploadedBy,
	}
	if err := s.docs.Create(ctx, d); err != nil {
		// Keep the store and the records consistent when the insert fails.
		_ = s.store.Delete(ctx, meta.Bucket, meta.Key)
		return nil, fmt.Errorf("record document: %w", err)
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.docs.GetByID(ctx, id)
}

// DownloadLink returns a time-limited presigned URL for the document.
func (s *Service) DownloadLink(ctx context.Context, id uuid.UUID) (*Document, string, error) {
	d, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	link, err := s.signer.PresignedURL(d.Bucket, d.BlobKey, LinkTTL)
	if err != nil {
		return nil, "", err
	}
	return d, link, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Document, error) {
	return s.docs.ListByPatient(ctx, patientID)
}

// Delete removes the metadata row and the stored bytes.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	d, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, d.Bucket, d.BlobKey); err != nil && err != blobstore.ErrBlobNotFound {
		return err
	}
	return nil
}

// Open verifies a presigned signature and returns the blob content. It backs
// the public retrieval route.
func (s *Service) Open(ctx context.Context, bucket, key, expires, signature string) (io.ReadCloser, *blobstore.BlobMetadata, error) {
	if err := s.signer.Verify(bucket, key, expires, signature); err != nil {
		return nil, nil, err
	}
	return s.store.Download(ctx, bucket, key)
}
