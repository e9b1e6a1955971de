package document

import (
	"time"

	"github.com/google/uuid"
)

// Document is the database record describing one stored file. The bytes live
// in the blob store under (Bucket, BlobKey); this row carries ownership and
// display metadata.
type Document struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Bucket      string     `db:"bucket" json:"bucket"`
	BlobKey     string     `db:"blob_key" json:"-"`
	FileName    string     `db:"file_name" json:"file_name"`
	ContentType string     `db:"content_type" json:"content_type"`
	Size        int64      `db:"size" json:"size"`
	UploadedBy  string     `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
