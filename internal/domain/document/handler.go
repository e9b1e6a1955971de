package document

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careaxis/hms/internal/platform/auth"
	"github.com/careaxis/hms/internal/platform/blobstore"
	"github.com/careaxis/hms/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts document management on the staff group and read-only
// access on the patient group.
func (h *Handler) RegisterRoutes(staff, patient *echo.Group) {
	staff.POST("/patients/:id/documents", h.Upload)
	staff.GET("/patients/:id/documents", h.ListByPatient)
	staff.GET("/documents/:id/link", h.DownloadLink)
	staff.DELETE("/documents/:id", h.Delete)

	patient.GET("/patients/:id/documents", h.ListByPatient)
	patient.GET("/documents/:id/link", h.DownloadLink)
}

// RegisterPublicRoutes mounts the presigned retrieval endpoint. The URL
// itself carries the authorization, so no session is required.
func (h *Handler) RegisterPublicRoutes(public *echo.Group) {
	public.GET("/files/:bucket/:key", h.Redeem)
}

func (h *Handler) Upload(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid patient id")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	bucket := c.FormValue("bucket")
	if bucket == "" {
		bucket = "patient-documents"
	}

	d, err := h.svc.Upload(c.Request().Context(), bucket, &patientID,
		auth.UserIDFromContext(c.Request().Context()),
		fh.Filename, fh.Header.Get("Content-Type"), src)
	if err != nil {
		switch {
		case errors.Is(err, blobstore.ErrInvalidBucket),
			errors.Is(err, blobstore.ErrInvalidContentType),
			errors.Is(err, blobstore.ErrMissingFileName),
			errors.Is(err, blobstore.ErrFileTooLarge):
			return respond.Fail(c, http.StatusBadRequest, err.Error())
		default:
			return respond.Fail(c, http.StatusInternalServerError, "upload failed")
		}
	}
	return respond.OK(c, http.StatusCreated, "Document uploaded", d)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid patient id")
	}
	docs, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return respond.Fail(c, http.StatusInternalServerError, "cannot list documents")
	}
	return respond.OK(c, http.StatusOK, "Documents", docs)
}

func (h *Handler) DownloadLink(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	d, link, err := h.svc.DownloadLink(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, blobstore.ErrPresignUnsupported) {
			return respond.Fail(c, http.StatusNotImplemented, "downloads are not configured")
		}
		return respond.Fail(c, http.StatusNotFound, "document not found")
	}
	return respond.OK(c, http.StatusOK, "Download link", map[string]interface{}{
		"document": d,
		"url":      link,
	})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respond.Fail(c, http.StatusNotFound, "document not found")
	}
	return respond.OK(c, http.StatusOK, "Document deleted", nil)
}

// Redeem streams the blob after verifying the presigned signature.
func (h *Handler) Redeem(c echo.Context) error {
	rc, meta, err := h.svc.Open(c.Request().Context(),
		c.Param("bucket"), c.Param("key"),
		c.QueryParam("expires"), c.QueryParam("signature"))
	if err != nil {
		switch {
		case errors.Is(err, blobstore.ErrPresignExpired):
			return respond.Fail(c, http.StatusGone, "link expired")
		case errors.Is(err, blobstore.ErrPresignInvalid), errors.Is(err, blobstore.ErrPresignUnsupported):
			return respond.Fail(c, http.StatusForbidden, "invalid link")
		case errors.Is(err, blobstore.ErrBlobNotFound):
			return respond.Fail(c, http.StatusNotFound, "file not found")
		default:
			return respond.Fail(c, http.StatusInternalServerError, "cannot read file")
		}
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+meta.FileName+`"`)
	return c.Stream(http.StatusOK, meta.ContentType, rc)
}
