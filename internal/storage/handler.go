package storage

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/core/common/validation"
	"github.com/frahmantamala/expensehub/internal/transport"
	"github.com/frahmantamala/expensehub/pkg/logger"
	"github.com/go-chi/chi"
)

// ObjectStore is where receipt bytes live.
type ObjectStore interface {
	Put(key string, r io.Reader) (int64, error)
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
	Stat(key string) (int64, error)
	URL(key string) string
}

type SignUploadDTO struct {
	FileName string `json:"fileName" validate:"omitempty,max=255"`
	MimeType string `json:"mimeType" validate:"required"`
	Size     int64  `json:"size" validate:"required,gt=0"`
}

type UploadResult struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

type Handler struct {
	*transport.BaseHandler
	Signer *Signer
	Store  ObjectStore
}

func NewHandler(baseHandler *transport.BaseHandler, signer *Signer, store ObjectStore) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Signer:      signer,
		Store:       store,
	}
}

func (h *Handler) SignUpload(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}

	var dto SignUploadDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	if appErr := validation.Struct(dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	signed, err := h.Signer.Sign(scope.CompanyID, dto.MimeType, dto.Size)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	logger.From(r.Context()).Info("upload signed", "key", signed.Key, "mime_type", dto.MimeType, "size", dto.Size, "file_name", dto.FileName)
	h.WriteSuccess(w, http.StatusCreated, signed, "")
}

// Upload stores the request body under the key the token was issued for.
// The token is the only credential; no session is needed. A key that already
// holds an object is never overwritten.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	claims, err := h.Signer.Verify(r.URL.Query().Get("token"), key)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if _, err := h.Store.Stat(key); err == nil {
		logger.From(r.Context()).Warn("upload URL reused", "key", key, "company_id", claims.CompanyID)
		h.WriteAppError(w, internal.ErrUploadCompleted)
		return
	}

	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); mt != claims.MimeType {
			h.WriteAppError(w, internal.NewValidationError("Content-Type does not match the signed upload", internal.ErrCodeUploadRejected))
			return
		}
	}

	body := http.MaxBytesReader(w, r.Body, claims.MaxSize)
	head := make([]byte, 512)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		h.rejectRead(w, r, err)
		return
	}
	if n == 0 {
		h.WriteAppError(w, internal.NewValidationError("file is empty", internal.ErrCodeUploadRejected))
		return
	}
	if sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(head[:n])); sniffed != claims.MimeType {
		h.WriteAppError(w, internal.NewValidationError("file content does not match "+claims.MimeType, internal.ErrCodeUploadRejected))
		return
	}

	size, err := h.Store.Put(key, io.MultiReader(bytes.NewReader(head[:n]), body))
	if err != nil {
		h.rejectRead(w, r, err)
		return
	}

	logger.From(r.Context()).Info("receipt uploaded", "key", key, "company_id", claims.CompanyID, "size", size)
	h.WriteSuccess(w, http.StatusCreated, UploadResult{Key: key, Size: size}, "file uploaded")
}

func (h *Handler) rejectRead(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.WriteAppError(w, internal.NewValidationError("file exceeds the signed size", internal.ErrCodeUploadRejected))
		return
	}
	h.HandleServiceError(w, r, err)
}
