package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/languagebridge/admin-api/config"
	"github.com/languagebridge/admin-api/internal/application"
	"github.com/languagebridge/admin-api/internal/domain"
	"github.com/languagebridge/admin-api/internal/domain/repository"
	"github.com/languagebridge/admin-api/pkg/response"
	"github.com/languagebridge/admin-api/pkg/validation"
)

type StudentHandler struct {
	Svc    *application.StudentService
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewStudentHandler(svc *application.StudentService, logger *logrus.Logger, cfg *config.Config) *StudentHandler {
	return &StudentHandler{Svc: svc, Logger: logger, Cfg: cfg}
}

// Create POST /api/students
// Accepts either a JSON body or a multipart form with a "payload" JSON
// field and an optional "avatar" file.
func (h *StudentHandler) Create(c *gin.Context) {
	var in application.CreateStudentInput
	avatar, closeFile, err := h.bindPayload(c, &in)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	defer closeFile()

	st, err := h.Svc.Create(c.Request.Context(), in, avatar)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, st, "student created", nil)
}

// Update PUT /api/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	var in application.UpdateStudentInput
	avatar, closeFile, err := h.bindPayload(c, &in)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	defer closeFile()

	st, err := h.Svc.Update(c.Request.Context(), c.Param("id"), in, avatar)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, st, "student updated", nil)
}

// Upload PUT /api/students/upload/:id
func (h *StudentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing avatar file", nil)
		return
	}
	defer func() { _ = file.Close() }()

	st, err := h.Svc.UploadAvatar(c.Request.Context(), c.Param("id"), assetFile(file, header))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, st, "avatar updated", nil)
}

// Delete DELETE /api/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	res, err := h.Svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, "student deleted", nil)
}

// List GET /api/students
func (h *StudentHandler) List(c *gin.Context) {
	sts, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, sts, "students", nil)
}

// GetByID GET /api/students/:id
func (h *StudentHandler) GetByID(c *gin.Context) {
	st, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, st, "student", nil)
}

// GetByWard GET /api/students/ward/:wardId
func (h *StudentHandler) GetByWard(c *gin.Context) {
	sts, err := h.Svc.ListByWard(c.Request.Context(), c.Param("wardId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, sts, "students", nil)
}

// GetByUser GET /api/students/user/:userId
func (h *StudentHandler) GetByUser(c *gin.Context) {
	st, err := h.Svc.GetByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, st, "student", nil)
}

// bindPayload decodes the request into dst and extracts an optional avatar
// file from multipart bodies. The returned closer is always safe to defer.
func (h *StudentHandler) bindPayload(c *gin.Context, dst any) (*repository.AssetFile, func(), error) {
	noop := func() {}

	ct := c.ContentType()
	if !strings.HasPrefix(ct, "multipart/") {
		if err := c.ShouldBindJSON(dst); err != nil {
			return nil, noop, err
		}
		return nil, noop, nil
	}

	payload := c.PostForm("payload")
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), dst); err != nil {
			return nil, noop, err
		}
	}
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		// no file part; payload-only multipart is fine
		return nil, noop, nil
	}
	f := assetFile(file, header)
	return &f, func() { _ = file.Close() }, nil
}

func assetFile(file multipart.File, header *multipart.FileHeader) repository.AssetFile {
	return repository.AssetFile{
		Content:     file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
}

func (h *StudentHandler) fail(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", verr.Details)
	case errors.Is(err, domain.ErrInvalidID):
		response.Error[any](c, http.StatusBadRequest, "invalid id", nil)
	case errors.Is(err, domain.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "student not found", nil)
	case errors.Is(err, domain.ErrEmailTaken):
		response.Error[any](c, http.StatusConflict, "email already registered", nil)
	case errors.Is(err, application.ErrFileTooLarge):
		response.Error[any](c, http.StatusRequestEntityTooLarge, "file too large", nil)
	case errors.Is(err, domain.ErrStorage):
		h.logFailure(c, err)
		response.Error[any](c, http.StatusInternalServerError, "asset storage failure", h.detail(err))
	default:
		h.logFailure(c, err)
		response.Error[any](c, http.StatusInternalServerError, "internal error", h.detail(err))
	}
}

func (h *StudentHandler) logFailure(c *gin.Context, err error) {
	if h.Logger != nil {
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("student operation failed")
	}
}

// detail exposes internal error text in development only.
func (h *StudentHandler) detail(err error) any {
	if h.Cfg != nil && h.Cfg.Development() {
		return err.Error()
	}
	return nil
}
