package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmutombo/requestdesk/internal/domain/ledger"
	"github.com/dmutombo/requestdesk/internal/domain/wizard"
	"github.com/dmutombo/requestdesk/internal/export"
	"github.com/dmutombo/requestdesk/internal/i18n"
	"github.com/dmutombo/requestdesk/internal/inspect"
	"github.com/dmutombo/requestdesk/internal/models"
	"github.com/dmutombo/requestdesk/internal/repository"
	"github.com/dmutombo/requestdesk/internal/services"
	"github.com/dmutombo/requestdesk/internal/storage"
	"github.com/dmutombo/requestdesk/internal/upload"
	"github.com/dmutombo/requestdesk/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	service     *services.RequestService
	requests    *repository.RequestRepository
	attachments *repository.AttachmentRepository
	files       storage.FileStorage
	inspector   *inspect.Inspector
	exporter    *export.ExcelWriter
	ledgerCfg   ledger.Config
	uploadCfg   upload.Config
	storageDir  string
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	service *services.RequestService,
	requests *repository.RequestRepository,
	attachments *repository.AttachmentRepository,
	files storage.FileStorage,
	inspector *inspect.Inspector,
	exporter *export.ExcelWriter,
	ledgerCfg ledger.Config,
	uploadCfg upload.Config,
	storageDir string,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		service:     service,
		requests:    requests,
		attachments: attachments,
		files:       files,
		inspector:   inspector,
		exporter:    exporter,
		ledgerCfg:   ledgerCfg,
		uploadCfg:   uploadCfg,
		storageDir:  storageDir,
		logger:      logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SubmitRequestBody is the wizard's submit payload
type SubmitRequestBody struct {
	Form          map[string]any `json:"form" binding:"required"`
	Items         []ledger.Item  `json:"items"`
	AttachmentIDs []string       `json:"attachment_ids"`
}

// RequestResponse is a saved request with its line items and attachments,
// the payload the console hydrates edit mode from
type RequestResponse struct {
	Request     *models.Request       `json:"request"`
	Items       []*models.RequestItem `json:"items"`
	Attachments []*models.Attachment  `json:"attachments"`
	Files       []upload.AttachedFile `json:"files"`
}

// AttachmentResponse is the upload handler's reply, mirrored by the
// client-side transport
type AttachmentResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	PageCount int    `json:"page_count,omitempty"`
}

// DeleteResponse carries the explicit delete status the client gates
// detachment on
type DeleteResponse struct {
	Status bool `json:"status"`
}

// ListRequestsQuery represents query parameters for listing requests
type ListRequestsQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// ListRequests handles GET /api/v1/requests
func (h *Handlers) ListRequests(c *gin.Context) {
	var q ListRequestsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	requests, err := h.requests.List(q.Limit, q.Offset)
	if err != nil {
		h.logger.Error("Failed to list requests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve requests"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// SubmitRequest handles POST /api/v1/requests. Line items are renormalized
// server side so derived totals never depend on the client's arithmetic.
func (h *Handlers) SubmitRequest(c *gin.Context) {
	var body SubmitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	table := ledger.NewTable(h.ledgerCfg)
	table.Hydrate(body.Items)

	request, err := h.service.SaveRequest(c.Request.Context(), wizard.Data(body.Form), table.Items(), body.AttachmentIDs)
	if err != nil {
		h.logger.Error("Failed to save request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to save request"})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: request})
}

// GetRequest handles GET /api/v1/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	id := c.Param("id")

	request, items, attachments, err := h.service.GetRequest(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "request not found"})
			return
		}
		h.logger.Error("Failed to get request", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve request"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: RequestResponse{
			Request:     request,
			Items:       items,
			Attachments: attachments,
			Files:       services.AttachedFiles(attachments),
		},
	})
}

// ExportRequest handles GET /api/v1/requests/:id/export
func (h *Handlers) ExportRequest(c *gin.Context) {
	id := c.Param("id")

	request, items, attachments, err := h.service.GetRequest(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "request not found"})
			return
		}
		h.logger.Error("Failed to load request for export", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to export request"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="demande_%s.xlsx"`, request.ID))

	if err := h.exporter.Write(c.Writer, request, items, attachments); err != nil {
		h.logger.Error("Failed to stream export", zap.String("id", id), zap.Error(err))
	}
}

// UploadAttachment handles POST /api/v1/attachments. The file is validated,
// inspected, staged to disk, and recorded; it stays unlinked until a
// request submission claims it.
func (h *Handlers) UploadAttachment(c *gin.Context) {
	lang := i18n.DetectLanguage(c.GetHeader("Accept-Language"))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "missing file"})
		return
	}

	if fileHeader.Size > h.uploadCfg.MaxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, Response{Success: false, Error: i18n.T(lang, "upload.too_large")})
		return
	}

	safeName := utils.SanitizeFileName(fileHeader.Filename)
	ext := strings.ToLower(filepath.Ext(safeName))
	if !h.extensionAllowed(ext) {
		c.JSON(http.StatusUnsupportedMediaType, Response{Success: false, Error: i18n.T(lang, "upload.bad_type")})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unreadable file"})
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unreadable file"})
		return
	}

	info, err := h.inspector.Inspect(safeName, content)
	if err != nil {
		h.logger.Warn("Attachment failed inspection", zap.String("file", safeName), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: i18n.T(lang, "upload.failed")})
		return
	}

	id := uuid.NewString()
	path := filepath.Join(h.storageDir, "staging", id+"_"+safeName)
	if err := h.files.SaveFile(path, content); err != nil {
		h.logger.Error("Failed to store attachment", zap.String("file", safeName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: i18n.T(lang, "upload.failed")})
		return
	}

	attachment := &models.Attachment{
		ID:        id,
		FileName:  safeName,
		FilePath:  path,
		FileSize:  int64(len(content)),
		MimeType:  info.MimeType,
		PageCount: info.PageCount,
		URL:       "/api/v1/attachments/" + id,
	}
	if err := h.attachments.Create(nil, attachment); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: i18n.T(lang, "upload.failed")})
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data: AttachmentResponse{
			ID:        id,
			URL:       attachment.URL,
			PageCount: info.PageCount,
		},
	})
}

// DeleteAttachment handles DELETE /api/v1/attachments/:id. The metadata row
// goes first; a stale file on disk is recoverable, a dangling row is not.
func (h *Handlers) DeleteAttachment(c *gin.Context) {
	id := c.Param("id")

	attachment, err := h.attachments.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to delete attachment"})
		return
	}
	if attachment == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Data: DeleteResponse{Status: false}, Error: "attachment not found"})
		return
	}

	if err := h.attachments.Delete(nil, id); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Data: DeleteResponse{Status: false}, Error: "failed to delete attachment"})
		return
	}

	if attachment.FilePath != "" {
		if err := h.files.DeleteFile(attachment.FilePath); err != nil {
			h.logger.Warn("Failed to delete attachment file",
				zap.String("id", id),
				zap.String("path", attachment.FilePath),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: DeleteResponse{Status: true}})
}

func (h *Handlers) extensionAllowed(ext string) bool {
	for _, allowed := range h.uploadCfg.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
