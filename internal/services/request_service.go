package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmutombo/requestdesk/internal/domain/ledger"
	"github.com/dmutombo/requestdesk/internal/domain/wizard"
	"github.com/dmutombo/requestdesk/internal/models"
	"github.com/dmutombo/requestdesk/internal/repository"
	"github.com/dmutombo/requestdesk/internal/storage"
	"github.com/dmutombo/requestdesk/internal/upload"
	"github.com/dmutombo/requestdesk/pkg/database"
)

// ErrRequestNotFound is returned when a lookup targets an unknown request
var ErrRequestNotFound = errors.New("request not found")

// RequestService persists whole requests (form, line items, attachments) in
// one transaction and hydrates them back for editing.
type RequestService struct {
	db          *database.DB
	requests    *repository.RequestRepository
	items       *repository.RequestItemRepository
	attachments *repository.AttachmentRepository
	folders     *storage.FolderManager
	logger      *zap.Logger
}

// NewRequestService creates a new request service
func NewRequestService(
	db *database.DB,
	requests *repository.RequestRepository,
	items *repository.RequestItemRepository,
	attachments *repository.AttachmentRepository,
	folders *storage.FolderManager,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		db:          db,
		requests:    requests,
		items:       items,
		attachments: attachments,
		folders:     folders,
		logger:      logger,
	}
}

// SaveRequest writes the request, its line items, and its attachment links
// atomically. A failure anywhere rolls everything back, so a submitted
// request is never half saved.
func (s *RequestService) SaveRequest(ctx context.Context, form wizard.Data, items []ledger.Item, attachmentIDs []string) (*models.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	formJSON, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form data: %w", err)
	}

	now := time.Now().UTC()
	request := &models.Request{
		ID:          uuid.NewString(),
		ProjectName: stringField(form, "projectName"),
		Province:    stringField(form, "province"),
		ContractRef: stringField(form, "contractRef"),
		Requester:   stringField(form, "requester"),
		Status:      models.RequestStatusSubmitted,
		FormData:    string(formJSON),
		SubmittedAt: &now,
	}

	rows := make([]*models.RequestItem, 0, len(items))
	for _, item := range items {
		id := item.ID
		if id == "" {
			id = uuid.NewString()
		}
		rows = append(rows, &models.RequestItem{
			ID:             id,
			RequestID:      request.ID,
			Label:          item.Label,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TaxRatePercent: item.TaxRatePercent,
			Authority:      string(item.Authority),
			Total:          item.Total,
			TaxAmount:      item.TaxAmount,
			VATIncluded:    item.VATIncluded,
		})
	}

	err = s.db.WithTransaction(func(tx *sql.Tx) error {
		if err := s.requests.Create(tx, request); err != nil {
			return err
		}
		if err := s.items.CreateBatch(tx, rows); err != nil {
			return err
		}
		return s.attachments.AttachToRequest(tx, request.ID, attachmentIDs)
	})
	if err != nil {
		return nil, err
	}

	// The folder is cosmetic bookkeeping; its failure must not undo the save
	if _, err := s.folders.CreateRequestFolder(request.ID); err != nil {
		s.logger.Warn("Failed to create request folder",
			zap.String("request_id", request.ID),
			zap.Error(err))
	}

	s.logger.Info("Request saved",
		zap.String("request_id", request.ID),
		zap.String("project", request.ProjectName),
		zap.Int("items", len(rows)),
		zap.Int("attachments", len(attachmentIDs)))

	return request, nil
}

// Submitter binds the wizard's submit hook to this service, collecting the
// line items and attached files at submit time.
func (s *RequestService) Submitter(table *ledger.Table, files *upload.Manager) wizard.Submitter {
	return wizard.SubmitterFunc(func(ctx context.Context, data wizard.Data) error {
		var attachmentIDs []string
		for _, f := range files.Attached() {
			attachmentIDs = append(attachmentIDs, f.ID)
		}
		_, err := s.SaveRequest(ctx, data, table.Items(), attachmentIDs)
		return err
	})
}

// Fetch returns a saved request's form data, shaped for wizard hydration
func (s *RequestService) Fetch(ctx context.Context, requestID string) (wizard.Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	request, err := s.requests.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}

	var data wizard.Data
	if err := json.Unmarshal([]byte(request.FormData), &data); err != nil {
		return nil, fmt.Errorf("failed to decode form data: %w", err)
	}
	return data, nil
}

// GetRequest loads a request with its line items and attachments
func (s *RequestService) GetRequest(ctx context.Context, requestID string) (*models.Request, []*models.RequestItem, []*models.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}

	request, err := s.requests.GetByID(requestID)
	if err != nil {
		return nil, nil, nil, err
	}
	if request == nil {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}

	items, err := s.items.GetByRequestID(requestID)
	if err != nil {
		return nil, nil, nil, err
	}
	attachments, err := s.attachments.GetByRequestID(requestID)
	if err != nil {
		return nil, nil, nil, err
	}

	return request, items, attachments, nil
}

// LedgerItems converts persisted rows back into table items for editing
func LedgerItems(rows []*models.RequestItem) []ledger.Item {
	items := make([]ledger.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, ledger.Item{
			ID:             row.ID,
			Label:          row.Label,
			Quantity:       row.Quantity,
			UnitPrice:      row.UnitPrice,
			TaxRatePercent: row.TaxRatePercent,
			Authority:      ledger.Authority(row.Authority),
		})
	}
	return items
}

// AttachedFiles converts persisted attachment rows into the upload
// manager's hydration shape
func AttachedFiles(rows []*models.Attachment) []upload.AttachedFile {
	files := make([]upload.AttachedFile, 0, len(rows))
	for _, row := range rows {
		files = append(files, upload.AttachedFile{
			ID:   row.ID,
			Name: row.FileName,
			URL:  row.URL,
			Size: row.FileSize,
		})
	}
	return files
}

func stringField(data wizard.Data, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
