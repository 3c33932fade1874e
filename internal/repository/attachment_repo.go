package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/dmutombo/requestdesk/internal/models"
)

// AttachmentRepository handles attachment database operations
type AttachmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *sql.DB, logger *zap.Logger) *AttachmentRepository {
	return &AttachmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts attachment metadata. The request_id may be empty for files
// staged before their request is saved.
func (r *AttachmentRepository) Create(tx *sql.Tx, attachment *models.Attachment) error {
	query := `
		INSERT INTO attachments (
			id, request_id, file_name, file_path, file_size,
			mime_type, page_count, url
		) VALUES (?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?)
	`

	var err error
	args := []any{
		attachment.ID,
		attachment.RequestID,
		attachment.FileName,
		attachment.FilePath,
		attachment.FileSize,
		attachment.MimeType,
		attachment.PageCount,
		attachment.URL,
	}
	if tx != nil {
		_, err = tx.Exec(query, args...)
	} else {
		_, err = r.db.Exec(query, args...)
	}

	if err != nil {
		r.logger.Error("Failed to create attachment",
			zap.String("id", attachment.ID),
			zap.String("file", attachment.FileName),
			zap.Error(err))
		return fmt.Errorf("failed to create attachment: %w", err)
	}

	return nil
}

// GetByID retrieves an attachment by ID. Returns nil when no row matches.
func (r *AttachmentRepository) GetByID(id string) (*models.Attachment, error) {
	query := `
		SELECT id, COALESCE(request_id, ''), file_name, file_path, file_size,
			mime_type, page_count, url, created_at
		FROM attachments
		WHERE id = ?
	`

	var attachment models.Attachment
	err := r.db.QueryRow(query, id).Scan(
		&attachment.ID,
		&attachment.RequestID,
		&attachment.FileName,
		&attachment.FilePath,
		&attachment.FileSize,
		&attachment.MimeType,
		&attachment.PageCount,
		&attachment.URL,
		&attachment.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get attachment by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}

	return &attachment, nil
}

// GetByRequestID retrieves every attachment of a request
func (r *AttachmentRepository) GetByRequestID(requestID string) ([]*models.Attachment, error) {
	query := `
		SELECT id, COALESCE(request_id, ''), file_name, file_path, file_size,
			mime_type, page_count, url, created_at
		FROM attachments
		WHERE request_id = ?
		ORDER BY created_at, rowid
	`

	rows, err := r.db.Query(query, requestID)
	if err != nil {
		r.logger.Error("Failed to get attachments", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to get attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*models.Attachment
	for rows.Next() {
		var attachment models.Attachment
		err := rows.Scan(
			&attachment.ID,
			&attachment.RequestID,
			&attachment.FileName,
			&attachment.FilePath,
			&attachment.FileSize,
			&attachment.MimeType,
			&attachment.PageCount,
			&attachment.URL,
			&attachment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, &attachment)
	}

	return attachments, rows.Err()
}

// AttachToRequest links staged attachments to a saved request
func (r *AttachmentRepository) AttachToRequest(tx *sql.Tx, requestID string, attachmentIDs []string) error {
	query := `UPDATE attachments SET request_id = ? WHERE id = ?`

	for _, id := range attachmentIDs {
		var err error
		if tx != nil {
			_, err = tx.Exec(query, requestID, id)
		} else {
			_, err = r.db.Exec(query, requestID, id)
		}
		if err != nil {
			r.logger.Error("Failed to attach file to request",
				zap.String("attachment_id", id),
				zap.String("request_id", requestID),
				zap.Error(err))
			return fmt.Errorf("failed to attach file to request: %w", err)
		}
	}

	return nil
}

// Delete removes attachment metadata
func (r *AttachmentRepository) Delete(tx *sql.Tx, id string) error {
	query := `DELETE FROM attachments WHERE id = ?`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, id)
	} else {
		_, err = r.db.Exec(query, id)
	}

	if err != nil {
		r.logger.Error("Failed to delete attachment", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	return nil
}
