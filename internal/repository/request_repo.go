package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dmutombo/requestdesk/internal/models"
)

// RequestRepository handles request database operations
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) *RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new request
func (r *RequestRepository) Create(tx *sql.Tx, request *models.Request) error {
	query := `
		INSERT INTO requests (
			id, project_name, province, contract_ref, requester,
			status, form_data, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var err error
	if tx != nil {
		_, err = tx.Exec(query,
			request.ID,
			request.ProjectName,
			request.Province,
			request.ContractRef,
			request.Requester,
			request.Status,
			request.FormData,
			request.SubmittedAt,
		)
	} else {
		_, err = r.db.Exec(query,
			request.ID,
			request.ProjectName,
			request.Province,
			request.ContractRef,
			request.Requester,
			request.Status,
			request.FormData,
			request.SubmittedAt,
		)
	}

	if err != nil {
		r.logger.Error("Failed to create request", zap.String("id", request.ID), zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

// GetByID retrieves a request by ID. Returns nil when no row matches.
func (r *RequestRepository) GetByID(id string) (*models.Request, error) {
	query := `
		SELECT id, project_name, province, contract_ref, requester,
			status, form_data, submitted_at, created_at, updated_at
		FROM requests
		WHERE id = ?
	`

	var request models.Request
	var submittedAt sql.NullTime

	err := r.db.QueryRow(query, id).Scan(
		&request.ID,
		&request.ProjectName,
		&request.Province,
		&request.ContractRef,
		&request.Requester,
		&request.Status,
		&request.FormData,
		&submittedAt,
		&request.CreatedAt,
		&request.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get request by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	if submittedAt.Valid {
		request.SubmittedAt = &submittedAt.Time
	}

	return &request, nil
}

// UpdateStatus updates the status of a request
func (r *RequestRepository) UpdateStatus(tx *sql.Tx, id, newStatus string) error {
	query := `UPDATE requests SET status = ?, updated_at = ? WHERE id = ?`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, newStatus, time.Now().UTC(), id)
	} else {
		_, err = r.db.Exec(query, newStatus, time.Now().UTC(), id)
	}

	if err != nil {
		r.logger.Error("Failed to update request status",
			zap.String("id", id),
			zap.String("status", newStatus),
			zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	return nil
}

// List retrieves requests with pagination, newest first
func (r *RequestRepository) List(limit, offset int) ([]*models.Request, error) {
	query := `
		SELECT id, project_name, province, contract_ref, requester,
			status, form_data, submitted_at, created_at, updated_at
		FROM requests
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.Request
	for rows.Next() {
		var request models.Request
		var submittedAt sql.NullTime

		err := rows.Scan(
			&request.ID,
			&request.ProjectName,
			&request.Province,
			&request.ContractRef,
			&request.Requester,
			&request.Status,
			&request.FormData,
			&submittedAt,
			&request.CreatedAt,
			&request.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}

		if submittedAt.Valid {
			request.SubmittedAt = &submittedAt.Time
		}

		requests = append(requests, &request)
	}

	return requests, rows.Err()
}
