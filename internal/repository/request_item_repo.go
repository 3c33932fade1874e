package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/dmutombo/requestdesk/internal/models"
)

// RequestItemRepository handles line-item database operations
type RequestItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestItemRepository creates a new request item repository
func NewRequestItemRepository(db *sql.DB, logger *zap.Logger) *RequestItemRepository {
	return &RequestItemRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts all line items of a request
func (r *RequestItemRepository) CreateBatch(tx *sql.Tx, items []*models.RequestItem) error {
	query := `
		INSERT INTO request_items (
			id, request_id, label, quantity, unit_price,
			tax_rate_percent, financial_authority, total, tax_amount, vat_included
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, item := range items {
		var err error
		args := []any{
			item.ID,
			item.RequestID,
			item.Label,
			item.Quantity,
			item.UnitPrice,
			item.TaxRatePercent,
			item.Authority,
			item.Total,
			item.TaxAmount,
			item.VATIncluded,
		}
		if tx != nil {
			_, err = tx.Exec(query, args...)
		} else {
			_, err = r.db.Exec(query, args...)
		}
		if err != nil {
			r.logger.Error("Failed to create request item",
				zap.String("id", item.ID),
				zap.String("request_id", item.RequestID),
				zap.Error(err))
			return fmt.Errorf("failed to create request item: %w", err)
		}
	}

	return nil
}

// GetByRequestID retrieves all line items of a request in insertion order
func (r *RequestItemRepository) GetByRequestID(requestID string) ([]*models.RequestItem, error) {
	query := `
		SELECT id, request_id, label, quantity, unit_price,
			tax_rate_percent, financial_authority, total, tax_amount,
			vat_included, created_at
		FROM request_items
		WHERE request_id = ?
		ORDER BY rowid
	`

	rows, err := r.db.Query(query, requestID)
	if err != nil {
		r.logger.Error("Failed to get request items", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to get request items: %w", err)
	}
	defer rows.Close()

	var items []*models.RequestItem
	for rows.Next() {
		var item models.RequestItem
		err := rows.Scan(
			&item.ID,
			&item.RequestID,
			&item.Label,
			&item.Quantity,
			&item.UnitPrice,
			&item.TaxRatePercent,
			&item.Authority,
			&item.Total,
			&item.TaxAmount,
			&item.VATIncluded,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request item: %w", err)
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

// DeleteByRequestID removes every line item of a request
func (r *RequestItemRepository) DeleteByRequestID(tx *sql.Tx, requestID string) error {
	query := `DELETE FROM request_items WHERE request_id = ?`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, requestID)
	} else {
		_, err = r.db.Exec(query, requestID)
	}

	if err != nil {
		r.logger.Error("Failed to delete request items", zap.String("request_id", requestID), zap.Error(err))
		return fmt.Errorf("failed to delete request items: %w", err)
	}

	return nil
}
