package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reefcloud/catalog-provision-service/internal/models"
)

type LogRepository struct {
	pool *pgxpool.Pool
}

func NewLogRepository(pool *pgxpool.Pool) *LogRepository {
	return &LogRepository{pool: pool}
}

// Create creates a new order item log entry.
func (r *LogRepository) Create(ctx context.Context, entry *models.OrderItemLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO order_item_logs (id, order_item_id, action, status, message)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.OrderItemID, entry.Action, entry.Status, entry.Message,
	)
	if err != nil {
		return fmt.Errorf("insert order item log: %w", err)
	}

	return nil
}

// GetByOrderItemID retrieves the audit trail for an order item.
func (r *LogRepository) GetByOrderItemID(ctx context.Context, orderItemID string, limit int) ([]*models.OrderItemLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, order_item_id, action, status, message, created_at
		FROM order_item_logs
		WHERE order_item_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, orderItemID, limit)
	if err != nil {
		return nil, fmt.Errorf("query order item logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.OrderItemLog
	for rows.Next() {
		entry := &models.OrderItemLog{}
		err := rows.Scan(
			&entry.ID, &entry.OrderItemID, &entry.Action, &entry.Status,
			&entry.Message, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item log: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// LogAction is a convenience helper; logging must never break provisioning,
// so failures are reported and swallowed.
func (r *LogRepository) LogAction(ctx context.Context, orderItemID, action, status, message string) {
	entry := &models.OrderItemLog{
		OrderItemID: orderItemID,
		Action:      action,
		Status:      status,
		Message:     message,
	}
	if err := r.Create(ctx, entry); err != nil {
		log.Printf("[LogRepo] Failed to log action %s for %s: %v", action, orderItemID, err)
	}
}
