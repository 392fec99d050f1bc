package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reefcloud/catalog-provision-service/internal/models"
)

var ErrNotFound = errors.New("not found")

const orderItemColumns = `
	id, order_id, project_id, product_id, uuid, status, status_msg,
	external_id, payload_request, payload_ack, payload_response,
	retirement_ref, instance_name, host, port, url, public_ip, private_ip,
	username, password, setup_price, hourly_price, monthly_price,
	created_at, updated_at, deleted_at`

type OrderItemRepository struct {
	pool *pgxpool.Pool
}

func NewOrderItemRepository(pool *pgxpool.Pool) *OrderItemRepository {
	return &OrderItemRepository{pool: pool}
}

// Create inserts a new order item.
func (r *OrderItemRepository) Create(ctx context.Context, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (
			id, order_id, project_id, product_id, uuid, status, status_msg,
			external_id, payload_request, payload_ack, payload_response,
			retirement_ref, instance_name, host, port, url, public_ip,
			private_ip, username, password, setup_price, hourly_price,
			monthly_price
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.OrderID, item.ProjectID, item.ProductID, item.UUID,
		item.Status, item.StatusMsg, item.ExternalID, item.PayloadRequest,
		item.PayloadAck, item.PayloadResponse, item.RetirementRef,
		item.InstanceName, item.Host, item.Port, item.URL, item.PublicIP,
		item.PrivateIP, item.Username, item.Password, item.SetupPrice,
		item.HourlyPrice, item.MonthlyPrice,
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}

	return nil
}

// GetByID retrieves an order item by ID, soft-deleted items included so
// in-flight provisioning can still finish and persist.
func (r *OrderItemRepository) GetByID(ctx context.Context, id string) (*models.OrderItem, error) {
	query := `SELECT` + orderItemColumns + ` FROM order_items WHERE id = $1`
	return r.scanOrderItem(r.pool.QueryRow(ctx, query, id))
}

// GetByOrderID retrieves the non-deleted items of an order.
func (r *OrderItemRepository) GetByOrderID(ctx context.Context, orderID string) ([]*models.OrderItem, error) {
	query := `SELECT` + orderItemColumns + `
		FROM order_items
		WHERE order_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	return r.scanOrderItems(rows)
}

// Update writes the full mutable state of an order item back. This is the
// single write the provisioning core performs at the end of every attempt.
func (r *OrderItemRepository) Update(ctx context.Context, item *models.OrderItem) error {
	query := `
		UPDATE order_items SET
			status = $1,
			status_msg = $2,
			external_id = $3,
			payload_request = $4,
			payload_ack = $5,
			payload_response = $6,
			retirement_ref = $7,
			instance_name = $8,
			host = $9,
			port = $10,
			url = $11,
			public_ip = $12,
			private_ip = $13,
			username = $14,
			password = $15,
			updated_at = now()
		WHERE id = $16
	`

	_, err := r.pool.Exec(ctx, query,
		item.Status, item.StatusMsg, item.ExternalID, item.PayloadRequest,
		item.PayloadAck, item.PayloadResponse, item.RetirementRef,
		item.InstanceName, item.Host, item.Port, item.URL, item.PublicIP,
		item.PrivateIP, item.Username, item.Password, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}

	return nil
}

// SoftDelete marks an order item deleted without touching its provisioning
// state; retirement is a separate, explicit operation.
func (r *OrderItemRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE order_items SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("soft delete order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAnswers retrieves the answers recorded against an order item.
func (r *OrderItemRepository) GetAnswers(ctx context.Context, orderItemID string) ([]models.Answer, error) {
	query := `
		SELECT order_item_id, question_id, value
		FROM order_item_answers
		WHERE order_item_id = $1
	`

	rows, err := r.pool.Query(ctx, query, orderItemID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.OrderItemID, &a.QuestionID, &a.Value); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// SaveAnswers records answers for an order item at creation time.
func (r *OrderItemRepository) SaveAnswers(ctx context.Context, orderItemID string, answers map[string]string) error {
	query := `
		INSERT INTO order_item_answers (order_item_id, question_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_item_id, question_id) DO UPDATE SET value = EXCLUDED.value
	`

	for questionID, value := range answers {
		if _, err := r.pool.Exec(ctx, query, orderItemID, questionID, value); err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
	}
	return nil
}

func (r *OrderItemRepository) scanOrderItem(row pgx.Row) (*models.OrderItem, error) {
	item := &models.OrderItem{}
	err := row.Scan(
		&item.ID, &item.OrderID, &item.ProjectID, &item.ProductID, &item.UUID,
		&item.Status, &item.StatusMsg, &item.ExternalID, &item.PayloadRequest,
		&item.PayloadAck, &item.PayloadResponse, &item.RetirementRef,
		&item.InstanceName, &item.Host, &item.Port, &item.URL, &item.PublicIP,
		&item.PrivateIP, &item.Username, &item.Password, &item.SetupPrice,
		&item.HourlyPrice, &item.MonthlyPrice,
		&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan order item: %w", err)
	}
	return item, nil
}

func (r *OrderItemRepository) scanOrderItems(rows pgx.Rows) ([]*models.OrderItem, error) {
	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProjectID, &item.ProductID, &item.UUID,
			&item.Status, &item.StatusMsg, &item.ExternalID, &item.PayloadRequest,
			&item.PayloadAck, &item.PayloadResponse, &item.RetirementRef,
			&item.InstanceName, &item.Host, &item.Port, &item.URL, &item.PublicIP,
			&item.PrivateIP, &item.Username, &item.Password, &item.SetupPrice,
			&item.HourlyPrice, &item.MonthlyPrice,
			&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
