package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reefcloud/catalog-provision-service/internal/models"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// GetByID retrieves a product together with its product-type questions.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `
		SELECT id, name, backend, product_type_id, service_type_id,
		       service_catalog_id, setup_price, hourly_price, monthly_price,
		       created_at, updated_at
		FROM products
		WHERE id = $1
	`

	p := &models.Product{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Backend, &p.ProductTypeID, &p.ServiceTypeID,
		&p.ServiceCatalogID, &p.SetupPrice, &p.HourlyPrice, &p.MonthlyPrice,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	questions, err := r.getQuestions(ctx, p.ProductTypeID)
	if err != nil {
		return nil, err
	}
	p.Questions = questions

	return p, nil
}

func (r *ProductRepository) getQuestions(ctx context.Context, productTypeID string) ([]models.Question, error) {
	query := `
		SELECT id, key, default_value
		FROM product_type_questions
		WHERE product_type_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, productTypeID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Key, &q.Default); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
