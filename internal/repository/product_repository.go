package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"storefront/internal/domain"
)

// ProductRepository defines read access to catalog products
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// List retrieves all products in id order
func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, description, price, images, category, category_id, colors, in_stock, rating::float8
		FROM products
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var (
			product        domain.Product
			images, colors []byte
			rating         sql.NullFloat64
		)
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&images,
			&product.Category,
			&product.CategoryID,
			&colors,
			&product.InStock,
			&rating,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		if err := json.Unmarshal(images, &product.Images); err != nil {
			return nil, fmt.Errorf("failed to decode images of product %d: %w", product.ID, err)
		}
		if err := json.Unmarshal(colors, &product.Colors); err != nil {
			return nil, fmt.Errorf("failed to decode colors of product %d: %w", product.ID, err)
		}
		if len(product.Colors) == 0 {
			product.Colors = nil
		}
		if rating.Valid {
			product.Rating = &rating.Float64
		}

		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
