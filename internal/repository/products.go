package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GreenCart/internal/models"
)

const productColumns = `id, dispensary_id, name, category, strain, thc, price_cents, image_url`

// PostgresProductRepository stores dispensary menus in PostgreSQL.
type PostgresProductRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresProductRepository creates a new PostgresProductRepository using the provided *sql.DB.
func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{DB: db}
}

func scanProduct(row interface{ Scan(...any) error }) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.DispensaryID, &p.Name, &p.Category, &p.Strain, &p.THC, &p.PriceCents, &p.ImageURL)
	return p, err
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	defer rows.Close()
	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return products, nil
}

// ListByDispensary returns the menu of a dispensary ordered by category and name.
func (r *PostgresProductRepository) ListByDispensary(ctx context.Context, dispensaryID string) ([]models.Product, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE dispensary_id = $1 ORDER BY category, name
	`, dispensaryID)
	if err != nil {
		return nil, fmt.Errorf("ListByDispensary: %w", err)
	}
	return collectProducts(rows)
}

// GetByID fetches a single product. Returns ErrNotFound if absent.
func (r *PostgresProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := scanProduct(r.DB.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &p, nil
}

// Upsert inserts the products or updates them by id within one transaction.
func (r *PostgresProductRepository) Upsert(ctx context.Context, products []models.Product) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				dispensary_id = EXCLUDED.dispensary_id,
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				strain = EXCLUDED.strain,
				thc = EXCLUDED.thc,
				price_cents = EXCLUDED.price_cents,
				image_url = EXCLUDED.image_url
		`, p.ID, p.DispensaryID, p.Name, p.Category, p.Strain, p.THC, p.PriceCents, p.ImageURL)
		if err != nil {
			return fmt.Errorf("upsert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete removes a product. Returns ErrNotFound if nothing was deleted.
func (r *PostgresProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
