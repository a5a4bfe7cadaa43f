package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("product already exists")
)

type ProductRepo struct{ DB *pgxpool.Pool }

func (r *ProductRepo) List(ctx context.Context, userID string) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, user_id, name, COALESCE(category, ''), price::text, stock, created_at
	                              FROM products WHERE user_id=$1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		var (
			p     Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Category, &price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("product %s price: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, user_id, name, category, price, stock)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5::numeric, $6)
		RETURNING created_at`,
		p.ID, p.UserID, p.Name, p.Category, p.Price.String(), p.Stock,
	).Scan(&p.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicateProduct
	}
	return err
}

// ProductName implements Catalog.
func (r *ProductRepo) ProductName(ctx context.Context, userID, productID string) (string, error) {
	var name string
	err := r.DB.QueryRow(ctx, `SELECT name FROM products WHERE id=$1 AND user_id=$2`, productID, userID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrProductNotFound
	}
	return name, err
}
