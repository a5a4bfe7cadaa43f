package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the pgx-backed Store.
type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `id, user_id, product_id, quantity, customer_name,
	COALESCE(customer_phone, ''), COALESCE(address, ''), status,
	COALESCE(tracking_number, ''), COALESCE(note, ''), created_at, updated_at`

func scanOrder(row pgx.Row, o *Order) error {
	var st string
	err := row.Scan(&o.ID, &o.UserID, &o.ProductID, &o.Quantity, &o.CustomerName,
		&o.CustomerPhone, &o.Address, &st, &o.TrackingNumber, &o.Note, &o.CreatedAt, &o.UpdatedAt)
	o.Status = Status(st)
	return err
}

func (r *Repo) Insert(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, product_id, quantity, customer_name, customer_phone,
		                   address, status, tracking_number, note)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, NULLIF($9, ''), NULLIF($10, ''))
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.ProductID, o.Quantity, o.CustomerName, o.CustomerPhone,
		o.Address, string(o.Status), o.TrackingNumber, o.Note,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	return mapWriteErr(err)
}

func (r *Repo) Update(ctx context.Context, o *Order) error {
	err := r.DB.QueryRow(ctx, `
		UPDATE orders SET product_id=$3, quantity=$4, customer_name=$5,
		       customer_phone=NULLIF($6, ''), address=NULLIF($7, ''), status=$8,
		       tracking_number=NULLIF($9, ''), note=NULLIF($10, ''), updated_at=now()
		WHERE id=$1 AND user_id=$2
		RETURNING updated_at`,
		o.ID, o.UserID, o.ProductID, o.Quantity, o.CustomerName, o.CustomerPhone,
		o.Address, string(o.Status), o.TrackingNumber, o.Note,
	).Scan(&o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return mapWriteErr(err)
}

// mapWriteErr: product_id yang tidak ada kena FK orders.product_id.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return fmt.Errorf("%w: %s", ErrProductNotFound, pgErr.ConstraintName)
	}
	return err
}

func (r *Repo) Delete(ctx context.Context, userID, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, userID, id string) (*Order, error) {
	var o Order
	err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 AND user_id=$2`, id, userID), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) ListByOwner(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders
	                              WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// FindByTracking sengaja tidak difilter user_id: ini fitur lacak paket publik.
func (r *Repo) FindByTracking(ctx context.Context, tracking string) (TrackingView, bool, error) {
	var (
		v  TrackingView
		st string
		ts time.Time
	)
	err := r.DB.QueryRow(ctx, `
		SELECT o.tracking_number, o.customer_name, COALESCE(p.name, '-'), o.quantity, o.status, o.updated_at
		FROM orders o LEFT JOIN products p ON p.id = o.product_id
		WHERE o.tracking_number = $1
		ORDER BY o.updated_at DESC
		LIMIT 1`, tracking,
	).Scan(&v.TrackingNumber, &v.CustomerName, &v.ProductName, &v.Quantity, &st, &ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return TrackingView{}, false, nil
	}
	if err != nil {
		return TrackingView{}, false, err
	}
	v.Status = Status(st)
	v.UpdatedAt = ts
	return v, true, nil
}
