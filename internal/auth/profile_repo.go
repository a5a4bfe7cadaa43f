package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type ProfileRepo struct{ DB *pgxpool.Pool }

// IsAdmin reads profiles.is_admin. No profile row means a regular user; a
// schema without the column is treated the same way.
func (r *ProfileRepo) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var admin bool
	err := r.DB.QueryRow(ctx, `SELECT COALESCE(is_admin, false) FROM profiles WHERE id=$1`, userID).Scan(&admin)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedColumn {
		log.Warn().Str("user_id", userID).Msg("auth: profiles.is_admin missing, treating as non-admin")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return admin, nil
}
