package orders

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapWriteErr(t *testing.T) {
	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "orders_product_id_fkey"}
	err := mapWriteErr(fk)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Contains(t, err.Error(), "orders_product_id_fkey")

	other := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	assert.Same(t, other, mapWriteErr(other))

	plain := errors.New("conn reset")
	assert.Equal(t, plain, mapWriteErr(plain))
	assert.NoError(t, mapWriteErr(nil))
}
