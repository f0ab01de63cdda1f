package service

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// TxRunner runs fn inside one database transaction; *database.Transactor implements it
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}
