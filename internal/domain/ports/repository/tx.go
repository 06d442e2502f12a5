package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Its concrete type is infra-defined
// (pgx.Tx for Postgres); repositories must gracefully accept NoTX for the
// non-transactional path.
type Tx interface{}

var NoTX Tx

// TransactionManager executes a function inside a database transaction and
// hands the transaction handle to the callback. Every read-check-then-write
// operation of the engine (redeem, commit, payout transitions) runs through
// it so the check and the write are atomic.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
