package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/tx"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

var tracer = otel.Tracer("fmdemo/postgres")

var _ tx.ReadOnlyManager = (*TxManager)(nil)

// TxOptions controls how a transaction is opened.
type TxOptions struct {
	IsolationLevel pgx.TxIsoLevel
	AccessMode     pgx.TxAccessMode
	// StatementTimeout is applied with SET LOCAL; zero leaves the server default.
	StatementTimeout time.Duration
	// Savepoint isolates a nested call so its failure leaves the outer
	// transaction usable.
	Savepoint bool
}

func defaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel:   pgx.ReadCommitted,
		AccessMode:       pgx.ReadWrite,
		StatementTimeout: 30 * time.Second,
	}
}

// TxManager runs use cases in database transactions. The open transaction
// travels in the context and repositories reach it through GetQuerier, so a
// use case that calls another joins its transaction.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager binds a manager to pool.
func NewTxManager(pool *Pool) *TxManager {
	return &TxManager{pool: pool.Pool}
}

type txKey struct{}

// Tx is an open transaction plus the savepoint counter of nested calls.
type Tx struct {
	pgx.Tx
	savepoints int
}

// RunInTransaction runs fn in a read-committed transaction, or inside the
// one already open in ctx.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransactionWithOptions(ctx, defaultTxOptions(), fn)
}

// ReadOnly runs fn in a read-only transaction.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := defaultTxOptions()
	opts.AccessMode = pgx.ReadOnly
	return m.RunInTransactionWithOptions(ctx, opts, fn)
}

// Savepoint runs fn so that its failure does not abort the surrounding
// transaction. Outside a transaction fn runs in a fresh one.
func (m *TxManager) Savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := defaultTxOptions()
	opts.Savepoint = true
	return m.RunInTransactionWithOptions(ctx, opts, fn)
}

// RunInTransactionWithOptions is RunInTransaction with explicit options.
// Options other than Savepoint are ignored when joining an open transaction.
func (m *TxManager) RunInTransactionWithOptions(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "transaction", trace.WithAttributes(
		attribute.String("tx.isolation", string(opts.IsolationLevel)),
		attribute.Bool("tx.read_only", opts.AccessMode == pgx.ReadOnly),
	))
	defer span.End()

	var err error
	if open := m.GetTx(ctx); open != nil {
		err = m.nested(ctx, open, opts.Savepoint, fn)
	} else {
		err = m.begin(ctx, opts, fn)
	}
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (m *TxManager) begin(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	ptx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: opts.IsolationLevel, AccessMode: opts.AccessMode})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Rollback runs on a fresh context so a cancelled request still releases
	// the connection cleanly.
	rollback := func(cause error) {
		if rbErr := ptx.Rollback(context.Background()); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "cause", cause)
		}
	}

	if opts.StatementTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", opts.StatementTimeout.Milliseconds())
		if _, err := ptx.Exec(ctx, stmt); err != nil {
			rollback(err)
			return fmt.Errorf("set statement timeout: %w", err)
		}
	}

	if err := fn(context.WithValue(ctx, txKey{}, &Tx{Tx: ptx})); err != nil {
		rollback(err)
		return err
	}
	if err := ptx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (m *TxManager) nested(ctx context.Context, open *Tx, savepoint bool, fn func(ctx context.Context) error) error {
	if !savepoint {
		return fn(ctx)
	}

	open.savepoints++
	name := fmt.Sprintf("sp_%d", open.savepoints)
	if _, err := open.Exec(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}
	if err := fn(ctx); err != nil {
		if _, rbErr := open.Exec(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			logger.Error(ctx, "rollback to savepoint failed", "savepoint", name, "error", rbErr)
		}
		return err
	}
	if _, err := open.Exec(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint %s: %w", name, err)
	}
	return nil
}

// GetTx returns the transaction open in ctx, or nil.
func (m *TxManager) GetTx(ctx context.Context) *Tx {
	t, _ := ctx.Value(txKey{}).(*Tx)
	return t
}

// Querier is what a transaction and the pool have in common.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQuerier returns the open transaction, falling back to the pool.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if t := m.GetTx(ctx); t != nil {
		return t.Tx
	}
	return m.pool
}

// Pool returns the pool for statements that must run outside any
// transaction, such as relay bookkeeping.
func (m *TxManager) Pool() *pgxpool.Pool {
	return m.pool
}
