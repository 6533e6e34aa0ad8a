package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var errNoTx = errors.New("batch statements require an open transaction")

// BatchInserter loads rows over the COPY protocol.
type BatchInserter struct {
	txManager *TxManager
}

func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice copies rows, each holding values in columns order, into table.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	t := b.txManager.GetTx(ctx)
	if t == nil {
		return 0, errNoTx
	}
	return t.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

// BatchExecutor pipelines several writes in one round trip.
type BatchExecutor struct {
	txManager *TxManager
}

func NewBatchExecutor(txManager *TxManager) *BatchExecutor {
	return &BatchExecutor{txManager: txManager}
}

// BatchQuery is one pipelined write.
type BatchQuery struct {
	SQL  string
	Args []any
	// Expect, when positive, is the number of rows the statement must touch.
	Expect int64
}

// ExecuteBatch runs queries in order and stops at the first failure or row
// count mismatch.
func (e *BatchExecutor) ExecuteBatch(ctx context.Context, queries []BatchQuery) error {
	t := e.txManager.GetTx(ctx)
	if t == nil {
		return errNoTx
	}
	if len(queries) == 0 {
		return nil
	}

	var batch pgx.Batch
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}
	results := t.SendBatch(ctx, &batch)
	defer results.Close()

	for i, q := range queries {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
		if q.Expect > 0 && tag.RowsAffected() != q.Expect {
			return fmt.Errorf("batch statement %d touched %d rows, want %d", i, tag.RowsAffected(), q.Expect)
		}
	}
	return nil
}
