package postgres

import (
	"context"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
)

// Table maps a struct with "db" tags onto one table. Repositories embed it for
// the common insert/update/select plumbing and add their own queries on top.
type Table[T any] struct {
	txm     *TxManager
	name    string
	entity  string
	columns []string
}

// NewTable binds T to table. entity names the row in error messages.
func NewTable[T any](txm *TxManager, table, entity string) *Table[T] {
	return &Table[T]{
		txm:     txm,
		name:    table,
		entity:  entity,
		columns: ExtractDBColumns[T](),
	}
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// Columns returns the mapped columns in struct order.
func (t *Table[T]) Columns() []string { return t.columns }

// TxManager returns the transaction manager the table runs on.
func (t *Table[T]) TxManager() *TxManager { return t.txm }

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (t *Table[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Select starts a SELECT of every mapped column.
func (t *Table[T]) Select() squirrel.SelectBuilder {
	return t.Builder().Select(t.columns...).From(t.name)
}

// Insert writes v using its "db" tags.
func (t *Table[T]) Insert(ctx context.Context, v *T) error {
	q := t.Builder().Insert(t.name).SetMap(t.values(v, nil))
	_, err := t.Exec(ctx, q)
	return err
}

// InsertAll writes rows in one statement, or over COPY inside a transaction.
func (t *Table[T]) InsertAll(ctx context.Context, rows []T) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]any, 0, len(rows))
	for i := range rows {
		m := StructToMap(&rows[i])
		row := make([]any, len(t.columns))
		for j, col := range t.columns {
			row[j] = m[col]
		}
		values = append(values, row)
	}

	if t.txm.GetTx(ctx) != nil {
		if _, err := NewBatchInserter(t.txm).CopyFromSlice(ctx, t.name, t.columns, values); err != nil {
			return TranslateError(fmt.Errorf("copy into %s: %w", t.name, err), t.entity)
		}
		return nil
	}

	q := t.Builder().Insert(t.name).Columns(t.columns...)
	for _, row := range values {
		q = q.Values(row...)
	}
	_, err := t.Exec(ctx, q)
	return err
}

// Update rewrites every mapped column of the row matched by where, except
// keep. It returns NotFound when nothing matched.
func (t *Table[T]) Update(ctx context.Context, v *T, where squirrel.Sqlizer, keep ...string) error {
	keep = append(keep, "id", "created_at")
	q := t.Builder().Update(t.name).SetMap(t.values(v, keep)).Where(where)

	n, err := t.Exec(ctx, q)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFound(t.entity, where)
	}
	return nil
}

// Get scans the single row of q into a new T. key is reported on NotFound.
func (t *Table[T]) Get(ctx context.Context, q squirrel.SelectBuilder, key any) (*T, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out T
	if err := pgxscan.Get(ctx, t.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(t.entity, fmt.Sprint(key))
		}
		return nil, fmt.Errorf("get %s: %w", t.entity, err)
	}
	return &out, nil
}

// All scans every row of q.
func (t *Table[T]) All(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]T, 0)
	if err := pgxscan.Select(ctx, t.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	return out, nil
}

// Exists reports whether q matches a row.
func (t *Table[T]) Exists(ctx context.Context, where squirrel.Sqlizer) (bool, error) {
	sql, args, err := t.Builder().Select("1").From(t.name).Where(where).Limit(1).
		Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var found bool
	if err := t.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("exists %s: %w", t.entity, err)
	}
	return found, nil
}

// Exec runs a write and returns the affected row count. Constraint
// violations come back as application errors.
func (t *Table[T]) Exec(ctx context.Context, q squirrel.Sqlizer) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build statement: %w", err)
	}

	tag, err := t.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, TranslateError(fmt.Errorf("write %s: %w", t.name, err), t.entity)
	}
	return tag.RowsAffected(), nil
}

func (t *Table[T]) values(v *T, skip []string) map[string]any {
	data := StructToMap(v)
	out := make(map[string]any, len(t.columns))
	for _, col := range t.columns {
		if slices.Contains(skip, col) {
			continue
		}
		if val, ok := data[col]; ok {
			out[col] = val
		}
	}
	return out
}

// Paginate applies limit/offset when limit is positive.
func Paginate(q squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}
