package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Conn is the slice of pgx that RecordStore needs. *pgxpool.Pool, pgx.Tx and
// pgxmock pools all satisfy it.
type Conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RecordStore executes raw statements and hands rows back as text columns.
type RecordStore struct {
	conn Conn
	inTx bool
}

func NewRecordStore(conn Conn) *RecordStore {
	return &RecordStore{conn: conn}
}

// Execute runs a write statement and returns the number of affected rows.
func (s *RecordStore) Execute(ctx context.Context, stmt string, args ...any) (int64, error) {
	tag, err := s.conn.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Query runs a read statement. Each row is returned as its column values
// rendered as text; NULL becomes "" and dates become YYYY-MM-DD.
func (s *RecordStore) Query(ctx context.Context, stmt string, args ...any) ([][]string, error) {
	rows, err := s.conn.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		record := make([]string, len(values))
		for i, v := range values {
			record[i] = textValue(v)
		}
		result = append(result, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Count runs a read statement and returns how many rows it produced.
func (s *RecordStore) Count(ctx context.Context, stmt string, args ...any) (int, error) {
	rows, err := s.conn.Query(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
	}

	if err := rows.Err(); err != nil {
		return 0, err
	}

	return n, nil
}

// WithinTx runs fn against a store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise. Nested
// calls reuse the outer transaction.
func (s *RecordStore) WithinTx(ctx context.Context, fn func(tx *RecordStore) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&RecordStore{conn: tx, inTx: true}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func textValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
