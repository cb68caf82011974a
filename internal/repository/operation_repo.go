package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"coke_oven/internal/models"
)

type OperationSQLite struct {
	db *sql.DB
}

func NewOperationSQLite(db *sql.DB) *OperationSQLite { return &OperationSQLite{db: db} }

var _ OperationRepo = (*OperationSQLite)(nil)

const (
	insertOperationSQL = `
		INSERT INTO operation_records (coke_oven, chamber, operation_type, time)
		VALUES (?, ?, ?, ?)
	`

	selectOperationColumns = `SELECT id, coke_oven, chamber, operation_type, time FROM operation_records`
)

// Insert stores an event. The same chamber cannot have two events at one instant.
func (r *OperationSQLite) Insert(ctx context.Context, e models.OperationEvent) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertOperationSQL,
		e.Oven,
		e.Chamber,
		string(e.Kind),
		formatStoredTime(e.Time),
	)
	if err != nil {
		return 0, insertError("operation event", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, queryError("operation event id", err)
	}
	return id, nil
}

// LatestBefore returns the most recent event of the chamber strictly before
// the instant, restricted to kind unless kind is empty. (nil, nil) if none.
func (r *OperationSQLite) LatestBefore(ctx context.Context, oven int, chamber string, kind models.OperationKind, before time.Time) (*models.OperationEvent, error) {
	q := selectOperationColumns + ` WHERE coke_oven = ? AND chamber = ?`
	args := []any{oven, chamber}
	if kind != "" {
		q += ` AND operation_type = ?`
		args = append(args, string(kind))
	}
	q += ` AND time < ? ORDER BY time DESC LIMIT 1`
	args = append(args, formatStoredTime(before))

	e, err := scanOperation(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, queryError("latest operation before", err)
	}
	return &e, nil
}

// List returns events matching q, ascending by time.
func (r *OperationSQLite) List(ctx context.Context, q OperationQuery) ([]models.OperationEvent, error) {
	var (
		conds []string
		args  []any
	)

	if q.Oven != 0 {
		conds = append(conds, "coke_oven = ?")
		args = append(args, q.Oven)
	}
	if q.Chamber != "" {
		conds = append(conds, "chamber = ?")
		args = append(args, q.Chamber)
	}
	if q.Kind != "" {
		conds = append(conds, "operation_type = ?")
		args = append(args, string(q.Kind))
	}
	if !q.From.IsZero() {
		conds = append(conds, "time >= ?")
		args = append(args, formatStoredTime(q.From))
	}
	if !q.To.IsZero() {
		conds = append(conds, "time <= ?")
		args = append(args, formatStoredTime(q.To))
	}

	query := selectOperationColumns
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY time ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("list operations", err)
	}
	defer rows.Close()

	out := make([]models.OperationEvent, 0, 16)
	for rows.Next() {
		e, err := scanOperation(rows)
		if err != nil {
			return nil, queryError("scan operation", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("iterate operations", err)
	}
	return out, nil
}

func scanOperation(row rowScanner) (models.OperationEvent, error) {
	var (
		e    models.OperationEvent
		kind string
		ts   string
	)
	if err := row.Scan(&e.ID, &e.Oven, &e.Chamber, &kind, &ts); err != nil {
		return models.OperationEvent{}, err
	}
	t, err := parseStoredTime(ts)
	if err != nil {
		return models.OperationEvent{}, err
	}
	e.Kind = models.OperationKind(kind)
	e.Time = t
	return e, nil
}
