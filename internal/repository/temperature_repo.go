package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"coke_oven/internal/models"
)

type TemperatureSQLite struct {
	db *sql.DB
}

func NewTemperatureSQLite(db *sql.DB) *TemperatureSQLite { return &TemperatureSQLite{db: db} }

var _ TemperatureRepo = (*TemperatureSQLite)(nil)

const (
	insertTemperatureSQL = `
		INSERT INTO temperature_records (coke_oven, time, machine_side, coke_side)
		VALUES (?, ?, ?, ?)
	`

	// latest sample at or before the instant
	selectTemperatureAtOrBeforeSQL = `
		SELECT id, coke_oven, time, machine_side, coke_side FROM temperature_records
		WHERE coke_oven = ? AND time <= ?
		ORDER BY time DESC LIMIT 1
	`

	// earliest sample strictly after the instant
	selectTemperatureAfterSQL = `
		SELECT id, coke_oven, time, machine_side, coke_side FROM temperature_records
		WHERE coke_oven = ? AND time > ?
		ORDER BY time ASC LIMIT 1
	`

	selectTemperatureBetweenSQL = `
		SELECT id, coke_oven, time, machine_side, coke_side FROM temperature_records
		WHERE coke_oven = ? AND time > ? AND time < ?
		ORDER BY time ASC
	`
)

// Insert stores a sample. A second sample for the same oven and instant
// fails with models.ErrDuplicateRecord.
func (r *TemperatureSQLite) Insert(ctx context.Context, s models.TemperatureSample) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertTemperatureSQL,
		s.Oven,
		formatStoredTime(s.Time),
		s.MachineSide,
		s.CokeSide,
	)
	if err != nil {
		return 0, insertError("temperature sample", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, queryError("temperature sample id", err)
	}
	return id, nil
}

// Nearest returns the bracketing sample on the requested side of at.
// Before is inclusive of an exact match, After is exclusive.
func (r *TemperatureSQLite) Nearest(ctx context.Context, oven int, at time.Time, dir models.Direction) (*models.TemperatureSample, error) {
	q := selectTemperatureAtOrBeforeSQL
	if dir == models.After {
		q = selectTemperatureAfterSQL
	}

	s, err := scanTemperature(r.db.QueryRowContext(ctx, q, oven, formatStoredTime(at)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, queryError("nearest temperature "+dir.String(), err)
	}
	return &s, nil
}

// Between returns samples strictly inside (start, end), ascending.
func (r *TemperatureSQLite) Between(ctx context.Context, oven int, start, end time.Time) ([]models.TemperatureSample, error) {
	rows, err := r.db.QueryContext(ctx, selectTemperatureBetweenSQL, oven, formatStoredTime(start), formatStoredTime(end))
	if err != nil {
		return nil, queryError("temperatures between", err)
	}
	return collectTemperatures(rows)
}

// List returns samples of an oven in [from, to], ascending. Zero bounds are open.
func (r *TemperatureSQLite) List(ctx context.Context, oven int, from, to time.Time) ([]models.TemperatureSample, error) {
	conds := []string{"coke_oven = ?"}
	args := []any{oven}

	if !from.IsZero() {
		conds = append(conds, "time >= ?")
		args = append(args, formatStoredTime(from))
	}
	if !to.IsZero() {
		conds = append(conds, "time <= ?")
		args = append(args, formatStoredTime(to))
	}

	q := `SELECT id, coke_oven, time, machine_side, coke_side FROM temperature_records WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY time ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, queryError("list temperatures", err)
	}
	return collectTemperatures(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemperature(row rowScanner) (models.TemperatureSample, error) {
	var (
		s  models.TemperatureSample
		ts string
	)
	if err := row.Scan(&s.ID, &s.Oven, &ts, &s.MachineSide, &s.CokeSide); err != nil {
		return models.TemperatureSample{}, err
	}
	t, err := parseStoredTime(ts)
	if err != nil {
		return models.TemperatureSample{}, err
	}
	s.Time = t
	return s, nil
}

func collectTemperatures(rows *sql.Rows) ([]models.TemperatureSample, error) {
	defer rows.Close()

	out := make([]models.TemperatureSample, 0, 16)
	for rows.Next() {
		s, err := scanTemperature(rows)
		if err != nil {
			return nil, queryError("scan temperature", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("iterate temperatures", err)
	}
	return out, nil
}
