package repository

import (
	"context"
	"database/sql"
	"strings"

	"coke_oven/internal/models"
)

type CycleSQLite struct {
	db *sql.DB
}

func NewCycleSQLite(db *sql.DB) *CycleSQLite { return &CycleSQLite{db: db} }

var _ CycleRepo = (*CycleSQLite)(nil)

const (
	insertCycleSQL = `
		INSERT INTO coking_cycles (
			coke_oven, chamber, loading_time, push_time,
			duration_minutes, duration_hhmm, avg_temp_machine, avg_temp_coke
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectCycleColumns = `SELECT id, coke_oven, chamber, loading_time, push_time, duration_minutes, duration_hhmm, avg_temp_machine, avg_temp_coke FROM coking_cycles`

	// DefaultCycleLimit caps List when the query names no limit.
	DefaultCycleLimit = 100
	// MaxCycleLimit is the largest page List returns.
	MaxCycleLimit = 1000
)

// Insert stores a derived cycle. Missing averages are stored as NULL.
func (r *CycleSQLite) Insert(ctx context.Context, c models.CokingCycle) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertCycleSQL,
		c.Oven,
		c.Chamber,
		formatStoredTime(c.LoadTime),
		formatStoredTime(c.PushTime),
		c.DurationMinutes,
		c.Duration,
		nullFloat(c.AvgMachineSide),
		nullFloat(c.AvgCokeSide),
	)
	if err != nil {
		return 0, insertError("coking cycle", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, queryError("coking cycle id", err)
	}
	return id, nil
}

// List returns cycles matching q, newest push first.
func (r *CycleSQLite) List(ctx context.Context, q CycleQuery) ([]models.CokingCycle, error) {
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
	if !q.From.IsZero() {
		conds = append(conds, "push_time >= ?")
		args = append(args, formatStoredTime(q.From))
	}
	if !q.To.IsZero() {
		conds = append(conds, "push_time <= ?")
		args = append(args, formatStoredTime(q.To))
	}

	limit := q.Limit
	switch {
	case limit <= 0:
		limit = DefaultCycleLimit
	case limit > MaxCycleLimit:
		limit = MaxCycleLimit
	}

	query := selectCycleColumns
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY push_time DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("list cycles", err)
	}
	defer rows.Close()

	out := make([]models.CokingCycle, 0, 16)
	for rows.Next() {
		var (
			c             models.CokingCycle
			load, push    string
			machine, coke sql.NullFloat64
		)
		if err := rows.Scan(&c.ID, &c.Oven, &c.Chamber, &load, &push, &c.DurationMinutes, &c.Duration, &machine, &coke); err != nil {
			return nil, queryError("scan cycle", err)
		}
		if c.LoadTime, err = parseStoredTime(load); err != nil {
			return nil, queryError("scan cycle", err)
		}
		if c.PushTime, err = parseStoredTime(push); err != nil {
			return nil, queryError("scan cycle", err)
		}
		c.AvgMachineSide = floatPtr(machine)
		c.AvgCokeSide = floatPtr(coke)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("iterate cycles", err)
	}
	return out, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
