// internal/repository/grievance_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gurkanbulca/grievanceportal/internal/models"
)

// ErrNotFound is returned when no grievance has the requested id.
var ErrNotFound = errors.New("grievance not found")

type GrievanceRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewGrievanceRepository(db *sqlx.DB) *GrievanceRepository {
	return &GrievanceRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// grievanceRow mirrors the table; dates are unix milliseconds on disk.
type grievanceRow struct {
	models.Grievance
	DateSubmittedMillis int64         `db:"date_submitted"`
	DateResolvedMillis  sql.NullInt64 `db:"date_resolved"`
}

func (r grievanceRow) toModel() *models.Grievance {
	g := r.Grievance
	g.DateSubmitted = time.UnixMilli(r.DateSubmittedMillis).UTC()
	if r.DateResolvedMillis.Valid {
		g.DateResolved = sql.NullTime{Time: time.UnixMilli(r.DateResolvedMillis.Int64).UTC(), Valid: true}
	}
	return &g
}

const selectColumns = `id, grievance_type, priority, description, additional_context,
	submitted_by, date_submitted, status, husband_notes, date_resolved`

// Create inserts a new open grievance and returns its id.
func (r *GrievanceRepository) Create(ctx context.Context, in *GrievanceInput) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO grievances (grievance_type, priority, description, additional_context, submitted_by, date_submitted, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.GrievanceType,
		string(in.Priority),
		in.Description,
		nullString(in.AdditionalContext),
		in.SubmittedBy,
		r.now().UnixMilli(),
		string(models.StatusOpen),
	)
	if err != nil {
		return 0, fmt.Errorf("insert grievance: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read grievance id: %w", err)
	}
	return id, nil
}

func (r *GrievanceRepository) GetByID(ctx context.Context, id int64) (*models.Grievance, error) {
	var row grievanceRow
	err := r.db.GetContext(ctx, &row, `SELECT `+selectColumns+` FROM grievances WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get grievance %d: %w", id, err)
	}
	return row.toModel(), nil
}

// List returns every grievance, most severe first and newest first within a priority.
func (r *GrievanceRepository) List(ctx context.Context) ([]*models.Grievance, error) {
	var rows []grievanceRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+selectColumns+`
		FROM grievances
		ORDER BY
			CASE priority WHEN 'Critical' THEN 1 WHEN 'High' THEN 2 WHEN 'Medium' THEN 3 WHEN 'Low' THEN 4 ELSE 5 END,
			date_submitted DESC,
			id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query grievances: %w", err)
	}

	grievances := make([]*models.Grievance, len(rows))
	for i, row := range rows {
		grievances[i] = row.toModel()
	}
	return grievances, nil
}

// UpdateStatus sets status and notes on one grievance. The resolution date
// is stamped when the grievance first enters Resolved or Closed and cleared
// when it is reopened.
func (r *GrievanceRepository) UpdateStatus(ctx context.Context, id int64, status models.Status, notes string) (*models.Grievance, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}

	var current struct {
		Status       models.Status `db:"status"`
		DateResolved sql.NullInt64 `db:"date_resolved"`
	}
	err = tx.GetContext(ctx, &current, `SELECT status, date_resolved FROM grievances WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rollback(tx, ErrNotFound)
	}
	if err != nil {
		return nil, rollback(tx, fmt.Errorf("load grievance %d: %w", id, err))
	}

	resolved := sql.NullInt64{}
	if status.IsTerminal() {
		if current.Status.IsTerminal() && current.DateResolved.Valid {
			resolved = current.DateResolved
		} else {
			resolved = sql.NullInt64{Int64: r.now().UnixMilli(), Valid: true}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE grievances
		SET status = ?, husband_notes = ?, date_resolved = ?
		WHERE id = ?`,
		string(status), nullString(notes), resolved, id,
	); err != nil {
		return nil, rollback(tx, fmt.Errorf("update grievance %d: %w", id, err))
	}

	var row grievanceRow
	if err := tx.GetContext(ctx, &row, `SELECT `+selectColumns+` FROM grievances WHERE id = ?`, id); err != nil {
		return nil, rollback(tx, fmt.Errorf("reload grievance %d: %w", id, err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit grievance %d: %w", id, err)
	}
	return row.toModel(), nil
}

// CountByStatus returns the number of grievances in each status.
func (r *GrievanceRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	var rows []struct {
		Status models.Status `db:"status"`
		Count  int           `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(1) AS n FROM grievances GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count grievances: %w", err)
	}

	counts := make(models.StatusCounts, len(models.Statuses))
	for _, s := range models.Statuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Ping checks that the database is reachable.
func (r *GrievanceRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Helper function for transaction rollback
func rollback(tx *sqlx.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = fmt.Errorf("%w: %v", err, rerr)
	}
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Types for repository input
type GrievanceInput struct {
	GrievanceType     string
	Priority          models.Priority
	Description       string
	AdditionalContext string
	SubmittedBy       string
}
