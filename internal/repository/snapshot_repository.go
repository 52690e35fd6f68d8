package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

// SnapshotRepository reads timetable snapshots from the read-only replica of the
// generation backend's store. Assignments live in a jsonb column per semester timetable.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

type timetableRow struct {
	ID          string         `db:"id"`
	Semester    string         `db:"semester"`
	Algorithm   string         `db:"algorithm"`
	Assignments types.JSONText `db:"assignments"`
}

type dayRow struct {
	Name     string        `db:"name"`
	LongName string        `db:"long_name"`
	Weekday  sql.NullInt64 `db:"weekday"`
}

type periodRow struct {
	Name       string        `db:"name"`
	LongName   string        `db:"long_name"`
	IsInterval bool          `db:"is_interval"`
	Position   sql.NullInt64 `db:"position"`
}

// Published returns the algorithm currently published, if any.
func (r *SnapshotRepository) Published(ctx context.Context) (models.PublishedInfo, error) {
	const query = `SELECT algorithm FROM published_timetables ORDER BY published_at DESC LIMIT 1`
	var algorithm string
	if err := r.db.GetContext(ctx, &algorithm, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PublishedInfo{}, nil
		}
		return models.PublishedInfo{}, fmt.Errorf("get published timetable: %w", err)
	}
	return models.PublishedInfo{Published: algorithm != "", Algorithm: algorithm}, nil
}

// AlgorithmTimetables lists the semester timetables generated by one algorithm.
func (r *SnapshotRepository) AlgorithmTimetables(ctx context.Context, algorithm string) ([]models.SemesterTimetable, error) {
	const query = `SELECT id, semester, algorithm, assignments FROM timetables WHERE algorithm = $1 ORDER BY semester`
	var rows []timetableRow
	if err := r.db.SelectContext(ctx, &rows, query, algorithm); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	out := make([]models.SemesterTimetable, 0, len(rows))
	for _, row := range rows {
		tt := models.SemesterTimetable{ID: row.ID, Semester: row.Semester, Algorithm: row.Algorithm}
		if len(row.Assignments) > 0 {
			if err := json.Unmarshal(row.Assignments, &tt.Assignments); err != nil {
				return nil, fmt.Errorf("decode assignments of timetable %s: %w", row.ID, err)
			}
		}
		out = append(out, tt)
	}
	return out, nil
}

// Days returns the day taxonomy in stored order.
func (r *SnapshotRepository) Days(ctx context.Context) ([]models.Day, error) {
	const query = `SELECT name, long_name, weekday FROM days ORDER BY position`
	var rows []dayRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	days := make([]models.Day, 0, len(rows))
	for _, row := range rows {
		day := models.Day{Name: row.Name, LongName: row.LongName}
		if row.Weekday.Valid {
			weekday := int(row.Weekday.Int64)
			day.Weekday = &weekday
		}
		days = append(days, day)
	}
	return days, nil
}

// Periods returns the period taxonomy in stored order.
func (r *SnapshotRepository) Periods(ctx context.Context) ([]models.Period, error) {
	const query = `SELECT name, long_name, is_interval, position FROM periods ORDER BY position`
	var rows []periodRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	periods := make([]models.Period, 0, len(rows))
	for _, row := range rows {
		period := models.Period{Name: row.Name, LongName: row.LongName, IsInterval: row.IsInterval}
		if row.Position.Valid {
			order := int(row.Position.Int64)
			period.Order = &order
		}
		periods = append(periods, period)
	}
	return periods, nil
}

// References loads the subject, faculty and space tables.
func (r *SnapshotRepository) References(ctx context.Context) (models.ReferenceTables, error) {
	var refs models.ReferenceTables
	if err := r.db.SelectContext(ctx, &refs.Subjects, `SELECT code, name, long_name FROM subjects ORDER BY code`); err != nil {
		return refs, fmt.Errorf("list subjects: %w", err)
	}
	if err := r.db.SelectContext(ctx, &refs.Teachers, `SELECT id, first_name, last_name, position FROM faculty ORDER BY id`); err != nil {
		return refs, fmt.Errorf("list faculty: %w", err)
	}
	if err := r.db.SelectContext(ctx, &refs.Spaces, `SELECT name, long_name, code, capacity FROM spaces ORDER BY name`); err != nil {
		return refs, fmt.Errorf("list spaces: %w", err)
	}
	return refs, nil
}

// Snapshot assembles a full snapshot for the scope.
func (r *SnapshotRepository) Snapshot(ctx context.Context, scope string) (*models.TimetableSnapshot, error) {
	algorithm, err := models.ParseScope(scope)
	if err != nil {
		return nil, err
	}
	snapshot := &models.TimetableSnapshot{Scope: models.AlgorithmScope(algorithm)}
	if algorithm == "" {
		info, err := r.Published(ctx)
		if err != nil {
			return nil, err
		}
		if !info.Published {
			return nil, models.ErrNothingPublished
		}
		snapshot.Scope = models.ScopePublished
		algorithm = strings.ToUpper(info.Algorithm)
	}
	snapshot.Algorithm = algorithm

	if snapshot.Timetables, err = r.AlgorithmTimetables(ctx, algorithm); err != nil {
		return nil, err
	}
	if snapshot.Days, err = r.Days(ctx); err != nil {
		return nil, err
	}
	if snapshot.Periods, err = r.Periods(ctx); err != nil {
		return nil, err
	}
	if snapshot.References, err = r.References(ctx); err != nil {
		return nil, err
	}
	return snapshot, nil
}
