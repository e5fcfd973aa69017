package task

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"clubportal/internal/adapters/storage"
	domain "clubportal/internal/domain/task"
)

const taskColumns = "id, title, description, status, assigned_to, created_by, created_at, updated_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new TaskStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Task by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Task, error) {
	query := "SELECT " + taskColumns + " FROM task WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Task{}, fmt.Errorf("task not found: %w", err)
	}
	return entity, err
}

// Save persists a Task to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Task) error {
	query := `INSERT INTO task (id, title, description, status, assigned_to, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			description=excluded.description,
			status=excluded.status,
			assigned_to=excluded.assigned_to,
			updated_at=excluded.updated_at`

	var updatedAt interface{}
	if !entity.UpdatedAt.IsZero() {
		updatedAt = entity.UpdatedAt.Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Title,
		entity.Description,
		string(entity.Status),
		entity.AssignedTo,
		entity.CreatedBy,
		entity.CreatedAt.Format(time.RFC3339Nano),
		updatedAt,
	)
	return err
}

// TransitionStatus moves a task between statuses only if the row still holds
// the expected current status. Returns false when zero rows matched, which
// means a concurrent transition won; the store's single-row atomicity is the
// only coordination.
// PRE: from and to are valid statuses
// POST: status updated iff the precondition held; no error on a lost race
func (s *SQLiteStore) TransitionStatus(ctx context.Context, id string, from, to domain.Status, updatedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE task SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(to), updatedAt.Format(time.RFC3339Nano), id, string(from),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List retrieves Tasks based on the filter, newest first.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Task, error) {
	var queryBuilder strings.Builder
	var conditions []string
	var args []interface{}

	queryBuilder.WriteString("SELECT " + taskColumns + " FROM task")

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.AssignedTo != "" {
		conditions = append(conditions, "assigned_to = ?")
		args = append(args, filter.AssignedTo)
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Task
	for rows.Next() {
		entity, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of tasks matching the filter.
// PRE: filter has valid parameters
// POST: Returns matching count
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	var queryBuilder strings.Builder
	var conditions []string
	var args []interface{}

	queryBuilder.WriteString("SELECT COUNT(*) FROM task")
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.AssignedTo != "" {
		conditions = append(conditions, "assigned_to = ?")
		args = append(args, filter.AssignedTo)
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	var count int
	err := s.db.QueryRowContext(ctx, queryBuilder.String(), args...).Scan(&count)
	return count, err
}

// scanTask extracts a Task from a row scanner function.
func scanTask(scan func(dest ...interface{}) error) (domain.Task, error) {
	var entity domain.Task
	var status, createdAt string
	var updatedAt sql.NullString
	err := scan(
		&entity.ID,
		&entity.Title,
		&entity.Description,
		&status,
		&entity.AssignedTo,
		&entity.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}
	entity.Status = domain.Status(status)
	entity.CreatedAt, _ = parseTime(createdAt)
	if updatedAt.Valid && updatedAt.String != "" {
		entity.UpdatedAt, _ = parseTime(updatedAt.String)
	}
	return entity, nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
