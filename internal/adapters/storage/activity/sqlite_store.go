package activity

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"clubportal/internal/adapters/storage"
	domain "clubportal/internal/domain/activity"
)

const activityColumns = "id, title, description, date, status, created_by, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ActivityStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Activity by its ID, leads included.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Activity, error) {
	query := "SELECT " + activityColumns + " FROM activity WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanActivity(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Activity{}, fmt.Errorf("activity not found: %w", err)
	}
	if err != nil {
		return domain.Activity{}, err
	}

	leads, err := s.ListLeads(ctx, []string{id})
	if err != nil {
		return domain.Activity{}, err
	}
	entity.LeadIDs = leads[id]
	return entity, nil
}

// Save persists an Activity to the database. Lead assignments are managed
// separately via AttachLeads.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Activity) error {
	query := `INSERT INTO activity (id, title, description, date, status, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			description=excluded.description,
			date=excluded.date,
			status=excluded.status`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Title,
		entity.Description,
		entity.Date.Format("2006-01-02"),
		string(entity.Status),
		entity.CreatedBy,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// Delete removes an Activity and its lead assignments.
// PRE: id is non-empty
// POST: Entity and lead rows are removed; deleting a missing id is not an error
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM activity_lead WHERE activity_id = ?", id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM activity WHERE id = ?", id)
	return err
}

// AttachLeads replaces the lead set for an activity.
// PRE: activityID is non-empty
// POST: Exactly the given accounts are recorded as leads
func (s *SQLiteStore) AttachLeads(ctx context.Context, activityID string, accountIDs []string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM activity_lead WHERE activity_id = ?", activityID); err != nil {
		return err
	}
	for _, accountID := range accountIDs {
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO activity_lead (activity_id, account_id) VALUES (?, ?)",
			activityID, accountID,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListLeads returns lead account IDs keyed by activity ID.
// PRE: activityIDs may be empty
// POST: Map contains an entry only for activities that have leads
func (s *SQLiteStore) ListLeads(ctx context.Context, activityIDs []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(activityIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(activityIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(activityIDs))
	for i, id := range activityIDs {
		args[i] = id
	}

	query := "SELECT activity_id, account_id FROM activity_lead WHERE activity_id IN (" + placeholders + ") ORDER BY account_id"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var activityID, accountID string
		if err := rows.Scan(&activityID, &accountID); err != nil {
			return nil, err
		}
		result[activityID] = append(result[activityID], accountID)
	}
	return result, rows.Err()
}

// List retrieves Activities based on the filter, soonest first. Leads are not
// populated; callers that need them batch through ListLeads.
// PRE: filter has valid parameters
// POST: Returns matching entities ordered by date ascending
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Activity, error) {
	var queryBuilder strings.Builder
	var args []interface{}

	queryBuilder.WriteString("SELECT " + activityColumns + " FROM activity")
	if filter.Status != "" {
		queryBuilder.WriteString(" WHERE status = ?")
		args = append(args, string(filter.Status))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	queryBuilder.WriteString(" ORDER BY date ASC LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Activity
	for rows.Next() {
		entity, err := scanActivity(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of activities matching the filter.
// PRE: filter has valid parameters
// POST: Returns matching count
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	query := "SELECT COUNT(*) FROM activity"
	var args []interface{}
	if filter.Status != "" {
		query += " WHERE status = ?"
		args = append(args, string(filter.Status))
	}
	var count int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// scanActivity extracts an Activity from a row scanner function.
func scanActivity(scan func(dest ...interface{}) error) (domain.Activity, error) {
	var entity domain.Activity
	var status, date, createdAt string
	err := scan(
		&entity.ID,
		&entity.Title,
		&entity.Description,
		&date,
		&status,
		&entity.CreatedBy,
		&createdAt,
	)
	if err != nil {
		return domain.Activity{}, err
	}
	entity.Status = domain.Status(status)
	entity.Date, _ = parseTime(date)
	entity.CreatedAt, _ = parseTime(createdAt)
	return entity, nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
