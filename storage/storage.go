package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"weekplanner/domain"
)

// Store persists tasks in a single SQLite table. Writes are immediately
// durable; SQLite's own locking serializes concurrent writers.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and ensures
// the schema exists. The returned store must be closed by the caller.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			member TEXT NOT NULL,
			category TEXT NOT NULL,
			day TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ListTasks returns tasks matching the filter, ordered by day then id. An
// empty result is an empty slice, not an error.
func (s *Store) ListTasks(ctx context.Context, f domain.Filter) ([]domain.Task, error) {
	query := "SELECT id, title, member, category, day, completed FROM tasks WHERE 1=1"
	args := make([]any, 0, 4)

	if f.Member != "" && f.Member != domain.FilterAll {
		query += " AND member = ?"
		args = append(args, f.Member)
	}
	if f.Category != "" && f.Category != domain.FilterAll {
		query += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.StartDate != "" {
		query += " AND day >= ?"
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		query += " AND day <= ?"
		args = append(args, f.EndDate)
	}
	query += " ORDER BY day ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Member, &t.Category, &t.Day, &t.Completed); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask returns the task with the given id, or domain.ErrTaskNotFound.
func (s *Store) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, member, category, day, completed FROM tasks WHERE id = ?", id)
	var t domain.Task
	err := row.Scan(&t.ID, &t.Title, &t.Member, &t.Category, &t.Day, &t.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// CreateTask validates and inserts a new task, returning it with the
// assigned id.
func (s *Store) CreateTask(ctx context.Context, n domain.NewTask) (domain.Task, error) {
	if err := n.Validate(); err != nil {
		return domain.Task{}, err
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks (title, member, category, day, completed) VALUES (?, ?, ?, ?, ?)",
		n.Title, n.Member, n.Category, n.Day, n.Completed)
	if err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Task{}, fmt.Errorf("create task id: %w", err)
	}
	return domain.Task{
		ID:        id,
		Title:     n.Title,
		Member:    n.Member,
		Category:  n.Category,
		Day:       n.Day,
		Completed: n.Completed,
	}, nil
}

// UpdateTask applies the patch to an existing task and returns the updated
// record. A missing id is reported before the patch is inspected, so an
// empty patch against an unknown task still signals not-found.
func (s *Store) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error) {
	existing, err := s.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if patch.IsZero() {
		return domain.Task{}, &domain.ValidationError{Message: "no fields to update"}
	}
	updated := patch.Apply(existing)
	_, err = s.db.ExecContext(ctx,
		"UPDATE tasks SET title = ?, member = ?, category = ?, day = ?, completed = ? WHERE id = ?",
		updated.Title, updated.Member, updated.Category, updated.Day, updated.Completed, id)
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	return updated, nil
}

// DeleteTask removes the task permanently. Deleting an unknown id reports
// domain.ErrTaskNotFound.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Seed inserts the starter tasks across the week containing now when the
// table is empty. Running it against a non-empty table is a no-op.
func (s *Store) Seed(ctx context.Context, now time.Time) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count); err != nil {
		return fmt.Errorf("seed count: %w", err)
	}
	if count > 0 {
		return nil
	}

	monday := domain.StartOfWeek(now)
	seed := []struct {
		title    string
		member   string
		category string
		offset   int
	}{
		{"Stofzuigen woonkamer", "Susan", "huishouden", 0},
		{"Boodschappen halen", "Gido", "boodschappen", 0},
		{"Huiswerk wiskunde", "Fien", "school", 1},
		{"Voetbaltraining", "Luc", "sport", 1},
		{"Vergadering voorbereiden", "Gido", "werk", 2},
		{"Zwemles", "Luc", "sport", 3},
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO tasks (title, member, category, day, completed) VALUES (?, ?, ?, ?, 0)")
	if err != nil {
		return fmt.Errorf("seed prepare: %w", err)
	}
	defer stmt.Close()

	for _, t := range seed {
		day := domain.DateString(monday.AddDate(0, 0, t.offset))
		if _, err := stmt.ExecContext(ctx, t.title, t.member, t.category, day); err != nil {
			return fmt.Errorf("seed insert: %w", err)
		}
	}
	return tx.Commit()
}
