package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/task-tracker/internal/apperr"
	"github.com/ayush/task-tracker/internal/models"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// PostgresStore handles user and task persistence against PostgreSQL. Every
// operation is a single statement; the database's own locking is the only
// serialization between concurrent requests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// isUnique reports whether err is a unique-constraint violation.
func isUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// ── Users ────────────────────────────────────────────────

func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, username, email, created_at`,
		username, passwordHash,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if isUnique(err) {
		return nil, apperr.Conflict("Username already taken")
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// GetUserByUsername matches the username exactly (case-sensitive). Returns
// (nil, nil) when no such user exists.
func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByEmail looks up the owner of a normalized (lowercased) email.
// Returns (nil, nil) when the email is unclaimed.
func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users WHERE lower(email) = $1`, email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) UpdateEmail(ctx context.Context, userID int64, email string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET email = $1 WHERE id = $2`, email, userID)
	if isUnique(err) {
		return apperr.Conflict("Email already in use")
	}
	return err
}

// DeleteUser removes the user row; the tasks foreign key cascades.
func (s *PostgresStore) DeleteUser(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	return err
}

// ── Tasks ────────────────────────────────────────────────

const taskColumns = "id, user_id, title, description, due_date, priority, completed, created_at"

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.DueDate,
		&t.Priority, &t.Completed, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasksQuery builds the filtered list statement. Exposed for tests.
func ListTasksQuery(userID int64, f models.TaskFilter) (string, []interface{}, error) {
	b := sq.Select(taskColumns).
		From("tasks").
		Where(sq.Eq{"user_id": userID}).
		PlaceholderFormat(sq.Dollar)

	if f.Completed != nil {
		b = b.Where(sq.Eq{"completed": *f.Completed})
	}
	if f.Priority != nil {
		b = b.Where(sq.Eq{"priority": *f.Priority})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		b = b.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
		})
	}

	return b.OrderBy("priority ASC", "created_at DESC").ToSql()
}

func (s *PostgresStore) ListTasks(ctx context.Context, userID int64, f models.TaskFilter) ([]models.Task, error) {
	query, args, err := ListTasksQuery(userID, f)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *PostgresStore) CreateTask(ctx context.Context, userID int64, title string, description, dueDate *string, priority int) (*models.Task, error) {
	return scanTask(s.pool.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, description, due_date, priority)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+taskColumns,
		userID, title, description, dueDate, priority))
}

// GetTask fetches a task regardless of owner; the service layer decides
// whether the requester may see it. Returns (nil, nil) when absent.
func (s *PostgresStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *PostgresStore) UpdateTask(ctx context.Context, id int64, title string, description, dueDate *string, priority int, completed bool) (*models.Task, error) {
	return scanTask(s.pool.QueryRow(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, due_date = $3, priority = $4, completed = $5
		 WHERE id = $6
		 RETURNING `+taskColumns,
		title, description, dueDate, priority, completed, id))
}

func (s *PostgresStore) SetTaskCompleted(ctx context.Context, id int64, completed bool) (*models.Task, error) {
	return scanTask(s.pool.QueryRow(ctx,
		`UPDATE tasks SET completed = $1 WHERE id = $2
		 RETURNING `+taskColumns,
		completed, id))
}

func (s *PostgresStore) DeleteTask(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}
