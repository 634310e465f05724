package task

import (
	"context"
	"strings"

	"github.com/ayush/task-tracker/internal/apperr"
	"github.com/ayush/task-tracker/internal/models"
)

// TaskStore defines the persistence operations the task service needs.
type TaskStore interface {
	ListTasks(ctx context.Context, userID int64, f models.TaskFilter) ([]models.Task, error)
	CreateTask(ctx context.Context, userID int64, title string, description, dueDate *string, priority int) (*models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, title string, description, dueDate *string, priority int, completed bool) (*models.Task, error)
	SetTaskCompleted(ctx context.Context, id int64, completed bool) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// Service implements owner-scoped task CRUD. Every operation takes the
// resolved user id of the requesting session; the owner is never
// client-supplied.
type Service struct {
	tasks TaskStore
}

func NewService(tasks TaskStore) *Service {
	return &Service{tasks: tasks}
}

// List returns the user's tasks matching the filter, ordered by priority
// ascending then creation time descending. No matches yields an empty slice.
func (s *Service) List(ctx context.Context, userID int64, f models.TaskFilter) ([]models.Task, error) {
	tasks, err := s.tasks.ListTasks(ctx, userID, f)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return tasks, nil
}

// Create stores a new task owned by userID. The title is trimmed; priority 0
// (absent in the JSON body) defaults to 2.
func (s *Service) Create(ctx context.Context, userID int64, req models.CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("Title is required")
	}

	priority := req.Priority
	if priority == 0 {
		priority = 2
	}

	t, err := s.tasks.CreateTask(ctx, userID, title, req.Description, req.DueDate, priority)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return t, nil
}

// owned fetches the task and checks ownership. A missing task and a task
// owned by someone else produce the same NotFound, so nothing leaks about
// other users' rows. Tasks with no owner (pre-migration rows) are visible to
// nobody.
func (s *Service) owned(ctx context.Context, userID, id int64) (*models.Task, error) {
	t, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if t == nil || t.UserID == nil || *t.UserID != userID {
		return nil, apperr.NotFound("Not found")
	}
	return t, nil
}

// Update replaces all five mutable fields of the task.
func (s *Service) Update(ctx context.Context, userID, id int64, req models.UpdateTaskRequest) (*models.Task, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}

	t, err := s.tasks.UpdateTask(ctx, id, req.Title, req.Description, req.DueDate, req.Priority, req.Completed)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return t, nil
}

// ToggleCompleted flips the completion flag. Applying it twice restores the
// original state.
func (s *Service) ToggleCompleted(ctx context.Context, userID, id int64) (*models.Task, error) {
	t, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.tasks.SetTaskCompleted(ctx, id, !t.Completed)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return updated, nil
}

// Delete removes the task.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		return apperr.Storage(err)
	}
	return nil
}
