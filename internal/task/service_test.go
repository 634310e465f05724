package task

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/task-tracker/internal/apperr"
	"github.com/ayush/task-tracker/internal/models"
)

// fakeTasks is an in-memory TaskStore mirroring the real store's filter and
// ordering semantics.
type fakeTasks struct {
	nextID int64
	tasks  map[int64]*models.Task
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: map[int64]*models.Task{}}
}

func (f *fakeTasks) ListTasks(_ context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error) {
	out := []models.Task{}
	for _, t := range f.tasks {
		if t.UserID == nil || *t.UserID != userID {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			title := strings.ToLower(t.Title)
			desc := ""
			if t.Description != nil {
				desc = strings.ToLower(*t.Description)
			}
			if !strings.Contains(title, needle) && !strings.Contains(desc, needle) {
				continue
			}
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeTasks) CreateTask(_ context.Context, userID int64, title string, description, dueDate *string, priority int) (*models.Task, error) {
	f.nextID++
	t := &models.Task{
		ID:          f.nextID,
		UserID:      &userID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Priority:    priority,
		CreatedAt:   time.Now().Add(time.Duration(f.nextID) * time.Millisecond),
	}
	f.tasks[t.ID] = t
	return t, nil
}

func (f *fakeTasks) GetTask(_ context.Context, id int64) (*models.Task, error) {
	return f.tasks[id], nil
}

func (f *fakeTasks) UpdateTask(_ context.Context, id int64, title string, description, dueDate *string, priority int, completed bool) (*models.Task, error) {
	t := f.tasks[id]
	t.Title, t.Description, t.DueDate, t.Priority, t.Completed = title, description, dueDate, priority, completed
	return t, nil
}

func (f *fakeTasks) SetTaskCompleted(_ context.Context, id int64, completed bool) (*models.Task, error) {
	t := f.tasks[id]
	t.Completed = completed
	return t, nil
}

func (f *fakeTasks) DeleteTask(_ context.Context, id int64) error {
	delete(f.tasks, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestCreateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects blank title", func(t *testing.T) {
		svc := NewService(newFakeTasks())
		for _, title := range []string{"", "  ", "\t\n"} {
			_, err := svc.Create(ctx, 1, models.CreateTaskRequest{Title: title})
			require.Error(t, err, "title %q", title)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		}
	})

	t.Run("trims title and applies defaults", func(t *testing.T) {
		svc := NewService(newFakeTasks())
		created, err := svc.Create(ctx, 1, models.CreateTaskRequest{Title: "  Buy milk  "})
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", created.Title)
		assert.Equal(t, 2, created.Priority)
		assert.False(t, created.Completed)
		require.NotNil(t, created.UserID)
		assert.Equal(t, int64(1), *created.UserID)
	})

	t.Run("owner comes from the session, never the body", func(t *testing.T) {
		svc := NewService(newFakeTasks())
		created, err := svc.Create(ctx, 7, models.CreateTaskRequest{Title: "x", Priority: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(7), *created.UserID)
		assert.Equal(t, 1, created.Priority)
	})
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	store := newFakeTasks()
	svc := NewService(store)

	a, err := svc.Create(ctx, 1, models.CreateTaskRequest{Title: "Buy milk", Priority: 2, Description: ptr("from the corner shop")})
	require.NoError(t, err)
	b, err := svc.Create(ctx, 1, models.CreateTaskRequest{Title: "File taxes", Priority: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, models.CreateTaskRequest{Title: "Buy milk too", Priority: 2})
	require.NoError(t, err)

	_, err = svc.ToggleCompleted(ctx, 1, b.ID)
	require.NoError(t, err)

	t.Run("unfiltered is owner-scoped and ordered", func(t *testing.T) {
		got, err := svc.List(ctx, 1, models.TaskFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		// priority ASC, then created_at DESC
		assert.Equal(t, b.ID, got[0].ID)
		assert.Equal(t, a.ID, got[1].ID)
	})

	t.Run("priority filter", func(t *testing.T) {
		got, err := svc.List(ctx, 1, models.TaskFilter{Priority: ptr(2)})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, a.ID, got[0].ID)
	})

	t.Run("completed filter", func(t *testing.T) {
		got, err := svc.List(ctx, 1, models.TaskFilter{Completed: ptr(true)})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, b.ID, got[0].ID)
	})

	t.Run("search matches title or description case-insensitively", func(t *testing.T) {
		got, err := svc.List(ctx, 1, models.TaskFilter{Search: "MILK"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, a.ID, got[0].ID)

		got, err = svc.List(ctx, 1, models.TaskFilter{Search: "corner"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, a.ID, got[0].ID)
	})

	t.Run("no matches is an empty slice, not nil", func(t *testing.T) {
		got, err := svc.List(ctx, 1, models.TaskFilter{Search: "zzz"})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestOwnershipCollapsesToNotFound(t *testing.T) {
	ctx := context.Background()
	store := newFakeTasks()
	svc := NewService(store)

	mine, err := svc.Create(ctx, 1, models.CreateTaskRequest{Title: "mine"})
	require.NoError(t, err)

	// Legacy row with no owner: visible to nobody.
	store.nextID++
	store.tasks[store.nextID] = &models.Task{ID: store.nextID, Title: "orphan", Priority: 2}
	orphanID := store.nextID

	const missingID = 9999

	ops := map[string]func(userID, id int64) error{
		"update": func(userID, id int64) error {
			_, err := svc.Update(ctx, userID, id, models.UpdateTaskRequest{Title: "x", Priority: 2})
			return err
		},
		"toggle": func(userID, id int64) error {
			_, err := svc.ToggleCompleted(ctx, userID, id)
			return err
		},
		"delete": func(userID, id int64) error {
			return svc.Delete(ctx, userID, id)
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			notOwned := op(2, mine.ID)
			missing := op(2, missingID)
			orphan := op(2, orphanID)

			for _, err := range []error{notOwned, missing, orphan} {
				require.Error(t, err)
				assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
			}
			// Identical signal either way.
			assert.Equal(t, missing.Error(), notOwned.Error())
		})
	}

	// The owner's task survived the foreign user's attempts.
	assert.Contains(t, store.tasks, mine.ID)
}

func TestToggleTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeTasks())

	created, err := svc.Create(ctx, 1, models.CreateTaskRequest{Title: "flip me"})
	require.NoError(t, err)
	require.False(t, created.Completed)

	once, err := svc.ToggleCompleted(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.True(t, once.Completed)

	twice, err := svc.ToggleCompleted(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.False(t, twice.Completed)
}

func TestUpdateReplacesAllFields(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeTasks())

	created, err := svc.Create(ctx, 1, models.CreateTaskRequest{
		Title:       "old",
		Description: ptr("old desc"),
		DueDate:     ptr("2026-01-01"),
		Priority:    1,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, 1, created.ID, models.UpdateTaskRequest{
		Title:     "new",
		Priority:  3,
		Completed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Nil(t, updated.Description)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, 3, updated.Priority)
	assert.True(t, updated.Completed)
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	store := newFakeTasks()
	svc := NewService(store)

	created, err := svc.Create(ctx, 1, models.CreateTaskRequest{Title: "gone soon"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, created.ID))
	assert.NotContains(t, store.tasks, created.ID)

	err = svc.Delete(ctx, 1, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
