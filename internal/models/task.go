package models

import "time"

// Task represents a row in the tasks table. UserID is a pointer because rows
// created before the owner column was introduced may carry NULL.
type Task struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	DueDate     *string   `json:"due_date"`
	Priority    int       `json:"priority"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateTaskRequest is the JSON body for POST /api/tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    int     `json:"priority"`
}

// UpdateTaskRequest is the JSON body for PUT /api/tasks/{id}. All five
// mutable fields are replaced; there are no partial updates.
type UpdateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    int     `json:"priority"`
	Completed   bool    `json:"completed"`
}

// TaskFilter carries the optional list predicates. Nil/empty fields apply no
// filter.
type TaskFilter struct {
	Completed *bool
	Priority  *int
	Search    string
}
