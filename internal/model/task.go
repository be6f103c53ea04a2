package model

import "time"

// DefaultTaskPriority is assigned when a task is created without a priority.
const DefaultTaskPriority = "Medium"

// Task is a unit of work owned by a user and optionally attached to one
// of that user's projects. It maps to a row in the `tasks` table.
//
// Fields:
//
//	ProjectID – nullable reference into projects; cleared when the
//	            project is deleted.
//	Completed – false until the owner marks the task done.
//	Priority  – free text such as Low, Medium or High.
//	DueDate   – optional calendar date without a time component.
type Task struct {
	ID          uint64    `json:"id"`          // tasks.id
	OwnerID     uint64    `json:"owner_id"`    // tasks.owner_id
	ProjectID   *uint64   `json:"project_id"`  // tasks.project_id (nullable)
	Title       string    `json:"title"`       // tasks.title
	Description *string   `json:"description"` // tasks.description (nullable)
	Completed   bool      `json:"completed"`   // tasks.completed
	Priority    string    `json:"priority"`    // tasks.priority
	DueDate     *Date     `json:"due_date"`    // tasks.due_date (nullable)
	CreatedAt   time.Time `json:"created_at"`  // tasks.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // tasks.updated_at
}

// TaskInput is the body accepted when creating a task.
type TaskInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	Priority    *string `json:"priority"`
	DueDate     *Date   `json:"due_date"`
	ProjectID   *uint64 `json:"project_id"`
}

// TaskPatch carries a partial update of a task.
type TaskPatch struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Completed   Optional[bool]   `json:"completed"`
	Priority    Optional[string] `json:"priority"`
	DueDate     Optional[Date]   `json:"due_date"`
	ProjectID   Optional[uint64] `json:"project_id"`
}
