package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// PendingTaskStatuses are the statuses the dashboard counts as outstanding work.
var PendingTaskStatuses = []TaskStatus{TaskPending, TaskInProgress}

// Task represents the tasks table
type Task struct {
	ID                uuid.UUID        `json:"id"`
	TenantID          uuid.UUID        `json:"user_id"`
	CustomerID        *uuid.UUID       `json:"customer_id,omitempty"`
	CustomerServiceID *uuid.UUID       `json:"customer_service_id,omitempty"`
	Title             string           `json:"title"`
	Description       *string          `json:"description,omitempty"`
	Priority          TaskPriority     `json:"priority"`
	Status            TaskStatus       `json:"status"`
	DueDate           *time.Time       `json:"due_date,omitempty"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty"`
	Assignments       []TaskAssignment `json:"assignments,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

type TaskInput struct {
	CustomerID        *uuid.UUID   `json:"customer_id"`
	CustomerServiceID *uuid.UUID   `json:"customer_service_id"`
	Title             string       `json:"title" validate:"required,max=300"`
	Description       *string      `json:"description" validate:"omitempty,max=4000"`
	Priority          TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status            TaskStatus   `json:"status" validate:"omitempty,oneof=pending in_progress review completed cancelled"`
	DueDate           *time.Time   `json:"due_date"`
}

func (in *TaskInput) Validate() error {
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Status == "" {
		in.Status = TaskPending
	}
	return check(in)
}

type TaskFilter struct {
	Statuses   []TaskStatus
	CustomerID *uuid.UUID
}

type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentWorking   AssignmentStatus = "working"
	AssignmentCompleted AssignmentStatus = "completed"
)

// TaskAssignment represents the task_assignments table. Each assignment has
// its own status, independent of the task status.
type TaskAssignment struct {
	ID         uuid.UUID        `json:"id"`
	TaskID     uuid.UUID        `json:"task_id"`
	StaffID    uuid.UUID        `json:"staff_id"`
	AssignedAt time.Time        `json:"assigned_at"`
	Status     AssignmentStatus `json:"status"`
	Notes      *string          `json:"notes,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

type TaskAssignmentInput struct {
	StaffID uuid.UUID `json:"staff_id" validate:"required"`
	Notes   *string   `json:"notes"`
}

func (in *TaskAssignmentInput) Validate() error { return check(in) }

type AssignmentUpdate struct {
	Status AssignmentStatus `json:"status" validate:"required,oneof=assigned working completed"`
	Notes  *string          `json:"notes"`
}

func (in *AssignmentUpdate) Validate() error { return check(in) }
