package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

type TaskRepository interface {
	ListTasks(ctx context.Context, tenantID uuid.UUID, f model.TaskFilter) ([]model.Task, error)
	GetTask(ctx context.Context, tenantID, id uuid.UUID) (*model.Task, error)
	CreateTask(ctx context.Context, tenantID uuid.UUID, in model.TaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, tenantID, id uuid.UUID, in model.TaskInput) (*model.Task, error)
	AssignTask(ctx context.Context, tenantID, taskID uuid.UUID, in model.TaskAssignmentInput) (*model.TaskAssignment, error)
	UpdateAssignment(ctx context.Context, tenantID, id uuid.UUID, in model.AssignmentUpdate) (*model.TaskAssignment, error)
	RemoveAssignment(ctx context.Context, tenantID, id uuid.UUID) error
}

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) List(ctx context.Context, f model.TaskFilter) ([]model.Task, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "list_tasks", func(ctx context.Context) ([]model.Task, error) {
		return s.repo.ListTasks(ctx, tenantID, f)
	})
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "get_task", func(ctx context.Context) (*model.Task, error) {
		return s.repo.GetTask(ctx, tenantID, id)
	})
}

func (s *TaskService) Create(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.CreateTask(ctx, tenantID, in)
}

func (s *TaskService) Update(ctx context.Context, id uuid.UUID, in model.TaskInput) (*model.Task, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateTask(ctx, tenantID, id, in)
}

func (s *TaskService) Assign(ctx context.Context, taskID uuid.UUID, in model.TaskAssignmentInput) (*model.TaskAssignment, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.AssignTask(ctx, tenantID, taskID, in)
}

func (s *TaskService) UpdateAssignment(ctx context.Context, id uuid.UUID, in model.AssignmentUpdate) (*model.TaskAssignment, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateAssignment(ctx, tenantID, id, in)
}

func (s *TaskService) RemoveAssignment(ctx context.Context, id uuid.UUID) error {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return err
	}
	return s.repo.RemoveAssignment(ctx, tenantID, id)
}
