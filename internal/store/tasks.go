package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

const taskColumns = `id, user_id, customer_id, customer_service_id, title, description, priority, status,
	due_date, completed_at, created_at, updated_at`

func scanTask(row rowScanner) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.TenantID, &t.CustomerID, &t.CustomerServiceID, &t.Title, &t.Description, &t.Priority,
		&t.Status, &t.DueDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// ListTasks returns tasks soonest due first; undated tasks come last.
func (s *Store) ListTasks(ctx context.Context, tenantID uuid.UUID, f model.TaskFilter) ([]model.Task, error) {
	var out []model.Task
	err := s.run(ctx, "list_tasks", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `
			SELECT `+taskColumns+` FROM tasks
			WHERE user_id = $1
			  AND (cardinality($2::text[]) = 0 OR status = ANY($2))
			  AND ($3::uuid IS NULL OR customer_id = $3)
			ORDER BY due_date ASC NULLS LAST, created_at DESC`,
			tenantID, statusStrings(f.Statuses), f.CustomerID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Task, error) {
			return scanTask(row)
		})
		return err
	})
	return out, err
}

// GetTask returns the task with its staff assignments.
func (s *Store) GetTask(ctx context.Context, tenantID, id uuid.UUID) (*model.Task, error) {
	var t model.Task
	err := s.run(ctx, "get_task", func(ctx context.Context) error {
		var err error
		t, err = scanTask(s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
		if err != nil {
			return notFoundAs("task", err)
		}
		if err := scoped("task", t.TenantID, tenantID); err != nil {
			return err
		}
		t.Assignments, err = listAssignments(ctx, s.pool, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) CreateTask(ctx context.Context, tenantID uuid.UUID, in model.TaskInput) (*model.Task, error) {
	var t model.Task
	err := s.inTx(ctx, "create_task", func(ctx context.Context, tx pgx.Tx) error {
		if err := checkTaskRefs(ctx, tx, tenantID, in); err != nil {
			return err
		}
		var err error
		t, err = scanTask(tx.QueryRow(ctx, `
			INSERT INTO tasks (user_id, customer_id, customer_service_id, title, description, priority, status, due_date,
				completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CASE WHEN $7::text = 'completed' THEN now() END)
			RETURNING `+taskColumns,
			tenantID, in.CustomerID, in.CustomerServiceID, in.Title, in.Description, in.Priority, in.Status, in.DueDate))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask replaces the task. completed_at is stamped on the move to
// completed and cleared when the task is reopened.
func (s *Store) UpdateTask(ctx context.Context, tenantID, id uuid.UUID, in model.TaskInput) (*model.Task, error) {
	var t model.Task
	err := s.inTx(ctx, "update_task", func(ctx context.Context, tx pgx.Tx) error {
		if err := checkOwner(ctx, tx, "task", ownTaskSQL, tenantID, id); err != nil {
			return err
		}
		if err := checkTaskRefs(ctx, tx, tenantID, in); err != nil {
			return err
		}
		var err error
		t, err = scanTask(tx.QueryRow(ctx, `
			UPDATE tasks SET customer_id = $2, customer_service_id = $3, title = $4, description = $5,
				priority = $6, status = $7, due_date = $8,
				completed_at = CASE
					WHEN $7::text <> 'completed' THEN NULL
					WHEN status = 'completed' THEN completed_at
					ELSE now()
				END,
				updated_at = now()
			WHERE id = $1
			RETURNING `+taskColumns,
			id, in.CustomerID, in.CustomerServiceID, in.Title, in.Description, in.Priority, in.Status, in.DueDate))
		if err != nil {
			return err
		}
		t.Assignments, err = listAssignments(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func checkTaskRefs(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, in model.TaskInput) error {
	if err := checkOptionalOwner(ctx, tx, "customer", ownCustomerSQL, tenantID, in.CustomerID); err != nil {
		return err
	}
	return checkOptionalOwner(ctx, tx, "customer service", ownCustomerServiceSQL, tenantID, in.CustomerServiceID)
}

const assignmentColumns = `id, task_id, staff_id, assigned_at, status, notes, updated_at`

func scanAssignment(row rowScanner) (model.TaskAssignment, error) {
	var a model.TaskAssignment
	err := row.Scan(&a.ID, &a.TaskID, &a.StaffID, &a.AssignedAt, &a.Status, &a.Notes, &a.UpdatedAt)
	return a, err
}

func listAssignments(ctx context.Context, q querier, taskID uuid.UUID) ([]model.TaskAssignment, error) {
	rows, err := q.Query(ctx, `
		SELECT `+assignmentColumns+` FROM task_assignments
		WHERE task_id = $1 AND removed_at IS NULL ORDER BY assigned_at`, taskID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TaskAssignment, error) {
		return scanAssignment(row)
	})
}

// AssignTask puts a staff member on a task. Both must belong to the tenant.
// Assigning a previously removed staff member restores the assignment.
func (s *Store) AssignTask(ctx context.Context, tenantID, taskID uuid.UUID, in model.TaskAssignmentInput) (*model.TaskAssignment, error) {
	var a model.TaskAssignment
	err := s.inTx(ctx, "assign_task", func(ctx context.Context, tx pgx.Tx) error {
		if err := checkOwner(ctx, tx, "task", ownTaskSQL, tenantID, taskID); err != nil {
			return err
		}
		if err := checkOwner(ctx, tx, "staff member", ownStaffSQL, tenantID, in.StaffID); err != nil {
			return err
		}
		var err error
		a, err = scanAssignment(tx.QueryRow(ctx, `
			INSERT INTO task_assignments (task_id, staff_id, notes)
			VALUES ($1, $2, $3)
			ON CONFLICT (task_id, staff_id) DO UPDATE
				SET status = 'assigned', notes = EXCLUDED.notes, removed_at = NULL,
					assigned_at = now(), updated_at = now()
				WHERE task_assignments.removed_at IS NOT NULL
			RETURNING `+assignmentColumns, taskID, in.StaffID, in.Notes))
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.Conflict("staff member is already assigned to this task")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) UpdateAssignment(ctx context.Context, tenantID, id uuid.UUID, in model.AssignmentUpdate) (*model.TaskAssignment, error) {
	var a model.TaskAssignment
	err := s.inTx(ctx, "update_assignment", func(ctx context.Context, tx pgx.Tx) error {
		if err := checkOwner(ctx, tx, "assignment", ownAssignmentSQL, tenantID, id); err != nil {
			return err
		}
		var err error
		a, err = scanAssignment(tx.QueryRow(ctx, `
			UPDATE task_assignments SET status = $2, notes = COALESCE($3, notes), updated_at = now()
			WHERE id = $1 AND removed_at IS NULL
			RETURNING `+assignmentColumns, id, in.Status, in.Notes))
		return notFoundAs("assignment", err)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// RemoveAssignment takes the staff member off the task. The row is kept and
// only stamped removed.
func (s *Store) RemoveAssignment(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.inTx(ctx, "remove_assignment", func(ctx context.Context, tx pgx.Tx) error {
		if err := checkOwner(ctx, tx, "assignment", ownAssignmentSQL, tenantID, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE task_assignments SET removed_at = now(), updated_at = now()
			WHERE id = $1 AND removed_at IS NULL`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("assignment")
		}
		return nil
	})
}
