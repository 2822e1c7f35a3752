package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

type taskRequest struct {
	model.TaskInput
	DueDate *string `json:"due_date"`
}

func (r taskRequest) input() (model.TaskInput, error) {
	in := r.TaskInput
	var err error
	in.DueDate, err = parseOptionalDate("due_date", r.DueDate)
	return in, err
}

func (s *Server) ListTasks(c *gin.Context) {
	customerID, err := queryID(c, "customer_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	tasks, err := s.svc.Tasks.List(c.Request.Context(), model.TaskFilter{
		Statuses:   queryList[model.TaskStatus](c, "status"),
		CustomerID: customerID,
	})
	respond(c, http.StatusOK, tasks, err)
}

func (s *Server) GetTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	task, err := s.svc.Tasks.Get(c.Request.Context(), id)
	respond(c, http.StatusOK, task, err)
}

func (s *Server) CreateTask(c *gin.Context) {
	var req taskRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	task, err := s.svc.Tasks.Create(c.Request.Context(), in)
	respond(c, http.StatusCreated, task, err)
}

func (s *Server) UpdateTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req taskRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	task, err := s.svc.Tasks.Update(c.Request.Context(), id, in)
	respond(c, http.StatusOK, task, err)
}

func (s *Server) AssignTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.TaskAssignmentInput
	if !bindJSON(c, &req) {
		return
	}
	a, err := s.svc.Tasks.Assign(c.Request.Context(), id, req)
	respond(c, http.StatusCreated, a, err)
}

func (s *Server) UpdateAssignment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.AssignmentUpdate
	if !bindJSON(c, &req) {
		return
	}
	a, err := s.svc.Tasks.UpdateAssignment(c.Request.Context(), id, req)
	respond(c, http.StatusOK, a, err)
}

func (s *Server) RemoveAssignment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Tasks.RemoveAssignment(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
