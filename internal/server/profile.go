package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

func (s *Server) GetProfile(c *gin.Context) {
	p, err := s.svc.Profiles.Get(c.Request.Context())
	respond(c, http.StatusOK, p, err)
}

func (s *Server) RegisterProfile(c *gin.Context) {
	var req model.TenantProfileInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := s.svc.Profiles.Register(c.Request.Context(), req)
	respond(c, http.StatusCreated, p, err)
}

func (s *Server) UpdateProfile(c *gin.Context) {
	var req model.TenantProfileInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := s.svc.Profiles.Update(c.Request.Context(), req)
	respond(c, http.StatusOK, p, err)
}

func (s *Server) ListStaff(c *gin.Context) {
	active, err := queryBool(c, "active")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	staff, err := s.svc.Staff.List(c.Request.Context(), model.StaffFilter{ActiveOnly: active})
	respond(c, http.StatusOK, staff, err)
}

func (s *Server) GetStaff(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := s.svc.Staff.Get(c.Request.Context(), id)
	respond(c, http.StatusOK, m, err)
}

func (s *Server) CreateStaff(c *gin.Context) {
	var req model.StaffMemberInput
	if !bindJSON(c, &req) {
		return
	}
	m, err := s.svc.Staff.Create(c.Request.Context(), req)
	respond(c, http.StatusCreated, m, err)
}

func (s *Server) UpdateStaff(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.StaffMemberInput
	if !bindJSON(c, &req) {
		return
	}
	m, err := s.svc.Staff.Update(c.Request.Context(), id, req)
	respond(c, http.StatusOK, m, err)
}
