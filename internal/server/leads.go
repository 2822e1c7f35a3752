package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

func (s *Server) ListLeads(c *gin.Context) {
	leads, err := s.svc.Leads.List(c.Request.Context(), model.LeadFilter{
		Statuses: queryList[model.LeadStatus](c, "status"),
		Search:   c.Query("search"),
	})
	respond(c, http.StatusOK, leads, err)
}

func (s *Server) GetLead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lead, err := s.svc.Leads.Get(c.Request.Context(), id)
	respond(c, http.StatusOK, lead, err)
}

func (s *Server) CreateLead(c *gin.Context) {
	var req model.LeadInput
	if !bindJSON(c, &req) {
		return
	}
	lead, err := s.svc.Leads.Create(c.Request.Context(), req)
	respond(c, http.StatusCreated, lead, err)
}

func (s *Server) UpdateLead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.LeadInput
	if !bindJSON(c, &req) {
		return
	}
	lead, err := s.svc.Leads.Update(c.Request.Context(), id, req)
	respond(c, http.StatusOK, lead, err)
}

// ConvertLead answers with the customer created from the lead.
func (s *Server) ConvertLead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	customer, err := s.svc.Leads.Convert(c.Request.Context(), id)
	respond(c, http.StatusCreated, customer, err)
}

func (s *Server) ListLeadServices(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	services, err := s.svc.Leads.Services(c.Request.Context(), id)
	respond(c, http.StatusOK, services, err)
}

func (s *Server) ListLeadActivities(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	activities, err := s.svc.Leads.Activities(c.Request.Context(), id)
	respond(c, http.StatusOK, activities, err)
}

func (s *Server) AddLeadActivity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.LeadActivityInput
	if !bindJSON(c, &req) {
		return
	}
	activity, err := s.svc.Leads.AddActivity(c.Request.Context(), id, req)
	respond(c, http.StatusCreated, activity, err)
}
