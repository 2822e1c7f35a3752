package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

func (s *Server) ListServices(c *gin.Context) {
	active, err := queryBool(c, "active")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	services, err := s.svc.Catalog.ListServices(c.Request.Context(), model.ServiceFilter{ActiveOnly: active})
	respond(c, http.StatusOK, services, err)
}

func (s *Server) GetService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	svc, err := s.svc.Catalog.GetService(c.Request.Context(), id)
	respond(c, http.StatusOK, svc, err)
}

func (s *Server) CreateService(c *gin.Context) {
	var req model.ServiceInput
	if !bindJSON(c, &req) {
		return
	}
	svc, err := s.svc.Catalog.CreateService(c.Request.Context(), req)
	respond(c, http.StatusCreated, svc, err)
}

func (s *Server) UpdateService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.ServiceInput
	if !bindJSON(c, &req) {
		return
	}
	svc, err := s.svc.Catalog.UpdateService(c.Request.Context(), id, req)
	respond(c, http.StatusOK, svc, err)
}

func (s *Server) ServiceStats(c *gin.Context) {
	stats, err := s.svc.Catalog.Stats(c.Request.Context())
	respond(c, http.StatusOK, stats, err)
}

// subscriptionRequest takes dates as YYYY-MM-DD strings.
type subscriptionRequest struct {
	model.CustomerServiceInput
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type subscriptionUpdateRequest struct {
	model.CustomerServiceUpdate
	EndDate *string `json:"end_date"`
}

func (s *Server) ListSubscriptions(c *gin.Context) {
	customerID, err := queryID(c, "customer_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	subs, err := s.svc.Catalog.ListSubscriptions(c.Request.Context(), model.CustomerServiceFilter{
		CustomerID: customerID,
		Statuses:   queryList[model.CustomerServiceStatus](c, "status"),
	})
	respond(c, http.StatusOK, subs, err)
}

func (s *Server) GetSubscription(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sub, err := s.svc.Catalog.GetSubscription(c.Request.Context(), id)
	respond(c, http.StatusOK, sub, err)
}

func (s *Server) CreateSubscription(c *gin.Context) {
	var req subscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	in := req.CustomerServiceInput
	var err error
	if in.StartDate, err = parseOptionalDate("start_date", req.StartDate); err != nil {
		AbortWithError(c, err)
		return
	}
	if in.EndDate, err = parseOptionalDate("end_date", req.EndDate); err != nil {
		AbortWithError(c, err)
		return
	}
	sub, err := s.svc.Catalog.Subscribe(c.Request.Context(), in)
	respond(c, http.StatusCreated, sub, err)
}

func (s *Server) UpdateSubscription(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req subscriptionUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	in := req.CustomerServiceUpdate
	var err error
	if in.EndDate, err = parseOptionalDate("end_date", req.EndDate); err != nil {
		AbortWithError(c, err)
		return
	}
	sub, err := s.svc.Catalog.UpdateSubscription(c.Request.Context(), id, in)
	respond(c, http.StatusOK, sub, err)
}
