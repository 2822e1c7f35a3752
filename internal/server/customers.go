package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

func (s *Server) ListCustomers(c *gin.Context) {
	active, err := queryBool(c, "active")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	customers, err := s.svc.Customers.List(c.Request.Context(), model.CustomerFilter{
		ActiveOnly: active,
		Search:     c.Query("search"),
	})
	respond(c, http.StatusOK, customers, err)
}

func (s *Server) GetCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	customer, err := s.svc.Customers.Get(c.Request.Context(), id)
	respond(c, http.StatusOK, customer, err)
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req model.CustomerInput
	if !bindJSON(c, &req) {
		return
	}
	customer, err := s.svc.Customers.Create(c.Request.Context(), req)
	respond(c, http.StatusCreated, customer, err)
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.CustomerInput
	if !bindJSON(c, &req) {
		return
	}
	customer, err := s.svc.Customers.Update(c.Request.Context(), id, req)
	respond(c, http.StatusOK, customer, err)
}
