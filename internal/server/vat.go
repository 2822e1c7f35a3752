package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

type vatReturnRequest struct {
	model.VATReturnInput
	PeriodStartDate *string `json:"period_start_date"`
	PeriodEndDate   *string `json:"period_end_date"`
	DueDate         *string `json:"due_date"`
}

func (r vatReturnRequest) input() (model.VATReturnInput, error) {
	in := r.VATReturnInput
	var err error
	if in.PeriodStartDate, err = parseOptionalDate("period_start_date", r.PeriodStartDate); err != nil {
		return in, err
	}
	if in.PeriodEndDate, err = parseOptionalDate("period_end_date", r.PeriodEndDate); err != nil {
		return in, err
	}
	in.DueDate, err = parseOptionalDate("due_date", r.DueDate)
	return in, err
}

func (s *Server) ListVATReturns(c *gin.Context) {
	customerID, err := queryID(c, "customer_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	returns, err := s.svc.VAT.List(c.Request.Context(), model.VATReturnFilter{
		CustomerID: customerID,
		Statuses:   queryList[model.VATStatus](c, "status"),
	})
	respond(c, http.StatusOK, returns, err)
}

func (s *Server) GetVATReturn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := s.svc.VAT.Get(c.Request.Context(), id)
	respond(c, http.StatusOK, r, err)
}

func (s *Server) CreateVATReturn(c *gin.Context) {
	var req vatReturnRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	r, err := s.svc.VAT.Create(c.Request.Context(), in)
	respond(c, http.StatusCreated, r, err)
}

// SaveVATData accepts the raw figures; payable amounts are always derived.
func (s *Server) SaveVATData(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.VATFiguresInput
	if !bindJSON(c, &req) {
		return
	}
	r, err := s.svc.VAT.SaveFigures(c.Request.Context(), id, req)
	respond(c, http.StatusOK, r, err)
}

func (s *Server) ChangeVATStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.VATStatusUpdate
	if !bindJSON(c, &req) {
		return
	}
	r, err := s.svc.VAT.ChangeStatus(c.Request.Context(), id, req)
	respond(c, http.StatusOK, r, err)
}

func (s *Server) VATHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	changes, err := s.svc.VAT.History(c.Request.Context(), id)
	respond(c, http.StatusOK, changes, err)
}

func (s *Server) VATSummary(c *gin.Context) {
	summary, err := s.svc.VAT.Summary(c.Request.Context())
	respond(c, http.StatusOK, summary, err)
}
