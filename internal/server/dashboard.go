package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) Dashboard(c *gin.Context) {
	stats, err := s.svc.Dashboard.Stats(c.Request.Context())
	respond(c, http.StatusOK, stats, err)
}

// Report covers ?from=&to= and defaults to the current year to date.
func (s *Server) Report(c *gin.Context) {
	from, err := parseOptionalDate("from", queryPtr(c, "from"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	to, err := parseOptionalDate("to", queryPtr(c, "to"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	report, err := s.svc.Dashboard.Report(c.Request.Context(), from, to)
	respond(c, http.StatusOK, report, err)
}
