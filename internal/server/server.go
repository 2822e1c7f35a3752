// Package server exposes the services as a JSON API under /api/v1.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teresa-solution/firm-management-service/internal/service"
)

// Services bundles the use cases the API serves.
type Services struct {
	Profiles  *service.ProfileService
	Staff     *service.StaffService
	Catalog   *service.CatalogService
	Customers *service.CustomerService
	Leads     *service.LeadService
	Tasks     *service.TaskService
	VAT       *service.VATService
	Invoices  *service.InvoiceService
	Dashboard *service.DashboardService
}

type Server struct {
	svc        Services
	verifier   TokenVerifier
	authorizer TenantAuthorizer
	engine     *gin.Engine
}

func New(svc Services, verifier TokenVerifier, authorizer TenantAuthorizer) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(), ErrorHandlingMiddleware())

	s := &Server{svc: svc, verifier: verifier, authorizer: authorizer, engine: engine}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api/v1", s.AuthRequired())

	api.GET("/profile", s.GetProfile)
	api.POST("/profile", s.RegisterProfile)
	api.PUT("/profile", s.UpdateProfile)

	api.GET("/staff", s.ListStaff)
	api.POST("/staff", s.CreateStaff)
	api.GET("/staff/:id", s.GetStaff)
	api.PUT("/staff/:id", s.UpdateStaff)

	api.GET("/services", s.ListServices)
	api.POST("/services", s.CreateService)
	api.GET("/services/stats", s.ServiceStats)
	api.GET("/services/:id", s.GetService)
	api.PUT("/services/:id", s.UpdateService)

	api.GET("/customer-services", s.ListSubscriptions)
	api.POST("/customer-services", s.CreateSubscription)
	api.GET("/customer-services/:id", s.GetSubscription)
	api.PUT("/customer-services/:id", s.UpdateSubscription)

	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomer)
	api.PUT("/customers/:id", s.UpdateCustomer)

	api.GET("/leads", s.ListLeads)
	api.POST("/leads", s.CreateLead)
	api.GET("/leads/:id", s.GetLead)
	api.PUT("/leads/:id", s.UpdateLead)
	api.POST("/leads/:id/convert", s.ConvertLead)
	api.GET("/leads/:id/services", s.ListLeadServices)
	api.GET("/leads/:id/activities", s.ListLeadActivities)
	api.POST("/leads/:id/activities", s.AddLeadActivity)

	api.GET("/tasks", s.ListTasks)
	api.POST("/tasks", s.CreateTask)
	api.GET("/tasks/:id", s.GetTask)
	api.PUT("/tasks/:id", s.UpdateTask)
	api.POST("/tasks/:id/assignments", s.AssignTask)
	api.PUT("/task-assignments/:id", s.UpdateAssignment)
	api.DELETE("/task-assignments/:id", s.RemoveAssignment)

	api.GET("/vat-returns", s.ListVATReturns)
	api.POST("/vat-returns", s.CreateVATReturn)
	api.GET("/vat-returns/summary", s.VATSummary)
	api.GET("/vat-returns/:id", s.GetVATReturn)
	api.PUT("/vat-returns/:id/data", s.SaveVATData)
	api.POST("/vat-returns/:id/status", s.ChangeVATStatus)
	api.GET("/vat-returns/:id/history", s.VATHistory)

	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/stats", s.InvoiceStats)
	api.GET("/invoices/:id", s.GetInvoice)
	api.PUT("/invoices/:id", s.UpdateInvoice)
	api.POST("/invoices/:id/send", s.SendInvoice)
	api.POST("/invoices/:id/cancel", s.CancelInvoice)
	api.GET("/invoices/:id/payments", s.ListPayments)
	api.POST("/invoices/:id/payments", s.RecordPayment)

	api.GET("/dashboard", s.Dashboard)
	api.GET("/reports", s.Report)
}

func respond(c *gin.Context, status int, data any, err error) {
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(status, gin.H{"data": data})
}
