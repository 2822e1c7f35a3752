package finance

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

// DashboardStats is the landing page summary of a tenant.
type DashboardStats struct {
	ActiveCustomers  int             `json:"active_customers"`
	OpenLeads        int             `json:"open_leads"`
	ActiveServices   int             `json:"active_services"`
	OpenInvoices     int             `json:"open_invoices"`
	OutstandingTotal decimal.Decimal `json:"outstanding_total"`
	PendingTasks     int             `json:"pending_tasks"`
}

// ComputeDashboard counts the rows that matter for the dashboard. The inputs
// may be unfiltered; each collection is filtered to the relevant statuses.
func ComputeDashboard(
	customers []model.Customer,
	leads []model.Lead,
	services []model.CustomerService,
	invoices []model.Invoice,
	tasks []model.Task,
) DashboardStats {
	stats := DashboardStats{OutstandingTotal: decimal.Zero}
	for _, c := range customers {
		if c.IsActive {
			stats.ActiveCustomers++
		}
	}
	for _, l := range leads {
		if l.Status.IsOpen() {
			stats.OpenLeads++
		}
	}
	for _, s := range services {
		if s.Status == model.SubscriptionLineActive {
			stats.ActiveServices++
		}
	}
	for _, inv := range invoices {
		if inv.Status.IsOpen() {
			stats.OpenInvoices++
			stats.OutstandingTotal = stats.OutstandingTotal.Add(inv.BalanceDue)
		}
	}
	for _, t := range tasks {
		if t.Status == model.TaskPending || t.Status == model.TaskInProgress {
			stats.PendingTasks++
		}
	}
	return stats
}

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type MonthlyRevenue struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

type CustomerRevenue struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
}

// Report is the revenue summary over a date range.
type Report struct {
	From           time.Time         `json:"from"`
	To             time.Time         `json:"to"`
	TotalRevenue   decimal.Decimal   `json:"total_revenue"`
	TotalCustomers int               `json:"total_customers"`
	TotalInvoices  int               `json:"total_invoices"`
	PaidInvoices   int               `json:"paid_invoices"`
	PendingAmount  decimal.Decimal   `json:"pending_amount"`
	AverageInvoice decimal.Decimal   `json:"average_invoice"`
	MonthlyRevenue []MonthlyRevenue  `json:"monthly_revenue"`
	TopCustomers   []CustomerRevenue `json:"top_customers"`
}

// ReportSummary aggregates invoices already restricted to the report range.
// Monthly buckets run Jan..Dec by invoice_date month, so a range spanning
// several years folds into the same twelve buckets.
func ReportSummary(invoices []model.Invoice, activeCustomers int) Report {
	r := Report{
		TotalRevenue:   decimal.Zero,
		TotalCustomers: activeCustomers,
		TotalInvoices:  len(invoices),
		PendingAmount:  decimal.Zero,
		AverageInvoice: decimal.Zero,
		MonthlyRevenue: make([]MonthlyRevenue, len(monthNames)),
		TopCustomers:   []CustomerRevenue{},
	}
	for i, name := range monthNames {
		r.MonthlyRevenue[i] = MonthlyRevenue{Month: name, Amount: decimal.Zero}
	}
	for _, inv := range invoices {
		r.TotalRevenue = r.TotalRevenue.Add(inv.TotalAmount)
		r.PendingAmount = r.PendingAmount.Add(inv.BalanceDue)
		if inv.Status == model.InvoicePaid {
			r.PaidInvoices++
		}
		m := inv.InvoiceDate.Month() - 1
		r.MonthlyRevenue[m].Amount = r.MonthlyRevenue[m].Amount.Add(inv.TotalAmount)
	}
	if len(invoices) > 0 {
		r.AverageInvoice = r.TotalRevenue.Div(decimal.NewFromInt(int64(len(invoices)))).Round(2)
	}
	return r
}

// TopCustomers ranks customers by invoiced total, highest first, and keeps
// the first n. Ties break on name so the output is stable.
func TopCustomers(invoices []model.Invoice, names map[uuid.UUID]string, n int) []CustomerRevenue {
	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, inv := range invoices {
		totals[inv.CustomerID] = totals[inv.CustomerID].Add(inv.TotalAmount)
	}
	out := make([]CustomerRevenue, 0, len(totals))
	for id, amount := range totals {
		name, ok := names[id]
		if !ok {
			name = id.String()
		}
		out = append(out, CustomerRevenue{CustomerID: id, Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

type InvoiceStats struct {
	Total        int                         `json:"total"`
	ByStatus     map[model.InvoiceStatus]int `json:"by_status"`
	TotalAmount  decimal.Decimal             `json:"total_amount"`
	TotalPaid    decimal.Decimal             `json:"total_paid"`
	TotalBalance decimal.Decimal             `json:"total_balance"`
}

func ComputeInvoiceStats(invoices []model.Invoice) InvoiceStats {
	s := InvoiceStats{
		Total:        len(invoices),
		ByStatus:     make(map[model.InvoiceStatus]int),
		TotalAmount:  decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalBalance: decimal.Zero,
	}
	for _, inv := range invoices {
		s.ByStatus[inv.Status]++
		s.TotalAmount = s.TotalAmount.Add(inv.TotalAmount)
		s.TotalPaid = s.TotalPaid.Add(inv.AmountPaid)
		s.TotalBalance = s.TotalBalance.Add(inv.BalanceDue)
	}
	return s
}

type ServiceStats struct {
	TotalServices  int             `json:"total_services"`
	ActiveServices int             `json:"active_services"`
	Subscriptions  int             `json:"active_subscriptions"`
	RecurringValue decimal.Decimal `json:"recurring_value"`
}

// ComputeServiceStats summarises the catalog and the price of every active
// customer subscription.
func ComputeServiceStats(catalog []model.Service, subscriptions []model.CustomerService) ServiceStats {
	s := ServiceStats{TotalServices: len(catalog), RecurringValue: decimal.Zero}
	for _, svc := range catalog {
		if svc.IsActive {
			s.ActiveServices++
		}
	}
	for _, cs := range subscriptions {
		if cs.Status == model.SubscriptionLineActive {
			s.Subscriptions++
			s.RecurringValue = s.RecurringValue.Add(cs.Price)
		}
	}
	return s
}

type VATSummary struct {
	Total          int                     `json:"total"`
	ByStatus       map[model.VATStatus]int `json:"by_status"`
	UnfiledNetVAT  decimal.Decimal         `json:"unfiled_net_vat"`
	OverdueReturns int                     `json:"overdue_returns"`
}

// ComputeVATSummary counts returns per status and sums the net VAT of the
// ones not yet filed. A return without data contributes nothing to the sum.
func ComputeVATSummary(returns []model.VATReturn, now time.Time) VATSummary {
	s := VATSummary{
		Total:         len(returns),
		ByStatus:      make(map[model.VATStatus]int),
		UnfiledNetVAT: decimal.Zero,
	}
	for _, r := range returns {
		s.ByStatus[r.Status]++
		if r.Status == model.VATFiled {
			continue
		}
		if r.Data != nil {
			s.UnfiledNetVAT = s.UnfiledNetVAT.Add(r.Data.NetVATPayable)
		}
		if r.Status != model.VATSubmitted && pastDue(r.DueDate, now) {
			s.OverdueReturns++
		}
	}
	return s
}
