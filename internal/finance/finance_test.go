package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestComputeVATTotals(t *testing.T) {
	tests := []struct {
		name             string
		output, input    string
		adjustments      string
		wantNet, wantDue string
	}{
		{"payable", "100", "40", "-10", "50", "50"},
		{"refund floors due at zero", "20", "75.50", "0", "-55.5", "0"},
		{"adjustment tips into payable", "10", "15", "7.25", "2.25", "2.25"},
		{"all zero", "0", "0", "0", "0", "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			notes := "Q2 figures"
			data := ComputeVATTotals(model.VATFiguresInput{
				TotalSales:  d("1000"),
				OutputTax:   d(tc.output),
				InputTax:    d(tc.input),
				Adjustments: d(tc.adjustments),
				Notes:       &notes,
			})
			assertMoney(t, tc.wantNet, data.NetVATPayable)
			assertMoney(t, tc.wantDue, data.TotalVATDue)
			assertMoney(t, "1000", data.TotalSales)
			assert.Equal(t, &notes, data.Notes)
		})
	}
}

func TestPriceInvoice_FromItems(t *testing.T) {
	inv, err := PriceInvoice(model.InvoiceInput{
		CustomerID:     uuid.New(),
		Subtotal:       d("999"),
		TaxAmount:      d("15"),
		DiscountAmount: d("5"),
		Items: []model.InvoiceItemInput{
			{Description: "Monthly bookkeeping", Quantity: d("2"), UnitPrice: d("40")},
			{Description: "Payroll run", Quantity: d("1.5"), UnitPrice: d("13.333")},
		},
	})
	require.NoError(t, err)
	require.Len(t, inv.Items, 2)
	assertMoney(t, "80", inv.Items[0].Total)
	assertMoney(t, "20", inv.Items[1].Total)
	assertMoney(t, "100", inv.Subtotal)
	assertMoney(t, "110", inv.TotalAmount)
	assertMoney(t, "110", inv.BalanceDue)
	assertMoney(t, "0", inv.AmountPaid)
	assert.Equal(t, model.InvoiceDraft, inv.Status)
}

func TestPriceInvoice_DiscountTooLarge(t *testing.T) {
	_, err := PriceInvoice(model.InvoiceInput{Subtotal: d("10"), TaxAmount: d("2"), DiscountAmount: d("12.01")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, "discount_amount", apperr.FieldsOf(err)[0].Field)

	inv, err := PriceInvoice(model.InvoiceInput{Subtotal: d("10"), TaxAmount: d("2"), DiscountAmount: d("12")})
	require.NoError(t, err)
	assertMoney(t, "0", inv.TotalAmount)
}

func sentInvoice(total string) model.Invoice {
	return model.Invoice{
		TotalAmount: d(total),
		AmountPaid:  decimal.Zero,
		BalanceDue:  d(total),
		Status:      model.InvoiceSent,
		DueDate:     time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestApplyPayment_Scenario(t *testing.T) {
	inv := sentInvoice("110")

	inv, err := ApplyPayment(inv, d("50"))
	require.NoError(t, err)
	assertMoney(t, "50", inv.AmountPaid)
	assertMoney(t, "60", inv.BalanceDue)
	assert.Equal(t, model.InvoicePartiallyPaid, inv.Status)

	inv, err = ApplyPayment(inv, d("60"))
	require.NoError(t, err)
	assertMoney(t, "110", inv.AmountPaid)
	assertMoney(t, "0", inv.BalanceDue)
	assert.Equal(t, model.InvoicePaid, inv.Status)
	assertMoney(t, inv.TotalAmount.String(), inv.AmountPaid.Add(inv.BalanceDue))
}

func TestApplyPayment_RoundsToCents(t *testing.T) {
	inv, err := ApplyPayment(sentInvoice("110"), d("50"))
	require.NoError(t, err)

	inv, err = ApplyPayment(inv, d("59.996"))
	require.NoError(t, err)
	assertMoney(t, "110", inv.AmountPaid)
	assertMoney(t, "0", inv.BalanceDue)
	assert.Equal(t, model.InvoicePaid, inv.Status)

	part, err := ApplyPayment(sentInvoice("110"), d("10.004"))
	require.NoError(t, err)
	assertMoney(t, "10", part.AmountPaid)
	assertMoney(t, "100", part.BalanceDue)
	assert.Equal(t, model.InvoicePartiallyPaid, part.Status)
}

func TestPricedZeroTotalInvoiceIsPaidOnceSent(t *testing.T) {
	inv, err := PriceInvoice(model.InvoiceInput{
		CustomerID:     uuid.New(),
		InvoiceDate:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		DueDate:        time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Subtotal:       d("100"),
		DiscountAmount: d("100"),
	})
	require.NoError(t, err)
	assertMoney(t, "0", inv.TotalAmount)
	assert.Equal(t, model.InvoiceDraft, DeriveInvoiceStatus(inv, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	inv.Status = model.InvoiceSent
	assert.Equal(t, model.InvoicePaid, DeriveInvoiceStatus(inv, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestApplyPayment_Rejections(t *testing.T) {
	draft := sentInvoice("100")
	draft.Status = model.InvoiceDraft
	cancelled := sentInvoice("100")
	cancelled.Status = model.InvoiceCancelled

	tests := []struct {
		name   string
		inv    model.Invoice
		amount string
		field  string
	}{
		{"zero amount", sentInvoice("100"), "0", "amount"},
		{"negative amount", sentInvoice("100"), "-1", "amount"},
		{"overpayment", sentInvoice("100"), "100.01", "amount"},
		{"rounds to zero", sentInvoice("100"), "0.004", "amount"},
		{"draft invoice", draft, "10", "invoice"},
		{"cancelled invoice", cancelled, "10", "invoice"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ApplyPayment(tc.inv, d(tc.amount))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
			assert.Equal(t, tc.field, apperr.FieldsOf(err)[0].Field)
			assert.Equal(t, tc.inv, got)
		})
	}
}

func TestDeriveInvoiceStatus(t *testing.T) {
	now := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	past := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	build := func(status model.InvoiceStatus, total, balance string, due time.Time) model.Invoice {
		return model.Invoice{Status: status, TotalAmount: d(total), BalanceDue: d(balance), DueDate: due}
	}
	tests := []struct {
		name string
		inv  model.Invoice
		want model.InvoiceStatus
	}{
		{"cancelled sticks", build(model.InvoiceCancelled, "100", "0", past), model.InvoiceCancelled},
		{"settled", build(model.InvoiceSent, "100", "0", past), model.InvoicePaid},
		{"part paid beats overdue", build(model.InvoiceOverdue, "100", "40", past), model.InvoicePartiallyPaid},
		{"draft sticks", build(model.InvoiceDraft, "100", "100", past), model.InvoiceDraft},
		{"past due", build(model.InvoiceSent, "100", "100", past), model.InvoiceOverdue},
		{"due today", build(model.InvoiceSent, "100", "100", today), model.InvoiceSent},
		{"zero total sent is paid", build(model.InvoiceSent, "0", "0", today), model.InvoicePaid},
		{"zero total never overdue", build(model.InvoiceSent, "0", "0", past), model.InvoicePaid},
		{"zero total draft sticks", build(model.InvoiceDraft, "0", "0", past), model.InvoiceDraft},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveInvoiceStatus(tc.inv, now))
		})
	}
}

func TestComputeDashboard(t *testing.T) {
	stats := ComputeDashboard(
		[]model.Customer{{IsActive: true}, {IsActive: false}, {IsActive: true}},
		[]model.Lead{{Status: model.LeadNew}, {Status: model.LeadNegotiating}, {Status: model.LeadConverted}, {Status: model.LeadLost}},
		[]model.CustomerService{{Status: model.SubscriptionLineActive}, {Status: model.SubscriptionLinePaused}},
		[]model.Invoice{
			{Status: model.InvoiceSent, BalanceDue: d("100")},
			{Status: model.InvoicePartiallyPaid, BalanceDue: d("60")},
			{Status: model.InvoiceOverdue, BalanceDue: d("15.50")},
			{Status: model.InvoicePaid, BalanceDue: d("0")},
			{Status: model.InvoiceDraft, BalanceDue: d("999")},
		},
		[]model.Task{{Status: model.TaskPending}, {Status: model.TaskInProgress}, {Status: model.TaskReview}, {Status: model.TaskCompleted}},
	)
	assert.Equal(t, 2, stats.ActiveCustomers)
	assert.Equal(t, 2, stats.OpenLeads)
	assert.Equal(t, 1, stats.ActiveServices)
	assert.Equal(t, 3, stats.OpenInvoices)
	assertMoney(t, "175.50", stats.OutstandingTotal)
	assert.Equal(t, 2, stats.PendingTasks)
}

func TestReportSummary(t *testing.T) {
	jan := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	r := ReportSummary([]model.Invoice{
		{InvoiceDate: jan, TotalAmount: d("100"), BalanceDue: d("0"), Status: model.InvoicePaid},
		{InvoiceDate: jan, TotalAmount: d("50"), BalanceDue: d("50"), Status: model.InvoiceSent},
		{InvoiceDate: mar, TotalAmount: d("25"), BalanceDue: d("5"), Status: model.InvoicePartiallyPaid},
	}, 7)

	assertMoney(t, "175", r.TotalRevenue)
	assert.Equal(t, 7, r.TotalCustomers)
	assert.Equal(t, 3, r.TotalInvoices)
	assert.Equal(t, 1, r.PaidInvoices)
	assertMoney(t, "55", r.PendingAmount)
	assertMoney(t, "58.33", r.AverageInvoice)
	require.Len(t, r.MonthlyRevenue, 12)
	assert.Equal(t, "Jan", r.MonthlyRevenue[0].Month)
	assertMoney(t, "150", r.MonthlyRevenue[0].Amount)
	assertMoney(t, "0", r.MonthlyRevenue[1].Amount)
	assertMoney(t, "25", r.MonthlyRevenue[2].Amount)
	assert.Equal(t, "Dec", r.MonthlyRevenue[11].Month)
}

func TestReportSummary_Empty(t *testing.T) {
	r := ReportSummary(nil, 0)
	assertMoney(t, "0", r.AverageInvoice)
	assert.Len(t, r.MonthlyRevenue, 12)
	assert.NotNil(t, r.TopCustomers)
}

func TestTopCustomers(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	top := TopCustomers([]model.Invoice{
		{CustomerID: a, TotalAmount: d("10")},
		{CustomerID: b, TotalAmount: d("30")},
		{CustomerID: a, TotalAmount: d("25")},
		{CustomerID: c, TotalAmount: d("1")},
	}, map[uuid.UUID]string{a: "Acme", b: "Beta"}, 2)

	require.Len(t, top, 2)
	assert.Equal(t, "Acme", top[0].Name)
	assertMoney(t, "35", top[0].Amount)
	assert.Equal(t, "Beta", top[1].Name)
}

func TestComputeInvoiceStats(t *testing.T) {
	s := ComputeInvoiceStats([]model.Invoice{
		{Status: model.InvoicePaid, TotalAmount: d("100"), AmountPaid: d("100"), BalanceDue: d("0")},
		{Status: model.InvoiceSent, TotalAmount: d("40"), AmountPaid: d("0"), BalanceDue: d("40")},
		{Status: model.InvoiceSent, TotalAmount: d("10"), AmountPaid: d("0"), BalanceDue: d("10")},
	})
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.ByStatus[model.InvoiceSent])
	assert.Equal(t, 1, s.ByStatus[model.InvoicePaid])
	assertMoney(t, "150", s.TotalAmount)
	assertMoney(t, "100", s.TotalPaid)
	assertMoney(t, "50", s.TotalBalance)
}

func TestComputeServiceStats(t *testing.T) {
	s := ComputeServiceStats(
		[]model.Service{{IsActive: true}, {IsActive: false}},
		[]model.CustomerService{
			{Status: model.SubscriptionLineActive, Price: d("120")},
			{Status: model.SubscriptionLineActive, Price: d("30.5")},
			{Status: model.SubscriptionLineCancelled, Price: d("500")},
		},
	)
	assert.Equal(t, 2, s.TotalServices)
	assert.Equal(t, 1, s.ActiveServices)
	assert.Equal(t, 2, s.Subscriptions)
	assertMoney(t, "150.5", s.RecurringValue)
}

func TestComputeVATSummary(t *testing.T) {
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -1)
	upcoming := now.AddDate(0, 1, 0)
	s := ComputeVATSummary([]model.VATReturn{
		{Status: model.VATDraft, DueDate: overdue, Data: &model.VATReturnData{NetVATPayable: d("50")}},
		{Status: model.VATReview, DueDate: upcoming, Data: &model.VATReturnData{NetVATPayable: d("-20")}},
		{Status: model.VATInProgress, DueDate: upcoming},
		{Status: model.VATFiled, DueDate: overdue, Data: &model.VATReturnData{NetVATPayable: d("1000")}},
	}, now)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.ByStatus[model.VATFiled])
	assertMoney(t, "30", s.UnfiledNetVAT)
	assert.Equal(t, 1, s.OverdueReturns)
}
