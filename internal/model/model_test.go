package model

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
)

func fieldNames(err error) []string {
	var names []string
	for _, f := range apperr.FieldsOf(err) {
		names = append(names, f.Field)
	}
	return names
}

func TestCustomerInput_Validate(t *testing.T) {
	bad := "not-an-email"
	in := CustomerInput{Email: &bad}
	err := in.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.ElementsMatch(t, []string{"name", "email"}, fieldNames(err))

	good := "owner@example.com"
	in = CustomerInput{Name: "Acme Ltd", Email: &good}
	assert.NoError(t, in.Validate())
}

func TestLeadInput_RejectsConvertedStatus(t *testing.T) {
	in := LeadInput{Name: "Prospect", Status: LeadConverted}
	err := in.Validate()
	require.Error(t, err)
	assert.Equal(t, []string{"status"}, fieldNames(err))

	in = LeadInput{Name: "Prospect"}
	require.NoError(t, in.Validate())
	assert.Equal(t, LeadNew, in.Status)
}

func TestLeadStatus_IsOpen(t *testing.T) {
	for _, s := range OpenLeadStatuses {
		assert.True(t, s.IsOpen(), s)
	}
	assert.False(t, LeadConverted.IsOpen())
	assert.False(t, LeadLost.IsOpen())
}

func TestServiceInput_Defaults(t *testing.T) {
	in := ServiceInput{Name: "Bookkeeping", DefaultPrice: decimal.NewFromInt(250)}
	require.NoError(t, in.Validate())
	assert.Equal(t, CycleMonthly, in.BillingCycle)

	in = ServiceInput{Name: "Audit", DefaultPrice: decimal.NewFromInt(-1), BillingCycle: "weekly"}
	assert.ElementsMatch(t, []string{"billing_cycle", "default_price"}, fieldNames(in.Validate()))
}

func TestCustomerServiceInput_EndBeforeStart(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	in := CustomerServiceInput{CustomerID: uuid.New(), ServiceID: uuid.New(), StartDate: &start, EndDate: &end}
	assert.Equal(t, []string{"end_date"}, fieldNames(in.Validate()))
}

func TestPeriodType_Bounds(t *testing.T) {
	start, end := PeriodQuarterly.Bounds(2026, 2)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), end)

	start, end = PeriodMonthly.Bounds(2024, 2)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), end)

	assert.Equal(t, "Q3 2026", PeriodQuarterly.Label(2026, 3))
	assert.Equal(t, "2026-05", PeriodMonthly.Label(2026, 5))
}

func TestVATReturnInput_Validate(t *testing.T) {
	in := VATReturnInput{CustomerID: uuid.New(), PeriodType: PeriodQuarterly, PeriodYear: 2026, PeriodNumber: 5}
	assert.Equal(t, []string{"period_number"}, fieldNames(in.Validate()))

	in = VATReturnInput{CustomerID: uuid.New(), PeriodType: PeriodMonthly, PeriodYear: 2026, PeriodNumber: 1}
	require.NoError(t, in.Validate())
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), *in.PeriodEndDate)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), *in.DueDate)
}

func TestCheckVATTransition(t *testing.T) {
	backward, err := CheckVATTransition(VATDraft, VATReview, nil)
	assert.NoError(t, err)
	assert.False(t, backward)

	_, err = CheckVATTransition(VATReview, VATReview, nil)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	backward, err = CheckVATTransition(VATSubmitted, VATReview, nil)
	assert.True(t, backward)
	assert.Equal(t, []string{"reason"}, fieldNames(err))

	reason := "authority rejected the submission"
	backward, err = CheckVATTransition(VATSubmitted, VATReview, &reason)
	assert.NoError(t, err)
	assert.True(t, backward)

	_, err = CheckVATTransition(VATDraft, "archived", nil)
	assert.Error(t, err)
}

func TestVATStatus_Locked(t *testing.T) {
	assert.False(t, VATReview.Locked())
	assert.True(t, VATSubmitted.Locked())
	assert.True(t, VATFiled.Locked())
}

func TestInvoiceInput_Validate(t *testing.T) {
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	in := InvoiceInput{
		CustomerID: uuid.New(),
		DueDate:    now.AddDate(0, 0, -3),
		Items: []InvoiceItemInput{
			{Description: "Annual accounts", Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(100)},
			{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(-5)},
		},
	}
	err := in.Validate(now)
	assert.ElementsMatch(t, []string{
		"due_date",
		"items[0].quantity",
		"items[1].description",
		"items[1].unit_price",
	}, fieldNames(err))
	assert.Equal(t, now, in.InvoiceDate)
}

func TestPaymentInput_Validate(t *testing.T) {
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	in := PaymentInput{Amount: decimal.Zero}
	assert.Equal(t, []string{"amount"}, fieldNames(in.Validate(now)))

	in = PaymentInput{Amount: decimal.NewFromInt(50)}
	require.NoError(t, in.Validate(now))
	assert.Equal(t, PaymentBankTransfer, in.PaymentMethod)
	assert.Equal(t, now, in.PaymentDate)
}

func TestPaymentInput_RoundsAmountToCents(t *testing.T) {
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	in := PaymentInput{Amount: decimal.RequireFromString("59.996")}
	require.NoError(t, in.Validate(now))
	assert.Equal(t, "60.00", in.Amount.StringFixed(2))
	assert.True(t, decimal.NewFromInt(60).Equal(in.Amount))

	in = PaymentInput{Amount: decimal.RequireFromString("0.004")}
	assert.Equal(t, []string{"amount"}, fieldNames(in.Validate(now)))
}

func TestSubscriptionStatus_AllowsAccess(t *testing.T) {
	assert.True(t, SubscriptionActive.AllowsAccess())
	assert.True(t, SubscriptionTrial.AllowsAccess())
	assert.False(t, SubscriptionSuspended.AllowsAccess())
	assert.False(t, SubscriptionInactive.AllowsAccess())
}
