package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
)

type PeriodType string

const (
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
)

// PeriodsPerYear returns 12 for monthly and 4 for quarterly periods.
func (p PeriodType) PeriodsPerYear() int {
	if p == PeriodQuarterly {
		return 4
	}
	return 12
}

// Bounds returns the first and last calendar day of the period.
func (p PeriodType) Bounds(year, number int) (time.Time, time.Time) {
	months := 12 / p.PeriodsPerYear()
	start := time.Date(year, time.Month((number-1)*months+1), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, months, -1)
	return start, end
}

// Label renders a period the way the filing list shows it: "Q2 2026" or "2026-05".
func (p PeriodType) Label(year, number int) string {
	if p == PeriodQuarterly {
		return fmt.Sprintf("Q%d %d", number, year)
	}
	return fmt.Sprintf("%d-%02d", year, number)
}

type VATStatus string

const (
	VATDraft      VATStatus = "draft"
	VATInProgress VATStatus = "in_progress"
	VATReview     VATStatus = "review"
	VATSubmitted  VATStatus = "submitted"
	VATFiled      VATStatus = "filed"
)

var vatStatusRank = map[VATStatus]int{
	VATDraft:      0,
	VATInProgress: 1,
	VATReview:     2,
	VATSubmitted:  3,
	VATFiled:      4,
}

// Locked reports whether the return's figures can no longer change.
func (s VATStatus) Locked() bool {
	return vatStatusRank[s] >= vatStatusRank[VATSubmitted]
}

// CheckVATTransition validates a status move. Forward moves are always allowed;
// a backward move needs a reason, which the caller must record in the audit
// trail. The returned flag is true for backward moves.
func CheckVATTransition(from, to VATStatus, reason *string) (bool, error) {
	fromRank, ok := vatStatusRank[from]
	if !ok {
		return false, apperr.Validation("status", "unknown current status "+string(from))
	}
	toRank, ok := vatStatusRank[to]
	if !ok {
		return false, apperr.Validation("status", "unknown status "+string(to))
	}
	switch {
	case toRank == fromRank:
		return false, apperr.Validation("status", "return is already "+string(to))
	case toRank > fromRank:
		return false, nil
	case reason == nil || strings.TrimSpace(*reason) == "":
		return true, apperr.Validation("reason", "moving a return back from "+string(from)+" requires a reason")
	default:
		return true, nil
	}
}

// VATReturn represents the vat_returns table
type VATReturn struct {
	ID              uuid.UUID      `json:"id"`
	TenantID        uuid.UUID      `json:"user_id"`
	CustomerID      uuid.UUID      `json:"customer_id"`
	TaskID          *uuid.UUID     `json:"task_id,omitempty"`
	PeriodType      PeriodType     `json:"period_type"`
	PeriodYear      int            `json:"period_year"`
	PeriodNumber    int            `json:"period_number"`
	PeriodStartDate time.Time      `json:"period_start_date"`
	PeriodEndDate   time.Time      `json:"period_end_date"`
	DueDate         time.Time      `json:"due_date"`
	Status          VATStatus      `json:"status"`
	FiledDate       *time.Time     `json:"filed_date,omitempty"`
	Data            *VATReturnData `json:"data,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// VATReturnInput opens a filing for a period. Period dates default to the
// calendar bounds of the period; the due date defaults to one month and seven
// days after the period end.
type VATReturnInput struct {
	CustomerID      uuid.UUID  `json:"customer_id" validate:"required"`
	TaskID          *uuid.UUID `json:"task_id"`
	PeriodType      PeriodType `json:"period_type" validate:"required,oneof=monthly quarterly"`
	PeriodYear      int        `json:"period_year" validate:"required,gte=2000,lte=2100"`
	PeriodNumber    int        `json:"period_number" validate:"required,gte=1,lte=12"`
	PeriodStartDate *time.Time `json:"period_start_date"`
	PeriodEndDate   *time.Time `json:"period_end_date"`
	DueDate         *time.Time `json:"due_date"`
}

func (in *VATReturnInput) Validate() error {
	var extra []apperr.FieldError
	if in.PeriodType == PeriodQuarterly && in.PeriodNumber > 4 {
		extra = append(extra, fieldErr("period_number", "must be between 1 and 4 for quarterly returns"))
	}
	if err := check(in, extra...); err != nil {
		return err
	}
	start, end := in.PeriodType.Bounds(in.PeriodYear, in.PeriodNumber)
	if in.PeriodStartDate == nil {
		in.PeriodStartDate = &start
	}
	if in.PeriodEndDate == nil {
		in.PeriodEndDate = &end
	}
	if in.PeriodEndDate.Before(*in.PeriodStartDate) {
		return apperr.Validation("period_end_date", "must not be before period_start_date")
	}
	if in.DueDate == nil {
		due := in.PeriodEndDate.AddDate(0, 1, 7)
		in.DueDate = &due
	}
	return nil
}

type VATReturnFilter struct {
	CustomerID *uuid.UUID
	Statuses   []VATStatus
}

// VATReturnData represents the vat_return_data table. NetVATPayable and
// TotalVATDue are derived and never accepted from callers.
type VATReturnData struct {
	ID               uuid.UUID       `json:"id"`
	VATReturnID      uuid.UUID       `json:"vat_return_id"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	ExemptSales      decimal.Decimal `json:"exempt_sales"`
	TaxableSales     decimal.Decimal `json:"taxable_sales"`
	OutputTax        decimal.Decimal `json:"output_tax"`
	TotalPurchases   decimal.Decimal `json:"total_purchases"`
	ExemptPurchases  decimal.Decimal `json:"exempt_purchases"`
	TaxablePurchases decimal.Decimal `json:"taxable_purchases"`
	InputTax         decimal.Decimal `json:"input_tax"`
	Adjustments      decimal.Decimal `json:"adjustments"`
	NetVATPayable    decimal.Decimal `json:"net_vat_payable"`
	TotalVATDue      decimal.Decimal `json:"total_vat_due"`
	Notes            *string         `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// VATFiguresInput carries the raw, pre-computed figures of a return.
type VATFiguresInput struct {
	TotalSales       decimal.Decimal `json:"total_sales"`
	ExemptSales      decimal.Decimal `json:"exempt_sales"`
	TaxableSales     decimal.Decimal `json:"taxable_sales"`
	OutputTax        decimal.Decimal `json:"output_tax"`
	TotalPurchases   decimal.Decimal `json:"total_purchases"`
	ExemptPurchases  decimal.Decimal `json:"exempt_purchases"`
	TaxablePurchases decimal.Decimal `json:"taxable_purchases"`
	InputTax         decimal.Decimal `json:"input_tax"`
	Adjustments      decimal.Decimal `json:"adjustments"`
	Notes            *string         `json:"notes"`
}

func (in *VATFiguresInput) Validate() error {
	return check(in, nonNegative(
		amount{"total_sales", in.TotalSales},
		amount{"exempt_sales", in.ExemptSales},
		amount{"taxable_sales", in.TaxableSales},
		amount{"output_tax", in.OutputTax},
		amount{"total_purchases", in.TotalPurchases},
		amount{"exempt_purchases", in.ExemptPurchases},
		amount{"taxable_purchases", in.TaxablePurchases},
		amount{"input_tax", in.InputTax},
	)...)
}

// VATStatusChange represents the vat_return_status_changes audit table
type VATStatusChange struct {
	ID          uuid.UUID `json:"id"`
	VATReturnID uuid.UUID `json:"vat_return_id"`
	FromStatus  VATStatus `json:"from_status"`
	ToStatus    VATStatus `json:"to_status"`
	Reason      *string   `json:"reason,omitempty"`
	ChangedBy   uuid.UUID `json:"changed_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type VATStatusUpdate struct {
	Status VATStatus `json:"status" validate:"required,oneof=draft in_progress review submitted filed"`
	Reason *string   `json:"reason" validate:"omitempty,max=1000"`
}

func (in *VATStatusUpdate) Validate() error { return check(in) }
