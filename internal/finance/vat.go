// Package finance holds the money arithmetic of the service: VAT totals,
// invoice pricing, payment application and the dashboard/report aggregates.
// Everything here is pure and safe to call from any goroutine.
package finance

import (
	"github.com/shopspring/decimal"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

// ComputeVATTotals rounds the raw figures of a return to cents and derives
// net_vat_payable (output - input + adjustments) and total_vat_due, which is
// the net amount floored at zero.
func ComputeVATTotals(in model.VATFiguresInput) model.VATReturnData {
	output, input, adjustments := in.OutputTax.Round(2), in.InputTax.Round(2), in.Adjustments.Round(2)
	net := output.Sub(input).Add(adjustments)
	due := net
	if due.IsNegative() {
		due = decimal.Zero
	}
	return model.VATReturnData{
		TotalSales:       in.TotalSales.Round(2),
		ExemptSales:      in.ExemptSales.Round(2),
		TaxableSales:     in.TaxableSales.Round(2),
		OutputTax:        output,
		TotalPurchases:   in.TotalPurchases.Round(2),
		ExemptPurchases:  in.ExemptPurchases.Round(2),
		TaxablePurchases: in.TaxablePurchases.Round(2),
		InputTax:         input,
		Adjustments:      adjustments,
		NetVATPayable:    net,
		TotalVATDue:      due,
		Notes:            in.Notes,
	}
}
