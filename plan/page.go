package plan

import (
	"context"

	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/payment"
)

// DefaultPageSize applies when a page size below one is requested.
const DefaultPageSize = 20

// PlannedPaymentPage is one page of a projected schedule.
type PlannedPaymentPage struct {
	ChargeDefinitions []*charge.Definition
	Elements          []payment.PlannedPayment
	TotalElements     int
	TotalPages        int
}

// PlannedPaymentPage projects the schedule and returns page pageIndex
// (zero-based) of size elements. A page past the end is empty.
func (p *Planner) PlannedPaymentPage(ctx context.Context, in Input, pageIndex, size int) (PlannedPaymentPage, error) {
	s, err := p.PlannedPayments(ctx, in)
	if err != nil {
		return PlannedPaymentPage{}, err
	}
	return Page(s, pageIndex, size), nil
}

// Page slices a schedule into a page.
func Page(s Schedule, pageIndex, size int) PlannedPaymentPage {
	if size < 1 {
		size = DefaultPageSize
	}
	total := len(s.Payments)
	page := PlannedPaymentPage{
		ChargeDefinitions: s.ChargeDefinitions,
		TotalElements:     total,
		TotalPages:        (total + size - 1) / size,
		Elements:          []payment.PlannedPayment{},
	}
	from := pageIndex * size
	if pageIndex < 0 || from >= total {
		return page
	}
	to := from + size
	if to > total {
		to = total
	}
	page.Elements = s.Payments[from:to]
	return page
}
