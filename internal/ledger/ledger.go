// Package ledger computes campaign balance changes caused by donation events.
//
// Amounts are stored as floating point numbers; arithmetic is done in
// decimal so repeated credits and debits of cent amounts do not drift.
package ledger

import "github.com/shopspring/decimal"

// Entry is the outcome of crediting a donation to a campaign.
type Entry struct {
	AmountRaised float64
	// Completed is true when the new total reaches the goal.
	Completed bool
}

// Credit adds amount to raised and reports whether goal is reached.
// Only the create path evaluates completion.
func Credit(raised, amount, goal float64) Entry {
	total := decimal.NewFromFloat(raised).Add(decimal.NewFromFloat(amount))
	return Entry{
		AmountRaised: total.InexactFloat64(),
		Completed:    total.GreaterThanOrEqual(decimal.NewFromFloat(goal)),
	}
}

// Debit subtracts amount from raised. The result may go negative; callers
// never re-evaluate or revert a completed status.
func Debit(raised, amount float64) float64 {
	return decimal.NewFromFloat(raised).Sub(decimal.NewFromFloat(amount)).InexactFloat64()
}

// RefundDelta is the part of amount not yet refunded.
func RefundDelta(amount, refunded float64) float64 {
	return decimal.NewFromFloat(amount).Sub(decimal.NewFromFloat(refunded)).InexactFloat64()
}
