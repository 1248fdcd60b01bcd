// Package settlement applies a sale's value against a client's credit/debt
// balance. The policy: available credit absorbs the sale first, anything
// beyond it becomes debt.
package settlement

import "github.com/shopspring/decimal"

// Apply computes the client's new balance after a sale of the given value.
// Inputs are assumed validated: credit >= 0, debt >= 0, value > 0. Each
// computed figure is rounded to 2 decimal places so repeated settlements do
// not accumulate floating-point drift.
//
// Three cases, in order:
//  1. no credit: the whole value becomes debt
//  2. credit covers the value: credit shrinks, debt untouched
//  3. credit partially covers it: credit is exhausted, the rest becomes debt
func Apply(credit, debt, value decimal.Decimal) (newCredit, newDebt decimal.Decimal) {
	switch {
	case credit.IsZero():
		return credit, debt.Add(value).Round(2)
	case credit.GreaterThanOrEqual(value):
		return credit.Sub(value).Round(2), debt
	default:
		rest := value.Sub(credit).Round(2)
		return decimal.Zero, debt.Add(rest).Round(2)
	}
}
