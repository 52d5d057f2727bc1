package validation

import "github.com/shopspring/decimal"

// InvoiceInput is the invoice record as submitted by a form, after string coercion.
// Amount is validated in minor units, see New.
type InvoiceInput struct {
	ID         string          `form:"id" validate:"required"`
	CustomerID string          `form:"customerId" validate:"required"`
	Amount     decimal.Decimal `form:"amount" validate:"gt=0,lte=1000000000000"`
	Status     string          `form:"status" validate:"required,oneof=pending paid"`
	Date       string          `form:"date" validate:"required,datetime=2006-01-02"`
}

// Data is the validated, type-coerced payload of a form.
type Data struct {
	ID         string
	CustomerID string
	Amount     decimal.Decimal
	Status     string
	Date       string
}

// AmountInCents converts the amount to minor units, rounding half away from zero.
func (d Data) AmountInCents() int64 {
	return toCents(d.Amount)
}

// FieldErrors maps a form field name to its messages, in the order they were raised.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, msg string) {
	for _, m := range fe[field] {
		if m == msg {
			return
		}
	}
	fe[field] = append(fe[field], msg)
}

// Result is the outcome of SafeParse. Errors is nil when Success is true.
type Result struct {
	Success bool
	Data    Data
	Errors  FieldErrors
}
