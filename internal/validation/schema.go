package validation

import (
	"errors"
	"math/big"
	"net/url"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = New()

// form field name -> InvoiceInput field name
var structFields = map[string]string{
	"id":         "ID",
	"customerId": "CustomerID",
	"amount":     "Amount",
	"status":     "Status",
	"date":       "Date",
}

// messages are keyed by "field.tag" first, then by field.
var messages = map[string]string{
	"id":         "Invoice id is required.",
	"customerId": "Please select a customer.",
	"amount":     "Please enter an amount greater than $0.",
	"amount.lte": "Please enter an amount no greater than $10,000,000,000.",
	"status":     "Please select an invoice status.",
	"date":       "Please enter a date as YYYY-MM-DD.",
}

// Schema validates invoice forms. Omitted fields are neither read from the form
// nor validated.
type Schema struct {
	omit []string
}

var (
	// InvoiceSchema is the full invoice record.
	InvoiceSchema = Schema{}

	// CreateInvoice leaves id and date to the server.
	CreateInvoice = InvoiceSchema.Omit("id", "date")

	// EditInvoice takes the id out of band, and the date never changes after creation.
	EditInvoice = InvoiceSchema.Omit("id", "date")
)

// Omit returns a copy of s that skips the given form fields. Unknown names are ignored.
func (s Schema) Omit(fields ...string) Schema {
	omit := append([]string(nil), s.omit...)
	for _, f := range fields {
		if name, ok := structFields[f]; ok && !s.omits(name) {
			omit = append(omit, name)
		}
	}
	return Schema{omit: omit}
}

func (s Schema) omits(structField string) bool {
	for _, o := range s.omit {
		if o == structField {
			return true
		}
	}
	return false
}

// SafeParse coerces and validates a form. Bad input is reported in Result.Errors,
// never as a panic.
func (s Schema) SafeParse(form url.Values) Result {
	in := coerce(form)
	for _, name := range s.omit {
		switch name {
		case "ID":
			in.ID = ""
		case "Date":
			in.Date = ""
		}
	}

	err := validate.StructExcept(in, s.omit...)
	if err == nil {
		return Result{
			Success: true,
			Data: Data{
				ID:         in.ID,
				CustomerID: in.CustomerID,
				Amount:     in.Amount,
				Status:     in.Status,
				Date:       in.Date,
			},
		}
	}

	errs := FieldErrors{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			errs.add(fe.Field(), messageFor(fe.Field(), fe.Tag()))
		}
	} else {
		errs.add("form", err.Error())
	}
	return Result{Errors: errs}
}

func coerce(form url.Values) InvoiceInput {
	return InvoiceInput{
		ID:         strings.TrimSpace(form.Get("id")),
		CustomerID: strings.TrimSpace(form.Get("customerId")),
		Amount:     coerceAmount(form.Get("amount")),
		Status:     strings.TrimSpace(form.Get("status")),
		Date:       strings.TrimSpace(form.Get("date")),
	}
}

const maxAmountLen = 64

// overLimit is any amount past the cap; it fails the lte rule.
var overLimit = decimal.New(1, 14)

// coerceAmount parses the amount field. An empty, overlong or non-numeric
// amount coerces to zero and fails the amount rule. Exponents are bounded by
// magnitude before any rescaling, so "1e-999999999" costs no more than "1".
func coerceAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxAmountLen {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsZero() {
		return decimal.Zero
	}

	// d lies in [10^(mag-1), 10^mag)
	digits := len(new(big.Int).Abs(d.Coefficient()).String())
	mag := int64(digits) + int64(d.Exponent())
	switch {
	case mag > 13:
		if d.Sign() > 0 {
			return overLimit
		}
		return decimal.Zero
	case mag < -2:
		// below a tenth of a cent
		return decimal.Zero
	}
	return d
}

func messageFor(field, tag string) string {
	if m, ok := messages[field+"."+tag]; ok {
		return m
	}
	if m, ok := messages[field]; ok {
		return m
	}
	return "Invalid value."
}
