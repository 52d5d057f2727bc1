package validation

import (
	"math"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// New returns a validator that reports fields by their form names and checks
// decimal amounts as whole minor units, so "0.001" fails the same way "0" does.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return toCents(d)
		}
		return nil
	}, decimal.Decimal{})

	return v
}

func toCents(d decimal.Decimal) int64 {
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(maxCents) {
		return math.MaxInt64
	}
	if cents.LessThan(maxCents.Neg()) {
		return -math.MaxInt64
	}
	return cents.IntPart()
}
