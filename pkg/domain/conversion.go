package domain

import (
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// HistoryKey is the store key holding the serialized conversion history.
const HistoryKey = "conversion-history"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.IsZero()
	})
	return v
}

// ConversionForm holds the user input for one conversion.
// Nil fields are unset.
type ConversionForm struct {
	FromCurrency *string    `validate:"required,min=1"`
	ToCurrency   *string    `validate:"required,min=1"`
	Amount       *float64   `validate:"required,gt=0"`
	Date         *time.Time `validate:"required,calendar_date"`
}

// Validate checks that every field is set, the amount is a positive finite
// number and the date is a real calendar date.
func (f ConversionForm) Validate() error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ValidationError{Field: verrs[0].Field(), Message: validationMessage(verrs[0].Tag())}
		}
		return &ValidationError{Message: err.Error()}
	}
	if math.IsInf(*f.Amount, 0) {
		return &ValidationError{Field: "Amount", Message: "must be a finite number"}
	}
	return nil
}

// Clone returns a copy that shares no pointers with f.
func (f ConversionForm) Clone() ConversionForm {
	var out ConversionForm
	if f.FromCurrency != nil {
		v := *f.FromCurrency
		out.FromCurrency = &v
	}
	if f.ToCurrency != nil {
		v := *f.ToCurrency
		out.ToCurrency = &v
	}
	if f.Amount != nil {
		v := *f.Amount
		out.Amount = &v
	}
	if f.Date != nil {
		v := *f.Date
		out.Date = &v
	}
	return out
}

func validationMessage(tag string) string {
	switch tag {
	case "required", "min":
		return "is required"
	case "gt":
		return "must be greater than zero"
	case "calendar_date":
		return "must be a valid date"
	default:
		return "is invalid"
	}
}

// ConversionResult is the immutable outcome of one successful conversion.
type ConversionResult struct {
	ID              string  `json:"id,omitempty"`
	Amount          float64 `json:"amount"`
	ConvertedAmount float64 `json:"convertedAmount"`
	ToCurrencyRate  float64 `json:"toCurrencyRate"`
	FromCurrency    string  `json:"fromCurrency"`
	ToCurrency      string  `json:"toCurrency"`
	Date            string  `json:"date"`
}

// NewConversionResult computes the converted amount for a validated rate.
// A product that overflows float64 is rejected as a validation error.
func NewConversionResult(id string, amount, rate float64, from, to, date string) (*ConversionResult, error) {
	if !IsValidRate(rate) {
		return nil, &DataAbsentError{Date: date, Currency: to}
	}
	converted := amount * rate
	if math.IsInf(converted, 0) || math.IsNaN(converted) {
		return nil, &ValidationError{Field: "Amount", Message: "converted amount is out of range"}
	}
	return &ConversionResult{
		ID:              id,
		Amount:          amount,
		ConvertedAmount: converted,
		ToCurrencyRate:  rate,
		FromCurrency:    from,
		ToCurrency:      to,
		Date:            date,
	}, nil
}

// ConversionHistory is ordered newest first.
type ConversionHistory []ConversionResult
