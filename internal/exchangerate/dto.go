package exchangerate

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/shopspring/decimal"
)

// CaptureRatesDTO records a snapshot. Rates are decimal strings so no
// precision is lost in JSON.
type CaptureRatesDTO struct {
	BaseCurrency string            `json:"baseCurrency" validate:"required,iso4217"`
	Rates        map[string]string `json:"rates" validate:"required,min=1,dive,keys,iso4217,endkeys,required"`
}

func (d *CaptureRatesDTO) Normalize() {
	d.BaseCurrency = strings.ToUpper(strings.TrimSpace(d.BaseCurrency))
	rates := make(map[string]string, len(d.Rates))
	for k, v := range d.Rates {
		rates[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	d.Rates = rates
}

func (d *CaptureRatesDTO) ParseRates() (map[string]decimal.Decimal, *internal.AppError) {
	out := make(map[string]decimal.Decimal, len(d.Rates))
	for currency, raw := range d.Rates {
		rate, err := decimal.NewFromString(raw)
		if err != nil || !rate.IsPositive() {
			field := fmt.Sprintf("rates[%s]", currency)
			return nil, internal.NewValidationFieldError(field, field+" must be a positive decimal", internal.ErrCodeValidationFailed)
		}
		out[currency] = rate
	}
	return out, nil
}
