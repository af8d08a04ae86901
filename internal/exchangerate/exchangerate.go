package exchangerate

import (
	"fmt"
	"time"

	rateDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/exchangerate"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Snapshot holds how many units of each currency buy one unit of BaseCurrency
// at CapturedAt.
type Snapshot struct {
	ID           int64                      `json:"id"`
	BaseCurrency string                     `json:"baseCurrency"`
	Rates        map[string]decimal.Decimal `json:"rates"`
	CapturedAt   time.Time                  `json:"capturedAt"`
}

// Rate returns the units of currency per base unit.
func (s *Snapshot) Rate(currency string) (decimal.Decimal, bool) {
	if currency == s.BaseCurrency {
		return decimal.NewFromInt(1), true
	}
	r, ok := s.Rates[currency]
	return r, ok && r.IsPositive()
}

// Convert converts amount minor units from one currency to another through
// the snapshot's base currency, rounding half away from zero.
func (s *Snapshot) Convert(amount int64, from, to string) (int64, error) {
	if from == to {
		return amount, nil
	}
	fromRate, ok := s.Rate(from)
	if !ok {
		return 0, fmt.Errorf("no rate for %s", from)
	}
	toRate, ok := s.Rate(to)
	if !ok {
		return 0, fmt.Errorf("no rate for %s", to)
	}
	converted := decimal.NewFromInt(amount).Div(fromRate).Mul(toRate).Round(0)
	return converted.IntPart(), nil
}

func ToDataModel(s *Snapshot) *rateDatamodel.Snapshot {
	return &rateDatamodel.Snapshot{
		BaseCurrency: s.BaseCurrency,
		Rates:        datatypes.NewJSONType(rateDatamodel.Rates(s.Rates)),
		CapturedAt:   s.CapturedAt,
	}
}

func FromDataModel(row *rateDatamodel.Snapshot) *Snapshot {
	return &Snapshot{
		ID:           row.ID,
		BaseCurrency: row.BaseCurrency,
		Rates:        map[string]decimal.Decimal(row.Rates.Data()),
		CapturedAt:   row.CapturedAt,
	}
}
