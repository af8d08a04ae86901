package exchangerate

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Rates map[string]decimal.Decimal

type Snapshot struct {
	ID           int64                     `gorm:"primaryKey"`
	CompanyID    int64                     `gorm:"column:company_id;not null;index"`
	BaseCurrency string                    `gorm:"column:base_currency;size:3;not null"`
	Rates        datatypes.JSONType[Rates] `gorm:"column:rates;type:jsonb;not null"`
	CapturedAt   time.Time                 `gorm:"column:captured_at;not null;index"`
}

func (Snapshot) TableName() string {
	return "exchange_rate_snapshots"
}
