package receipt

import "time"

type ReceiptFile struct {
	ID         int64     `gorm:"primaryKey"`
	ExpenseID  int64     `gorm:"column:expense_id;not null;index"`
	StorageKey string    `gorm:"column:storage_key;not null;uniqueIndex"`
	URL        string    `gorm:"column:url;not null"`
	MimeType   string    `gorm:"column:mime_type;not null"`
	SizeBytes  int64     `gorm:"column:size_bytes;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ReceiptFile) TableName() string {
	return "receipt_files"
}
