package membership

import "time"

type Membership struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_memberships_user_company"`
	CompanyID int64     `gorm:"column:company_id;not null;uniqueIndex:idx_memberships_user_company;index"`
	Role      string    `gorm:"column:role;size:16;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Membership) TableName() string {
	return "memberships"
}
