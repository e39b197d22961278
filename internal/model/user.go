package model

import "time"

// User holds the spendable points balance and XP progression for one account.
// PointsBalance never goes negative; TotalSpent, TotalXP and Level only grow.
type User struct {
	UID           string    `gorm:"column:uid;primaryKey;size:128"`
	DisplayName   string    `gorm:"column:display_name;size:120"`
	PointsBalance int64     `gorm:"column:points_balance;not null;default:0"`
	TotalSpent    int64     `gorm:"column:total_spent;not null;default:0"`
	XP            int64     `gorm:"column:xp;not null;default:0"`
	TotalXP       int64     `gorm:"column:total_xp;not null;default:0"`
	Level         int       `gorm:"column:level;not null;default:1"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
