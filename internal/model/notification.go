package model

import "time"

type Notification struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement"`
	UserUID      string     `gorm:"column:user_uid;size:128;index;not null"`
	Type         string     `gorm:"column:type;size:64;not null"`
	Title        string     `gorm:"column:title;size:255"`
	Body         string     `gorm:"column:body;type:text"`
	EntryID      *uint64    `gorm:"column:entry_id;index"`
	ContestID    *uint64    `gorm:"column:contest_id;index"`
	WithdrawalID *uint64    `gorm:"column:withdrawal_id;index"`
	ReadAt       *time.Time `gorm:"column:read_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

// All returns every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Reaction{},
		&XPRewardConfig{},
		&DailyXPClaim{},
		&XPTransaction{},
		&LevelConfig{},
		&LevelReward{},
		&UserBadge{},
		&Contest{},
		&Entry{},
		&ContestWinner{},
		&Withdrawal{},
		&Notification{},
	}
}
