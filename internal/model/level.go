package model

import "time"

// LevelConfig maps a level to the cumulative XP required to hold it.
// XPRequired is strictly increasing in Level.
type LevelConfig struct {
	Level      int   `gorm:"column:level;primaryKey"`
	XPRequired int64 `gorm:"column:xp_required;not null"`
}

func (LevelConfig) TableName() string {
	return "level_configs"
}

const (
	LevelRewardPoints = "points"
	LevelRewardBadge  = "badge"
)

// LevelReward is granted when a user reaches Level. Points rewards credit the
// ledger; badge rewards insert a UserBadge row.
type LevelReward struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	Level       int    `gorm:"column:level;not null;index"`
	RewardType  string `gorm:"column:reward_type;size:32;not null"`
	RewardValue int64  `gorm:"column:reward_value;not null;default:0"`
	BadgeName   string `gorm:"column:badge_name;size:120"`
	BadgeIcon   string `gorm:"column:badge_icon;size:255"`
	// No gorm default here: it would make gorm skip an explicit false on insert.
	AutoGrant bool `gorm:"column:auto_grant;not null"`
}

func (LevelReward) TableName() string {
	return "level_rewards"
}

type UserBadge struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserUID   string    `gorm:"column:user_uid;size:128;not null;uniqueIndex:idx_user_badge,priority:1"`
	BadgeName string    `gorm:"column:badge_name;size:120;not null;uniqueIndex:idx_user_badge,priority:2"`
	BadgeIcon string    `gorm:"column:badge_icon;size:255"`
	EarnedAt  time.Time `gorm:"autoCreateTime"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
