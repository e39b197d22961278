package model

import "time"

// DailyXPClaim blocks a daily-limited action from being awarded twice on the
// same calendar day. ClaimDate is the day in YYYY-MM-DD form; the unique index
// is what makes the claim race-safe under concurrent requests.
type DailyXPClaim struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserUID   string    `gorm:"column:user_uid;size:128;not null;uniqueIndex:idx_user_action_day,priority:1"`
	Action    string    `gorm:"column:action;size:64;not null;uniqueIndex:idx_user_action_day,priority:2"`
	ClaimDate string    `gorm:"column:claim_date;size:10;not null;uniqueIndex:idx_user_action_day,priority:3"`
	ClaimedAt time.Time `gorm:"autoCreateTime"`
}

func (DailyXPClaim) TableName() string {
	return "daily_xp_claims"
}
