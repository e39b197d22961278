package model

import "time"

// Known XP actions. The catalog is data-driven; these constants only name the
// actions the core itself triggers.
const (
	ActionDailyCheckin  = "daily_checkin"
	ActionSubmitEntry   = "submit_entry"
	ActionGetReaction   = "get_reaction"
	ActionContestFirst  = "contest_first"
	ActionContestSecond = "contest_second"
	ActionContestThird  = "contest_third"
)

// XPRewardConfig is a catalog row mapping an action to its XP amount.
// DailyLimit marks actions that may only be awarded once per calendar day;
// OncePerRef marks actions that may only be awarded once per reference id.
// The bool columns carry no gorm defaults: a default tag makes gorm skip the
// zero value on insert, silently turning an explicit false into the default.
type XPRewardConfig struct {
	Action     string    `gorm:"column:action;primaryKey;size:64"`
	XPAmount   int64     `gorm:"column:xp_amount;not null"`
	DailyLimit bool      `gorm:"column:daily_limit;not null"`
	OncePerRef bool      `gorm:"column:once_per_ref;not null"`
	Enabled    bool      `gorm:"column:enabled;not null"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (XPRewardConfig) TableName() string {
	return "xp_reward_configs"
}
