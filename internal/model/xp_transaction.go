package model

import "time"

// XPTransaction is the append-only audit row written for every successful XP
// award. Rows are never updated or deleted.
//
// DedupKey is set only for once-per-reference actions. It is nullable so the
// unique index never fires for actions without it (NULLs do not collide in
// MySQL or SQLite unique indexes).
type XPTransaction struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	UserUID     string    `gorm:"column:user_uid;size:128;not null;index;uniqueIndex:idx_award_dedup,priority:1"`
	Action      string    `gorm:"column:action;size:64;not null;index;uniqueIndex:idx_award_dedup,priority:2"`
	XPAmount    int64     `gorm:"column:xp_amount;not null"`
	ReferenceID string    `gorm:"column:reference_id;size:128;index"`
	DedupKey    *string   `gorm:"column:dedup_key;size:128;uniqueIndex:idx_award_dedup,priority:3"`
	Description string    `gorm:"column:description;size:255"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (XPTransaction) TableName() string {
	return "xp_transactions"
}
