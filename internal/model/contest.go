package model

import "time"

type Contest struct {
	ID                   uint64    `gorm:"primaryKey;autoIncrement"`
	Title                string    `gorm:"size:120;not null"`
	Theme                string    `gorm:"size:255"`
	EndDate              time.Time `gorm:"column:end_date;not null"`
	PrizePoolDistributed bool      `gorm:"column:prize_pool_distributed;not null;default:false"`
	CreatedAt            time.Time `gorm:"autoCreateTime"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime"`
}

func (Contest) TableName() string {
	return "contests"
}

const (
	EntryStatusPending  = "pending"
	EntryStatusApproved = "approved"
	EntryStatusRejected = "rejected"
)

type Entry struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ContestID uint64    `gorm:"column:contest_id;not null;index"`
	UserUID   string    `gorm:"column:user_uid;size:128;not null;index"`
	Title     string    `gorm:"size:120;not null"`
	Status    string    `gorm:"size:32;not null;default:pending"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Entry) TableName() string {
	return "entries"
}

// ContestWinner rows are written once per contest, all in the settlement
// transaction, and never changed afterwards.
type ContestWinner struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	ContestID     uint64    `gorm:"column:contest_id;not null;uniqueIndex:idx_contest_placement,priority:1"`
	EntryID       uint64    `gorm:"column:entry_id;not null"`
	UserUID       string    `gorm:"column:user_uid;size:128;not null;index"`
	Placement     int       `gorm:"column:placement;not null;uniqueIndex:idx_contest_placement,priority:2"`
	VotesReceived int64     `gorm:"column:votes_received;not null"`
	PrizeAmount   int64     `gorm:"column:prize_amount;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (ContestWinner) TableName() string {
	return "contest_winners"
}
