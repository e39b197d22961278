package model

import "time"

const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionWow   = "wow"
	ReactionLaugh = "laugh"
)

func ValidReactionType(t string) bool {
	switch t {
	case ReactionLike, ReactionLove, ReactionWow, ReactionLaugh:
		return true
	}
	return false
}

// Reaction is one user's reaction to one entry. The unique index keeps it to a
// single row per (entry, user); changing the type updates the row in place.
type Reaction struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	EntryID   uint64    `gorm:"column:entry_id;not null;uniqueIndex:idx_entry_user,priority:1"`
	UserUID   string    `gorm:"column:user_uid;size:128;not null;uniqueIndex:idx_entry_user,priority:2"`
	Type      string    `gorm:"column:type;size:32;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Reaction) TableName() string {
	return "reactions"
}
