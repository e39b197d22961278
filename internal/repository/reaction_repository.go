package repository

import (
	"context"

	"github.com/shinyyama/contest-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReactionRepository interface {
	Find(ctx context.Context, entryID uint64, userUID string) (*model.Reaction, error)
	// Insert creates the reaction unless the (entry, user) row already exists.
	// The second return value is false when the unique index absorbed the
	// insert, i.e. a concurrent request won the race.
	Insert(ctx context.Context, re *model.Reaction) (bool, error)
	UpdateType(ctx context.Context, id uint64, typ string) error
	Delete(ctx context.Context, entryID uint64, userUID string) (int64, error)
	CountByEntry(ctx context.Context, entryID uint64) (int64, error)
	CountByEntries(ctx context.Context, entryIDs []uint64) (map[uint64]int64, error)
	WithTx(tx *gorm.DB) ReactionRepository
	SetDB(db *gorm.DB)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Find(ctx context.Context, entryID uint64, userUID string) (*model.Reaction, error) {
	var re model.Reaction
	if err := r.db.WithContext(ctx).
		Where("entry_id = ? AND user_uid = ?", entryID, userUID).
		First(&re).Error; err != nil {
		return nil, err
	}
	return &re, nil
}

func (r *reactionRepository) Insert(ctx context.Context, re *model.Reaction) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(re)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *reactionRepository) UpdateType(ctx context.Context, id uint64, typ string) error {
	return r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Where("id = ?", id).
		Update("type", typ).Error
}

func (r *reactionRepository) Delete(ctx context.Context, entryID uint64, userUID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("entry_id = ? AND user_uid = ?", entryID, userUID).
		Delete(&model.Reaction{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *reactionRepository) CountByEntry(ctx context.Context, entryID uint64) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Where("entry_id = ?", entryID).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *reactionRepository) CountByEntries(ctx context.Context, entryIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(entryIDs))
	if len(entryIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		EntryID uint64
		Votes   int64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Select("entry_id, COUNT(*) AS votes").
		Where("entry_id IN ?", entryIDs).
		Group("entry_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.EntryID] = row.Votes
	}
	return counts, nil
}

func (r *reactionRepository) WithTx(tx *gorm.DB) ReactionRepository {
	return &reactionRepository{db: tx}
}

func (r *reactionRepository) SetDB(db *gorm.DB) {
	r.db = db
}
