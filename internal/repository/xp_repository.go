package repository

import (
	"context"

	"github.com/shinyyama/contest-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type XPRepository interface {
	GetRewardConfig(ctx context.Context, action string) (*model.XPRewardConfig, error)
	// ClaimDaily inserts the dedup row for (user, action, day). It returns
	// false when the row already exists, which means the action was awarded
	// earlier the same day — possibly by a concurrent request.
	ClaimDaily(ctx context.Context, userUID, action, day string) (bool, error)
	// CreateTransaction appends an audit row. It returns false when the row
	// carries a dedup key that already exists, which means a concurrent
	// request awarded the same reference first.
	CreateTransaction(ctx context.Context, txn *model.XPTransaction) (bool, error)
	LevelConfigsAbove(ctx context.Context, level int) ([]model.LevelConfig, error)
	GetLevelConfig(ctx context.Context, level int) (*model.LevelConfig, error)
	AutoGrantRewards(ctx context.Context, level int) ([]model.LevelReward, error)
	CreateBadge(ctx context.Context, b *model.UserBadge) error
	WithTx(tx *gorm.DB) XPRepository
	SetDB(db *gorm.DB)
}

type xpRepository struct {
	db *gorm.DB
}

func NewXPRepository(db *gorm.DB) XPRepository {
	return &xpRepository{db: db}
}

func (r *xpRepository) GetRewardConfig(ctx context.Context, action string) (*model.XPRewardConfig, error) {
	var cfg model.XPRewardConfig
	if err := r.db.WithContext(ctx).
		Where("action = ?", action).
		First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *xpRepository) ClaimDaily(ctx context.Context, userUID, action, day string) (bool, error) {
	claim := model.DailyXPClaim{UserUID: userUID, Action: action, ClaimDate: day}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&claim)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *xpRepository) CreateTransaction(ctx context.Context, txn *model.XPTransaction) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(txn)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// LevelConfigsAbove fetches every level above the given one in a single query
// so the level-up cascade never goes back to the database per iteration.
func (r *xpRepository) LevelConfigsAbove(ctx context.Context, level int) ([]model.LevelConfig, error) {
	var configs []model.LevelConfig
	if err := r.db.WithContext(ctx).
		Where("level > ?", level).
		Order("level ASC").
		Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *xpRepository) GetLevelConfig(ctx context.Context, level int) (*model.LevelConfig, error) {
	var cfg model.LevelConfig
	if err := r.db.WithContext(ctx).
		Where("level = ?", level).
		First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *xpRepository) AutoGrantRewards(ctx context.Context, level int) ([]model.LevelReward, error) {
	var rewards []model.LevelReward
	if err := r.db.WithContext(ctx).
		Where("level = ? AND auto_grant = ?", level, true).
		Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *xpRepository) CreateBadge(ctx context.Context, b *model.UserBadge) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(b).Error
}

func (r *xpRepository) WithTx(tx *gorm.DB) XPRepository {
	return &xpRepository{db: tx}
}

func (r *xpRepository) SetDB(db *gorm.DB) {
	r.db = db
}
