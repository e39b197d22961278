package repository

import (
	"context"

	"github.com/shinyyama/contest-backend/internal/model"
	"gorm.io/gorm"
)

type ContestRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.Contest, error)
	// ClaimDistribution flips prize_pool_distributed from false to true as one
	// conditional update. Zero rows affected means another finalize already
	// claimed the contest (or it does not exist).
	ClaimDistribution(ctx context.Context, id uint64) (int64, error)
	ApprovedEntries(ctx context.Context, contestID uint64) ([]model.Entry, error)
	FindEntry(ctx context.Context, entryID uint64) (*model.Entry, error)
	CreateWinners(ctx context.Context, winners []model.ContestWinner) error
	WinnersByContest(ctx context.Context, contestID uint64) ([]model.ContestWinner, error)
	WithTx(tx *gorm.DB) ContestRepository
	SetDB(db *gorm.DB)
}

type contestRepository struct {
	db *gorm.DB
}

func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

func (r *contestRepository) FindByID(ctx context.Context, id uint64) (*model.Contest, error) {
	var c model.Contest
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contestRepository) ClaimDistribution(ctx context.Context, id uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Contest{}).
		Where("id = ? AND prize_pool_distributed = ?", id, false).
		Update("prize_pool_distributed", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *contestRepository) ApprovedEntries(ctx context.Context, contestID uint64) ([]model.Entry, error) {
	var entries []model.Entry
	if err := r.db.WithContext(ctx).
		Where("contest_id = ? AND status = ?", contestID, model.EntryStatusApproved).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *contestRepository) FindEntry(ctx context.Context, entryID uint64) (*model.Entry, error) {
	var e model.Entry
	if err := r.db.WithContext(ctx).First(&e, entryID).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *contestRepository) CreateWinners(ctx context.Context, winners []model.ContestWinner) error {
	if len(winners) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&winners).Error
}

func (r *contestRepository) WinnersByContest(ctx context.Context, contestID uint64) ([]model.ContestWinner, error) {
	var winners []model.ContestWinner
	if err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("placement ASC").
		Find(&winners).Error; err != nil {
		return nil, err
	}
	return winners, nil
}

func (r *contestRepository) WithTx(tx *gorm.DB) ContestRepository {
	return &contestRepository{db: tx}
}

func (r *contestRepository) SetDB(db *gorm.DB) {
	r.db = db
}
