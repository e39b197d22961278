package repository

import (
	"context"
	"time"

	"github.com/shinyyama/contest-backend/internal/model"
	"gorm.io/gorm"
)

type WithdrawalRepository interface {
	Create(ctx context.Context, w *model.Withdrawal) error
	FindByID(ctx context.Context, id uint64) (*model.Withdrawal, error)
	ListByUser(ctx context.Context, userUID string) ([]model.Withdrawal, error)
	// MarkProcessedIfPending moves a pending request to the given terminal
	// status. Zero rows affected means the request was not pending anymore.
	MarkProcessedIfPending(ctx context.Context, id uint64, status, adminNotes, transactionID string) (int64, error)
	WithTx(tx *gorm.DB) WithdrawalRepository
	SetDB(db *gorm.DB)
}

type withdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

func (r *withdrawalRepository) Create(ctx context.Context, w *model.Withdrawal) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *withdrawalRepository) FindByID(ctx context.Context, id uint64) (*model.Withdrawal, error) {
	var w model.Withdrawal
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *withdrawalRepository) ListByUser(ctx context.Context, userUID string) ([]model.Withdrawal, error) {
	var list []model.Withdrawal
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", userUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *withdrawalRepository) MarkProcessedIfPending(ctx context.Context, id uint64, status, adminNotes, transactionID string) (int64, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":       status,
		"processed_at": now,
		"admin_notes":  adminNotes,
	}
	if transactionID != "" {
		updates["transaction_id"] = transactionID
	}
	res := r.db.WithContext(ctx).
		Model(&model.Withdrawal{}).
		Where("id = ? AND status = ?", id, model.WithdrawalStatusPending).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *withdrawalRepository) WithTx(tx *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: tx}
}

func (r *withdrawalRepository) SetDB(db *gorm.DB) {
	r.db = db
}
