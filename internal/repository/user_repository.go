package repository

import (
	"context"

	"github.com/shinyyama/contest-backend/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	Get(ctx context.Context, uid string) (*model.User, error)
	Credit(ctx context.Context, uid string, amount int64) error
	// Debit decrements points_balance only when the balance covers amount,
	// as a single conditional update. It returns gorm.ErrRecordNotFound when
	// the guard fails (insufficient balance or unknown user). spend also
	// advances total_spent.
	Debit(ctx context.Context, uid string, amount int64, spend bool) error
	UpdateProgress(ctx context.Context, uid string, xp, totalXP int64, level int) error
	WithTx(tx *gorm.DB) UserRepository
	SetDB(db *gorm.DB)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Get(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).
		Where(&model.User{UID: uid}).
		Attrs(&model.User{Level: 1}).
		FirstOrCreate(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Credit(ctx context.Context, uid string, amount int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.User
		if err := tx.Where(&model.User{UID: uid}).
			Attrs(&model.User{Level: 1}).
			FirstOrCreate(&u).Error; err != nil {
			return err
		}
		return tx.Model(&u).
			Update("points_balance", gorm.Expr("points_balance + ?", amount)).Error
	})
}

func (r *userRepository) Debit(ctx context.Context, uid string, amount int64, spend bool) error {
	updates := map[string]interface{}{
		"points_balance": gorm.Expr("points_balance - ?", amount),
	}
	if spend {
		updates["total_spent"] = gorm.Expr("total_spent + ?", amount)
	}
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("uid = ? AND points_balance >= ?", uid, amount).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) UpdateProgress(ctx context.Context, uid string, xp, totalXP int64, level int) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("uid = ?", uid).
		Updates(map[string]interface{}{
			"xp":       xp,
			"total_xp": totalXP,
			"level":    level,
		}).Error
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) SetDB(db *gorm.DB) {
	r.db = db
}
