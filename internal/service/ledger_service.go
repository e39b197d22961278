package service

import (
	"context"
	"errors"

	"github.com/shinyyama/contest-backend/internal/repository"
	"gorm.io/gorm"
)

// LedgerService is the single mutation path for a user's spendable points.
// Debit performs the balance check and the decrement as one conditional update
// at the persistence layer, so concurrent debits cannot both pass a stale
// read. Neither operation returns the new balance; callers re-read.
type LedgerService interface {
	Credit(ctx context.Context, uid string, amount int64) error
	Debit(ctx context.Context, uid string, amount int64, spend bool) error
	Balance(ctx context.Context, uid string) (int64, error)
	WithTx(tx *gorm.DB) LedgerService
}

type ledgerService struct {
	repo repository.UserRepository
}

func NewLedgerService(repo repository.UserRepository) LedgerService {
	return &ledgerService{repo: repo}
}

func (s *ledgerService) Credit(ctx context.Context, uid string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.repo.Credit(ctx, uid, amount)
}

func (s *ledgerService) Debit(ctx context.Context, uid string, amount int64, spend bool) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := s.repo.Debit(ctx, uid, amount, spend); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInsufficientBalance
		}
		return err
	}
	return nil
}

func (s *ledgerService) Balance(ctx context.Context, uid string) (int64, error) {
	u, err := s.repo.Get(ctx, uid)
	if err != nil {
		return 0, err
	}
	return u.PointsBalance, nil
}

func (s *ledgerService) WithTx(tx *gorm.DB) LedgerService {
	return &ledgerService{repo: s.repo.WithTx(tx)}
}
