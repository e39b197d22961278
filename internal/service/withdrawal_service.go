package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shinyyama/contest-backend/internal/model"
	"github.com/shinyyama/contest-backend/internal/repository"
	"github.com/shinyyama/contest-backend/internal/retry"
	"gorm.io/gorm"
)

type WithdrawalReceipt struct {
	WithdrawalID uint64 `json:"withdrawal_id"`
	NewBalance   int64  `json:"new_balance"`
}

// WithdrawalService escrows points against a payout request. The debit and
// the request row are one transaction; rejection credits the escrow back.
type WithdrawalService interface {
	Request(ctx context.Context, userUID string, amount int64, paymentMethod, paymentDetails string) (*WithdrawalReceipt, error)
	Complete(ctx context.Context, id uint64, adminNotes, transactionID string) (*model.Withdrawal, error)
	Reject(ctx context.Context, id uint64, adminNotes string) (*model.Withdrawal, error)
	ListByUser(ctx context.Context, userUID string) ([]model.Withdrawal, error)
}

type withdrawalService struct {
	db        *gorm.DB
	repo      repository.WithdrawalRepository
	ledger    LedgerService
	notifier  NotificationService
	minAmount int64
	attempts  int
}

func NewWithdrawalService(db *gorm.DB, repo repository.WithdrawalRepository, ledger LedgerService, notifier NotificationService, minAmount int64, attempts int) WithdrawalService {
	return &withdrawalService{db: db, repo: repo, ledger: ledger, notifier: notifier, minAmount: minAmount, attempts: attempts}
}

func (s *withdrawalService) Request(ctx context.Context, userUID string, amount int64, paymentMethod, paymentDetails string) (*WithdrawalReceipt, error) {
	if amount < s.minAmount {
		return nil, ErrBelowMinimum
	}
	if !model.ValidPaymentMethod(paymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	w := &model.Withdrawal{
		UserUID:        userUID,
		Amount:         amount,
		PointsDeducted: amount,
		PaymentMethod:  paymentMethod,
		PaymentDetails: paymentDetails,
		Status:         model.WithdrawalStatusPending,
		TransactionID:  uuid.NewString(),
	}
	err := retry.Do(ctx, s.attempts, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.ledger.WithTx(tx).Debit(ctx, userUID, amount, true); err != nil {
				if errors.Is(err, ErrInsufficientBalance) {
					return retry.Permanent{Err: err}
				}
				return err
			}
			w.ID = 0
			return s.repo.WithTx(tx).Create(ctx, w)
		})
	})
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.Balance(ctx, userUID)
	if err != nil {
		return nil, err
	}
	wid := w.ID
	s.notifier.Notify(ctx, userUID, "withdrawal_requested",
		"換金申請を受け付けました",
		fmt.Sprintf("%dポイントを換金申請しました。審査完了までお待ちください。", amount),
		nil, nil, &wid)
	return &WithdrawalReceipt{WithdrawalID: w.ID, NewBalance: balance}, nil
}

func (s *withdrawalService) Complete(ctx context.Context, id uint64, adminNotes, transactionID string) (*model.Withdrawal, error) {
	w, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.MarkProcessedIfPending(ctx, id, model.WithdrawalStatusCompleted, adminNotes, transactionID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotPending
	}
	wid := w.ID
	s.notifier.Notify(ctx, w.UserUID, "withdrawal_completed",
		"換金が完了しました",
		fmt.Sprintf("%dポイント分の支払いが完了しました。", w.Amount),
		nil, nil, &wid)
	return s.find(ctx, id)
}

// Reject returns the escrowed points in the same transaction that closes the
// request, so the user never ends up with neither a payout nor a balance.
func (s *withdrawalService) Reject(ctx context.Context, id uint64, adminNotes string) (*model.Withdrawal, error) {
	w, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	err = retry.Do(ctx, s.attempts, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			rows, err := s.repo.WithTx(tx).MarkProcessedIfPending(ctx, id, model.WithdrawalStatusRejected, adminNotes, "")
			if err != nil {
				return err
			}
			if rows == 0 {
				return retry.Permanent{Err: ErrNotPending}
			}
			return s.ledger.WithTx(tx).Credit(ctx, w.UserUID, w.PointsDeducted)
		})
	})
	if err != nil {
		return nil, err
	}
	wid := w.ID
	s.notifier.Notify(ctx, w.UserUID, "withdrawal_rejected",
		"換金申請が却下されました",
		fmt.Sprintf("%dポイントを残高に返却しました。", w.PointsDeducted),
		nil, nil, &wid)
	return s.find(ctx, id)
}

func (s *withdrawalService) ListByUser(ctx context.Context, userUID string) ([]model.Withdrawal, error) {
	if userUID == "" {
		return nil, errors.New("user is required")
	}
	return s.repo.ListByUser(ctx, userUID)
}

func (s *withdrawalService) find(ctx context.Context, id uint64) (*model.Withdrawal, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return w, nil
}
