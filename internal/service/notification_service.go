package service

import (
	"context"

	"github.com/shinyyama/contest-backend/internal/model"
	"github.com/shinyyama/contest-backend/internal/repository"
	"github.com/shinyyama/contest-backend/pkg/logger"
	"github.com/sirupsen/logrus"
)

type NotificationService interface {
	Notify(ctx context.Context, userUID, typ, title, body string, entryID, contestID, withdrawalID *uint64)
	List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, userUID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// Notify is fire-and-forget; delivery failure never fails the calling flow.
func (s *notificationService) Notify(ctx context.Context, userUID, typ, title, body string, entryID, contestID, withdrawalID *uint64) {
	if userUID == "" || typ == "" {
		return
	}
	n := &model.Notification{
		UserUID:      userUID,
		Type:         typ,
		Title:        title,
		Body:         body,
		EntryID:      entryID,
		ContestID:    contestID,
		WithdrawalID: withdrawalID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		logger.WithFields(logrus.Fields{
			"user": userUID,
			"type": typ,
		}).Warnf("notification dropped: %v", err)
	}
}

func (s *notificationService) List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userUID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userUID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userUID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userUID string) error {
	if userUID == "" {
		return nil
	}
	return s.repo.MarkAllRead(ctx, userUID)
}
