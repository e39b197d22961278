package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shinyyama/contest-backend/internal/model"
	"github.com/shinyyama/contest-backend/internal/repository"
	"github.com/shinyyama/contest-backend/internal/retry"
	"github.com/shinyyama/contest-backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AwardResult reports what an XP award did. Success=false with a nil error is
// the silent no-op path: unknown/disabled action or a daily limit already
// claimed. Callers must not treat it as failure of the triggering action.
type AwardResult struct {
	Success   bool
	XPAwarded int64
	NewLevel  *int
}

type Progress struct {
	Level              int   `json:"level"`
	XP                 int64 `json:"xp"`
	XPToNextLevel      int64 `json:"xp_to_next_level"`
	ProgressPercentage int   `json:"progress_percentage"`
}

type XPService interface {
	Award(ctx context.Context, userUID, action, referenceID, description string) (*AwardResult, error)
	// AwardInTx runs the award inside an existing transaction and hands back
	// the level rewards to apply after that transaction commits.
	AwardInTx(ctx context.Context, tx *gorm.DB, userUID, action, referenceID, description string) (*AwardResult, []model.LevelReward, error)
	// ApplyLevelRewards grants the pending rewards for a committed level-up.
	// Each grant is best-effort: a failure is logged and skipped, never rolled
	// into the already-durable level change.
	ApplyLevelRewards(ctx context.Context, userUID string, level int, rewards []model.LevelReward)
	GetProgress(ctx context.Context, userUID string) (*Progress, error)
}

type xpService struct {
	db       *gorm.DB
	repo     repository.XPRepository
	users    repository.UserRepository
	ledger   LedgerService
	notifier NotificationService
	attempts int
}

func NewXPService(db *gorm.DB, repo repository.XPRepository, users repository.UserRepository, ledger LedgerService, notifier NotificationService, attempts int) XPService {
	return &xpService{db: db, repo: repo, users: users, ledger: ledger, notifier: notifier, attempts: attempts}
}

func (s *xpService) Award(ctx context.Context, userUID, action, referenceID, description string) (*AwardResult, error) {
	var (
		result *AwardResult
		grants []model.LevelReward
	)
	err := retry.Do(ctx, s.attempts, func() error {
		result, grants = nil, nil
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			result, grants, err = s.AwardInTx(ctx, tx, userUID, action, referenceID, description)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	if result.Success && result.NewLevel != nil {
		s.ApplyLevelRewards(ctx, userUID, *result.NewLevel, grants)
	}
	return result, nil
}

func (s *xpService) AwardInTx(ctx context.Context, tx *gorm.DB, userUID, action, referenceID, description string) (*AwardResult, []model.LevelReward, error) {
	noop := &AwardResult{}
	repo := s.repo.WithTx(tx)

	cfg, err := repo.GetRewardConfig(ctx, action)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return noop, nil, nil
		}
		return nil, nil, err
	}
	if !cfg.Enabled {
		return noop, nil, nil
	}

	if cfg.DailyLimit {
		day := time.Now().Format("2006-01-02")
		claimed, err := repo.ClaimDaily(ctx, userUID, action, day)
		if err != nil {
			return nil, nil, err
		}
		if !claimed {
			return noop, nil, nil
		}
	}

	users := s.users.WithTx(tx)
	u, err := users.Get(ctx, userUID)
	if err != nil {
		return nil, nil, err
	}

	txn := &model.XPTransaction{
		UserUID:     userUID,
		Action:      action,
		XPAmount:    cfg.XPAmount,
		ReferenceID: referenceID,
		Description: description,
	}
	if cfg.OncePerRef && referenceID != "" {
		// The dedup key puts the once-per-reference rule on a unique index
		// instead of a racy existence check.
		ref := referenceID
		txn.DedupKey = &ref
	}
	inserted, err := repo.CreateTransaction(ctx, txn)
	if err != nil {
		return nil, nil, err
	}
	if !inserted {
		return noop, nil, nil
	}

	newXP := u.XP + cfg.XPAmount
	newTotal := u.TotalXP + cfg.XPAmount

	// One pre-fetch of the level table, then the cascade runs in memory.
	level := u.Level
	configs, err := repo.LevelConfigsAbove(ctx, level)
	if err != nil {
		return nil, nil, err
	}
	for _, lc := range configs {
		if lc.Level != level+1 || newXP < lc.XPRequired {
			break
		}
		level = lc.Level
	}

	if err := users.UpdateProgress(ctx, userUID, newXP, newTotal, level); err != nil {
		return nil, nil, err
	}

	result := &AwardResult{Success: true, XPAwarded: cfg.XPAmount}
	var grants []model.LevelReward
	if level > u.Level {
		result.NewLevel = &level
		if grants, err = repo.AutoGrantRewards(ctx, level); err != nil {
			return nil, nil, err
		}
	}
	return result, grants, nil
}

func (s *xpService) ApplyLevelRewards(ctx context.Context, userUID string, level int, rewards []model.LevelReward) {
	for _, rw := range rewards {
		var err error
		switch rw.RewardType {
		case model.LevelRewardPoints:
			err = s.ledger.Credit(ctx, userUID, rw.RewardValue)
		case model.LevelRewardBadge:
			err = s.repo.CreateBadge(ctx, &model.UserBadge{
				UserUID:   userUID,
				BadgeName: rw.BadgeName,
				BadgeIcon: rw.BadgeIcon,
			})
		default:
			logger.WithFields(logrus.Fields{"reward": rw.ID}).Warnf("unknown reward type %q", rw.RewardType)
			continue
		}
		if err != nil {
			// The level-up is already committed; skip the grant and leave an
			// audit line instead of rolling anything back.
			logger.WithFields(logrus.Fields{
				"user":   userUID,
				"level":  level,
				"reward": rw.ID,
			}).Errorf("level reward grant failed: %v", err)
		}
	}
	s.notifier.Notify(ctx, userUID, "level_up",
		fmt.Sprintf("レベル%dに到達しました！", level),
		"おめでとうございます！レベルアップ報酬を確認してください。",
		nil, nil, nil)
}

func (s *xpService) GetProgress(ctx context.Context, userUID string) (*Progress, error) {
	u, err := s.users.Get(ctx, userUID)
	if err != nil {
		return nil, err
	}
	p := &Progress{Level: u.Level, XP: u.XP}

	next, err := s.repo.GetLevelConfig(ctx, u.Level+1)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Max configured level.
			p.ProgressPercentage = 100
			return p, nil
		}
		return nil, err
	}
	var curRequired int64
	if cur, err := s.repo.GetLevelConfig(ctx, u.Level); err == nil {
		curRequired = cur.XPRequired
	}
	p.XPToNextLevel = next.XPRequired - u.XP
	if p.XPToNextLevel < 0 {
		p.XPToNextLevel = 0
	}
	if span := next.XPRequired - curRequired; span > 0 {
		pct := (u.XP - curRequired) * 100 / span
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		p.ProgressPercentage = int(pct)
	}
	return p, nil
}
