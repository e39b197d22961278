package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shinyyama/contest-backend/internal/model"
	"github.com/shinyyama/contest-backend/internal/repository"
	"github.com/shinyyama/contest-backend/internal/retry"
	"github.com/shinyyama/contest-backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	ReactionStateNone    = "none"
	ReactionStateReacted = "reacted"
)

// errReactionRace marks an insert that lost to a concurrent request. The
// surrounding transaction rolls the debit back, so the caller only has to
// report the existing reaction.
var errReactionRace = errors.New("reaction already exists")

type ReactionState struct {
	State   string `json:"state"`
	Type    string `json:"type,omitempty"`
	Balance int64  `json:"balance"`
}

// ReactionService maps a user's reaction on an entry to ledger movements:
// reacting costs one point, unreacting refunds it, switching type is free.
type ReactionService interface {
	Toggle(ctx context.Context, entryID uint64, userUID, typ string) (*ReactionState, error)
	Remove(ctx context.Context, entryID uint64, userUID string) (*ReactionState, error)
}

type reactionService struct {
	db        *gorm.DB
	reactions repository.ReactionRepository
	contests  repository.ContestRepository
	ledger    LedgerService
	xp        XPService
	cost      int64
	attempts  int
}

func NewReactionService(db *gorm.DB, reactions repository.ReactionRepository, contests repository.ContestRepository, ledger LedgerService, xp XPService, cost int64, attempts int) ReactionService {
	if cost <= 0 {
		cost = 1
	}
	return &reactionService{db: db, reactions: reactions, contests: contests, ledger: ledger, xp: xp, cost: cost, attempts: attempts}
}

func (s *reactionService) Toggle(ctx context.Context, entryID uint64, userUID, typ string) (*ReactionState, error) {
	if !model.ValidReactionType(typ) {
		return nil, ErrInvalidReactionType
	}
	entry, err := s.contests.FindEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	existing, err := s.reactions.Find(ctx, entryID, userUID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		if existing.Type == typ {
			return s.remove(ctx, entryID, userUID)
		}
		// Changing the reaction flavor has no ledger effect.
		if err := retry.Do(ctx, s.attempts, func() error {
			return s.reactions.UpdateType(ctx, existing.ID, typ)
		}); err != nil {
			return nil, err
		}
		return s.state(ctx, userUID, ReactionStateReacted, typ)
	}

	// The debit and the reaction row commit together or not at all.
	err = retry.Do(ctx, s.attempts, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.ledger.WithTx(tx).Debit(ctx, userUID, s.cost, true); err != nil {
				if errors.Is(err, ErrInsufficientBalance) {
					return retry.Permanent{Err: err}
				}
				return err
			}
			inserted, err := s.reactions.WithTx(tx).Insert(ctx, &model.Reaction{
				EntryID: entryID,
				UserUID: userUID,
				Type:    typ,
			})
			if err != nil {
				return err
			}
			if !inserted {
				return retry.Permanent{Err: errReactionRace}
			}
			return nil
		})
	})
	if errors.Is(err, errReactionRace) {
		return s.state(ctx, userUID, ReactionStateReacted, typ)
	}
	if err != nil {
		return nil, err
	}

	s.awardOwnerXP(ctx, entry, userUID)
	return s.state(ctx, userUID, ReactionStateReacted, typ)
}

func (s *reactionService) Remove(ctx context.Context, entryID uint64, userUID string) (*ReactionState, error) {
	return s.remove(ctx, entryID, userUID)
}

func (s *reactionService) remove(ctx context.Context, entryID uint64, userUID string) (*ReactionState, error) {
	err := retry.Do(ctx, s.attempts, func() error {
		// The row delete and the refund commit together or not at all.
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			rows, err := s.reactions.WithTx(tx).Delete(ctx, entryID, userUID)
			if err != nil {
				return err
			}
			if rows == 0 {
				return retry.Permanent{Err: ErrNotFound}
			}
			// Full refund regardless of reaction type.
			return s.ledger.WithTx(tx).Credit(ctx, userUID, s.cost)
		})
	})
	if err != nil {
		return nil, err
	}
	return s.state(ctx, userUID, ReactionStateNone, "")
}

// awardOwnerXP grants get_reaction XP to the entry owner the first time this
// actor reacts to the entry. Re-reacting after an unreact does not pay again;
// the award's dedup index makes the repeat a silent no-op.
func (s *reactionService) awardOwnerXP(ctx context.Context, entry *model.Entry, actorUID string) {
	if entry.UserUID == "" || entry.UserUID == actorUID {
		return
	}
	ref := fmt.Sprintf("entry:%d:actor:%s", entry.ID, actorUID)
	if _, err := s.xp.Award(ctx, entry.UserUID, model.ActionGetReaction, ref, "entry received a reaction"); err != nil {
		logger.WithFields(logrus.Fields{
			"entry": entry.ID,
			"owner": entry.UserUID,
		}).Warnf("reaction XP award failed: %v", err)
	}
}

func (s *reactionService) state(ctx context.Context, userUID, state, typ string) (*ReactionState, error) {
	balance, err := s.ledger.Balance(ctx, userUID)
	if err != nil {
		return nil, err
	}
	return &ReactionState{State: state, Type: typ, Balance: balance}, nil
}
