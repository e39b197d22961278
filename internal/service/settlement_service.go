package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shinyyama/contest-backend/internal/model"
	"github.com/shinyyama/contest-backend/internal/repository"
	"github.com/shinyyama/contest-backend/internal/retry"
	"github.com/shinyyama/contest-backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Prize shares in percent per placement. The remaining 20% of the pool (plus
// flooring remainders) is deliberately left unallocated; see DESIGN.md.
var prizeShares = [3]int64{50, 20, 10}

var placementActions = [3]string{
	model.ActionContestFirst,
	model.ActionContestSecond,
	model.ActionContestThird,
}

type Placement struct {
	Placement   int    `json:"placement"`
	EntryID     uint64 `json:"entry_id"`
	UserUID     string `json:"user_uid"`
	Votes       int64  `json:"votes"`
	PrizeAmount int64  `json:"prize_amount"`
}

type SettlementResult struct {
	AlreadyFinalized bool        `json:"already_finalized"`
	Placements       []Placement `json:"placements"`
	TotalPool        int64       `json:"total_pool"`
}

// SettlementService finalizes a contest: tallies votes, picks the top three
// approved entries, credits prizes and awards placement XP, all in one
// transaction guarded by the prize_pool_distributed flag so the distribution
// runs at most once no matter how many finalize calls race.
type SettlementService interface {
	Finalize(ctx context.Context, contestID uint64) (*SettlementResult, error)
	Winners(ctx context.Context, contestID uint64) ([]model.ContestWinner, error)
}

type settlementService struct {
	db        *gorm.DB
	contests  repository.ContestRepository
	reactions repository.ReactionRepository
	ledger    LedgerService
	xp        XPService
	notifier  NotificationService
	attempts  int
}

func NewSettlementService(db *gorm.DB, contests repository.ContestRepository, reactions repository.ReactionRepository, ledger LedgerService, xp XPService, notifier NotificationService, attempts int) SettlementService {
	return &settlementService{db: db, contests: contests, reactions: reactions, ledger: ledger, xp: xp, notifier: notifier, attempts: attempts}
}

var errAlreadyClaimed = errors.New("already claimed")

type pendingGrant struct {
	userUID string
	level   int
	rewards []model.LevelReward
}

func (s *settlementService) Finalize(ctx context.Context, contestID uint64) (*SettlementResult, error) {
	contest, err := s.contests.FindByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if contest.EndDate.After(time.Now()) {
		return nil, ErrContestNotEnded
	}
	if contest.PrizePoolDistributed {
		return s.existingResult(ctx, contestID)
	}

	var (
		result *SettlementResult
		grants []pendingGrant
	)
	err = retry.Do(ctx, s.attempts, func() error {
		result, grants = nil, nil
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			result, grants, err = s.settle(ctx, tx, contestID)
			return err
		})
	})
	if errors.Is(err, errAlreadyClaimed) {
		// Another finalize won the race; report its outcome.
		return s.existingResult(ctx, contestID)
	}
	if err != nil {
		return nil, err
	}

	for _, g := range grants {
		s.xp.ApplyLevelRewards(ctx, g.userUID, g.level, g.rewards)
	}
	for _, p := range result.Placements {
		cid := contestID
		s.notifier.Notify(ctx, p.UserUID, "contest_prize",
			fmt.Sprintf("コンテストで%d位に入賞しました！", p.Placement),
			fmt.Sprintf("%dポイントの賞金が付与されました。", p.PrizeAmount),
			nil, &cid, nil)
	}
	logger.WithFields(logrus.Fields{
		"contest": contestID,
		"winners": len(result.Placements),
		"pool":    result.TotalPool,
	}).Info("contest settled")
	return result, nil
}

// settle runs entirely inside tx. The flag claim is the first statement, so a
// concurrent finalize serializes on the contest row and exactly one
// transaction distributes prizes.
func (s *settlementService) settle(ctx context.Context, tx *gorm.DB, contestID uint64) (*SettlementResult, []pendingGrant, error) {
	contests := s.contests.WithTx(tx)

	claimed, err := contests.ClaimDistribution(ctx, contestID)
	if err != nil {
		return nil, nil, err
	}
	if claimed == 0 {
		return nil, nil, errAlreadyClaimed
	}

	entries, err := contests.ApprovedEntries(ctx, contestID)
	if err != nil {
		return nil, nil, err
	}
	if len(entries) == 0 {
		// Nothing to rank; the contest is simply marked finalized.
		return &SettlementResult{Placements: []Placement{}}, nil, nil
	}

	ids := make([]uint64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	votes, err := s.reactions.WithTx(tx).CountByEntries(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	// Entries arrive ordered by submission time; the stable sort keeps that
	// order as the tie-break for equal vote counts.
	ranked := make([]model.Entry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return votes[ranked[i].ID] > votes[ranked[j].ID]
	})
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}

	var pool int64
	for _, e := range ranked {
		pool += votes[e.ID]
	}

	ledger := s.ledger.WithTx(tx)
	winners := make([]model.ContestWinner, 0, len(ranked))
	placements := make([]Placement, 0, len(ranked))
	var grants []pendingGrant

	for i, e := range ranked {
		prize := pool * prizeShares[i] / 100
		if prize > 0 {
			if err := ledger.Credit(ctx, e.UserUID, prize); err != nil {
				return nil, nil, err
			}
		}
		winners = append(winners, model.ContestWinner{
			ContestID:     contestID,
			EntryID:       e.ID,
			UserUID:       e.UserUID,
			Placement:     i + 1,
			VotesReceived: votes[e.ID],
			PrizeAmount:   prize,
		})
		placements = append(placements, Placement{
			Placement:   i + 1,
			EntryID:     e.ID,
			UserUID:     e.UserUID,
			Votes:       votes[e.ID],
			PrizeAmount: prize,
		})

		res, rewards, err := s.xp.AwardInTx(ctx, tx, e.UserUID, placementActions[i],
			fmt.Sprintf("contest:%d", contestID),
			fmt.Sprintf("placed #%d in contest %d", i+1, contestID))
		if err != nil {
			return nil, nil, err
		}
		if res.Success && res.NewLevel != nil {
			grants = append(grants, pendingGrant{userUID: e.UserUID, level: *res.NewLevel, rewards: rewards})
		}
	}

	if err := contests.CreateWinners(ctx, winners); err != nil {
		return nil, nil, err
	}
	return &SettlementResult{Placements: placements, TotalPool: pool}, grants, nil
}

func (s *settlementService) existingResult(ctx context.Context, contestID uint64) (*SettlementResult, error) {
	winners, err := s.contests.WinnersByContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	result := &SettlementResult{AlreadyFinalized: true, Placements: make([]Placement, 0, len(winners))}
	for _, w := range winners {
		result.Placements = append(result.Placements, Placement{
			Placement:   w.Placement,
			EntryID:     w.EntryID,
			UserUID:     w.UserUID,
			Votes:       w.VotesReceived,
			PrizeAmount: w.PrizeAmount,
		})
		result.TotalPool += w.VotesReceived
	}
	return result, nil
}

func (s *settlementService) Winners(ctx context.Context, contestID uint64) ([]model.ContestWinner, error) {
	return s.contests.WinnersByContest(ctx, contestID)
}
