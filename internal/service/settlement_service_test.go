package service

import (
	"context"
	"testing"
	"time"

	"github.com/shinyyama/contest-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func setupSettlementTest(t *testing.T) (*testEnv, *model.Contest, []*model.Entry) {
	env := newTestEnv(t)
	env.seedLevels(t)
	env.seedRewardConfigs(t)
	for _, uid := range []string{"alice", "bob", "carol", "dave"} {
		env.createUser(t, uid, 0)
	}
	contest := env.createContest(t, 24*time.Hour)
	base := time.Now().Add(-48 * time.Hour)
	entries := []*model.Entry{
		env.createEntry(t, contest.ID, "alice", base),
		env.createEntry(t, contest.ID, "bob", base.Add(time.Hour)),
		env.createEntry(t, contest.ID, "carol", base.Add(2*time.Hour)),
	}
	return env, contest, entries
}

func TestFinalizeDistributesPrizes(t *testing.T) {
	env, contest, entries := setupSettlementTest(t)
	env.addVotes(t, entries[0].ID, 20)
	env.addVotes(t, entries[1].ID, 12)
	env.addVotes(t, entries[2].ID, 8)

	res, err := env.settlement.Finalize(context.Background(), contest.ID)
	require.NoError(t, err)
	require.False(t, res.AlreadyFinalized)
	require.EqualValues(t, 40, res.TotalPool)
	require.Len(t, res.Placements, 3)

	// pool=40: 1st=20 (50%), 2nd=8 (20%), 3rd=4 (10%); 8 points unallocated.
	require.EqualValues(t, 20, res.Placements[0].PrizeAmount)
	require.EqualValues(t, 8, res.Placements[1].PrizeAmount)
	require.EqualValues(t, 4, res.Placements[2].PrizeAmount)

	require.EqualValues(t, 20, env.balance(t, "alice"))
	require.EqualValues(t, 8, env.balance(t, "bob"))
	require.EqualValues(t, 4, env.balance(t, "carol"))

	// Placement XP: 200/150/100.
	require.EqualValues(t, 200, env.user(t, "alice").XP)
	require.EqualValues(t, 150, env.user(t, "bob").XP)
	require.EqualValues(t, 100, env.user(t, "carol").XP)

	var c model.Contest
	require.NoError(t, env.db.First(&c, contest.ID).Error)
	require.True(t, c.PrizePoolDistributed)

	var winners []model.ContestWinner
	require.NoError(t, env.db.Where("contest_id = ?", contest.ID).Order("placement").Find(&winners).Error)
	require.Len(t, winners, 3)
	require.Equal(t, "alice", winners[0].UserUID)
	require.EqualValues(t, 20, winners[0].VotesReceived)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	env, contest, entries := setupSettlementTest(t)
	env.addVotes(t, entries[0].ID, 20)
	env.addVotes(t, entries[1].ID, 12)
	env.addVotes(t, entries[2].ID, 8)
	ctx := context.Background()

	first, err := env.settlement.Finalize(ctx, contest.ID)
	require.NoError(t, err)

	second, err := env.settlement.Finalize(ctx, contest.ID)
	require.NoError(t, err)
	require.True(t, second.AlreadyFinalized)
	require.Equal(t, first.Placements, second.Placements)

	// Nothing was credited twice.
	require.EqualValues(t, 20, env.balance(t, "alice"))
	require.EqualValues(t, 200, env.user(t, "alice").XP)
	var cnt int64
	require.NoError(t, env.db.Model(&model.ContestWinner{}).Where("contest_id = ?", contest.ID).Count(&cnt).Error)
	require.EqualValues(t, 3, cnt)
}

func TestFinalizeTieBreakBySubmissionTime(t *testing.T) {
	env, contest, entries := setupSettlementTest(t)
	// alice and bob tie; alice submitted first and must rank higher.
	env.addVotes(t, entries[0].ID, 10)
	env.addVotes(t, entries[1].ID, 10)
	env.addVotes(t, entries[2].ID, 4)

	res, err := env.settlement.Finalize(context.Background(), contest.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", res.Placements[0].UserUID)
	require.Equal(t, "bob", res.Placements[1].UserUID)
	require.Equal(t, "carol", res.Placements[2].UserUID)
}

func TestFinalizeFewerThanThreeEntries(t *testing.T) {
	env := newTestEnv(t)
	env.seedLevels(t)
	env.seedRewardConfigs(t)
	env.createUser(t, "solo", 0)
	contest := env.createContest(t, time.Hour)
	entry := env.createEntry(t, contest.ID, "solo", time.Time{})
	env.addVotes(t, entry.ID, 6)

	res, err := env.settlement.Finalize(context.Background(), contest.ID)
	require.NoError(t, err)
	require.Len(t, res.Placements, 1)
	require.EqualValues(t, 6, res.TotalPool)
	require.EqualValues(t, 3, res.Placements[0].PrizeAmount)
}

func TestFinalizeNoEntries(t *testing.T) {
	env := newTestEnv(t)
	env.seedLevels(t)
	env.seedRewardConfigs(t)
	contest := env.createContest(t, time.Hour)

	res, err := env.settlement.Finalize(context.Background(), contest.ID)
	require.NoError(t, err)
	require.Empty(t, res.Placements)

	var c model.Contest
	require.NoError(t, env.db.First(&c, contest.ID).Error)
	require.True(t, c.PrizePoolDistributed)
}

func TestFinalizeBeforeEndDate(t *testing.T) {
	env := newTestEnv(t)
	contest := env.createContest(t, -time.Hour) // ends in the future

	_, err := env.settlement.Finalize(context.Background(), contest.ID)
	require.ErrorIs(t, err, ErrContestNotEnded)
}

func TestFinalizeUnknownContest(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.settlement.Finalize(context.Background(), 777)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFinalizeRollsBackOnFailure(t *testing.T) {
	env, contest, entries := setupSettlementTest(t)
	env.addVotes(t, entries[0].ID, 20)
	env.addVotes(t, entries[1].ID, 12)
	env.addVotes(t, entries[2].ID, 8)
	ctx := context.Background()

	// Sabotage the winner insert so the settlement transaction aborts.
	require.NoError(t, env.db.Migrator().DropTable(&model.ContestWinner{}))
	_, err := env.settlement.Finalize(ctx, contest.ID)
	require.Error(t, err)

	// No partial state: no credits, no XP, flag still clear.
	require.EqualValues(t, 0, env.balance(t, "alice"))
	require.EqualValues(t, 0, env.user(t, "alice").XP)
	var c model.Contest
	require.NoError(t, env.db.First(&c, contest.ID).Error)
	require.False(t, c.PrizePoolDistributed)

	// A later finalize succeeds normally.
	require.NoError(t, env.db.AutoMigrate(&model.ContestWinner{}))
	res, err := env.settlement.Finalize(ctx, contest.ID)
	require.NoError(t, err)
	require.EqualValues(t, 40, res.TotalPool)
	require.EqualValues(t, 20, env.balance(t, "alice"))
}
