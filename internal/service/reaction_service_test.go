package service

import (
	"context"
	"testing"
	"time"

	"github.com/shinyyama/contest-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func setupReactionTest(t *testing.T) (*testEnv, *model.Entry) {
	env := newTestEnv(t)
	env.seedLevels(t)
	env.seedRewardConfigs(t)
	env.createUser(t, "owner", 0)
	env.createUser(t, "fan", 5)
	contest := env.createContest(t, -24*time.Hour)
	entry := env.createEntry(t, contest.ID, "owner", time.Time{})
	return env, entry
}

func TestReactionRoundTrip(t *testing.T) {
	env, entry := setupReactionTest(t)
	ctx := context.Background()

	st, err := env.reactions.Toggle(ctx, entry.ID, "fan", model.ReactionLike)
	require.NoError(t, err)
	require.Equal(t, ReactionStateReacted, st.State)
	require.EqualValues(t, 4, st.Balance)

	st, err = env.reactions.Remove(ctx, entry.ID, "fan")
	require.NoError(t, err)
	require.Equal(t, ReactionStateNone, st.State)
	require.EqualValues(t, 5, st.Balance)

	var cnt int64
	require.NoError(t, env.db.Model(&model.Reaction{}).Count(&cnt).Error)
	require.EqualValues(t, 0, cnt)
}

func TestReactionRemoveRollsBackWhenRefundFails(t *testing.T) {
	env, entry := setupReactionTest(t)
	ctx := context.Background()

	_, err := env.reactions.Toggle(ctx, entry.ID, "fan", model.ReactionLike)
	require.NoError(t, err)

	// Break the refund path so the delete-and-credit transaction cannot
	// commit. The reaction row must survive the rollback.
	require.NoError(t, env.db.Migrator().DropTable(&model.User{}))
	_, err = env.reactions.Remove(ctx, entry.ID, "fan")
	require.Error(t, err)

	var cnt int64
	require.NoError(t, env.db.Model(&model.Reaction{}).
		Where("entry_id = ? AND user_uid = ?", entry.ID, "fan").
		Count(&cnt).Error)
	require.EqualValues(t, 1, cnt)
}

func TestReactionTypeChangeIsFree(t *testing.T) {
	env, entry := setupReactionTest(t)
	ctx := context.Background()

	_, err := env.reactions.Toggle(ctx, entry.ID, "fan", model.ReactionLike)
	require.NoError(t, err)
	require.EqualValues(t, 4, env.balance(t, "fan"))

	st, err := env.reactions.Toggle(ctx, entry.ID, "fan", model.ReactionLove)
	require.NoError(t, err)
	require.Equal(t, ReactionStateReacted, st.State)
	require.Equal(t, model.ReactionLove, st.Type)
	require.EqualValues(t, 4, st.Balance)

	var re model.Reaction
	require.NoError(t, env.db.Where("entry_id = ? AND user_uid = ?", entry.ID, "fan").First(&re).Error)
	require.Equal(t, model.ReactionLove, re.Type)
}

func TestReactionToggleSameTypeRemoves(t *testing.T) {
	env, entry := setupReactionTest(t)
	ctx := context.Background()

	_, err := env.reactions.Toggle(ctx, entry.ID, "fan", model.ReactionLike)
	require.NoError(t, err)

	st, err := env.reactions.Toggle(ctx, entry.ID, "fan", model.ReactionLike)
	require.NoError(t, err)
	require.Equal(t, ReactionStateNone, st.State)
	require.EqualValues(t, 5, st.Balance)
}

func TestReactionInsufficientBalance(t *testing.T) {
	env, entry := setupReactionTest(t)
	ctx := context.Background()
	env.createUser(t, "broke", 0)

	_, err := env.reactions.Toggle(ctx, entry.ID, "broke", model.ReactionLike)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	require.EqualValues(t, 0, env.balance(t, "broke"))
	var cnt int64
	require.NoError(t, env.db.Model(&model.Reaction{}).Where("user_uid = ?", "broke").Count(&cnt).Error)
	require.EqualValues(t, 0, cnt)
}

func TestReactionInvalidType(t *testing.T) {
	env, entry := setupReactionTest(t)
	_, err := env.reactions.Toggle(context.Background(), entry.ID, "fan", "sparkle")
	require.ErrorIs(t, err, ErrInvalidReactionType)
}

func TestReactionUnknownEntry(t *testing.T) {
	env, _ := setupReactionTest(t)
	_, err := env.reactions.Toggle(context.Background(), 9999, "fan", model.ReactionLike)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReactionAwardsOwnerXPOnce(t *testing.T) {
	env, entry := setupReactionTest(t)
	ctx := context.Background()

	_, err := env.reactions.Toggle(ctx, entry.ID, "fan", model.ReactionLike)
	require.NoError(t, err)
	require.EqualValues(t, 5, env.user(t, "owner").XP)

	// Unreact and re-react: the owner must not be paid again.
	_, err = env.reactions.Remove(ctx, entry.ID, "fan")
	require.NoError(t, err)
	_, err = env.reactions.Toggle(ctx, entry.ID, "fan", model.ReactionWow)
	require.NoError(t, err)
	require.EqualValues(t, 5, env.user(t, "owner").XP)

	var cnt int64
	require.NoError(t, env.db.Model(&model.XPTransaction{}).
		Where("user_uid = ? AND action = ?", "owner", model.ActionGetReaction).
		Count(&cnt).Error)
	require.EqualValues(t, 1, cnt)
}

func TestReactionSelfReactionNoXP(t *testing.T) {
	env, entry := setupReactionTest(t)
	ctx := context.Background()
	require.NoError(t, env.ledger.Credit(ctx, "owner", 1))

	_, err := env.reactions.Toggle(ctx, entry.ID, "owner", model.ReactionLike)
	require.NoError(t, err)
	require.EqualValues(t, 0, env.user(t, "owner").XP)
}
