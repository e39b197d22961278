package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedgerCreditDebit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "u1", 0)

	require.NoError(t, env.ledger.Credit(ctx, "u1", 5))
	require.EqualValues(t, 5, env.balance(t, "u1"))

	require.NoError(t, env.ledger.Debit(ctx, "u1", 3, true))
	u := env.user(t, "u1")
	require.EqualValues(t, 2, u.PointsBalance)
	require.EqualValues(t, 3, u.TotalSpent)
}

func TestLedgerDebitInsufficient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "u1", 2)

	err := env.ledger.Debit(ctx, "u1", 3, true)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// A rejected debit leaves the balance exactly as it was.
	u := env.user(t, "u1")
	require.EqualValues(t, 2, u.PointsBalance)
	require.EqualValues(t, 0, u.TotalSpent)
}

func TestLedgerRefundDoesNotCountAsSpend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "u1", 10)

	require.NoError(t, env.ledger.Debit(ctx, "u1", 4, false))
	u := env.user(t, "u1")
	require.EqualValues(t, 6, u.PointsBalance)
	require.EqualValues(t, 0, u.TotalSpent)
}

func TestLedgerRejectsNonPositiveAmounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "u1", 10)

	require.ErrorIs(t, env.ledger.Credit(ctx, "u1", 0), ErrInvalidAmount)
	require.ErrorIs(t, env.ledger.Debit(ctx, "u1", -1, true), ErrInvalidAmount)
	require.EqualValues(t, 10, env.balance(t, "u1"))
}

func TestLedgerNeverGoesNegative(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "u1", 3)

	ops := []struct {
		debit  bool
		amount int64
	}{
		{true, 2}, {false, 1}, {true, 5}, {true, 2}, {true, 1},
	}
	for _, op := range ops {
		if op.debit {
			_ = env.ledger.Debit(ctx, "u1", op.amount, true)
		} else {
			_ = env.ledger.Credit(ctx, "u1", op.amount)
		}
		require.GreaterOrEqual(t, env.balance(t, "u1"), int64(0))
	}
}
