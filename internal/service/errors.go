package service

import "errors"

var (
	ErrNotFound             = errors.New("not_found")
	ErrInsufficientBalance  = errors.New("insufficient_balance")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidReactionType  = errors.New("invalid_reaction_type")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrBelowMinimum         = errors.New("below_minimum_withdrawal")
	ErrContestNotEnded      = errors.New("contest_not_ended")
	ErrNotPending           = errors.New("withdrawal_not_pending")
)
