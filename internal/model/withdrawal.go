package model

import "time"

const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusCompleted = "completed"
	WithdrawalStatusRejected  = "rejected"
)

const (
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodPayPal       = "paypal"
	PaymentMethodGiftCard     = "gift_card"
)

func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodPayPal, PaymentMethodGiftCard:
		return true
	}
	return false
}

// Withdrawal is a payout request. PointsDeducted is escrowed (debited) when
// the request is created; rejection credits it back.
type Withdrawal struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement"`
	UserUID        string     `gorm:"column:user_uid;size:128;not null;index"`
	Amount         int64      `gorm:"column:amount;not null"`
	PointsDeducted int64      `gorm:"column:points_deducted;not null"`
	PaymentMethod  string     `gorm:"column:payment_method;size:32;not null"`
	PaymentDetails string     `gorm:"column:payment_details;size:512"`
	Status         string     `gorm:"column:status;size:32;not null;default:pending"`
	RequestedAt    time.Time  `gorm:"column:requested_at;autoCreateTime"`
	ProcessedAt    *time.Time `gorm:"column:processed_at"`
	AdminNotes     string     `gorm:"column:admin_notes;size:512"`
	TransactionID  string     `gorm:"column:transaction_id;size:64;index"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
