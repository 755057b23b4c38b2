package model

import "time"

type TransactionType string

const (
	TxEarn             TransactionType = "earn"
	TxPurchase         TransactionType = "purchase"
	TxAdminAdjustment  TransactionType = "admin_adjustment"
	TxDonationSent     TransactionType = "donation_sent"
	TxDonationReceived TransactionType = "donation_received"
)

// Transaction is an append-only ledger entry. Amount is signed.
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	User        *User           `json:"user,omitempty"`
	Type        TransactionType `gorm:"type:varchar(30);not null;index" json:"type"`
	Amount      int64           `gorm:"not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	ReferenceID *uint           `json:"reference_id,omitempty"` // Order or Donation id
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
}
