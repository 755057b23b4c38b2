package model

import "time"

type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderVerified OrderStatus = "verified"
)

// Order is created by a purchase and is immutable apart from verification
type Order struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UserID     uint        `gorm:"not null;index" json:"user_id"`
	User       *User       `json:"user,omitempty"`
	TeamID     uint        `gorm:"not null;index" json:"team_id"`
	Team       *Team       `json:"team,omitempty"`
	ProductID  uint        `gorm:"not null;index" json:"product_id"`
	Product    *Product    `json:"product,omitempty"`
	Quantity   int         `gorm:"not null;default:1" json:"quantity"`
	TotalPrice int64       `gorm:"not null" json:"total_price"` // Snapshot price * quantity
	Status     OrderStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	Verified   bool        `gorm:"not null;default:false" json:"verified"`
	CreatedAt  time.Time   `json:"created_at"`
}
