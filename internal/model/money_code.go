package model

import "time"

// MoneyCode is a one-time token that credits the redeeming user's balance
type MoneyCode struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Code       string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Amount     int64      `gorm:"not null" json:"amount"`
	Used       bool       `gorm:"not null;default:false" json:"used"`
	UsedBy     *uint      `json:"used_by"`
	UsedByUser *User      `gorm:"foreignKey:UsedBy" json:"used_by_user,omitempty"`
	UsedAt     *time.Time `json:"used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
