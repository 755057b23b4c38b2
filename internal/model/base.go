package model

import (
	"time"
)

// BaseModel handles the integer primary key and timestamps shared by mutable entities
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
