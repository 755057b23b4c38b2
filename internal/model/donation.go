package model

import "time"

// Donation is the immutable audit record of a team-to-team gift
type Donation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	DonorID         uint      `gorm:"not null;index" json:"donor_id"`
	Donor           *User     `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	RecipientID     *uint     `json:"recipient_id"`
	ProductID       uint      `gorm:"not null" json:"product_id"`
	Product         *Product  `json:"product,omitempty"`
	Amount          int64     `gorm:"not null" json:"amount"`
	Quantity        int       `gorm:"not null;default:1" json:"quantity"`
	Message         string    `gorm:"type:text" json:"message"`
	DonorTeamID     uint      `gorm:"not null;index" json:"donor_team_id"`
	DonorTeam       *Team     `gorm:"foreignKey:DonorTeamID" json:"donor_team,omitempty"`
	RecipientTeamID uint      `gorm:"not null;index" json:"recipient_team_id"`
	RecipientTeam   *Team     `gorm:"foreignKey:RecipientTeamID" json:"recipient_team,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
