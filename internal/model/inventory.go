package model

import "time"

type InventorySource string

const (
	SourcePurchase InventorySource = "purchase"
	SourceDonation InventorySource = "donation"
)

// TeamInventory holds the running quantity of a product owned by a team.
// ObtainedFrom and ReferenceID describe only the latest contribution;
// InventoryMovement keeps the full history.
type TeamInventory struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	TeamID       uint            `gorm:"not null;uniqueIndex:idx_team_product" json:"team_id"`
	ProductID    uint            `gorm:"not null;uniqueIndex:idx_team_product" json:"product_id"`
	Product      *Product        `json:"product,omitempty"`
	Quantity     int             `gorm:"not null;default:0" json:"quantity"`
	ObtainedFrom InventorySource `gorm:"type:varchar(20);default:purchase" json:"obtained_from"`
	ReferenceID  *uint           `json:"reference_id"`
	ObtainedAt   time.Time       `json:"obtained_at"`
}

func (TeamInventory) TableName() string {
	return "team_inventory"
}

// InventoryMovement is one contribution to a team's inventory
type InventoryMovement struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TeamID      uint            `gorm:"not null;index" json:"team_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Source      InventorySource `gorm:"type:varchar(20);not null" json:"source"`
	ReferenceID *uint           `json:"reference_id"`
	CreatedAt   time.Time       `json:"created_at"`
}
