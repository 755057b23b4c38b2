package model

type Product struct {
	BaseModel
	Name          string `gorm:"type:varchar(255);not null" json:"name"`
	Description   string `gorm:"type:text" json:"description"`
	Price         int64  `gorm:"not null" json:"price"`
	Category      string `gorm:"type:varchar(50);default:item" json:"category"`
	IsActive      bool   `gorm:"not null" json:"is_active"`
	StockQuantity int    `gorm:"not null;default:0" json:"stock_quantity"`
	InitialStock  int    `gorm:"not null;default:0" json:"initial_stock"`
}

// DefaultProducts seed the store on an empty database
var DefaultProducts = []Product{
	{Name: "Coffee", Description: "Hot coffee from cafe", Price: 500, Category: "beverage", StockQuantity: 20},
	{Name: "Snacks", Description: "Assorted snacks", Price: 300, Category: "food", StockQuantity: 15},
	{Name: "Prayer Request", Description: "Personal prayer service", Price: 200, Category: "service", StockQuantity: 999},
	{Name: "Souvenir", Description: "Retreat souvenir item", Price: 1000, Category: "item", StockQuantity: 10},
}
