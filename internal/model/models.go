package model

// All lists every persisted model for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&Team{}, &User{}, &Product{}, &Order{}, &Transaction{},
		&MoneyCode{}, &TeamInventory{}, &InventoryMovement{}, &Donation{},
	}
}
