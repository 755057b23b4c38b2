package service

import "go-retreat-store/internal/model"

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID   uint
	Username string
	Role     model.Role
	TeamID   *uint
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func (a Actor) CanTrade() bool {
	return a.Role.CanTrade()
}
