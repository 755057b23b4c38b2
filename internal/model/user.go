package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleTeamLeader  Role = "team_leader"
	RoleParticipant Role = "participant"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeamLeader, RoleParticipant:
		return true
	}
	return false
}

// CanTrade reports whether the role may spend team money (redeem, purchase, donate)
func (r Role) CanTrade() bool {
	return r == RoleAdmin || r == RoleTeamLeader
}

// User represents a retreat participant, team leader or admin
type User struct {
	BaseModel
	Username     string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	Role         Role       `gorm:"type:varchar(20);not null;default:participant;index" json:"role"`
	TeamID       *uint      `gorm:"index" json:"team_id"`
	Team         *Team      `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Balance      int64      `gorm:"not null;default:0" json:"balance"`
	TokenVersion string     `gorm:"type:varchar(64);default:''" json:"-"` // For single session enforcement
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	TeamID    *uint     `json:"team_id"`
	TeamName  string    `json:"team_name,omitempty"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		TeamID:    u.TeamID,
		Balance:   u.Balance,
		CreatedAt: u.CreatedAt,
	}
	if u.Team != nil {
		resp.TeamName = u.Team.Name
	}
	return resp
}
