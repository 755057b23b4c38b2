package model

type Team struct {
	BaseModel
	Name     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	LeaderID *uint  `json:"leader_id"`
	Leader   *User  `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
}

// DefaultTeams are created on first start
var DefaultTeams = []string{"A그룹", "B그룹", "C그룹", "D그룹", "E그룹", "Z그룹"}

// TeamOverview is the admin listing row
type TeamOverview struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	LeaderID    *uint  `json:"leader_id"`
	LeaderName  string `json:"leader_name"`
	MemberCount int64  `json:"member_count"`
}
