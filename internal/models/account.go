package models

import "time"

type Role string

const (
	RoleUser       Role = "USER"
	RoleManager    Role = "MANAGER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

var roleLevels = map[Role]int{
	RoleUser:       1,
	RoleManager:    2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Level returns 0 for unknown roles.
func (r Role) Level() int { return roleLevels[r] }

func (r Role) Valid() bool { return r.Level() > 0 }

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Level() >= min.Level()
}

type Account struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username     string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null" json:"role"`
	Email        string `gorm:"size:255" json:"email,omitempty"`

	// nil for accounts not affiliated with a unit (e.g. headquarters admins)
	UnitID *uint `json:"unit_id"`
	Unit   *Unit `json:"unit,omitempty"`

	PersonnelID *uint `json:"personnel_id,omitempty"`
}
