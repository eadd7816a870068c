package entity

import (
	"strings"
	"time"
)

// Roles
const (
	RoleAdmin             = "ADMIN"
	RoleProductionManager = "PRODUCTION_MANAGER"
	RoleManager           = "MANAGER"
	RoleTechnician        = "TECHNICIAN"
	RoleWorker            = "WORKER"
)

// ValidRoles in privilege order, admin first.
var ValidRoles = []string{
	RoleAdmin,
	RoleProductionManager,
	RoleManager,
	RoleTechnician,
	RoleWorker,
}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an account on the factory floor. Workshop assignments scope what a
// non-admin user can see; admins see everything regardless of assignment.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Username  string    `json:"username" gorm:"size:50;not null;uniqueIndex"`
	Password  string    `json:"-" gorm:"size:255;not null"` // bcrypt hash
	FirstName string    `json:"first_name" gorm:"size:50;not null"`
	LastName  string    `json:"last_name" gorm:"size:50;not null"`
	Role      string    `json:"role" gorm:"size:30;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	WorkshopIDs []string `json:"workshop_ids" gorm:"-"` // filled by the repository
}

func (User) TableName() string {
	return "users"
}

// DisplayName is "First Last", falling back to the username when both names
// are blank.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Username
	}
	return name
}

// IsAssignedTo reports whether the user is a member of the given workshop.
func (u *User) IsAssignedTo(workshopID string) bool {
	for _, id := range u.WorkshopIDs {
		if id == workshopID {
			return true
		}
	}
	return false
}

// UserWorkshop is the user↔workshop membership join row. Membership is
// queried explicitly through the user repository, never traversed as a
// back-reference from Workshop.
type UserWorkshop struct {
	UserID     string `json:"user_id" gorm:"primaryKey;size:32"`
	WorkshopID string `json:"workshop_id" gorm:"primaryKey;size:32"`
}

func (UserWorkshop) TableName() string {
	return "user_workshops"
}
