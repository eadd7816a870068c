package entity

import "time"

// Workshop is an organisational unit owning work centers. Inactive workshops
// are hidden from card-creation forms but keep their history.
type Workshop struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"size:500"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Workshop) TableName() string {
	return "workshops"
}

// WorkCenter is a machine or station belonging to exactly one workshop.
type WorkCenter struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Number      string    `json:"number" gorm:"size:5;not null"`
	Description string    `json:"description" gorm:"size:500"`
	MachineType string    `json:"machine_type" gorm:"size:100"`
	WorkshopID  string    `json:"workshop_id" gorm:"size:32;not null;index"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (WorkCenter) TableName() string {
	return "work_centers"
}
