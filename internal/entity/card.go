package entity

import "time"

// Card is a live control card: an issue a worker raised against a work center.
// Once closed it is moved to the archive table and deleted from here.
type Card struct {
	ID string `json:"id" gorm:"primaryKey;size:32"`

	WorkshopID   string `json:"workshop_id" gorm:"size:32;not null;index"`
	WorkCenterID string `json:"work_center_id" gorm:"size:32;not null;index"`
	Shift        string `json:"shift" gorm:"size:10;not null"` // FIRST/SECOND/THIRD

	ShortDescription          string `json:"short_description" gorm:"size:500;not null"`
	DetailedDescription       string `json:"detailed_description" gorm:"size:2000"`
	ResolutionDurationMinutes *int   `json:"resolution_duration_minutes"`

	Status string `json:"status" gorm:"size:20;not null;index"` // CREATED/EXTENDED/CLOSED

	CreatedBy  string     `json:"created_by" gorm:"size:32;not null"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedBy  string     `json:"updated_by" gorm:"size:32"`
	UpdatedAt  *time.Time `json:"updated_at"`
	ExtendedBy string     `json:"extended_by" gorm:"size:32"`
	ExtendedAt *time.Time `json:"extended_at"`
	ClosedBy   string     `json:"closed_by" gorm:"size:32"`
	ClosedAt   *time.Time `json:"closed_at"`
}

func (Card) TableName() string {
	return "cards"
}

// Card statuses
const (
	CardStatusCreated  = "CREATED"  // raised by a worker
	CardStatusExtended = "EXTENDED" // technician attached diagnosis details
	CardStatusClosed   = "CLOSED"   // manager confirmed resolution
)

// ValidCardTransitions lists the legal status transitions of a live card.
// CREATED→CLOSED is an admin-only override, see service.CardService.CloseCard.
var ValidCardTransitions = map[string][]string{
	CardStatusCreated:  {CardStatusExtended, CardStatusClosed},
	CardStatusExtended: {CardStatusClosed},
}

// ArchivedCard is an immutable snapshot taken when a production manager
// archives a closed card. All card fields are copied verbatim; the live
// row is deleted in the same transaction.
type ArchivedCard struct {
	ID string `json:"id" gorm:"primaryKey;size:32"`

	WorkshopID   string `json:"workshop_id" gorm:"size:32;not null;index"`
	WorkCenterID string `json:"work_center_id" gorm:"size:32;not null"`
	Shift        string `json:"shift" gorm:"size:10;not null"`

	ShortDescription          string `json:"short_description" gorm:"size:500;not null"`
	DetailedDescription       string `json:"detailed_description" gorm:"size:2000"`
	ResolutionDurationMinutes *int   `json:"resolution_duration_minutes"`

	CreatedBy  string     `json:"created_by" gorm:"size:32;not null"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedBy  string     `json:"updated_by" gorm:"size:32"`
	UpdatedAt  *time.Time `json:"updated_at"`
	ExtendedBy string     `json:"extended_by" gorm:"size:32"`
	ExtendedAt *time.Time `json:"extended_at"`
	ClosedBy   string     `json:"closed_by" gorm:"size:32"`
	ClosedAt   *time.Time `json:"closed_at"`

	ArchivedBy string    `json:"archived_by" gorm:"size:32;not null"`
	ArchivedAt time.Time `json:"archived_at"`
}

func (ArchivedCard) TableName() string {
	return "archived_cards"
}

// NewArchivedCard snapshots a closed card. The archive row keeps the card's
// id, so an archived card stays addressable by the identifier it had while
// live.
func NewArchivedCard(card *Card, archivedBy string) *ArchivedCard {
	return &ArchivedCard{
		ID:                        card.ID,
		WorkshopID:                card.WorkshopID,
		WorkCenterID:              card.WorkCenterID,
		Shift:                     card.Shift,
		ShortDescription:          card.ShortDescription,
		DetailedDescription:       card.DetailedDescription,
		ResolutionDurationMinutes: card.ResolutionDurationMinutes,
		CreatedBy:                 card.CreatedBy,
		CreatedAt:                 card.CreatedAt,
		UpdatedBy:                 card.UpdatedBy,
		UpdatedAt:                 card.UpdatedAt,
		ExtendedBy:                card.ExtendedBy,
		ExtendedAt:                card.ExtendedAt,
		ClosedBy:                  card.ClosedBy,
		ClosedAt:                  card.ClosedAt,
		ArchivedBy:                archivedBy,
		ArchivedAt:                time.Now(),
	}
}

// Shifts
const (
	ShiftFirst  = "FIRST"
	ShiftSecond = "SECOND"
	ShiftThird  = "THIRD"
)

// ShiftDisplayNames maps a shift code to its display label.
var ShiftDisplayNames = map[string]string{
	ShiftFirst:  "Първа",
	ShiftSecond: "Втора",
	ShiftThird:  "Трета",
}

func IsValidShift(shift string) bool {
	_, ok := ShiftDisplayNames[shift]
	return ok
}
