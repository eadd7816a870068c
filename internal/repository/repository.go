package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories bundles every repository over one gorm handle.
type Repositories struct {
	Card         *CardRepository
	ArchivedCard *ArchivedCardRepository
	Workshop     *WorkshopRepository
	WorkCenter   *WorkCenterRepository
	User         *UserRepository
	LogEntry     *LogEntryRepository
}

// NewRepositories creates the repository set.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Card:         NewCardRepository(db),
		ArchivedCard: NewArchivedCardRepository(db),
		Workshop:     NewWorkshopRepository(db),
		WorkCenter:   NewWorkCenterRepository(db),
		User:         NewUserRepository(db),
		LogEntry:     NewLogEntryRepository(db),
	}
}
