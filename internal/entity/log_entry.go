package entity

import "time"

// LogEntry is a human-readable audit record: who did what, in free text.
// Entries are best-effort; card transitions never fail because a log entry
// could not be written.
type LogEntry struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	UserID      string    `json:"user_id" gorm:"size:32;not null;index"`
	Username    string    `json:"username" gorm:"size:50"`
	Description string    `json:"description" gorm:"size:1000;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

func (LogEntry) TableName() string {
	return "log_entries"
}
