package model

import "time"

// JournalEntry is a free-form trade note, optionally linked to a position.
type JournalEntry struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	UserID     uint  `gorm:"not null;index" json:"user_id"`
	PositionID *uint `gorm:"index" json:"position_id,omitempty"`

	Title string `gorm:"size:255;not null" json:"title"`
	Body  string `gorm:"type:text" json:"body"`
	Tags  string `gorm:"size:512" json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}
