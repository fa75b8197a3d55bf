package models

import "time"

// BookCopy condition and status values.
const (
	CopyConditionNew     = "new"
	CopyConditionDamaged = "damaged"

	CopyStatusAvailable = "available"
	CopyStatusIssued    = "issued"
)

type Genre struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:120;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Book struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	Title     string `gorm:"size:255;index;not null" json:"title"`
	Author    string `gorm:"size:255;not null" json:"author"`
	Publisher string `gorm:"size:255" json:"publisher,omitempty"`

	// Declared number of physical copies; the BookCopy rows are the
	// source of truth for per-copy state.
	Copies  int    `gorm:"not null" json:"copies"`
	GenreID string `gorm:"type:uuid;index;not null" json:"genreId"`

	IsEbookAvailable bool    `gorm:"not null;default:false" json:"isEbookAvailable"`
	EbookURL         *string `gorm:"size:512" json:"ebookUrl,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BookCopy struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	BookID    string `gorm:"type:uuid;index;not null" json:"bookId"`
	Condition string `gorm:"size:20;not null;default:'new'" json:"condition"`
	Status    string `gorm:"size:20;not null;default:'available'" json:"status"`

	// Card currently holding this copy; nil while on the shelf.
	LibraryCardID *string `gorm:"type:uuid;index" json:"libraryCardId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
