package models

import "time"

// Lending policy. Due dates are fixed at issue time and never recalculated.
const (
	LoanPeriod        = 14 * 24 * time.Hour
	FinePerDay        = 1 // currency units per overdue day
	DefaultIssueLimit = 3
)

// Issue status values. Both returned and overdue are terminal.
const (
	IssueStatusIssued   = "issued"
	IssueStatusReturned = "returned"
	IssueStatusOverdue  = "overdue"
)

const IssueTable = "book_copy_issues"

type LibraryCard struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	StudentID  string `gorm:"type:uuid;uniqueIndex;not null" json:"studentId"`
	Active     bool   `gorm:"not null;default:true" json:"active"`
	IssueLimit int    `gorm:"not null;default:3" json:"issueLimit"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BookCopyIssue struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	BookCopyID    string `gorm:"type:uuid;index;not null" json:"bookCopyId"`
	LibraryCardID string `gorm:"type:uuid;index;not null" json:"libraryCardId"`

	IssueDate  time.Time  `gorm:"index;not null" json:"issueDate"`
	DueDate    time.Time  `gorm:"index;not null" json:"dueDate"`
	ReturnDate *time.Time `gorm:"index" json:"returnDate,omitempty"`
	Status     string     `gorm:"size:20;not null;default:'issued'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BookCopyIssue) TableName() string { return IssueTable }

type Fine struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	LibraryCardID string `gorm:"type:uuid;index;not null" json:"libraryCardId"`
	IssueID       string `gorm:"type:uuid;index;not null" json:"issueId"`
	Amount        int    `gorm:"not null" json:"amount"`

	CreatedAt time.Time `json:"createdAt"`
}

// CardEvent is the audit trail for card administration (deactivations).
type CardEvent struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	LibraryCardID string    `gorm:"type:uuid;index;not null" json:"libraryCardId"`
	ActorID       string    `gorm:"type:uuid" json:"actorId"`
	Action        string    `gorm:"size:40;not null" json:"action"`
	Reason        *string   `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DueDateFor applies the fixed loan window to an issue date.
func DueDateFor(issueDate time.Time) time.Time {
	return issueDate.Add(LoanPeriod)
}

// OverdueDays counts started days past due, never negative. A return one
// hour late already counts as one overdue day.
func OverdueDays(dueDate, at time.Time) int {
	late := at.Sub(dueDate)
	if late <= 0 {
		return 0
	}
	days := int(late / (24 * time.Hour))
	if late%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// FineFor computes the fine owed for a return at the given time.
func FineFor(dueDate, at time.Time) int {
	return OverdueDays(dueDate, at) * FinePerDay
}
