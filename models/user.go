package models

import "time"

// Roles. ISSUER is the student-facing counter role; STUDENT holds a
// library card and borrows copies.
const (
	RoleAdmin      = "ADMIN"
	RoleManagement = "MANAGEMENT"
	RoleIssuer     = "ISSUER"
	RoleStudent    = "STUDENT"
)

type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;not null;default:'STUDENT'" json:"role"`
	Image        string `gorm:"size:512" json:"image,omitempty"`

	DepartmentID *string `gorm:"type:uuid;index" json:"departmentId,omitempty"`
	BatchID      *string `gorm:"type:uuid;index" json:"batchId,omitempty"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`
	LastLoginUA string     `gorm:"size:255" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Department struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:120;not null" json:"name"`
	Batches   []Batch   `gorm:"foreignKey:DepartmentID" json:"batches"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Batch struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	DepartmentID string    `gorm:"type:uuid;index;not null" json:"departmentId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
