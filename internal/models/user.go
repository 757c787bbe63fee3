package models

import (
	"time"
)

// User is an account. Email is unique and compared case-sensitively.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Reports []CrackReport `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"reports,omitempty"`
}

// TableName overrides the gorm table name.
func (User) TableName() string {
	return "users"
}
