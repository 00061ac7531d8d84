package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// User is a quoting analyst. The display initial feeds the quote number
// suffix ({year}-{sequence}-{initial}).
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"unique;not null;index"`
	Password  string `gorm:"not null"` // bcrypt hash
	FirstName string `gorm:"index"`
	LastName  string `gorm:"index"`
	RoleID    uint
	Role      Role `gorm:"foreignKey:RoleID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayInitial derives the single letter stamped on this analyst's quote
// numbers: first letter of the first name, falling back to the email.
func (u *User) DisplayInitial() string {
	src := strings.TrimSpace(u.FirstName)
	if src == "" {
		src = u.Email
	}
	if src == "" {
		return "X"
	}
	// First rune, not first byte: names like "Ángel" start mid-UTF-8.
	r, _ := utf8.DecodeRuneInString(src)
	return strings.ToUpper(string(r))
}

type Role struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"unique;not null"` // admin, analyst
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
)
