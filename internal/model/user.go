package model

import (
	"strings"
	"time"
)

// Role values. Admin is never assignable through public signup.
const (
	RoleGuest  = "guest"
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// UnusablePassword marks accounts that can only sign in through Google.
// It never matches a bcrypt hash comparison.
const UnusablePassword = "!"

// User represents an account on the event platform. Email is the unique key.
type User struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Email          string     `json:"email" gorm:"uniqueIndex;size:254;not null"`
	FirstName      string     `json:"first_name" gorm:"size:150"`
	LastName       string     `json:"last_name" gorm:"size:150"`
	ProfilePicture *string    `json:"profile_picture" gorm:"size:500"`
	Role           string     `json:"role" gorm:"size:20;not null;default:'guest'"`
	IsActive       bool       `json:"is_active" gorm:"not null;default:true"`
	IsStaff        bool       `json:"is_staff" gorm:"not null;default:false"`
	IsSuperuser    bool       `json:"is_superuser" gorm:"not null;default:false"`
	PasswordHash   string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	PhoneNumber    *string    `json:"phone_number" gorm:"size:20"`
	Birthday       *time.Time `json:"birthday" gorm:"type:date"`
	Gender         *string    `json:"gender" gorm:"size:10"`
	CompanyName    *string    `json:"company_name" gorm:"size:255"`
	CompanyWebsite *string    `json:"company_website" gorm:"size:500"`
	DateJoined     time.Time  `json:"date_joined" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// HasUsablePassword reports whether the account can log in with a password.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != "" && u.PasswordHash != UnusablePassword
}

// MissingContactFields reports whether any of the contact fields a client
// profile needs is empty.
func (u *User) MissingContactFields() bool {
	return blank(u.PhoneNumber) ||
		u.Birthday == nil ||
		blank(u.Gender) ||
		blank(u.CompanyName) ||
		blank(u.CompanyWebsite)
}

// FullName returns first and last name separated by a space.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail trims and lowercases an address so that lookups and the
// unique index agree on one spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
