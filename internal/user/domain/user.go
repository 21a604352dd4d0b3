package domain

import (
	"errors"
	"time"
)

// ErrEmailTaken is returned by repositories when the email unique constraint rejects a write.
var ErrEmailTaken = errors.New("email already exists")

// User is a quiz player or administrator.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Gender       Gender
	Country      string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Valid reports whether g is one of the accepted genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if !u.Gender.Valid() {
		return errors.New("gender is invalid")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// Profile is the public view of a user; it never carries the password hash.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Gender    Gender    `json:"gender"`
	Country   string    `json:"country"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Gender:    u.Gender,
		Country:   u.Country,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
