// Package models defines the canonical identity records shared by the
// reconciliation core and its store adapters.
package models

import (
	"errors"
	"strings"
	"time"
)

// Role classifies an account within the app.
type Role string

const (
	RolePassenger    Role = "Passenger"
	RoleDriver       Role = "Driver"
	RoleVehicleOwner Role = "VehicleOwner"
	RoleAdmin        Role = "Admin"
)

// ErrUnknownRole marks a role value outside the closed enumeration.
// It indicates corrupted data, not a valid state.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole maps a string to a Role, case-insensitively.
func ParseRole(s string) (Role, error) {
	for _, r := range []Role{RolePassenger, RoleDriver, RoleVehicleOwner, RoleAdmin} {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", ErrUnknownRole
}

// Equals compares roles case-insensitively.
func (r Role) Equals(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}

// Account is the local cache's representation of one identity.
//
// ID is a local surrogate key assigned by the store on insert; it is never
// taken from a remote record. PasswordSecret holds credential material in
// the store-specific representation (a bcrypt hash string). Synced reports
// whether this copy has been reconciled with the remote directory.
type Account struct {
	ID             int64
	Email          string
	PasswordSecret string
	Role           Role
	FullName       string
	PhoneNumber    string
	CreatedAt      time.Time
	Synced         bool
}

// DirectoryRecord is one document from the remote directory's users
// collection. Email, Password and Role are required; the rest is optional.
// Password is stored in the same representation as Account.PasswordSecret,
// it is not an identity-provider credential.
type DirectoryRecord struct {
	ID          string
	Email       string
	Password    string
	Role        string
	FullName    string
	PhoneNumber string
	Username    string
	CreatedAt   time.Time
}

// Validate reports the first missing or invalid required field.
func (r DirectoryRecord) Validate() error {
	if r.Email == "" {
		return errors.New("missing email")
	}
	if r.Password == "" {
		return errors.New("missing password")
	}
	if _, err := ParseRole(r.Role); err != nil {
		return err
	}
	return nil
}

// ToAccount maps a directory record into the local representation. The local
// id is left unset for the store to assign. A zero CreatedAt defaults to now.
func (r DirectoryRecord) ToAccount(now time.Time) (*Account, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	role, _ := ParseRole(r.Role)
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return &Account{
		Email:          r.Email,
		PasswordSecret: r.Password,
		Role:           role,
		FullName:       r.FullName,
		PhoneNumber:    r.PhoneNumber,
		CreatedAt:      createdAt,
		Synced:         true,
	}, nil
}

// DisplayNameFromEmail derives a fallback display name from the local part
// of an email address, used when no profile data is available.
func DisplayNameFromEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return email
	}
	return email[:at]
}
