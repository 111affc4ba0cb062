// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Account is the identity row of a registered user.
type Account struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Fullname     string     `db:"fullname" json:"fullname"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`
}

// IsDeleted reports whether the account has been soft-deleted.
func (a *Account) IsDeleted() bool {
	return a.DeletedAt != nil
}

// Status is the lifecycle state of an account.
type Status string

const (
	StatusUnverified Status = "unverified"
	StatusVerified   Status = "verified"
	StatusInactive   Status = "inactive"
	StatusDeleted    Status = "deleted"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusUnverified, StatusVerified, StatusInactive, StatusDeleted:
		return true
	}
	return false
}

// AccountStatus holds the single current status of an account.
type AccountStatus struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"-"`
	AccountID int64     `db:"account_id" json:"account_id"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Profile stores optional personal details of an account.
type Profile struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64      `db:"id" json:"-"`
	AccountID   int64      `db:"account_id" json:"-"`
	Bio         string     `db:"bio" json:"bio"`
	PhoneNumber string     `db:"phone_number" json:"phone_number"`
	CityBorn    string     `db:"city_born" json:"city_born"`
	CityHome    string     `db:"city_home" json:"city_home"`
	BirthDate   *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
