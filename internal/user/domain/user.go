package domain

import "time"

type ID string

// User is the identity record. PasswordHash never leaves the service layer;
// views are built without it.
type User struct {
	ID           ID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Patch carries the updatable profile fields; nil means "leave unchanged".
type Patch struct {
	FirstName *string
	LastName  *string
}

func (p Patch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil
}
