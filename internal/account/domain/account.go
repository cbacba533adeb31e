package domain

import "time"

type ID string

type AccountType string

const (
	TypeCurrent AccountType = "CURRENT"
	TypeSavings AccountType = "SAVINGS"
)

func (t AccountType) Valid() bool {
	return t == TypeCurrent || t == TypeSavings
}

// Account is a bank account owned by exactly one user. UserID is stamped
// from the authenticated caller at creation and never changes.
type Account struct {
	ID        ID
	UserID    string
	Name      string
	Type      AccountType
	Balance   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Patch struct {
	Name *string
}

func (p Patch) Empty() bool {
	return p.Name == nil
}
