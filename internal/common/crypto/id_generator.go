package crypto

import "github.com/google/uuid"

// IDGenerator mints ids for new users and accounts. Services take the
// interface so tests can substitute deterministic sequences.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator is the production implementation, backed by random UUIDv4.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	return uuid.NewString(), nil
}
