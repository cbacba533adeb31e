package crypto

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if hash == "correct horse battery" {
		t.Fatal("expected hash to differ from plaintext")
	}

	if err := hasher.Compare(hash, "correct horse battery"); err != nil {
		t.Errorf("expected matching password to verify, got %v", err)
	}
}

func TestBcryptHasher_CompareMismatch(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := hasher.Compare(hash, "wrong horse battery"); err == nil {
		t.Error("expected mismatch error for wrong password")
	}
}

func TestBcryptHasher_HashesAreSalted(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := hasher.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if first == second {
		t.Error("expected distinct hashes for the same password")
	}
}

func TestNewBcryptHasher_OutOfRangeCostFallsBack(t *testing.T) {
	hasher := NewBcryptHasher(99)

	hash, err := hasher.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("expected parsable hash, got %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Errorf("expected default cost %d, got %d", bcrypt.DefaultCost, cost)
	}
}
