package service

import (
	"context"
	"testing"
	"time"

	"github.com/HarryOMalley/eagle-bank/internal/common/clock"
	"github.com/HarryOMalley/eagle-bank/internal/common/logger"
	"github.com/HarryOMalley/eagle-bank/internal/common/token"
	"github.com/HarryOMalley/eagle-bank/internal/user/domain"
	"github.com/HarryOMalley/eagle-bank/internal/user/repository"
)

type mockUserRepo struct {
	createFunc      func(ctx context.Context, user domain.User) error
	findByEmailFunc func(ctx context.Context, email string) (domain.User, error)
	findByIDFunc    func(ctx context.Context, id domain.ID) (domain.User, error)
	updateFunc      func(ctx context.Context, id domain.ID, patch domain.Patch) (domain.User, error)
	deleteFunc      func(ctx context.Context, id domain.ID) error
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, id domain.ID, patch domain.Patch) (domain.User, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, patch)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (m *mockUserRepo) Delete(ctx context.Context, id domain.ID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockAccountCounter struct {
	countByOwnerFunc func(ctx context.Context, ownerID string) (int, error)
}

func (m *mockAccountCounter) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	if m.countByOwnerFunc != nil {
		return m.countByOwnerFunc(ctx, ownerID)
	}
	return 0, nil
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash string, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	return nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "11111111-1111-1111-1111-111111111111", nil
}

func setupUserService(t *testing.T) (*Service, *mockUserRepo, *mockAccountCounter, *mockHasher, *clock.MockClock) {
	t.Helper()

	log, err := logger.New("", "test", "CRITICAL")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	repo := &mockUserRepo{}
	accounts := &mockAccountCounter{}
	hasher := &mockHasher{}
	idGenerator := &mockIDGenerator{}
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	issuer := token.NewIssuer("test-secret-at-least-32-bytes-long!!", time.Hour, clk)

	svc := NewService(repo, accounts, hasher, idGenerator, issuer, clk, log)
	return svc, repo, accounts, hasher, clk
}
