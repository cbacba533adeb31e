package service

import (
	"context"
	"errors"
	"testing"

	commonerrors "github.com/HarryOMalley/eagle-bank/internal/common/errors"
	"github.com/HarryOMalley/eagle-bank/internal/user/domain"
	"github.com/HarryOMalley/eagle-bank/internal/user/repository"
)

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:     "new@example.com",
		Password:  "pw-twelve-chars+",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
}

func TestService_Register_Success(t *testing.T) {
	svc, repo, _, _, clk := setupUserService(t)

	var created domain.User
	repo.createFunc = func(ctx context.Context, user domain.User) error {
		created = user
		return nil
	}

	view, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if view.ID == "" {
		t.Error("expected generated id")
	}
	if view.Email != "new@example.com" {
		t.Errorf("expected email new@example.com, got %s", view.Email)
	}
	if created.PasswordHash == "pw-twelve-chars+" {
		t.Error("expected password to be stored hashed")
	}
	if !created.CreatedAt.Equal(clk.Now()) {
		t.Errorf("expected created_at from clock, got %v", created.CreatedAt)
	}
}

func TestService_Register_DoesNotExposeHash(t *testing.T) {
	svc, repo, _, _, _ := setupUserService(t)

	repo.createFunc = func(ctx context.Context, user domain.User) error {
		return nil
	}

	view, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// The view struct has no hash field; make sure the hash never leaks
	// through the email or name either.
	if view.Email != "new@example.com" || view.FirstName != "Ada" || view.LastName != "Lovelace" {
		t.Errorf("unexpected view contents: %+v", view)
	}
}

func TestService_Register_EmailTaken(t *testing.T) {
	svc, repo, _, _, _ := setupUserService(t)

	repo.findByEmailFunc = func(ctx context.Context, email string) (domain.User, error) {
		return domain.User{ID: "existing", Email: email}, nil
	}

	_, err := svc.Register(context.Background(), validRegisterInput())
	if !errors.Is(err, commonerrors.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestService_Register_EmailTakenRace(t *testing.T) {
	svc, repo, _, _, _ := setupUserService(t)

	// Lookup misses but the unique index rejects the insert: a concurrent
	// registration won the race between the check and the write.
	repo.createFunc = func(ctx context.Context, user domain.User) error {
		return repository.ErrEmailAlreadyExists
	}

	_, err := svc.Register(context.Background(), validRegisterInput())
	if !errors.Is(err, commonerrors.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken from insert race, got %v", err)
	}
}

func TestService_Register_ShortPassword(t *testing.T) {
	svc, _, _, _, _ := setupUserService(t)

	input := validRegisterInput()
	input.Password = "short"

	_, err := svc.Register(context.Background(), input)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestService_Register_MissingFields(t *testing.T) {
	svc, _, _, _, _ := setupUserService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Password: "pw-twelve-chars+"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	domainErr, ok := commonerrors.AsDomainError(err)
	if !ok || domainErr.Code() != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}

	details := domainErr.Details()
	for _, field := range []string{"email", "firstName", "lastName"} {
		if _, present := details[field]; !present {
			t.Errorf("expected %s in validation details, got %v", field, details)
		}
	}
}

func TestService_Register_HashFailure(t *testing.T) {
	svc, _, _, hasher, _ := setupUserService(t)

	hasher.hashFunc = func(password string) (string, error) {
		return "", errors.New("bcrypt failure")
	}

	_, err := svc.Register(context.Background(), validRegisterInput())
	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %v", err)
	}
}

func TestService_Register_DatabaseError(t *testing.T) {
	svc, repo, _, _, _ := setupUserService(t)

	repo.createFunc = func(ctx context.Context, user domain.User) error {
		return errors.New("connection reset")
	}

	_, err := svc.Register(context.Background(), validRegisterInput())
	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "DATABASE_ERROR" {
		t.Errorf("expected DATABASE_ERROR, got %v", err)
	}
}
