package service

import (
	"context"
	"errors"
	"testing"

	commonerrors "github.com/HarryOMalley/eagle-bank/internal/common/errors"
	"github.com/HarryOMalley/eagle-bank/internal/user/domain"
	"github.com/HarryOMalley/eagle-bank/internal/user/repository"
)

func TestService_Login_Success(t *testing.T) {
	svc, repo, _, hasher, clk := setupUserService(t)

	repo.findByEmailFunc = func(ctx context.Context, email string) (domain.User, error) {
		if email != "user@example.com" {
			t.Errorf("expected lookup by user@example.com, got %s", email)
		}
		return domain.User{
			ID:           "user-123",
			Email:        email,
			PasswordHash: "hashed_pw-twelve-chars+",
			CreatedAt:    clk.Now(),
		}, nil
	}

	hasher.compareFunc = func(hash string, password string) error {
		if hash != "hashed_pw-twelve-chars+" || password != "pw-twelve-chars+" {
			return errors.New("password mismatch")
		}
		return nil
	}

	result, err := svc.Login(context.Background(), "user@example.com", "pw-twelve-chars+")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.AccessToken == "" {
		t.Error("expected access token to be set")
	}
	if result.TokenType != "Bearer" {
		t.Errorf("expected token type Bearer, got %s", result.TokenType)
	}
	if result.ExpiresIn != 3600 {
		t.Errorf("expected expiresIn 3600, got %d", result.ExpiresIn)
	}
}

func TestService_Login_UnknownEmail(t *testing.T) {
	svc, repo, _, _, _ := setupUserService(t)

	repo.findByEmailFunc = func(ctx context.Context, email string) (domain.User, error) {
		return domain.User{}, repository.ErrUserNotFound
	}

	_, err := svc.Login(context.Background(), "missing@example.com", "pw-twelve-chars+")
	if !errors.Is(err, commonerrors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_Login_WrongPassword(t *testing.T) {
	svc, repo, _, hasher, _ := setupUserService(t)

	repo.findByEmailFunc = func(ctx context.Context, email string) (domain.User, error) {
		return domain.User{ID: "user-123", Email: email, PasswordHash: "hashed"}, nil
	}
	hasher.compareFunc = func(hash string, password string) error {
		return errors.New("password mismatch")
	}

	_, err := svc.Login(context.Background(), "user@example.com", "wrong-password!!")
	if !errors.Is(err, commonerrors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

// An unknown email and a wrong password must be indistinguishable to the
// caller, otherwise login doubles as an email oracle.
func TestService_Login_FailureModesMatch(t *testing.T) {
	svc, repo, _, hasher, _ := setupUserService(t)

	repo.findByEmailFunc = func(ctx context.Context, email string) (domain.User, error) {
		return domain.User{}, repository.ErrUserNotFound
	}
	_, unknownErr := svc.Login(context.Background(), "missing@example.com", "pw-twelve-chars+")

	repo.findByEmailFunc = func(ctx context.Context, email string) (domain.User, error) {
		return domain.User{ID: "user-123", Email: email, PasswordHash: "hashed"}, nil
	}
	hasher.compareFunc = func(hash string, password string) error {
		return errors.New("password mismatch")
	}
	_, wrongErr := svc.Login(context.Background(), "user@example.com", "wrong-password!!")

	if unknownErr == nil || wrongErr == nil {
		t.Fatal("expected both login attempts to fail")
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("expected identical errors, got %q and %q", unknownErr, wrongErr)
	}
}

func TestService_Login_DatabaseError(t *testing.T) {
	svc, repo, _, _, _ := setupUserService(t)

	repo.findByEmailFunc = func(ctx context.Context, email string) (domain.User, error) {
		return domain.User{}, errors.New("connection reset")
	}

	_, err := svc.Login(context.Background(), "user@example.com", "pw-twelve-chars+")
	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "DATABASE_ERROR" {
		t.Errorf("expected DATABASE_ERROR, got %v", err)
	}
}

func TestService_Login_TokenVerifiesAfterLogin(t *testing.T) {
	svc, repo, _, _, clk := setupUserService(t)

	repo.findByEmailFunc = func(ctx context.Context, email string) (domain.User, error) {
		return domain.User{ID: "user-123", Email: email, PasswordHash: "hashed", CreatedAt: clk.Now()}, nil
	}

	result, err := svc.Login(context.Background(), "user@example.com", "pw-twelve-chars+")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	claims, err := svc.issuer.Verify(result.AccessToken)
	if err != nil {
		t.Fatalf("expected issued token to verify, got %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("expected subject user-123, got %s", claims.Subject)
	}
}
