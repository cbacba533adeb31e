package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HarryOMalley/eagle-bank/internal/common/clock"
	"github.com/HarryOMalley/eagle-bank/internal/common/constants"
	commoncrypto "github.com/HarryOMalley/eagle-bank/internal/common/crypto"
	commonerrors "github.com/HarryOMalley/eagle-bank/internal/common/errors"
	"github.com/HarryOMalley/eagle-bank/internal/common/guard"
	"github.com/HarryOMalley/eagle-bank/internal/common/logger"
	"github.com/HarryOMalley/eagle-bank/internal/common/token"
	"github.com/HarryOMalley/eagle-bank/internal/observability/metrics"
	"github.com/HarryOMalley/eagle-bank/internal/user/domain"
	"github.com/HarryOMalley/eagle-bank/internal/user/repository"
)

// AccountCounter is the slice of the account store the user service needs:
// deleting a user is blocked while it still owns accounts.
type AccountCounter interface {
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

type Service struct {
	repo        repository.Repository
	accounts    AccountCounter
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	issuer      *token.Issuer
	clock       clock.Clock
	log         *logger.Logger
}

func NewService(
	repo repository.Repository,
	accounts AccountCounter,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	issuer *token.Issuer,
	clk clock.Clock,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:        repo,
		accounts:    accounts,
		hasher:      hasher,
		idGenerator: idGenerator,
		issuer:      issuer,
		clock:       clk,
		log:         log,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type View struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LoginResult struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

// Register creates a new identity. No token is issued here; login is a
// separate, explicit step.
func (s *Service) Register(ctx context.Context, input RegisterInput) (View, error) {
	s.log.WithFields(ctx, logger.Fields{
		"email":  input.Email,
		"action": "register_attempt",
	}).Info("register attempt")

	if err := validateRegisterInput(input); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("validation_failed").Inc()
		return View{}, err
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_email_taken",
		}).Warn("register failed: email taken")
		metrics.RegistrationsTotal.WithLabelValues("email_taken").Inc()
		return View{}, commonerrors.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return View{}, commonerrors.ErrDatabase.WithCause(err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return View{}, commonerrors.ErrInternal.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return View{}, commonerrors.ErrInternal.WithCause(err)
	}

	now := s.clock.Now()
	user := domain.User{
		ID:           domain.ID(id),
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// The unique index closes the lookup/insert race.
		if errors.Is(err, repository.ErrEmailAlreadyExists) {
			metrics.RegistrationsTotal.WithLabelValues("email_taken").Inc()
			return View{}, commonerrors.ErrEmailTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_create_failed",
		}).Errorf("register failed: %v", err)
		return View{}, commonerrors.ErrDatabase.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"email":   user.Email,
		"user_id": string(user.ID),
		"action":  "register_success",
	}).Info("register success")
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	return toView(user), nil
}

// Login verifies credentials and issues an access token. An unknown email
// and a wrong password return the identical error so the response cannot be
// used to enumerate registered emails.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"email":  email,
		"action": "login_attempt",
	}).Info("login attempt")

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "login_user_not_found",
			}).Warn("login failed: not found")
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return LoginResult{}, commonerrors.ErrInvalidCredentials
		}
		return LoginResult{}, commonerrors.ErrDatabase.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "login_invalid_password",
		}).Warn("login failed: invalid password")
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return LoginResult{}, commonerrors.ErrInvalidCredentials
	}

	accessToken, err := s.issuer.Issue(string(user.ID), user.Email)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":   email,
			"user_id": string(user.ID),
			"action":  "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		return LoginResult{}, commonerrors.ErrInternal.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"email":   user.Email,
		"user_id": string(user.ID),
		"action":  "login_success",
	}).Info("login success")
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return LoginResult{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.issuer.TTL().Seconds()),
	}, nil
}

// Get returns a user's own profile. Profiles are self-service: requesting
// any other user's record is Forbidden before the store is even consulted.
func (s *Service) Get(ctx context.Context, requesterID, userID string) (View, error) {
	if err := guard.Authorize(requesterID, userID); err != nil {
		metrics.OwnershipDenialsTotal.WithLabelValues("user").Inc()
		return View{}, err
	}

	user, err := s.repo.FindByID(ctx, domain.ID(userID))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return View{}, commonerrors.ErrUserNotFound
		}
		return View{}, commonerrors.ErrDatabase.WithCause(err)
	}

	return toView(user), nil
}

func (s *Service) Update(ctx context.Context, requesterID, userID string, patch domain.Patch) (View, error) {
	if err := guard.Authorize(requesterID, userID); err != nil {
		metrics.OwnershipDenialsTotal.WithLabelValues("user").Inc()
		return View{}, err
	}

	if patch.Empty() {
		return View{}, commonerrors.ErrEmptyPatch
	}

	user, err := s.repo.Update(ctx, domain.ID(userID), patch)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return View{}, commonerrors.ErrUserNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "user_update_failed",
		}).Errorf("user update failed: %v", err)
		return View{}, commonerrors.ErrDatabase.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "user_update_success",
	}).Info("user update success")

	return toView(user), nil
}

// Delete removes a user's own identity, but only once it owns no accounts.
// The count and the delete are separate statements; a concurrently created
// account can slip between them, which is an accepted staleness window, and
// a concurrent delete surfaces as NotFound rather than a storage error.
func (s *Service) Delete(ctx context.Context, requesterID, userID string) error {
	if err := guard.Authorize(requesterID, userID); err != nil {
		metrics.OwnershipDenialsTotal.WithLabelValues("user").Inc()
		return err
	}

	count, err := s.accounts.CountByOwner(ctx, userID)
	if err != nil {
		return commonerrors.ErrDatabase.WithCause(err)
	}
	if count > 0 {
		s.log.WithFields(ctx, logger.Fields{
			"user_id":  userID,
			"accounts": count,
			"action":   "user_delete_conflict",
		}).Warn("user delete blocked: owned accounts remain")
		metrics.UserDeleteConflicts.Inc()
		return commonerrors.ErrUserHasAccounts
	}

	if err := s.repo.Delete(ctx, domain.ID(userID)); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return commonerrors.ErrUserNotFound
		}
		return commonerrors.ErrDatabase.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "user_delete_success",
	}).Info("user delete success")
	metrics.UsersDeleted.Inc()

	return nil
}

// The boundary layer validates request DTOs; these checks only guard the
// structural invariants the core cannot assume were enforced upstream.
func validateRegisterInput(input RegisterInput) error {
	details := map[string]any{}
	if input.Email == "" {
		details["email"] = "is required"
	}
	if len(input.Password) < constants.PasswordMinLength {
		details["password"] = fmt.Sprintf("must be at least %d characters", constants.PasswordMinLength)
	}
	if input.FirstName == "" {
		details["firstName"] = "is required"
	}
	if input.LastName == "" {
		details["lastName"] = "is required"
	}
	if len(details) > 0 {
		return commonerrors.ErrValidation.WithDetails(details)
	}
	return nil
}

func toView(user domain.User) View {
	return View{
		ID:        string(user.ID),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
