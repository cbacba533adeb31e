package service

import (
	"context"
	"errors"
	"time"

	"github.com/HarryOMalley/eagle-bank/internal/account/domain"
	"github.com/HarryOMalley/eagle-bank/internal/account/repository"
	"github.com/HarryOMalley/eagle-bank/internal/common/clock"
	commoncrypto "github.com/HarryOMalley/eagle-bank/internal/common/crypto"
	commonerrors "github.com/HarryOMalley/eagle-bank/internal/common/errors"
	"github.com/HarryOMalley/eagle-bank/internal/common/guard"
	"github.com/HarryOMalley/eagle-bank/internal/common/logger"
	"github.com/HarryOMalley/eagle-bank/internal/observability/metrics"
)

type Service struct {
	repo        repository.Repository
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

func NewService(
	repo repository.Repository,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:        repo,
		idGenerator: idGenerator,
		clock:       clk,
		log:         log,
	}
}

type CreateInput struct {
	Name string
	Type domain.AccountType
}

type View struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Create opens an account for the authenticated caller. The owner comes
// from the verified token, never from the request body.
func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (View, error) {
	if input.Name == "" {
		return View{}, commonerrors.ErrValidation.WithDetails(map[string]any{"name": "is required"})
	}
	if !input.Type.Valid() {
		return View{}, commonerrors.ErrInvalidAccountType
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return View{}, commonerrors.ErrInternal.WithCause(err)
	}

	now := s.clock.Now()
	account, err := s.repo.Create(ctx, domain.Account{
		ID:        domain.ID(id),
		UserID:    ownerID,
		Name:      input.Name,
		Type:      input.Type,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": ownerID,
			"action":  "account_create_failed",
		}).Errorf("account create failed: %v", err)
		return View{}, commonerrors.ErrDatabase.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id":    ownerID,
		"account_id": string(account.ID),
		"action":     "account_create_success",
	}).Info("account create success")
	metrics.AccountsCreated.Inc()

	return toView(account), nil
}

func (s *Service) ListForOwner(ctx context.Context, ownerID string) ([]View, error) {
	accounts, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, commonerrors.ErrDatabase.WithCause(err)
	}

	views := make([]View, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, toView(a))
	}
	return views, nil
}

// CountByOwner reports how many accounts a user still holds. The user
// service consults it before allowing an identity to be deleted.
func (s *Service) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	count, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return 0, commonerrors.ErrDatabase.WithCause(err)
	}
	return count, nil
}

// Get fetches by id regardless of owner, then checks existence before
// ownership. A nonexistent id is NotFound for everyone; a live id owned by
// someone else is Forbidden.
func (s *Service) Get(ctx context.Context, requesterID, accountID string) (View, error) {
	account, err := s.fetchAuthorized(ctx, requesterID, accountID)
	if err != nil {
		return View{}, err
	}
	return toView(account), nil
}

func (s *Service) Update(ctx context.Context, requesterID, accountID string, patch domain.Patch) (View, error) {
	if patch.Empty() {
		return View{}, commonerrors.ErrEmptyPatch
	}

	if _, err := s.fetchAuthorized(ctx, requesterID, accountID); err != nil {
		return View{}, err
	}

	account, err := s.repo.Update(ctx, domain.ID(accountID), patch)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return View{}, commonerrors.ErrAccountNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"account_id": accountID,
			"action":     "account_update_failed",
		}).Errorf("account update failed: %v", err)
		return View{}, commonerrors.ErrDatabase.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"account_id": accountID,
		"action":     "account_update_success",
	}).Info("account update success")

	return toView(account), nil
}

func (s *Service) Delete(ctx context.Context, requesterID, accountID string) error {
	if _, err := s.fetchAuthorized(ctx, requesterID, accountID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, domain.ID(accountID)); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return commonerrors.ErrAccountNotFound
		}
		return commonerrors.ErrDatabase.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"account_id": accountID,
		"action":     "account_delete_success",
	}).Info("account delete success")
	metrics.AccountsDeleted.Inc()

	return nil
}

func (s *Service) fetchAuthorized(ctx context.Context, requesterID, accountID string) (domain.Account, error) {
	account, err := s.repo.FindByID(ctx, domain.ID(accountID))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domain.Account{}, commonerrors.ErrAccountNotFound
		}
		return domain.Account{}, commonerrors.ErrDatabase.WithCause(err)
	}

	if err := guard.Authorize(requesterID, account.UserID); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"account_id":   accountID,
			"requester_id": requesterID,
			"action":       "account_ownership_denied",
		}).Warn("account access denied: not the owner")
		metrics.OwnershipDenialsTotal.WithLabelValues("account").Inc()
		return domain.Account{}, err
	}

	return account, nil
}

func toView(account domain.Account) View {
	balance := account.Balance
	if balance == "" {
		balance = "0.00"
	}
	return View{
		ID:        string(account.ID),
		UserID:    account.UserID,
		Name:      account.Name,
		Type:      string(account.Type),
		Balance:   balance,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}
