package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/HarryOMalley/eagle-bank/internal/account/domain"
	"github.com/HarryOMalley/eagle-bank/internal/account/service"
	commonhttp "github.com/HarryOMalley/eagle-bank/internal/common/http"
	"github.com/HarryOMalley/eagle-bank/internal/common/logger"
	"github.com/HarryOMalley/eagle-bank/internal/common/token"
)

type createAccountRequest struct {
	Name string `json:"name" validate:"required,min=1,max=128"`
	Type string `json:"type" validate:"required,oneof=CURRENT SAVINGS"`
}

type updateAccountRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=128"`
}

type Handler struct {
	accounts *service.Service
	timeout  time.Duration
	log      *logger.Logger
}

// NewHandler serves /v1/accounts; it must run behind the token middleware.
func NewHandler(accounts *service.Service, timeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{accounts: accounts, timeout: timeout, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/accounts", commonhttp.WithTimeout(timeout)(h.collection))
	mux.HandleFunc("/v1/accounts/", commonhttp.WithTimeout(timeout)(h.item))
	return mux
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "unauthorized", nil, "")
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.create(w, r, claims.Subject)
	case http.MethodGet:
		h.list(w, r, claims.Subject)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) item(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "unauthorized", nil, "")
		return
	}

	accountID := strings.TrimPrefix(r.URL.Path, "/v1/accounts/")
	if accountID == "" || strings.Contains(accountID, "/") {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid path", nil, "")
		return
	}
	if err := commonhttp.ValidateUUID(accountID); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidIDFormat, "accountId must be a UUID", nil, "")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, claims.Subject, accountID)
	case http.MethodPatch:
		h.update(w, r, claims.Subject, accountID)
	case http.MethodDelete:
		h.delete(w, r, claims.Subject, accountID)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req createAccountRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	view, err := h.accounts.Create(r.Context(), ownerID, service.CreateInput{
		Name: req.Name,
		Type: domain.AccountType(req.Type),
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, ownerID string) {
	views, err := h.accounts.ListForOwner(r.Context(), ownerID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, requesterID, accountID string) {
	view, err := h.accounts.Get(r.Context(), requesterID, accountID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, requesterID, accountID string) {
	var req updateAccountRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	view, err := h.accounts.Update(r.Context(), requesterID, accountID, domain.Patch{Name: req.Name})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, requesterID, accountID string) {
	if err := h.accounts.Delete(r.Context(), requesterID, accountID); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
