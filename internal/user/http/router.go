package http

import (
	"net/http"
	"strings"
	"time"

	commonhttp "github.com/HarryOMalley/eagle-bank/internal/common/http"
	"github.com/HarryOMalley/eagle-bank/internal/common/logger"
	"github.com/HarryOMalley/eagle-bank/internal/common/token"
	"github.com/HarryOMalley/eagle-bank/internal/user/domain"
	"github.com/HarryOMalley/eagle-bank/internal/user/service"
)

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=12,max=72"`
	FirstName string `json:"firstName" validate:"required,max=64"`
	LastName  string `json:"lastName" validate:"required,max=64"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=64"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=64"`
}

type AuthHandler struct {
	users   *service.Service
	timeout time.Duration
	log     *logger.Logger
}

// NewAuthHandler serves the public credential endpoints.
func NewAuthHandler(users *service.Service, timeout time.Duration, log *logger.Logger) http.Handler {
	h := &AuthHandler{users: users, timeout: timeout, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/register", commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(timeout)(h.register)))
	mux.HandleFunc("/v1/auth/login", commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(timeout)(h.login)))
	return mux
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("register failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	view, err := h.users.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, view)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("login failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, result)
}

type UsersHandler struct {
	users   *service.Service
	timeout time.Duration
	log     *logger.Logger
}

// NewUsersHandler serves /v1/users/{userId}; it must run behind the token
// middleware, which is what puts the verified claims into the context.
func NewUsersHandler(users *service.Service, timeout time.Duration, log *logger.Logger) http.Handler {
	h := &UsersHandler{users: users, timeout: timeout, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/users/", commonhttp.WithTimeout(timeout)(h.user))
	return mux
}

func (h *UsersHandler) user(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "unauthorized", nil, "")
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	if userID == "" || strings.Contains(userID, "/") {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid path", nil, "")
		return
	}
	if err := commonhttp.ValidateUUID(userID); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidIDFormat, "userId must be a UUID", nil, "")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, claims.Subject, userID)
	case http.MethodPatch:
		h.update(w, r, claims.Subject, userID)
	case http.MethodDelete:
		h.delete(w, r, claims.Subject, userID)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request, requesterID, userID string) {
	view, err := h.users.Get(r.Context(), requesterID, userID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, view)
}

func (h *UsersHandler) update(w http.ResponseWriter, r *http.Request, requesterID, userID string) {
	var req updateUserRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	view, err := h.users.Update(r.Context(), requesterID, userID, domain.Patch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, view)
}

func (h *UsersHandler) delete(w http.ResponseWriter, r *http.Request, requesterID, userID string) {
	if err := h.users.Delete(r.Context(), requesterID, userID); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
