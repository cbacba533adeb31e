package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	accountservice "github.com/HarryOMalley/eagle-bank/internal/account/service"
	"github.com/HarryOMalley/eagle-bank/internal/common/clock"
	commoncrypto "github.com/HarryOMalley/eagle-bank/internal/common/crypto"
	"github.com/HarryOMalley/eagle-bank/internal/common/logger"
	"github.com/HarryOMalley/eagle-bank/internal/common/token"
	userdomain "github.com/HarryOMalley/eagle-bank/internal/user/domain"
	userhttp "github.com/HarryOMalley/eagle-bank/internal/user/http"
	userrepo "github.com/HarryOMalley/eagle-bank/internal/user/repository"
	userservice "github.com/HarryOMalley/eagle-bank/internal/user/service"
)

type scenarioUserRepo struct {
	mu    sync.Mutex
	users map[userdomain.ID]userdomain.User
}

func newScenarioUserRepo() *scenarioUserRepo {
	return &scenarioUserRepo{users: make(map[userdomain.ID]userdomain.User)}
}

func (r *scenarioUserRepo) Create(ctx context.Context, user userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return userrepo.ErrEmailAlreadyExists
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *scenarioUserRepo) FindByEmail(ctx context.Context, email string) (userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (r *scenarioUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return userdomain.User{}, userrepo.ErrUserNotFound
	}
	return user, nil
}

func (r *scenarioUserRepo) Update(ctx context.Context, id userdomain.ID, patch userdomain.Patch) (userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return userdomain.User{}, userrepo.ErrUserNotFound
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return user, nil
}

func (r *scenarioUserRepo) Delete(ctx context.Context, id userdomain.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return userrepo.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// apiFixture composes the same handler graph main() builds, on top of
// in-memory stores.
type apiFixture struct {
	handler http.Handler
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()

	log, err := logger.New("", "test", "CRITICAL")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	issuer := token.NewIssuer("test-secret-at-least-32-bytes-long!!", time.Hour, clk)
	hasher := commoncrypto.NewBcryptHasher(bcrypt.MinCost)
	idGenerator := uuidGenerator{}

	accountRepo := newMemoryAccountRepo()
	accountSvc := accountservice.NewService(accountRepo, idGenerator, clk, log)

	usersRepo := newScenarioUserRepo()
	userSvc := userservice.NewService(usersRepo, accountSvc, hasher, idGenerator, issuer, clk, log)

	authenticate := token.Middleware(issuer, log)
	accountsHandler := authenticate(NewHandler(accountSvc, 30*time.Second, log))

	mux := http.NewServeMux()
	mux.Handle("/v1/auth/", userhttp.NewAuthHandler(userSvc, 30*time.Second, log))
	mux.Handle("/v1/users/", authenticate(userhttp.NewUsersHandler(userSvc, 30*time.Second, log)))
	mux.Handle("/v1/accounts", accountsHandler)
	mux.Handle("/v1/accounts/", accountsHandler)

	return &apiFixture{handler: mux}
}

func (f *apiFixture) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// The full journey: two users register, the first opens an account, the
// second cannot touch it, the first closes it and then removes their
// identity.
func TestAPI_FullLifecycle(t *testing.T) {
	f := setupAPI(t)

	rec := f.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email":     "u1@example.com",
		"password":  "pw-twelve-chars+",
		"firstName": "One",
		"lastName":  "User",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register u1: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var u1 userservice.View
	if err := json.NewDecoder(rec.Body).Decode(&u1); err != nil {
		t.Fatalf("register u1: decode: %v", err)
	}

	rec = f.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email":     "u2@example.com",
		"password":  "pw-twelve-chars+",
		"firstName": "Two",
		"lastName":  "User",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register u2: expected 201, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "u1@example.com",
		"password": "pw-twelve-chars+",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login u1: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var u1Login userservice.LoginResult
	if err := json.NewDecoder(rec.Body).Decode(&u1Login); err != nil {
		t.Fatalf("login u1: decode: %v", err)
	}
	if u1Login.TokenType != "Bearer" {
		t.Errorf("expected tokenType Bearer, got %s", u1Login.TokenType)
	}

	rec = f.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "u2@example.com",
		"password": "pw-twelve-chars+",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login u2: expected 200, got %d", rec.Code)
	}
	var u2Login userservice.LoginResult
	if err := json.NewDecoder(rec.Body).Decode(&u2Login); err != nil {
		t.Fatalf("login u2: decode: %v", err)
	}

	rec = f.do(t, http.MethodPost, "/v1/accounts", u1Login.AccessToken, map[string]string{
		"name": "Main",
		"type": "CURRENT",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var a1 accountservice.View
	if err := json.NewDecoder(rec.Body).Decode(&a1); err != nil {
		t.Fatalf("create account: decode: %v", err)
	}
	if a1.UserID != u1.ID {
		t.Errorf("expected account owner %s, got %s", u1.ID, a1.UserID)
	}

	rec = f.do(t, http.MethodGet, "/v1/accounts/"+a1.ID, u2Login.AccessToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("u2 reading u1's account: expected 403, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/v1/accounts/"+a1.ID, u1Login.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("u1 reading own account: expected 200, got %d", rec.Code)
	}

	// The open account blocks identity deletion.
	rec = f.do(t, http.MethodDelete, "/v1/users/"+u1.ID, u1Login.AccessToken, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("delete u1 with open account: expected 409, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, "/v1/accounts/"+a1.ID, u1Login.AccessToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete account: expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodDelete, "/v1/users/"+u1.ID, u1Login.AccessToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete u1: expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "u1@example.com",
		"password": "pw-twelve-chars+",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login after delete: expected 401, got %d", rec.Code)
	}
}
