package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	accounthttp "github.com/HarryOMalley/eagle-bank/internal/account/http"
	accountrepo "github.com/HarryOMalley/eagle-bank/internal/account/repository"
	accountservice "github.com/HarryOMalley/eagle-bank/internal/account/service"
	"github.com/HarryOMalley/eagle-bank/internal/common/clock"
	"github.com/HarryOMalley/eagle-bank/internal/common/config"
	commoncrypto "github.com/HarryOMalley/eagle-bank/internal/common/crypto"
	"github.com/HarryOMalley/eagle-bank/internal/common/db"
	commonhttp "github.com/HarryOMalley/eagle-bank/internal/common/http"
	"github.com/HarryOMalley/eagle-bank/internal/common/logger"
	srv "github.com/HarryOMalley/eagle-bank/internal/common/server"
	"github.com/HarryOMalley/eagle-bank/internal/common/token"
	userhttp "github.com/HarryOMalley/eagle-bank/internal/user/http"
	userrepo "github.com/HarryOMalley/eagle-bank/internal/user/repository"
	userservice "github.com/HarryOMalley/eagle-bank/internal/user/service"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "api", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	clk := clock.NewRealClock()
	hasher := commoncrypto.NewBcryptHasher(cfg.BcryptCost)
	idGenerator := commoncrypto.NewUUIDGenerator()
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, clk)

	accountRepo := accountrepo.NewPgRepository(pool)
	accountService := accountservice.NewService(accountRepo, idGenerator, clk, log)

	userRepo := userrepo.NewPgRepository(pool)
	userService := userservice.NewService(userRepo, accountService, hasher, idGenerator, issuer, clk, log)

	authHandler := userhttp.NewAuthHandler(userService, cfg.RequestTimeout, log)
	usersHandler := userhttp.NewUsersHandler(userService, cfg.RequestTimeout, log)
	accountsHandler := accounthttp.NewHandler(accountService, cfg.RequestTimeout, log)

	authenticate := token.Middleware(issuer, log)

	mux := http.NewServeMux()
	mux.Handle("/v1/auth/", authHandler)
	mux.Handle("/v1/users/", authenticate(usersHandler))
	mux.Handle("/v1/accounts", authenticate(accountsHandler))
	mux.Handle("/v1/accounts/", authenticate(accountsHandler))
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.HandleFunc("/health/db", commonhttp.DBHealthHandler(pool, log))
	mux.Handle("/metrics", promhttp.Handler())

	rateLimiter := commonhttp.NewStrictRateLimiter()
	baseHandler := commonhttp.BuildBaseHandler(log, mux)

	rateLimitMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == "/health" || path == "/health/db" || path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			rateLimiter.MiddlewareForPath(path)(next).ServeHTTP(w, r)
		})
	}

	finalHandler := rateLimitMiddleware(baseHandler)

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, finalHandler)

	// The pool closes via the deferred Close above, after Shutdown has
	// drained in-flight requests. Closing it in a hook would run before the
	// drain and fail those requests.
	srv.StartWithGracefulShutdown(server, log)
}
