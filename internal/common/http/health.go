package http

import (
	"net/http"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/HarryOMalley/eagle-bank/internal/common/logger"
)

func HealthHandler(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteErrorEnvelope(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", nil, "")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// DBHealthHandler pings the pool so operators can tell a dead database from
// a dead process.
func DBHealthHandler(pool *pgxpool.Pool, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteErrorEnvelope(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", nil, "")
			return
		}

		if err := pool.Ping(r.Context()); err != nil {
			log.Errorf("db health check failed: %v", err)
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"db": "unavailable"})
			return
		}

		WriteJSON(w, http.StatusOK, map[string]string{"db": "ok"})
	}
}
