package http

import (
	"net/http"

	"github.com/HarryOMalley/eagle-bank/internal/common/constants"
	"github.com/HarryOMalley/eagle-bank/internal/common/httpmetrics"
	"github.com/HarryOMalley/eagle-bank/internal/common/logger"
)

// BuildBaseHandler wraps the application handler in the ambient middleware
// stack shared by every route.
func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	metricsWrap := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return SecurityHeadersMiddleware(recovery(TraceIDMiddleware(maxRequestSize(metricsWrap.Wrap(handler)))))
}
