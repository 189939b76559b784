package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/tidycsv/internal/audit"
	"github.com/JonMunkholm/tidycsv/internal/logging"
	"github.com/JonMunkholm/tidycsv/internal/web/middleware"
)

// withRequestMetadata adds the client address, user agent and session ID to
// ctx for audit entries and log lines.
func withRequestMetadata(ctx context.Context, r *http.Request, sessionID string) context.Context {
	ctx = audit.WithClient(ctx, middleware.ClientIP(r), r.UserAgent())
	return logging.WithSession(ctx, sessionID)
}
