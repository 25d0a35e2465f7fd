package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"kycreview/pkg/platform/secrets"
	"kycreview/pkg/requestcontext"
)

const (
	tokenHeader = "X-Admin-Token"
	actorHeader = "X-Admin-Actor"

	defaultActor = "admin"
)

// RequireAdminToken guards console routes with a shared admin token. The
// optional X-Admin-Actor header names the reviewer for the audit trail.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return guard(logger, func(token string) bool {
		// Use constant-time comparison to prevent timing attacks
		return expectedToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) == 1
	})
}

// RequireAdminTokenHash is RequireAdminToken for a token stored as a bcrypt
// hash.
func RequireAdminTokenHash(hash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return guard(logger, func(token string) bool {
		return hash != "" && token != "" && secrets.Verify(token, hash) == nil
	})
}

func guard(logger *slog.Logger, valid func(token string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !valid(r.Header.Get(tokenHeader)) {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}

			actor := r.Header.Get(actorHeader)
			if actor == "" {
				actor = defaultActor
			}
			ctx := requestcontext.WithActorID(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
