package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kycreview/pkg/requestcontext"
)

func serve(t *testing.T, mw func(http.Handler) http.Handler, token, actor string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var seenActor string
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenActor = requestcontext.ActorID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/kyc", nil)
	if token != "" {
		req.Header.Set(tokenHeader, token)
	}
	if actor != "" {
		req.Header.Set(actorHeader, actor)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, seenActor
}

func TestRequireAdminToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mw := RequireAdminToken("secret", logger)

	t.Run("valid token names the actor", func(t *testing.T) {
		rr, actor := serve(t, mw, "secret", "jane@ops")
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "jane@ops", actor)
	})

	t.Run("missing actor defaults", func(t *testing.T) {
		_, actor := serve(t, mw, "secret", "")
		assert.Equal(t, defaultActor, actor)
	})

	t.Run("wrong token", func(t *testing.T) {
		rr, _ := serve(t, mw, "nope", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"unauthorized","error_description":"admin token required"}`, rr.Body.String())
	})

	t.Run("empty expected token rejects everything", func(t *testing.T) {
		rr, _ := serve(t, RequireAdminToken("", logger), "", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequireAdminTokenHash(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	mw := RequireAdminTokenHash(string(hash), logger)

	rr, _ := serve(t, mw, "secret", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr, _ = serve(t, mw, "other", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = serve(t, mw, "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
