package requesttime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kycreview/pkg/requestcontext"
)

func TestWithClock(t *testing.T) {
	fixed := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	var seen []time.Time
	h := WithClock(func() time.Time { return fixed })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, requestcontext.Now(r.Context()), requestcontext.Now(r.Context()))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/kyc", nil))

	assert.Equal(t, []time.Time{fixed, fixed}, seen)
}

func TestMiddlewareUsesOneInstantPerRequest(t *testing.T) {
	var first, second time.Time
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = requestcontext.Now(r.Context())
		time.Sleep(time.Millisecond)
		second = requestcontext.Now(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/kyc", nil))

	assert.False(t, first.IsZero())
	assert.True(t, first.Equal(second))
}
