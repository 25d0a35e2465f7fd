package testutil

import (
	"net/http"

	"kycreview/pkg/requestcontext"
)

const (
	adminTokenHeader = "X-Admin-Token"
	adminActorHeader = "X-Admin-Actor"
)

// WithActor adds a reviewer identity to the request context.
// This simulates what the admin middleware does for authorized requests.
func WithActor(req *http.Request, actor string) *http.Request {
	return req.WithContext(requestcontext.WithActorID(req.Context(), actor))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithAdminHeaders sets the headers the admin middleware reads, for tests that
// exercise the full router. An empty actor leaves the actor header unset.
func WithAdminHeaders(req *http.Request, token, actor string) *http.Request {
	req.Header.Set(adminTokenHeader, token)
	if actor != "" {
		req.Header.Set(adminActorHeader, actor)
	}
	return req
}
