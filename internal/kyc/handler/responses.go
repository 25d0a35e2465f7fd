package handler

import (
	"kycreview/internal/kyc/review"
	audit "kycreview/pkg/platform/audit"
)

// SessionResponse carries a detail view and the side effects produced since
// the last response for the same session.
type SessionResponse struct {
	SessionID string            `json:"session_id"`
	View      review.DetailView `json:"view"`
	Effects   review.Effects    `json:"effects"`
}

type DecisionsResponse struct {
	Decisions []audit.Event `json:"decisions"`
}

func sessionResponse(sess *review.Session, view review.DetailView) SessionResponse {
	return SessionResponse{
		SessionID: sess.ID,
		View:      view,
		Effects:   sess.Drain(),
	}
}
