// Package handler exposes the review console over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"kycreview/internal/kyc/review"
	"kycreview/internal/kyc/store"
	"kycreview/internal/platform/metrics"
	"kycreview/internal/platform/middleware"
	dErrors "kycreview/pkg/domain-errors"
	audit "kycreview/pkg/platform/audit"
	"kycreview/pkg/platform/httputil"
	adminmw "kycreview/pkg/platform/middleware/admin"
	"kycreview/pkg/platform/middleware/metadata"
	"kycreview/pkg/platform/middleware/requesttime"
	platformstrings "kycreview/pkg/platform/strings"
)

const (
	defaultDecisionLimit = 50
	maxDecisionLimit     = 500
	maxBodyBytes         = 64 << 10
)

// ListReader serves the cached record list.
type ListReader interface {
	ListKycRecords(ctx context.Context) store.ListState
}

// SessionRegistry holds the open detail views.
type SessionRegistry interface {
	Open(ctx context.Context, recordID string) *review.Session
	Get(id string) (*review.Session, error)
	Close(id string) error
}

// DecisionReader lists recorded review decisions.
type DecisionReader interface {
	List(ctx context.Context, subject string) ([]audit.Event, error)
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler serves the list view, detail view sessions and the decision log.
type Handler struct {
	logger     *slog.Logger
	list       ListReader
	sessions   SessionRegistry
	decisions  DecisionReader
	metrics    *metrics.Metrics
	validate   *validator.Validate
	adminToken string
	adminHash  string
	listPath   string
	timeout    time.Duration
	now        func() time.Time
}

type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithAdminToken guards every route with the shared admin token.
func WithAdminToken(token string) Option {
	return func(h *Handler) { h.adminToken = token }
}

// WithAdminTokenHash guards every route with a bcrypt-hashed admin token. It
// takes precedence over WithAdminToken.
func WithAdminTokenHash(hash string) Option {
	return func(h *Handler) { h.adminHash = hash }
}

func WithListPath(path string) Option {
	return func(h *Handler) {
		if path != "" {
			h.listPath = path
		}
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

// WithClock sets the request time recorded on review decisions.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// New creates a new console Handler. decisions may be nil when no audit
// store is configured.
func New(list ListReader, sessions SessionRegistry, decisions DecisionReader, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:    logger,
		list:      list,
		sessions:  sessions,
		decisions: decisions,
		validate:  newValidator(),
		listPath:  review.DefaultListPath,
		timeout:   30 * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the console routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	consoleRouter := chi.NewRouter()
	consoleRouter.Use(middleware.Recovery(h.logger))
	consoleRouter.Use(middleware.RequestID)
	consoleRouter.Use(metadata.ClientMetadata)
	consoleRouter.Use(requesttime.WithClock(h.now))
	consoleRouter.Use(middleware.Logger(h.logger))
	consoleRouter.Use(middleware.Timeout(h.timeout))
	consoleRouter.Use(middleware.ContentTypeJSON)
	consoleRouter.Use(middleware.LatencyMiddleware(h.metrics))
	switch {
	case h.adminHash != "":
		consoleRouter.Use(adminmw.RequireAdminTokenHash(h.adminHash, h.logger))
	case h.adminToken != "":
		consoleRouter.Use(adminmw.RequireAdminToken(h.adminToken, h.logger))
	}

	consoleRouter.Get(h.listPath, h.handleList)
	consoleRouter.Route("/review/sessions", func(r chi.Router) {
		r.Post("/", h.handleOpenSession)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", h.handleGetSession)
			r.Delete("/", h.handleCloseSession)
			r.Post("/approve", h.handleOpenApprove)
			r.Post("/approve/confirm", h.handleConfirmApprove)
			r.Post("/reject", h.handleOpenReject)
			r.Put("/reject/reasons", h.handleSelectReasons)
			r.Post("/reject/confirm", h.handleConfirmReject)
			r.Post("/cancel", h.handleCancel)
			r.Put("/preview", h.handleSelectImage)
			r.Delete("/preview", h.handleDismissPreview)
			r.Post("/copy", h.handleCopy)
		})
	})
	consoleRouter.Get("/audit/decisions", h.handleDecisions)

	r.Mount("/", consoleRouter)
}

// handleList renders one page of the record list. Fetch failures are part of
// the view as a banner, not an error response.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := intQuery(r, "page", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pageSize, err := intQuery(r, "page_size", review.DefaultPageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ctx := r.Context()
	state := h.list.ListKycRecords(ctx)
	if state.IsError {
		h.logger.WarnContext(ctx, "failed to load kyc list",
			"request_id", middleware.GetRequestID(ctx),
			"error", state.Err,
		)
	}
	httputil.WriteJSON(w, http.StatusOK, review.BuildList(state, page, pageSize, h.listPath))
}

func (h *Handler) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req OpenSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	sess := h.sessions.Open(ctx, req.KycID)
	view := sess.Workflow.Detail(ctx)
	httputil.WriteJSON(w, http.StatusCreated, sessionResponse(sess, view))
}

// handleGetSession revalidates the record and returns the detail view.
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	view := sess.Workflow.Detail(r.Context())
	httputil.WriteJSON(w, http.StatusOK, sessionResponse(sess, view))
}

func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "sid")); err != nil {
		httputil.WriteError(w, toDomainError(err, "failed to close session"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleOpenApprove(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(sess *review.Session) error { return sess.Workflow.OpenApprove() })
}

func (h *Handler) handleOpenReject(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(sess *review.Session) error { return sess.Workflow.OpenReject() })
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(sess *review.Session) error { return sess.Workflow.Cancel() })
}

func (h *Handler) handleDismissPreview(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(sess *review.Session) error {
		sess.Workflow.DismissPreview()
		return nil
	})
}

func (h *Handler) handleSelectReasons(w http.ResponseWriter, r *http.Request) {
	var req SelectReasonsRequest
	if !h.decode(w, r, &req) {
		return
	}
	codes := platformstrings.DedupeAndTrimLower(req.Reasons)
	h.act(w, r, func(sess *review.Session) error { return sess.Workflow.SelectReasons(codes) })
}

func (h *Handler) handleSelectImage(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.act(w, r, func(sess *review.Session) error { return sess.Workflow.SelectImage(review.ImageSlot(req.Slot)) })
}

func (h *Handler) handleCopy(w http.ResponseWriter, r *http.Request) {
	var req CopyRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.act(w, r, func(sess *review.Session) error { return sess.CopyField(req.Field) })
}

func (h *Handler) handleConfirmApprove(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, review.MsgApproveFailed, func(ctx context.Context, sess *review.Session) error {
		return sess.Workflow.ConfirmApprove(ctx)
	})
}

func (h *Handler) handleConfirmReject(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, review.MsgRejectFailed, func(ctx context.Context, sess *review.Session) error {
		return sess.Workflow.ConfirmReject(ctx)
	})
}

// confirm submits a decision. A failed decision leaves its error notification
// in the session outbox for the next read.
func (h *Handler) confirm(w http.ResponseWriter, r *http.Request, fallback string, submit func(context.Context, *review.Session) error) {
	ctx := r.Context()
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := submit(ctx, sess); err != nil {
		h.logger.WarnContext(ctx, "review decision failed",
			"request_id", middleware.GetRequestID(ctx),
			"session_id", sess.ID,
			"kyc_id", sess.Workflow.RecordID(),
			"error", err,
		)
		httputil.WriteError(w, toDomainError(err, fallback))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse(sess, sess.Workflow.View()))
}

// act applies a local workflow change and returns the view without
// contacting the authority.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, fn func(*review.Session) error) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := fn(sess); err != nil {
		httputil.WriteError(w, toDomainError(err, "review action failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse(sess, sess.Workflow.View()))
}

// handleDecisions lists recorded decisions, newest first, or the full
// history of one record when kyc_id is given.
func (h *Handler) handleDecisions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.decisions == nil {
		httputil.WriteJSON(w, http.StatusOK, DecisionsResponse{Decisions: []audit.Event{}})
		return
	}

	var (
		events []audit.Event
		err    error
	)
	if subject := r.URL.Query().Get("kyc_id"); subject != "" {
		events, err = h.decisions.List(ctx, subject)
	} else {
		limit, qerr := intQuery(r, "limit", defaultDecisionLimit)
		if qerr != nil {
			httputil.WriteError(w, qerr)
			return
		}
		if limit <= 0 || limit > maxDecisionLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be between 1 and 500"))
			return
		}
		events, err = h.decisions.Recent(ctx, limit)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list review decisions",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list decisions"))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, DecisionsResponse{Decisions: events})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*review.Session, bool) {
	sess, err := h.sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		httputil.WriteError(w, toDomainError(err, "failed to load session"))
		return nil, false
	}
	return sess, true
}

// decode reads and validates a JSON body, writing the error response itself
// when it fails.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	ctx := r.Context()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		h.logger.WarnContext(ctx, "invalid console request",
			"request_id", middleware.GetRequestID(ctx),
			"path", r.URL.Path,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	if err := h.validate.StructCtx(ctx, dst); err != nil {
		httputil.WriteError(w, validationError(err))
		return false
	}
	return true
}

func intQuery(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, key+" must be an integer")
	}
	return v, nil
}
