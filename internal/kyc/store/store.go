// Package store is the Remote Record Store: cached reads of KYC records and
// the approve/reject mutations, with tag invalidation on success.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"kycreview/internal/kyc/models"
	"kycreview/internal/kyc/querycache"
	"kycreview/internal/kyc/remote"
	audit "kycreview/pkg/platform/audit"
	"kycreview/pkg/requestcontext"
)

const (
	endpointList   = "getAllKycs"
	endpointSingle = "getSingleKyc"
)

var invalidatedTags = []querycache.Tag{querycache.TagUser, querycache.TagKyc}

// RemoteClient is the authority's KYC API.
type RemoteClient interface {
	ListKYC(ctx context.Context) ([]models.KycRecord, error)
	GetKYC(ctx context.Context, id string) (*models.KycRecord, error)
	ApproveKYC(ctx context.Context, id string) error
	RejectKYC(ctx context.Context, req models.RejectRequest) error
}

// AuditPublisher records review decisions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Action names a mutation.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

type mutationKey struct {
	action Action
	id     string
}

type Store struct {
	remote         RemoteClient
	cache          *querycache.Cache
	auditPublisher AuditPublisher
	logger         *slog.Logger

	mu        sync.RWMutex
	mutations map[mutationKey]MutationState
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Store) {
		s.auditPublisher = publisher
	}
}

func New(client RemoteClient, cache *querycache.Cache, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("remote client is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("query cache is required")
	}

	s := &Store{
		remote:    client,
		cache:     cache,
		logger:    slog.Default(),
		mutations: make(map[mutationKey]MutationState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) listQuery() querycache.Query {
	return querycache.Query{
		Key:  querycache.Key{Endpoint: endpointList},
		Tags: invalidatedTags,
		Fetch: func(ctx context.Context) (any, error) {
			return s.remote.ListKYC(ctx)
		},
	}
}

func (s *Store) recordQuery(id string) querycache.Query {
	return querycache.Query{
		Key:     querycache.Key{Endpoint: endpointSingle, Arg: id},
		Tags:    invalidatedTags,
		NoStore: true,
		Fetch: func(ctx context.Context) (any, error) {
			return s.remote.GetKYC(ctx, id)
		},
	}
}

// ListKycRecords returns every record, served from cache until invalidated.
func (s *Store) ListKycRecords(ctx context.Context) ListState {
	return listStateFrom(s.cache.Query(ctx, s.listQuery()))
}

// GetKycRecord fetches one record. The read always revalidates against the
// authority and keeps the last known record while doing so.
func (s *Store) GetKycRecord(ctx context.Context, id string) RecordState {
	return recordStateFrom(s.cache.Query(ctx, s.recordQuery(id)))
}

// WatchRecord calls fn whenever the cached record id changes.
func (s *Store) WatchRecord(id string, fn func(RecordState)) (unsubscribe func()) {
	return s.cache.Subscribe(s.recordQuery(id), func(snap querycache.Snapshot) {
		fn(recordStateFrom(snap))
	})
}

// ApproveKycRecord approves id. On success every User and Kyc entry is
// invalidated before returning; on failure the cache is untouched and the
// remote error is returned as is.
func (s *Store) ApproveKycRecord(ctx context.Context, id string) error {
	key := mutationKey{ActionApprove, id}
	s.setMutation(key, MutationState{IsLoading: true})

	if err := s.remote.ApproveKYC(ctx, id); err != nil {
		s.setMutation(key, MutationState{IsError: true, Err: err})
		s.emit(ctx, audit.Event{
			Action:   string(audit.EventDecisionFailed),
			Subject:  id,
			Decision: string(models.StatusApproved),
			Reason:   remote.MessageOf(err, err.Error()),
		})
		return err
	}

	s.setMutation(key, MutationState{IsSuccess: true})
	s.cache.Invalidate(ctx, invalidatedTags...)
	s.emit(ctx, audit.Event{
		Action:   string(audit.EventKycApproved),
		Subject:  id,
		Decision: string(models.StatusApproved),
	})
	return nil
}

// RejectKycRecord rejects id with the given reason labels. An empty list is
// sent as an empty array. Invalidation follows ApproveKycRecord.
func (s *Store) RejectKycRecord(ctx context.Context, id string, reasons []string) error {
	if reasons == nil {
		reasons = []string{}
	}
	key := mutationKey{ActionReject, id}
	s.setMutation(key, MutationState{IsLoading: true})

	if err := s.remote.RejectKYC(ctx, models.RejectRequest{ID: id, Reasons: reasons}); err != nil {
		s.setMutation(key, MutationState{IsError: true, Err: err})
		s.emit(ctx, audit.Event{
			Action:   string(audit.EventDecisionFailed),
			Subject:  id,
			Decision: string(models.StatusRejected),
			Reasons:  reasons,
			Reason:   remote.MessageOf(err, err.Error()),
		})
		return err
	}

	s.setMutation(key, MutationState{IsSuccess: true})
	s.cache.Invalidate(ctx, invalidatedTags...)
	s.emit(ctx, audit.Event{
		Action:   string(audit.EventKycRejected),
		Subject:  id,
		Decision: string(models.StatusRejected),
		Reasons:  reasons,
	})
	return nil
}

// ApproveState reports the latest approve mutation for id.
func (s *Store) ApproveState(id string) MutationState {
	return s.mutation(mutationKey{ActionApprove, id})
}

// RejectState reports the latest reject mutation for id.
func (s *Store) RejectState(id string) MutationState {
	return s.mutation(mutationKey{ActionReject, id})
}

func (s *Store) setMutation(key mutationKey, state MutationState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations[key] = state
}

func (s *Store) mutation(key mutationKey) MutationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mutations[key]
}

// emit records an audit event. Audit failures are logged and never fail the
// decision, which the authority has already applied.
func (s *Store) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.ActorID = requestcontext.ActorID(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.Timestamp = requestcontext.Now(ctx)
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to record review decision",
			"action", event.Action,
			"kyc_id", event.Subject,
			"error", err,
		)
	}
}
