package review

import (
	"context"

	"kycreview/internal/kyc/store"
)

// Notifier shows transient success and error messages.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Navigator moves the reviewer to another view.
type Navigator interface {
	Navigate(path string)
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(text string) error
}

// RecordStore is the part of the Remote Record Store a detail view uses.
type RecordStore interface {
	GetKycRecord(ctx context.Context, id string) store.RecordState
	ApproveKycRecord(ctx context.Context, id string) error
	RejectKycRecord(ctx context.Context, id string, reasons []string) error
	ApproveState(id string) store.MutationState
	RejectState(id string) store.MutationState
	WatchRecord(id string, fn func(store.RecordState)) (unsubscribe func())
}
