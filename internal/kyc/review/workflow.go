package review

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"kycreview/internal/kyc/models"
	"kycreview/internal/kyc/remote"
)

// State is the position of a detail view's decision dialog.
type State string

const (
	StateIdle           State = "idle"
	StateConfirmApprove State = "confirm-approve"
	StateConfirmReject  State = "confirm-reject"
	StateSubmitting     State = "submitting"
)

// DefaultListPath is where the reviewer is sent after a decision.
const DefaultListPath = "/kyc"

// Preview is the image currently shown enlarged.
type Preview struct {
	Slot ImageSlot `json:"slot"`
	URL  string    `json:"url"`
}

// Ports bundles the side-effect sinks of a workflow.
type Ports struct {
	Notifier  Notifier
	Navigator Navigator
	Clipboard Clipboard
}

// Workflow drives the approve/reject sequence of one detail view.
//
// The mutex guards dialog state only; it is released while a decision is
// being sent so the view stays readable during submission.
type Workflow struct {
	recordID string
	store    RecordStore
	ports    Ports
	listPath string

	mu       sync.Mutex
	record   *models.KycRecord
	state    State
	returnTo State
	reasons  []models.RejectionReason
	preview  *Preview
}

type WorkflowOption func(*Workflow)

// WithListPath overrides DefaultListPath.
func WithListPath(path string) WorkflowOption {
	return func(w *Workflow) {
		if path != "" {
			w.listPath = path
		}
	}
}

func NewWorkflow(recordID string, st RecordStore, ports Ports, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		recordID: recordID,
		store:    st,
		ports:    ports,
		listPath: DefaultListPath,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) RecordID() string { return w.recordID }

// SetRecord replaces the record the workflow decides on.
func (w *Workflow) SetRecord(rec *models.KycRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record = rec
}

func (w *Workflow) Record() *models.KycRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// SelectedReasons returns the reasons chosen in the reject dialog.
func (w *Workflow) SelectedReasons() []models.RejectionReason {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.reasons)
}

func (w *Workflow) Preview() *Preview {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.preview == nil {
		return nil
	}
	p := *w.preview
	return &p
}

// OpenApprove opens the approve confirmation.
func (w *Workflow) OpenApprove() error {
	return w.open(StateConfirmApprove, w.store.ApproveState(w.recordID).IsLoading)
}

// OpenReject opens the reject confirmation. Previously selected reasons are
// kept.
func (w *Workflow) OpenReject() error {
	return w.open(StateConfirmReject, w.store.RejectState(w.recordID).IsLoading)
}

func (w *Workflow) open(target State, mutationInFlight bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateSubmitting || mutationInFlight || !w.record.CanAct() {
		return ErrActionDisabled
	}
	w.state = target
	return nil
}

// SelectReasons replaces the selected rejection reasons with the given codes,
// in order and without duplicates. Any unknown code leaves the selection
// unchanged.
func (w *Workflow) SelectReasons(values []string) error {
	selected := make([]models.RejectionReason, 0, len(values))
	for _, v := range values {
		r, ok := models.LookupReason(v)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownReason, v)
		}
		if !slices.Contains(selected, r) {
			selected = append(selected, r)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateConfirmReject:
		w.reasons = selected
		return nil
	case StateSubmitting:
		return ErrSubmitting
	default:
		return ErrNoDialog
	}
}

// ConfirmApprove submits the approval. On success the reviewer is notified
// and sent back to the list; on failure the dialog stays open and the
// authority's message, or a generic one, is shown.
func (w *Workflow) ConfirmApprove(ctx context.Context) error {
	if _, err := w.beginSubmit(StateConfirmApprove); err != nil {
		return err
	}
	err := w.store.ApproveKycRecord(ctx, w.recordID)
	return w.settle(err, MsgApproved, MsgApproveFailed)
}

// ConfirmReject submits the rejection with the labels of the selected
// reasons, which may be empty.
func (w *Workflow) ConfirmReject(ctx context.Context) error {
	reasons, err := w.beginSubmit(StateConfirmReject)
	if err != nil {
		return err
	}
	err = w.store.RejectKycRecord(ctx, w.recordID, models.ReasonLabels(reasons))
	return w.settle(err, MsgRejected, MsgRejectFailed)
}

func (w *Workflow) beginSubmit(from State) ([]models.RejectionReason, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.state == StateSubmitting:
		return nil, ErrSubmitting
	case w.state != from:
		return nil, ErrNoDialog
	case !w.record.CanAct():
		return nil, ErrActionDisabled
	}
	w.state = StateSubmitting
	w.returnTo = from
	return slices.Clone(w.reasons), nil
}

func (w *Workflow) settle(err error, successMsg, fallback string) error {
	w.mu.Lock()
	if err != nil {
		w.state = w.returnTo
		w.mu.Unlock()
		w.notifyError(remote.MessageOf(err, fallback))
		return err
	}
	w.state = StateIdle
	w.reasons = nil
	w.mu.Unlock()

	w.notifySuccess(successMsg)
	if w.ports.Navigator != nil {
		w.ports.Navigator.Navigate(w.listPath)
	}
	return nil
}

// Cancel closes any open dialog. It is refused while submitting.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateSubmitting {
		return ErrSubmitting
	}
	w.state = StateIdle
	return nil
}

// SelectImage previews the image in slot, replacing any current preview.
func (w *Workflow) SelectImage(slot ImageSlot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	url := imageURL(w.record, slot)
	if url == "" {
		return ErrNoImage
	}
	w.preview = &Preview{Slot: slot, URL: url}
	return nil
}

// DismissPreview clears the preview.
func (w *Workflow) DismissPreview() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.preview = nil
}

// Copy writes text to the clipboard and confirms with a notification.
// Clipboard failures are not reported.
func (w *Workflow) Copy(text string) {
	if w.ports.Clipboard != nil {
		_ = w.ports.Clipboard.WriteText(text)
	}
	w.notifySuccess(MsgCopied)
}

func (w *Workflow) notifySuccess(msg string) {
	if w.ports.Notifier != nil {
		w.ports.Notifier.Success(msg)
	}
}

func (w *Workflow) notifyError(msg string) {
	if w.ports.Notifier != nil {
		w.ports.Notifier.Error(msg)
	}
}
