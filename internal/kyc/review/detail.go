package review

import (
	"context"

	"kycreview/internal/kyc/models"
	"kycreview/internal/kyc/remote"
	"kycreview/internal/kyc/store"
)

// LoadState is the fetch state of a detail view.
type LoadState string

const (
	LoadLoading  LoadState = "loading"
	LoadError    LoadState = "error"
	LoadNotFound LoadState = "not_found"
	LoadReady    LoadState = "ready"
)

type LoadErrorView struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// RecordView holds display-ready record fields. Full identifiers are kept
// next to their truncated forms for copying.
type RecordView struct {
	Title           string `json:"title"`
	ID              string `json:"id"`
	ShortID         string `json:"short_id"`
	Created         string `json:"created"`
	Status          string `json:"status"`
	Badge           Badge  `json:"badge"`
	Name            string `json:"name"`
	DOB             string `json:"dob"`
	Address         string `json:"address"`
	City            string `json:"city"`
	Country         string `json:"country"`
	IDType          string `json:"id_type"`
	UserID          string `json:"user_id,omitempty"`
	UserIDShort     string `json:"user_id_short"`
	CustomerID      string `json:"customer_id,omitempty"`
	CustomerIDLabel string `json:"customer_id_label"`
}

type ActionButton struct {
	Enabled bool   `json:"enabled"`
	Loading bool   `json:"loading"`
	Tooltip string `json:"tooltip"`
}

type DialogView struct {
	State        State                    `json:"state"`
	Title        string                   `json:"title,omitempty"`
	Prompt       string                   `json:"prompt,omitempty"`
	ConfirmLabel string                   `json:"confirm_label,omitempty"`
	Selected     []models.RejectionReason `json:"selected_reasons"`
	Options      []models.RejectionReason `json:"reason_options,omitempty"`
}

// DetailView is everything the detail page renders.
type DetailView struct {
	RecordID string         `json:"record_id"`
	Load     LoadState      `json:"load"`
	Error    *LoadErrorView `json:"error,omitempty"`
	Message  string         `json:"message,omitempty"`
	Record   *RecordView    `json:"record,omitempty"`
	Images   []ImageTile    `json:"images"`
	NoImages string         `json:"no_images,omitempty"`
	Approve  ActionButton   `json:"approve"`
	Reject   ActionButton   `json:"reject"`
	Busy     bool           `json:"busy"`
	Dialog   DialogView     `json:"dialog"`
	Preview  *Preview       `json:"preview,omitempty"`
}

// Detail revalidates the record against the authority and builds the view.
func (w *Workflow) Detail(ctx context.Context) DetailView {
	rs := w.store.GetKycRecord(ctx, w.recordID)
	approve := w.store.ApproveState(w.recordID)
	reject := w.store.RejectState(w.recordID)

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case rs.IsSuccess:
		w.record = rs.Record
	case rs.IsError && remote.IsNotFound(rs.Err):
		w.record = nil
	}
	return w.buildView(rs, approve, reject)
}

// View builds the view from the last loaded record without contacting the
// authority.
func (w *Workflow) View() DetailView {
	approve := w.store.ApproveState(w.recordID)
	reject := w.store.RejectState(w.recordID)

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buildView(store.RecordState{Record: w.record, IsSuccess: w.record != nil}, approve, reject)
}

// buildView assembles the view. Caller holds w.mu.
func (w *Workflow) buildView(rs store.RecordState, approve, reject store.MutationState) DetailView {
	view := DetailView{
		RecordID: w.recordID,
		Images:   []ImageTile{},
		Dialog:   w.dialogView(),
		Approve:  actionButton(false, approve.IsLoading, TooltipApprove),
		Reject:   actionButton(false, reject.IsLoading, TooltipReject),
	}
	if w.preview != nil {
		p := *w.preview
		view.Preview = &p
	}

	switch {
	case rs.IsLoading:
		view.Load = LoadLoading
		return view
	case rs.IsError && !remote.IsNotFound(rs.Err):
		view.Load = LoadError
		view.Error = &LoadErrorView{Title: LoadErrorTitle, Message: remote.MessageOf(rs.Err, LoadErrorFallback)}
		return view
	case w.record == nil:
		view.Load = LoadNotFound
		view.Message = NotFoundText
		return view
	}

	rec := w.record
	view.Load = LoadReady
	view.Record = recordView(rec)
	view.Images = ImageTiles(rec)
	if len(view.Images) == 0 {
		view.NoImages = NoImagesText
	}

	canAct := rec.CanAct()
	view.Approve = actionButton(canAct, approve.IsLoading, TooltipApprove)
	view.Reject = actionButton(canAct, reject.IsLoading, TooltipReject)
	view.Busy = approve.IsLoading || reject.IsLoading
	return view
}

func actionButton(canAct, loading bool, tooltip string) ActionButton {
	if !canAct {
		tooltip = TooltipDisabled
	}
	return ActionButton{Enabled: canAct && !loading, Loading: loading, Tooltip: tooltip}
}

func (w *Workflow) dialogView() DialogView {
	d := DialogView{State: w.state, Selected: append([]models.RejectionReason{}, w.reasons...)}

	kind := w.state
	if kind == StateSubmitting {
		kind = w.returnTo
	}
	name := Placeholder
	if w.record != nil && w.record.Profile != nil {
		name = orPlaceholder(w.record.Profile.FullName)
	}

	switch kind {
	case StateConfirmApprove:
		d.Title = "Approve KYC"
		d.Prompt = "Are you sure you want to approve this KYC for " + name + "?"
		d.ConfirmLabel = "Approve"
		if w.state == StateSubmitting {
			d.ConfirmLabel = "Approving..."
		}
	case StateConfirmReject:
		d.Title = "Reject KYC"
		d.ConfirmLabel = "Reject KYC"
		d.Options = models.RejectionReasons()
	}
	return d
}

func recordView(rec *models.KycRecord) *RecordView {
	v := &RecordView{
		ID:              rec.ID,
		ShortID:         ShortID(rec.ID),
		Created:         FormatDate(rec.CreatedAt),
		Status:          string(rec.Status),
		Badge:           BadgeFor(rec.Status),
		Name:            Placeholder,
		DOB:             Placeholder,
		Address:         Placeholder,
		City:            Placeholder,
		Country:         Placeholder,
		IDType:          Placeholder,
		UserID:          rec.UserID,
		UserIDShort:     ShortID(rec.UserID),
		CustomerID:      rec.CustomerID,
		CustomerIDLabel: orPlaceholder(rec.CustomerID),
	}
	if p := rec.Profile; p != nil {
		v.Name = orPlaceholder(p.FullName)
		v.DOB = FormatDOB(p.DOB)
		v.Address = orPlaceholder(p.Address)
		v.City = orPlaceholder(p.City)
		v.Country = orPlaceholder(p.Country)
	}
	if rec.Document != nil {
		v.IDType = orPlaceholder(rec.Document.Type)
	}
	v.Title = v.Name + " — KYC Details"
	return v
}
