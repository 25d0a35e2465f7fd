package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycreview/internal/kyc/models"
	"kycreview/internal/kyc/remote"
)

// =============================================================================
// Review Workflow Test Suite
// =============================================================================
// Drives a detail view session against the real record store backed by an
// in-memory authority, and checks the side effects the reviewer sees.

type WorkflowSuite struct {
	suite.Suite
	ctx      context.Context
	remote   *fakeRemote
	sessions *Sessions
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) SetupTest() {
	s.ctx = context.Background()
	s.remote = newFakeRemote(
		kycRecord("abc123", models.StatusUnderReview),
		kycRecord("pend-0001-xyz", models.StatusPending),
		kycRecord("done-0001", models.StatusApproved),
	)
	s.sessions = NewSessions(newRecordStore(s.remote))
}

func (s *WorkflowSuite) TearDownTest() {
	s.sessions.CloseAll()
}

// open mounts a session and loads its record.
func (s *WorkflowSuite) open(id string) *Session {
	sess := s.sessions.Open(s.ctx, id)
	view := sess.Workflow.Detail(s.ctx)
	s.Require().Equal(LoadReady, view.Load)
	return sess
}

func (s *WorkflowSuite) TestApprove() {
	s.Run("success notifies, navigates to the list and refreshes the record", func() {
		sess := s.open("abc123")

		s.Require().NoError(sess.Workflow.OpenApprove())
		s.Equal(StateConfirmApprove, sess.Workflow.State())

		s.Require().NoError(sess.Workflow.ConfirmApprove(s.ctx))

		s.Equal(StateIdle, sess.Workflow.State())
		s.Equal([]string{"abc123"}, s.remote.approves())

		effects := sess.Drain()
		s.Require().Len(effects.Notifications, 1)
		s.Equal(NotifySuccess, effects.Notifications[0].Kind)
		s.Equal(MsgApproved, effects.Notifications[0].Message)
		s.Equal(DefaultListPath, effects.Redirect)

		// The subscribed record was refetched before ConfirmApprove returned.
		s.Equal(models.StatusApproved, sess.Workflow.Record().Status)
	})

	s.Run("failure shows the authority message and keeps the dialog open", func() {
		sess := s.open("pend-0001-xyz")
		s.remote.approveErr = &remote.Error{Kind: remote.KindHTTP, Op: remote.OpApprove, Status: 409, Message: "KYC already processed"}
		defer func() { s.remote.approveErr = nil }()

		s.Require().NoError(sess.Workflow.OpenApprove())
		err := sess.Workflow.ConfirmApprove(s.ctx)

		s.Require().Error(err)
		s.Equal(remote.KindHTTP, remote.KindOf(err))
		s.Equal(StateConfirmApprove, sess.Workflow.State())

		effects := sess.Drain()
		s.Require().Len(effects.Notifications, 1)
		s.Equal(NotifyError, effects.Notifications[0].Kind)
		s.Equal("KYC already processed", effects.Notifications[0].Message)
		s.Empty(effects.Redirect)
	})

	s.Run("confirm without the dialog open is refused", func() {
		sess := s.open("pend-0001-xyz")
		s.ErrorIs(sess.Workflow.ConfirmApprove(s.ctx), ErrNoDialog)
	})
}

func (s *WorkflowSuite) TestReject() {
	s.Run("failure keeps the dialog and the selected reasons", func() {
		sess := s.open("pend-0001-xyz")
		s.remote.rejectErr = &remote.Error{Kind: remote.KindHTTP, Op: remote.OpReject, Status: 500}
		defer func() { s.remote.rejectErr = nil }()

		s.Require().NoError(sess.Workflow.OpenReject())
		s.Require().NoError(sess.Workflow.SelectReasons([]string{"document_issue"}))
		err := sess.Workflow.ConfirmReject(s.ctx)

		s.Require().Error(err)
		s.Equal(StateConfirmReject, sess.Workflow.State())
		s.Equal([]models.RejectionReason{{Value: "document_issue", Label: "Document Not Clear"}}, sess.Workflow.SelectedReasons())

		calls := s.remote.rejects()
		s.Require().Len(calls, 1)
		s.Equal(models.RejectRequest{ID: "pend-0001-xyz", Reasons: []string{"Document Not Clear"}}, calls[0])

		effects := sess.Drain()
		s.Require().Len(effects.Notifications, 1)
		s.Equal(NotifyError, effects.Notifications[0].Kind)
		s.Equal(MsgRejectFailed, effects.Notifications[0].Message)
	})

	s.Run("success sends labels in selection order without duplicates", func() {
		sess := s.open("pend-0001-xyz")

		s.Require().NoError(sess.Workflow.OpenReject())
		s.Require().NoError(sess.Workflow.SelectReasons([]string{"expired_document", "document_issue", "expired_document"}))
		s.Require().NoError(sess.Workflow.ConfirmReject(s.ctx))

		calls := s.remote.rejects()
		s.Equal([]string{"Expired Document", "Document Not Clear"}, calls[len(calls)-1].Reasons)
		s.Equal(StateIdle, sess.Workflow.State())
		s.Empty(sess.Workflow.SelectedReasons())

		effects := sess.Drain()
		s.Equal(MsgRejected, effects.Notifications[0].Message)
		s.Equal(DefaultListPath, effects.Redirect)
	})
}

func (s *WorkflowSuite) TestRejectWithoutReasons() {
	sess := s.open("abc123")

	s.Require().NoError(sess.Workflow.OpenReject())
	s.Require().NoError(sess.Workflow.ConfirmReject(s.ctx))

	calls := s.remote.rejects()
	s.Require().Len(calls, 1)
	s.NotNil(calls[0].Reasons)
	s.Empty(calls[0].Reasons)
}

func (s *WorkflowSuite) TestSelectReasons() {
	sess := s.open("abc123")

	s.Run("outside the reject dialog", func() {
		s.ErrorIs(sess.Workflow.SelectReasons([]string{"document_issue"}), ErrNoDialog)
	})

	s.Run("unknown code leaves the selection unchanged", func() {
		s.Require().NoError(sess.Workflow.OpenReject())
		s.Require().NoError(sess.Workflow.SelectReasons([]string{"invalid_document"}))

		err := sess.Workflow.SelectReasons([]string{"document_issue", "blurry"})

		s.ErrorIs(err, ErrUnknownReason)
		s.Equal([]models.RejectionReason{{Value: "invalid_document", Label: "Invalid Document Type"}}, sess.Workflow.SelectedReasons())
	})

	s.Run("reasons survive cancel and reopen", func() {
		s.Require().NoError(sess.Workflow.Cancel())
		s.Require().NoError(sess.Workflow.OpenReject())
		s.Len(sess.Workflow.SelectedReasons(), 1)
	})
}

func (s *WorkflowSuite) TestDecidedRecordIsReadOnly() {
	sess := s.open("done-0001")
	view := sess.Workflow.Detail(s.ctx)

	s.False(view.Approve.Enabled)
	s.False(view.Reject.Enabled)
	s.Equal(TooltipDisabled, view.Approve.Tooltip)
	s.Equal(TooltipDisabled, view.Reject.Tooltip)

	s.ErrorIs(sess.Workflow.OpenApprove(), ErrActionDisabled)
	s.ErrorIs(sess.Workflow.OpenReject(), ErrActionDisabled)
	s.Equal(StateIdle, sess.Workflow.State())
	s.Empty(s.remote.approves())
}

func (s *WorkflowSuite) TestSubmitting() {
	sess := s.open("abc123")
	s.remote.gate = make(chan struct{})
	defer func() { s.remote.gate = nil }()

	s.Require().NoError(sess.Workflow.OpenApprove())
	done := make(chan error, 1)
	go func() { done <- sess.Workflow.ConfirmApprove(s.ctx) }()

	s.Require().Eventually(func() bool {
		return sess.Workflow.State() == StateSubmitting
	}, time.Second, 5*time.Millisecond)

	view := sess.Workflow.Detail(s.ctx)
	s.Equal("Approving...", view.Dialog.ConfirmLabel)
	s.True(view.Busy)
	s.False(view.Approve.Enabled)
	s.True(view.Approve.Loading)

	s.ErrorIs(sess.Workflow.Cancel(), ErrSubmitting)
	s.ErrorIs(sess.Workflow.OpenReject(), ErrActionDisabled)
	s.ErrorIs(sess.Workflow.ConfirmApprove(s.ctx), ErrSubmitting)

	close(s.remote.gate)
	s.Require().NoError(<-done)
	s.Equal(StateIdle, sess.Workflow.State())
	s.Equal([]string{"abc123"}, s.remote.approves())
}

func (s *WorkflowSuite) TestCancel() {
	sess := s.open("abc123")
	s.Require().NoError(sess.Workflow.OpenApprove())

	s.Require().NoError(sess.Workflow.Cancel())

	s.Equal(StateIdle, sess.Workflow.State())
	s.Empty(s.remote.approves())
}

func (s *WorkflowSuite) TestPreview() {
	sess := s.open("abc123")

	s.Require().NoError(sess.Workflow.SelectImage(SlotDocumentFront))
	s.Equal(&Preview{Slot: SlotDocumentFront, URL: "https://img.example/front.jpg"}, sess.Workflow.Preview())

	s.Require().NoError(sess.Workflow.SelectImage(SlotSelfie))
	s.Equal(&Preview{Slot: SlotSelfie, URL: "https://img.example/selfie.jpg"}, sess.Workflow.Preview())
	s.Equal(sess.Workflow.Preview(), sess.Workflow.Detail(s.ctx).Preview)

	sess.Workflow.DismissPreview()
	s.Nil(sess.Workflow.Preview())
	s.Nil(sess.Workflow.Detail(s.ctx).Preview)
}

func (s *WorkflowSuite) TestPreviewMissingImage() {
	s.remote.records["bare"] = models.KycRecord{ID: "bare", Status: models.StatusPending}
	sess := s.open("bare")

	s.ErrorIs(sess.Workflow.SelectImage(SlotDocumentBack), ErrNoImage)
	s.Nil(sess.Workflow.Preview())

	view := sess.Workflow.Detail(s.ctx)
	s.Empty(view.Images)
	s.Equal(NoImagesText, view.NoImages)
}

func (s *WorkflowSuite) TestCopyField() {
	sess := s.open("abc123")

	s.Require().NoError(sess.CopyField("user_id"))
	s.Require().NoError(sess.CopyField("customer_id"))
	s.ErrorIs(sess.CopyField("name"), ErrUnknownField)

	effects := sess.Drain()
	s.Equal([]string{"user-0001-abcdef", "CUST-42"}, effects.Clipboard)
	s.Require().Len(effects.Notifications, 2)
	for _, n := range effects.Notifications {
		s.Equal(MsgCopied, n.Message)
	}

	s.Empty(sess.Drain().Clipboard)
}

func (s *WorkflowSuite) TestCopyMissingIdentifier() {
	s.remote.records["bare"] = models.KycRecord{ID: "bare", Status: models.StatusPending}
	sess := s.open("bare")

	s.ErrorIs(sess.CopyField("user_id"), ErrEmptyField)
	s.ErrorIs(sess.CopyField("customer_id"), ErrEmptyField)
	s.Require().NoError(sess.CopyField("id"))

	effects := sess.Drain()
	s.Equal([]string{"bare"}, effects.Clipboard)
	s.Require().Len(effects.Notifications, 1)
	s.Equal(MsgCopied, effects.Notifications[0].Message)
}
