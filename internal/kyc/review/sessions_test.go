package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycreview/internal/kyc/models"
	"kycreview/internal/kyc/remote"
	"kycreview/pkg/platform/sentinel"
	"kycreview/pkg/testutil"
)

func TestSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("open, get and close", func(t *testing.T) {
		var open []int
		sessions := NewSessions(newRecordStore(newFakeRemote(kycRecord("abc123", models.StatusPending))),
			WithSessionGauge(func(n int) { open = append(open, n) }),
		)

		sess := sessions.Open(ctx, "abc123")
		got, err := sessions.Get(sess.ID)
		require.NoError(t, err)
		assert.Same(t, sess, got)
		assert.Equal(t, "abc123", got.Workflow.RecordID())
		assert.Equal(t, 1, sessions.Len())

		require.NoError(t, sessions.Close(sess.ID))
		assert.Equal(t, 0, sessions.Len())
		assert.Equal(t, []int{1, 0}, open)

		_, err = sessions.Get(sess.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.ErrorIs(t, sessions.Close(sess.ID), sentinel.ErrNotFound)
	})

	t.Run("closed sessions stop receiving refetches", func(t *testing.T) {
		fake := newFakeRemote(kycRecord("abc123", models.StatusPending), kycRecord("other", models.StatusPending))
		st := newRecordStore(fake)
		sessions := NewSessions(st)

		watching := sessions.Open(ctx, "abc123")
		watching.Workflow.Detail(ctx)
		closed := sessions.Open(ctx, "abc123")
		closed.Workflow.Detail(ctx)
		require.NoError(t, sessions.Close(closed.ID))

		require.NoError(t, st.ApproveKycRecord(ctx, "abc123"))

		assert.Equal(t, models.StatusApproved, watching.Workflow.Record().Status)
		assert.Equal(t, models.StatusPending, closed.Workflow.Record().Status)
	})

	t.Run("custom list path", func(t *testing.T) {
		sessions := NewSessions(newRecordStore(newFakeRemote(kycRecord("abc123", models.StatusPending))), WithSessionListPath("/admin/kyc"))
		sess := sessions.Open(ctx, "abc123")
		sess.Workflow.Detail(ctx)

		require.NoError(t, sess.Workflow.OpenApprove())
		require.NoError(t, sess.Workflow.ConfirmApprove(ctx))

		assert.Equal(t, "/admin/kyc", sess.Drain().Redirect)
	})

	t.Run("expire idle sessions", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		sessions := NewSessions(newRecordStore(newFakeRemote()), WithSessionClock(func() time.Time { return now }))

		idle := sessions.Open(ctx, "a")
		active := sessions.Open(ctx, "b")

		now = now.Add(20 * time.Minute)
		_, err := sessions.Get(active.ID)
		require.NoError(t, err)

		now = now.Add(20 * time.Minute)
		assert.Equal(t, 1, sessions.Expire(30*time.Minute))

		_, err = sessions.Get(idle.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = sessions.Get(active.ID)
		assert.NoError(t, err)
	})

	t.Run("copy before load", func(t *testing.T) {
		sessions := NewSessions(newRecordStore(newFakeRemote()))
		sess := sessions.Open(ctx, "abc123")

		assert.ErrorIs(t, sess.CopyField("id"), ErrNoRecord)
	})

	t.Run("drain returns an empty notification list", func(t *testing.T) {
		sessions := NewSessions(newRecordStore(newFakeRemote()))
		effects := sessions.Open(ctx, "abc123").Drain()

		assert.NotNil(t, effects.Notifications)
		assert.Empty(t, effects.Notifications)
		assert.Empty(t, effects.Redirect)
	})
}

func TestSessionOutbox(t *testing.T) {
	ctx := context.Background()

	testutil.Given(t, "a pending record under review", func(t *testing.T) {
		fake := newFakeRemote(kycRecord("abc123", models.StatusPending))
		sess := NewSessions(newRecordStore(fake)).Open(ctx, "abc123")
		sess.Workflow.Detail(ctx)

		testutil.When(t, "the authority refuses the approval", func(t *testing.T) {
			fake.approveErr = &remote.Error{Kind: remote.KindHTTP, Op: remote.OpApprove, Status: 409, Message: "KYC already processed"}
			require.NoError(t, sess.Workflow.OpenApprove())
			require.Error(t, sess.Workflow.ConfirmApprove(ctx))

			testutil.Then(t, "the authority's message is queued without a redirect", func(t *testing.T) {
				effects := sess.Drain()
				require.Len(t, effects.Notifications, 1)
				assert.Equal(t, NotifyError, effects.Notifications[0].Kind)
				assert.Equal(t, "KYC already processed", effects.Notifications[0].Message)
				assert.Empty(t, effects.Redirect)
			})
			testutil.Then(t, "the dialog stays open for a retry", func(t *testing.T) {
				assert.Equal(t, StateConfirmApprove, sess.Workflow.State())
			})
		})

		testutil.When(t, "the retry succeeds", func(t *testing.T) {
			fake.approveErr = nil
			require.NoError(t, sess.Workflow.ConfirmApprove(ctx))

			testutil.Then(t, "a success toast and a redirect are queued once", func(t *testing.T) {
				effects := sess.Drain()
				require.Len(t, effects.Notifications, 1)
				assert.Equal(t, NotifySuccess, effects.Notifications[0].Kind)
				assert.Equal(t, MsgApproved, effects.Notifications[0].Message)
				assert.Equal(t, DefaultListPath, effects.Redirect)

				again := sess.Drain()
				assert.Empty(t, again.Notifications)
				assert.Empty(t, again.Redirect)
			})
		})
	})
}
