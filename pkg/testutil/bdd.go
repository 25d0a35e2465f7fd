package testutil

import "testing"

// Given, When and Then nest subtests so a failing review flow reads as a
// sentence in the test output, e.g.
// "TestOutbox/given_a_pending_record/when_approval_fails/then_the_dialog_stays_open".
func Given(t *testing.T, state string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("given "+state, fn)
}

func When(t *testing.T, action string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("when "+action, fn)
}

func Then(t *testing.T, outcome string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("then "+outcome, fn)
}
