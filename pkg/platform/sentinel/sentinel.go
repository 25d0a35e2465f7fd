// Package sentinel holds infrastructure errors shared across layers. Callers
// match them with errors.Is and translate them at the HTTP edge.
package sentinel

import "errors"

var (
	// ErrNotFound: no review session or stored entry under the given key.
	ErrNotFound = errors.New("not found")
	// ErrClosed: the component was shut down and accepts no more work.
	ErrClosed = errors.New("closed")
)
