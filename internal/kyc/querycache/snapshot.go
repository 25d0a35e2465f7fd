package querycache

import "time"

// Snapshot is the observable state of one cache entry.
type Snapshot struct {
	Key        Key
	Data       any
	Err        error
	IsLoading  bool
	IsFetching bool
	IsSuccess  bool
	IsError    bool
	Stale      bool
	FetchedAt  time.Time
}

// HasData reports whether a value was ever fetched for the entry.
func (s Snapshot) HasData() bool {
	return !s.FetchedAt.IsZero()
}
