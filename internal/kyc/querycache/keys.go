package querycache

import "context"

// Tag groups cache entries for invalidation.
type Tag string

const (
	TagUser Tag = "User"
	TagKyc  Tag = "Kyc"
)

// Key identifies one cached query result.
type Key struct {
	Endpoint string
	Arg      string
}

func (k Key) String() string {
	if k.Arg == "" {
		return k.Endpoint
	}
	return k.Endpoint + "/" + k.Arg
}

// FetchFunc loads the value for a query.
type FetchFunc func(ctx context.Context) (any, error)

// Query describes a cacheable read.
type Query struct {
	Key  Key
	Tags []Tag
	// NoStore queries revalidate on every read but keep the last good value
	// for display.
	NoStore bool
	Fetch   FetchFunc
}

func (q Query) hasTag(tags []Tag) bool {
	for _, want := range tags {
		for _, have := range q.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
