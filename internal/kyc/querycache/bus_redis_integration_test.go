//go:build integration

package querycache_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycreview/internal/kyc/querycache"
	"kycreview/pkg/testutil/containers"
)

type RedisBusSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisBusSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBusSuite))
}

func (s *RedisBusSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisBusSuite) TestPeerInvalidationRefetchesSubscribedEntries() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := "kycreview:test:" + s.T().Name()
	busA := querycache.NewRedisBus(s.redis.Client, channel, nil)
	busB := querycache.NewRedisBus(s.redis.NewClient(s.T()), channel, nil)
	cacheA := querycache.New(querycache.WithPublisher(busA))
	cacheB := querycache.New(querycache.WithPublisher(busB))

	var selfApplied atomic.Int32
	go func() {
		_ = busA.Run(ctx, func(ctx context.Context, tags ...querycache.Tag) {
			selfApplied.Add(1)
			cacheA.ApplyRemote(ctx, tags...)
		})
	}()
	go func() { _ = busB.Run(ctx, cacheB.ApplyRemote) }()

	var calls atomic.Int32
	q := querycache.Query{
		Key:  querycache.Key{Endpoint: "list"},
		Tags: []querycache.Tag{querycache.TagUser, querycache.TagKyc},
		Fetch: func(context.Context) (any, error) {
			return calls.Add(1), nil
		},
	}
	unsubscribe := cacheB.Subscribe(q, func(querycache.Snapshot) {})
	defer unsubscribe()
	cacheB.Query(ctx, q)

	// Allow both subscriptions to be confirmed before publishing.
	s.Eventually(func() bool {
		n, err := s.redis.Client.PubSubNumSub(ctx, channel).Result()
		return err == nil && n[channel] == 2
	}, 5*time.Second, 20*time.Millisecond)

	cacheA.Invalidate(ctx, querycache.TagKyc)

	s.Eventually(func() bool { return calls.Load() == 2 }, 5*time.Second, 20*time.Millisecond)
	s.Never(func() bool { return selfApplied.Load() > 0 }, 200*time.Millisecond, 20*time.Millisecond)
}
