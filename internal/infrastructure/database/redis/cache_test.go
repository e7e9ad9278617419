package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/ClauseLens/pkg/errors"
)

type prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type CacheSuite struct {
	suite.Suite
	client *Client
	cache  Cache
	ctx    context.Context
}

func (s *CacheSuite) SetupTest() {
	c, _ := newTestClient(s.T())
	s.client = c
	s.cache = NewRedisCache(c, logging.NewNopLogger(), WithPrefix("test:"), WithDefaultTTL(time.Minute))
	s.ctx = context.Background()
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) TestSetThenGet() {
	in := prediction{Label: "HIGH", Confidence: 0.9}
	s.Require().NoError(s.cache.Set(s.ctx, "p1", in, 0))

	var out prediction
	s.Require().NoError(s.cache.Get(s.ctx, "p1", &out))
	s.Equal(in, out)

	raw, err := s.client.Get(s.ctx, "test:p1").Result()
	s.Require().NoError(err)
	s.JSONEq(`{"label":"HIGH","confidence":0.9}`, raw)
}

func (s *CacheSuite) TestGetMiss() {
	var out prediction
	s.ErrorIs(s.cache.Get(s.ctx, "missing", &out), ErrCacheMiss)
}

func (s *CacheSuite) TestGetCorrupt() {
	s.Require().NoError(s.client.Set(s.ctx, "test:bad", "{not json", 0).Err())
	var out prediction
	s.True(apperrors.IsCode(s.cache.Get(s.ctx, "bad", &out), apperrors.ErrCodeSerialization))
}

func (s *CacheSuite) TestSetUnmarshalable() {
	s.True(apperrors.IsCode(s.cache.Set(s.ctx, "ch", make(chan int), 0), apperrors.ErrCodeSerialization))
}

func (s *CacheSuite) TestDelete() {
	s.Require().NoError(s.cache.Set(s.ctx, "a", 1, 0))
	s.Require().NoError(s.cache.Delete(s.ctx, "a"))
	s.NoError(s.cache.Delete(s.ctx))

	var v int
	s.ErrorIs(s.cache.Get(s.ctx, "a", &v), ErrCacheMiss)
}

func (s *CacheSuite) TestGetOrSet_LoadsOnce() {
	var calls int32
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return prediction{Label: "LOW", Confidence: 0.2}, nil
	}

	for i := 0; i < 3; i++ {
		var out prediction
		s.Require().NoError(s.cache.GetOrSet(s.ctx, "p", &out, time.Minute, loader))
		s.Equal("LOW", out.Label)
	}
	s.EqualValues(1, atomic.LoadInt32(&calls))
}

func (s *CacheSuite) TestGetOrSet_Concurrent() {
	var calls int32
	release := make(chan struct{})
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return prediction{Label: "MEDIUM"}, nil
	}

	var wg sync.WaitGroup
	results := make([]prediction, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.cache.GetOrSet(s.ctx, "c", &results[i], time.Minute, loader)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	s.LessOrEqual(atomic.LoadInt32(&calls), int32(5))
	for _, r := range results {
		s.Equal("MEDIUM", r.Label)
	}
}

func (s *CacheSuite) TestGetOrSet_LoaderError() {
	boom := errors.New("backend down")
	var out prediction
	err := s.cache.GetOrSet(s.ctx, "e", &out, time.Minute, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	s.ErrorIs(err, boom)

	s.ErrorIs(s.cache.Get(s.ctx, "e", &out), ErrCacheMiss, "errors are not cached")
}

func (s *CacheSuite) TestGetOrSet_NilCachesMiss() {
	var calls int
	loader := func(context.Context) (interface{}, error) {
		calls++
		return nil, nil
	}
	var out prediction
	s.ErrorIs(s.cache.GetOrSet(s.ctx, "n", &out, time.Minute, loader), ErrCacheMiss)
	s.ErrorIs(s.cache.GetOrSet(s.ctx, "n", &out, time.Minute, loader), ErrCacheMiss)
	s.Equal(1, calls)
}

func (s *CacheSuite) TestDeleteByPrefix() {
	for _, k := range []string{"llm:a", "llm:b", "gnn:a"} {
		s.Require().NoError(s.cache.Set(s.ctx, k, k, 0))
	}
	n, err := s.cache.DeleteByPrefix(s.ctx, "llm:")
	s.Require().NoError(err)
	s.EqualValues(2, n)

	var v string
	s.NoError(s.cache.Get(s.ctx, "gnn:a", &v))
	s.Equal("gnn:a", v)
}

func (s *CacheSuite) TestPing() {
	s.NoError(s.cache.Ping(s.ctx))
}

func TestJitterTTL(t *testing.T) {
	c := &redisCache{}
	assert.Equal(t, time.Duration(0), c.jitterTTL(0))
	for i := 0; i < 50; i++ {
		got := c.jitterTTL(100 * time.Second)
		require.GreaterOrEqual(t, got, 90*time.Second)
		require.LessOrEqual(t, got, 110*time.Second)
	}
}
