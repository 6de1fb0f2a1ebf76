package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCache struct{ err error }

func (f failingCache) Get(ctx context.Context, key string, dest interface{}) error { return f.err }
func (f failingCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return f.err
}
func (f failingCache) DeleteByPattern(ctx context.Context, pattern string) error { return f.err }

func TestCacheServiceHitAndMiss(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMemoryCache(), metrics, time.Minute, nil, true)

	var dest []string
	hit, err := svc.Get(context.Background(), "classes:cpsc", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), "classes:cpsc", []string{"CPSC449"}, 0))
	hit, err = svc.Get(context.Background(), "classes:cpsc", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"CPSC449"}, dest)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses))
}

func TestCacheServiceDisabled(t *testing.T) {
	svc := NewCacheService(failingCache{err: errors.New("unreachable")}, nil, 0, nil, false)

	hit, err := svc.Get(context.Background(), "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.NoError(t, svc.Invalidate(context.Background(), "k*"))
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	svc := NewCacheService(failingCache{err: errors.New("unreachable")}, nil, 0, nil, true)

	_, err := svc.Get(context.Background(), "k", &struct{}{})
	assert.Error(t, err)
	assert.Error(t, svc.Invalidate(context.Background(), "k*"))
}
