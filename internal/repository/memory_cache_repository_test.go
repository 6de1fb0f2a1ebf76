package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

func TestMemoryCacheRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryCacheRepository(time.Minute)
	ctx := context.Background()

	var missing []models.AvailableClass
	require.ErrorIs(t, repo.Get(ctx, "classes:cs", &missing), appErrors.ErrCacheMiss)

	stored := []models.AvailableClass{{CourseCode: "CPSC449", SectionNumber: 1}}
	require.NoError(t, repo.Set(ctx, "classes:cs", stored, 0))
	stored[0].CourseCode = "MUTATED"

	var got []models.AvailableClass
	require.NoError(t, repo.Get(ctx, "classes:cs", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "CPSC449", got[0].CourseCode)
}

func TestMemoryCacheRepositoryDeleteByPattern(t *testing.T) {
	repo := NewMemoryCacheRepository(time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "classes:cs", []string{"a"}, time.Minute))
	require.NoError(t, repo.Set(ctx, "classes:math", []string{"b"}, time.Minute))
	require.NoError(t, repo.Set(ctx, "other:key", []string{"c"}, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "classes:*"))

	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "classes:cs", &dest), appErrors.ErrCacheMiss)
	assert.ErrorIs(t, repo.Get(ctx, "classes:math", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Get(ctx, "other:key", &dest))
	assert.Equal(t, []string{"c"}, dest)

	assert.Error(t, repo.DeleteByPattern(ctx, "[bad"))
}

func TestMemoryCacheRepositoryExpiry(t *testing.T) {
	repo := NewMemoryCacheRepository(time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "classes:cs", []string{"a"}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "classes:cs", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Close())
}
