package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "catalog")

	var dest []string
	assert.ErrorIs(t, repo.Get(context.Background(), "classes:CS", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "classes:CS", []string{"x"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "classes:*"))
	assert.NoError(t, repo.Close())
	assert.Equal(t, "catalog:classes:CS", repo.key("classes:CS"))
}
