package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/abel-rois666/Generador-Horarios-CUOM/pkg/errors"
)

func TestCacheRepositoryWithoutClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "horarios:result:x", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "horarios:result:x", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "horarios:*"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryWrapsBackendErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	repo := NewCacheRepository(client, nil)
	defer repo.Close()

	var dest map[string]string
	err := repo.Get(context.Background(), "horarios:result:x", &dest)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Contains(t, err.Error(), "redis get horarios:result:x")

	err = repo.Set(context.Background(), "horarios:result:x", "v", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set")
}
