package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rentwise/internal/verification/analysis/mocks"
	"rentwise/internal/verification/models"
)

func TestCacheKeys(t *testing.T) {
	ref := "https://uploads.example/doc.png?sig=secret"

	key := documentKey(ref, models.DocumentPassport)
	assert.NotContains(t, key, "secret")
	assert.Equal(t, key, documentKey(ref, models.DocumentPassport))
	assert.NotEqual(t, key, documentKey(ref, models.DocumentNationalID))
	assert.NotEqual(t, selfieKey(ref), selfieKey(ref+"x"))
	assert.Len(t, selfieKey(ref), len(selfieKeyPrefix)+64)
}

// unreachableRedis fails every command fast with a dial error.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCacheMetrics(t *testing.T) {
	t.Run("counts on the injected registry and falls through on redis errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mocks.NewMockAnalyzer(ctrl)
		reg := prometheus.NewRegistry()
		cache := NewRedisCache(next, unreachableRedis(t), WithCacheMetrics(reg))

		want := models.SelfieAnalysis{FaceDetected: true, Confidence: 0.9}
		next.EXPECT().AnalyzeSelfie(gomock.Any(), "selfie.png").Return(want, nil)

		got, err := cache.AnalyzeSelfie(context.Background(), "selfie.png")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, 1.0, testutil.ToFloat64(cache.lookups.WithLabelValues("selfie", "error")))

		count, err := testutil.GatherAndCount(reg, "rentwise_vision_cache_lookups_total")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("separate registries do not collide", func(t *testing.T) {
		next := mocks.NewMockAnalyzer(gomock.NewController(t))
		assert.NotPanics(t, func() {
			NewRedisCache(next, unreachableRedis(t), WithCacheMetrics(prometheus.NewRegistry()))
			NewRedisCache(next, unreachableRedis(t), WithCacheMetrics(prometheus.NewRegistry()))
		})
	})

	t.Run("no registerer means no metrics", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mocks.NewMockAnalyzer(ctrl)
		cache := NewRedisCache(next, unreachableRedis(t), WithCacheMetrics(nil))
		assert.Nil(t, cache.lookups)

		next.EXPECT().AnalyzeDocument(gomock.Any(), "doc.png", models.DocumentPassport).
			Return(models.DocumentAnalysis{IsValid: true}, nil)
		_, err := cache.AnalyzeDocument(context.Background(), "doc.png", models.DocumentPassport)
		assert.NoError(t, err)
	})
}
