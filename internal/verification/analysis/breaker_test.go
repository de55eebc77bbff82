package analysis_test

//go:generate mockgen -source=analyzer.go -destination=mocks/mocks.go -package=mocks Analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rentwise/internal/verification/analysis"
	"rentwise/internal/verification/analysis/mocks"
	"rentwise/internal/verification/models"
	"rentwise/pkg/platform/circuit"
)

func TestGuarded(t *testing.T) {
	ctx := context.Background()
	outage := analysis.NewProviderError(analysis.ErrorProviderOutage, "test", "down", nil)

	t.Run("opens after consecutive provider failures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mocks.NewMockAnalyzer(ctrl)
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		breaker := circuit.New("vision", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Minute),
			circuit.WithClock(func() time.Time { return now }))
		g := analysis.NewGuarded(next, breaker, nil)

		next.EXPECT().AnalyzeSelfie(gomock.Any(), "ref").Return(models.SelfieAnalysis{}, outage).Times(2)
		for range 2 {
			_, err := g.AnalyzeSelfie(ctx, "ref")
			require.Error(t, err)
		}
		require.True(t, breaker.IsOpen())

		_, err := g.AnalyzeSelfie(ctx, "ref")
		assert.ErrorIs(t, err, analysis.ErrCircuitOpen)
		assert.Equal(t, analysis.ErrorProviderOutage, analysis.GetCategory(err))

		now = now.Add(2 * time.Minute)
		next.EXPECT().AnalyzeSelfie(gomock.Any(), "ref").Return(models.SelfieAnalysis{FaceDetected: true}, nil)
		got, err := g.AnalyzeSelfie(ctx, "ref")
		require.NoError(t, err)
		assert.True(t, got.FaceDetected)
	})

	t.Run("bad data does not trip the breaker", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mocks.NewMockAnalyzer(ctrl)
		breaker := circuit.New("vision", circuit.WithFailureThreshold(1))
		g := analysis.NewGuarded(next, breaker, nil)

		badData := analysis.NewProviderError(analysis.ErrorBadData, "test", "garbled", nil)
		next.EXPECT().AnalyzeDocument(gomock.Any(), "doc", models.DocumentPassport).Return(models.DocumentAnalysis{}, badData).Times(3)
		for range 3 {
			_, err := g.AnalyzeDocument(ctx, "doc", models.DocumentPassport)
			require.Error(t, err)
		}
		assert.False(t, breaker.IsOpen())
	})
}
