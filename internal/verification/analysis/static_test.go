package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentwise/internal/verification/models"
)

func TestStaticAnalyzer(t *testing.T) {
	a := NewStaticAnalyzer()
	ctx := context.Background()

	doc, err := a.AnalyzeDocument(ctx, "uploads/passport.png", models.DocumentPassport)
	require.NoError(t, err)
	assert.True(t, doc.IsValid)
	assert.Equal(t, models.QualityGood, doc.Quality)
	assert.Equal(t, 0.92, doc.Confidence)

	doc, err = a.AnalyzeDocument(ctx, "uploads/INVALID-blurry.png", models.DocumentPassport)
	require.NoError(t, err)
	assert.False(t, doc.IsValid)
	assert.Equal(t, models.QualityPoor, doc.Quality)

	selfie, err := a.AnalyzeSelfie(ctx, "uploads/noface-unsure.png")
	require.NoError(t, err)
	assert.False(t, selfie.FaceDetected)
	assert.Equal(t, 0.6, selfie.Confidence)

	_, err = a.AnalyzeSelfie(ctx, "uploads/outage.png")
	assert.Equal(t, ErrorProviderOutage, GetCategory(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = a.AnalyzeSelfie(cancelled, "uploads/me.png")
	assert.ErrorIs(t, err, context.Canceled)
}
