package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentwise/internal/verification/models"
)

func TestParseDocumentAnalysis(t *testing.T) {
	t.Run("well formed", func(t *testing.T) {
		got, err := ParseDocumentAnalysis("test", `{"is_valid": true, "quality": "Good", "confidence": 0.82, "notes": "MRZ readable"}`)
		require.NoError(t, err)
		assert.Equal(t, models.DocumentAnalysis{IsValid: true, Quality: models.QualityGood, Confidence: 0.82, Notes: "MRZ readable"}, got)
	})

	t.Run("code fenced", func(t *testing.T) {
		got, err := ParseDocumentAnalysis("test", "```json\n{\"is_valid\": false, \"quality\": \"poor\", \"confidence\": 0.2}\n```")
		require.NoError(t, err)
		assert.False(t, got.IsValid)
		assert.Equal(t, models.QualityPoor, got.Quality)
	})

	t.Run("missing confidence reads as zero", func(t *testing.T) {
		got, err := ParseDocumentAnalysis("test", `{"is_valid": true, "quality": "fair"}`)
		require.NoError(t, err)
		assert.Zero(t, got.Confidence)
	})

	t.Run("confidence clamped", func(t *testing.T) {
		got, err := ParseDocumentAnalysis("test", `{"is_valid": true, "quality": "fair", "confidence": 87}`)
		require.NoError(t, err)
		assert.Equal(t, 1.0, got.Confidence)
	})

	malformed := map[string]string{
		"not json":          `the document looks fine`,
		"array":             `[{"is_valid": true}]`,
		"string boolean":    `{"is_valid": "yes", "quality": "good", "confidence": 0.9}`,
		"missing validity":  `{"quality": "good", "confidence": 0.9}`,
		"unknown quality":   `{"is_valid": true, "quality": "excellent", "confidence": 0.9}`,
		"string confidence": `{"is_valid": true, "quality": "good", "confidence": "high"}`,
		"truncated":         `{"is_valid": true, "quality": "go`,
		"numeric quality":   `{"is_valid": true, "quality": 3, "confidence": 0.9}`,
	}
	for name, raw := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDocumentAnalysis("test", raw)
			require.Error(t, err)
			assert.Equal(t, ErrorBadData, GetCategory(err))
		})
	}
}

func TestParseSelfieAnalysis(t *testing.T) {
	got, err := ParseSelfieAnalysis("test", `{"face_detected": true, "quality": "fair", "confidence": 0.75, "notes": "slight blur"}`)
	require.NoError(t, err)
	assert.Equal(t, models.SelfieAnalysis{FaceDetected: true, Quality: models.QualityFair, Confidence: 0.75, Notes: "slight blur"}, got)

	_, err = ParseSelfieAnalysis("test", `{"is_valid": true, "quality": "fair"}`)
	assert.Equal(t, ErrorBadData, GetCategory(err))
}

func FuzzParseDocumentAnalysis(f *testing.F) {
	f.Add(`{"is_valid": true, "quality": "good", "confidence": 0.9}`)
	f.Add("```json\n{}\n```")
	f.Add(`{"confidence": -1e308}`)
	f.Fuzz(func(t *testing.T, raw string) {
		got, err := ParseDocumentAnalysis("fuzz", raw)
		if err != nil {
			if GetCategory(err) != ErrorBadData {
				t.Fatalf("unexpected category for %q: %v", raw, err)
			}
			return
		}
		if !got.Quality.IsValid() {
			t.Fatalf("accepted invalid quality %q", got.Quality)
		}
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Fatalf("confidence out of range: %v", got.Confidence)
		}
	})
}
