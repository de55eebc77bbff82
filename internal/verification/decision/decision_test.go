package decision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"rentwise/internal/verification/models"
)

func doc(valid bool, q models.Quality, conf float64) models.DocumentAnalysis {
	return models.DocumentAnalysis{IsValid: valid, Quality: q, Confidence: conf}
}

func selfie(face bool, q models.Quality, conf float64) models.SelfieAnalysis {
	return models.SelfieAnalysis{FaceDetected: face, Quality: q, Confidence: conf}
}

func TestDecide(t *testing.T) {
	good, fair, poor := models.QualityGood, models.QualityFair, models.QualityPoor

	tests := []struct {
		name       string
		doc        models.DocumentAnalysis
		selfie     models.SelfieAnalysis
		wantStatus models.Status
		wantNotes  string
	}{
		{
			name:       "clear pass",
			doc:        doc(true, good, 0.95),
			selfie:     selfie(true, good, 0.9),
			wantStatus: models.StatusVerified,
			wantNotes:  "ID document and selfie verified",
		},
		{
			name:       "just above verified threshold",
			doc:        doc(true, fair, 0.71),
			selfie:     selfie(true, fair, 0.71),
			wantStatus: models.StatusVerified,
			wantNotes:  "ID document and selfie verified",
		},
		{
			name:       "document confidence exactly at verified threshold",
			doc:        doc(true, good, 0.7),
			selfie:     selfie(true, good, 0.9),
			wantStatus: models.StatusInReview,
			wantNotes:  "Low ID confidence",
		},
		{
			name:       "confidence exactly at reject threshold is not rejected",
			doc:        doc(true, good, 0.3),
			selfie:     selfie(true, good, 0.9),
			wantStatus: models.StatusInReview,
			wantNotes:  "Low ID confidence",
		},
		{
			name:       "selfie confidence just below reject threshold",
			doc:        doc(true, good, 0.9),
			selfie:     selfie(true, good, 0.29),
			wantStatus: models.StatusRejected,
			wantNotes:  "Low selfie confidence",
		},
		{
			name:       "invalid document rejects even with high confidence",
			doc:        doc(false, good, 0.99),
			selfie:     selfie(true, good, 0.99),
			wantStatus: models.StatusRejected,
			wantNotes:  "Invalid ID document",
		},
		{
			name:       "no face rejects",
			doc:        doc(true, good, 0.9),
			selfie:     selfie(false, good, 0.9),
			wantStatus: models.StatusRejected,
			wantNotes:  "No face detected in selfie",
		},
		{
			name:       "poor quality blocks verification",
			doc:        doc(true, poor, 0.9),
			selfie:     selfie(true, good, 0.9),
			wantStatus: models.StatusInReview,
			wantNotes:  "Poor ID quality",
		},
		{
			name:       "notes follow fixed order",
			doc:        doc(false, poor, 0.1),
			selfie:     selfie(false, poor, 0.5),
			wantStatus: models.StatusRejected,
			wantNotes:  "Invalid ID document; No face detected in selfie; Poor ID quality; Poor selfie quality; Low ID confidence; Low selfie confidence",
		},
		{
			name:       "absent scores count as zero",
			doc:        doc(true, good, math.NaN()),
			selfie:     selfie(true, good, 0.9),
			wantStatus: models.StatusRejected,
			wantNotes:  "Low ID confidence",
		},
		{
			name:       "out of range scores are clamped",
			doc:        doc(true, good, 3),
			selfie:     selfie(true, good, 1.2),
			wantStatus: models.StatusVerified,
			wantNotes:  "ID document and selfie verified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, notes := Decide(tt.doc, tt.selfie)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantNotes, notes)
		})
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	d := doc(true, models.QualityFair, 0.5)
	s := selfie(true, models.QualityPoor, 0.8)
	status, notes := Decide(d, s)
	for range 100 {
		gotStatus, gotNotes := Decide(d, s)
		assert.Equal(t, status, gotStatus)
		assert.Equal(t, notes, gotNotes)
	}
}

func TestFailureNotes(t *testing.T) {
	assert.Equal(t, "Automated analysis failed: timeout; manual review required", FailureNotes("timeout"))
}

func FuzzDecide(f *testing.F) {
	f.Add(true, true, 0.7, 0.9, "good", "fair")
	f.Add(false, true, 0.1, 0.31, "poor", "good")
	f.Fuzz(func(t *testing.T, valid, face bool, docConf, selfieConf float64, docQ, selfieQ string) {
		d := models.DocumentAnalysis{IsValid: valid, Quality: models.Quality(docQ), Confidence: docConf}
		s := models.SelfieAnalysis{FaceDetected: face, Quality: models.Quality(selfieQ), Confidence: selfieConf}
		status, notes := Decide(d, s)
		if !status.IsValid() {
			t.Fatalf("invalid status %q", status)
		}
		if status == models.StatusVerified && notes != "ID document and selfie verified" {
			t.Fatalf("verified with notes %q", notes)
		}
		if (!valid || !face) && status != models.StatusRejected {
			t.Fatalf("expected rejected, got %q", status)
		}
	})
}
