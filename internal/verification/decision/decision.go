// Package decision maps a document analysis and a selfie analysis to a
// verification outcome. Decide is pure: no I/O, no clock, no randomness.
//
// Rules, first match wins:
//
//	verified   document valid, face detected, both confidences > 0.7, no poor quality
//	rejected   either confidence < 0.3, document invalid, or no face detected
//	in_review  everything else
package decision

import (
	"strings"

	"rentwise/internal/verification/models"
)

const (
	VerifiedThreshold = 0.7
	RejectThreshold   = 0.3

	verifiedNotes = "ID document and selfie verified"
	notesSep      = "; "
)

const (
	noteInvalidDocument   = "Invalid ID document"
	noteNoFace            = "No face detected in selfie"
	notePoorDocument      = "Poor ID quality"
	notePoorSelfie        = "Poor selfie quality"
	noteLowDocConfidence  = "Low ID confidence"
	noteLowSelfConfidence = "Low selfie confidence"
)

// Decide returns the status for the pair of analyses and the notes explaining
// it. Confidences are clamped to [0,1] before comparison.
func Decide(doc models.DocumentAnalysis, selfie models.SelfieAnalysis) (models.Status, string) {
	docConf := models.ClampConfidence(doc.Confidence)
	selfieConf := models.ClampConfidence(selfie.Confidence)

	checks := []struct {
		failed bool
		note   string
	}{
		{!doc.IsValid, noteInvalidDocument},
		{!selfie.FaceDetected, noteNoFace},
		{doc.Quality == models.QualityPoor, notePoorDocument},
		{selfie.Quality == models.QualityPoor, notePoorSelfie},
		{docConf <= VerifiedThreshold, noteLowDocConfidence},
		{selfieConf <= VerifiedThreshold, noteLowSelfConfidence},
	}
	var notes []string
	for _, c := range checks {
		if c.failed {
			notes = append(notes, c.note)
		}
	}
	if len(notes) == 0 {
		return models.StatusVerified, verifiedNotes
	}

	joined := strings.Join(notes, notesSep)
	if docConf < RejectThreshold || selfieConf < RejectThreshold || !doc.IsValid || !selfie.FaceDetected {
		return models.StatusRejected, joined
	}
	return models.StatusInReview, joined
}

// FailureNotes is the note recorded on a pending attempt whose automated
// analysis could not complete.
func FailureNotes(category string) string {
	return "Automated analysis failed: " + category + "; manual review required"
}
