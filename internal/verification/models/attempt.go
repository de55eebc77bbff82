package models

import (
	"math"
	"strings"
	"time"

	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
)

type DocumentType string

const (
	DocumentPassport       DocumentType = "passport"
	DocumentDriversLicense DocumentType = "drivers_license"
	DocumentNationalID     DocumentType = "national_id"
	DocumentOther          DocumentType = "other"
)

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentPassport, DocumentDriversLicense, DocumentNationalID, DocumentOther:
		return true
	}
	return false
}

// ParseDocumentType normalizes case and surrounding whitespace.
func ParseDocumentType(raw string) (DocumentType, error) {
	t := DocumentType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "document_type must be one of passport, drivers_license, national_id, other")
	}
	return t, nil
}

// Quality is the provider's image quality grade.
type Quality string

const (
	QualityGood Quality = "good"
	QualityFair Quality = "fair"
	QualityPoor Quality = "poor"
)

func (q Quality) IsValid() bool {
	switch q {
	case QualityGood, QualityFair, QualityPoor:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
	StatusInReview Status = "in_review"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected, StatusInReview:
		return true
	}
	return false
}

// IsResolved reports whether the status is final without a human reviewer.
func (s Status) IsResolved() bool {
	return s == StatusVerified || s == StatusRejected
}

// DocumentAnalysis is the structured result of analysing an ID document image.
type DocumentAnalysis struct {
	IsValid    bool    `json:"is_valid"`
	Quality    Quality `json:"quality"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes"`
}

// SelfieAnalysis is the structured result of analysing a selfie image.
type SelfieAnalysis struct {
	FaceDetected bool    `json:"face_detected"`
	Quality      Quality `json:"quality"`
	Confidence   float64 `json:"confidence"`
	Notes        string  `json:"notes"`
}

// ClampConfidence maps any provider score into [0,1]. NaN counts as absent.
func ClampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c), c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

// Attempt is one submission of an ID document and a selfie. Attempts are
// written once and never mutated; a rejected user submits a new attempt.
type Attempt struct {
	ID               id.AttemptID     `json:"id"`
	UserID           id.UserID        `json:"user_id"`
	DocumentType     DocumentType     `json:"document_type"`
	DocumentImageRef string           `json:"document_image_ref"`
	SelfieImageRef   string           `json:"selfie_image_ref"`
	Document         DocumentAnalysis `json:"document_analysis"`
	Selfie           SelfieAnalysis   `json:"selfie_analysis"`
	Status           Status           `json:"status"`
	Notes            string           `json:"notes"`
	FailureReason    string           `json:"failure_reason,omitempty"`
	SubmittedFrom    string           `json:"submitted_from,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	ResolvedAt       *time.Time       `json:"resolved_at,omitempty"`
}

// Submission carries the caller-provided inputs of an attempt.
type Submission struct {
	DocumentType     DocumentType
	DocumentImageRef string
	SelfieImageRef   string
	SubmittedFrom    string
}

// NewAttempt records a decided attempt. resolved_at is set only for verified
// and rejected outcomes.
func NewAttempt(attemptID id.AttemptID, userID id.UserID, sub Submission, doc DocumentAnalysis, selfie SelfieAnalysis, status Status, notes, failureReason string, now time.Time) (*Attempt, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user ID required")
	}
	if !sub.DocumentType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid document type")
	}
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid verification status")
	}
	doc.Confidence = ClampConfidence(doc.Confidence)
	selfie.Confidence = ClampConfidence(selfie.Confidence)
	a := &Attempt{
		ID:               attemptID,
		UserID:           userID,
		DocumentType:     sub.DocumentType,
		DocumentImageRef: sub.DocumentImageRef,
		SelfieImageRef:   sub.SelfieImageRef,
		Document:         doc,
		Selfie:           selfie,
		Status:           status,
		Notes:            notes,
		FailureReason:    failureReason,
		SubmittedFrom:    sub.SubmittedFrom,
		CreatedAt:        now,
	}
	if status.IsResolved() {
		resolved := now
		a.ResolvedAt = &resolved
	}
	return a, nil
}

func (a *Attempt) IsOwnedBy(userID id.UserID) bool {
	return a.UserID == userID
}

func (a *Attempt) Clone() *Attempt {
	c := *a
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}
