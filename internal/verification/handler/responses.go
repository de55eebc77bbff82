package handler

import (
	"time"

	"rentwise/internal/verification/models"
)

type AttemptResponse struct {
	ID               string                  `json:"id"`
	UserID           string                  `json:"user_id"`
	DocumentType     string                  `json:"document_type"`
	DocumentAnalysis models.DocumentAnalysis `json:"document_analysis"`
	SelfieAnalysis   models.SelfieAnalysis   `json:"selfie_analysis"`
	Status           string                  `json:"status"`
	Notes            string                  `json:"notes"`
	FailureReason    string                  `json:"failure_reason,omitempty"`
	SubmittedFrom    string                  `json:"submitted_from,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	ResolvedAt       *time.Time              `json:"resolved_at,omitempty"`
}

type AttemptListResponse struct {
	Attempts []AttemptResponse `json:"attempts"`
}

// LatestStatusResponse is the caller's current verification standing.
type LatestStatusResponse struct {
	Status  string          `json:"status"`
	Attempt AttemptResponse `json:"attempt"`
}

// Image references are not echoed back; they may be signed URLs.
func toAttemptResponse(a *models.Attempt) AttemptResponse {
	return AttemptResponse{
		ID:               a.ID.String(),
		UserID:           a.UserID.String(),
		DocumentType:     string(a.DocumentType),
		DocumentAnalysis: a.Document,
		SelfieAnalysis:   a.Selfie,
		Status:           string(a.Status),
		Notes:            a.Notes,
		FailureReason:    a.FailureReason,
		SubmittedFrom:    a.SubmittedFrom,
		CreatedAt:        a.CreatedAt,
		ResolvedAt:       a.ResolvedAt,
	}
}

func toAttemptListResponse(attempts []*models.Attempt) AttemptListResponse {
	out := make([]AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, toAttemptResponse(a))
	}
	return AttemptListResponse{Attempts: out}
}
