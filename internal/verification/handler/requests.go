package handler

import (
	"strings"

	"rentwise/internal/verification/models"
	"rentwise/internal/verification/service"
)

// SubmitVerificationRequest is the body of POST /verifications.
type SubmitVerificationRequest struct {
	DocumentType     string `json:"document_type"`
	DocumentImageRef string `json:"document_image_ref"`
	SelfieImageRef   string `json:"selfie_image_ref"`

	parsed models.DocumentType
}

func (r *SubmitVerificationRequest) Normalize() {
	r.DocumentImageRef = strings.TrimSpace(r.DocumentImageRef)
	r.SelfieImageRef = strings.TrimSpace(r.SelfieImageRef)
}

func (r *SubmitVerificationRequest) Validate() error {
	docType, err := models.ParseDocumentType(r.DocumentType)
	if err != nil {
		return err
	}
	r.parsed = docType
	return nil
}

func (r *SubmitVerificationRequest) toService() service.SubmitRequest {
	return service.SubmitRequest{
		DocumentType:     r.parsed,
		DocumentImageRef: r.DocumentImageRef,
		SelfieImageRef:   r.SelfieImageRef,
	}
}
