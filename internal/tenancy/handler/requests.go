package handler

import (
	"strings"
	"time"

	"rentwise/internal/tenancy/models"
	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// CreateTenancyRequest is the body of POST /tenancies.
type CreateTenancyRequest struct {
	PropertyID    string  `json:"property_id"`
	PropertyLabel string  `json:"property_label"`
	StartDate     string  `json:"start_date"`
	EndDate       *string `json:"end_date,omitempty"`

	params models.CreateParams
}

func (r *CreateTenancyRequest) Normalize() {
	r.PropertyID = strings.TrimSpace(r.PropertyID)
	r.PropertyLabel = strings.TrimSpace(r.PropertyLabel)
	r.StartDate = strings.TrimSpace(r.StartDate)
}

// Validate implements httputil.Validatable.
func (r *CreateTenancyRequest) Validate() error {
	if r.PropertyID == "" {
		return dErrors.New(dErrors.CodeValidation, "property_id is required")
	}
	propertyID, err := id.ParsePropertyID(r.PropertyID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "property_id must be a UUID")
	}
	if r.StartDate == "" {
		return dErrors.New(dErrors.CodeValidation, "start_date is required")
	}
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "start_date must be YYYY-MM-DD")
	}
	var end *time.Time
	if r.EndDate != nil {
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(*r.EndDate))
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "end_date must be YYYY-MM-DD")
		}
		end = &parsed
	}
	r.params = models.CreateParams{
		PropertyID:    propertyID,
		PropertyLabel: r.PropertyLabel,
		StartDate:     start,
		EndDate:       end,
	}
	return nil
}

func (r *CreateTenancyRequest) Params() models.CreateParams {
	return r.params
}

// AcceptInvitationRequest is the body of POST /tenancies/{id}/accept.
type AcceptInvitationRequest struct {
	Token string `json:"token"`
}

func (r *AcceptInvitationRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	if len(r.Token) > 128 {
		return dErrors.New(dErrors.CodeValidation, "token is too long")
	}
	return nil
}
