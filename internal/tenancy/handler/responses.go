package handler

import (
	"time"

	"rentwise/internal/tenancy/models"
)

type TenancyResponse struct {
	ID              string     `json:"id"`
	LandlordID      string     `json:"landlord_id"`
	TenantID        *string    `json:"tenant_id"`
	PropertyID      string     `json:"property_id"`
	PropertyLabel   string     `json:"property_label"`
	Status          string     `json:"status"`
	StartDate       string     `json:"start_date"`
	EndDate         *string    `json:"end_date,omitempty"`
	InviteExpiresAt *time.Time `json:"invite_expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ActivatedAt     *time.Time `json:"activated_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
}

// CreateTenancyResponse carries the invitation token. It is only ever returned here.
type CreateTenancyResponse struct {
	TenancyResponse
	InviteToken string `json:"invite_token"`
}

func toTenancyResponse(t *models.Tenancy) TenancyResponse {
	resp := TenancyResponse{
		ID:              t.ID.String(),
		LandlordID:      t.LandlordID.String(),
		PropertyID:      t.PropertyID.String(),
		PropertyLabel:   t.PropertyLabel,
		Status:          string(t.Status),
		StartDate:       t.StartDate.Format(dateLayout),
		InviteExpiresAt: t.InviteExpiresAt,
		CreatedAt:       t.CreatedAt,
		ActivatedAt:     t.ActivatedAt,
		EndedAt:         t.EndedAt,
	}
	if !t.TenantID.IsNil() {
		tenantID := t.TenantID.String()
		resp.TenantID = &tenantID
	}
	if t.EndDate != nil {
		end := t.EndDate.Format(dateLayout)
		resp.EndDate = &end
	}
	return resp
}
