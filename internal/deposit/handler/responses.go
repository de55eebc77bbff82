package handler

import (
	"time"

	"rentwise/internal/deposit/models"
)

type DepositResponse struct {
	ID                   string     `json:"id"`
	TenancyID            string     `json:"tenancy_id"`
	LandlordID           string     `json:"landlord_id"`
	TenantID             string     `json:"tenant_id"`
	Amount               string     `json:"amount"`
	Currency             string     `json:"currency"`
	Status               string     `json:"status"`
	RequestedAt          time.Time  `json:"requested_at"`
	PaidAt               *time.Time `json:"paid_at,omitempty"`
	ReturnProposedAt     *time.Time `json:"return_proposed_at,omitempty"`
	ProposedReturnAmount *string    `json:"proposed_return_amount,omitempty"`
	ReturnReason         string     `json:"return_reason,omitempty"`
	TenantResponse       string     `json:"tenant_response,omitempty"`
	TenantRespondedAt    *time.Time `json:"tenant_responded_at,omitempty"`
	ReturnedAt           *time.Time `json:"returned_at,omitempty"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type DepositListResponse struct {
	Deposits []DepositResponse `json:"deposits"`
}

// toDepositResponse renders amounts at the currency's minor-unit scale.
func toDepositResponse(d *models.Deposit) DepositResponse {
	scale := d.Currency.Scale()
	resp := DepositResponse{
		ID:                d.ID.String(),
		TenancyID:         d.TenancyID.String(),
		LandlordID:        d.LandlordID.String(),
		TenantID:          d.TenantID.String(),
		Amount:            d.Amount.StringFixed(scale),
		Currency:          d.Currency.String(),
		Status:            string(d.Status),
		RequestedAt:       d.RequestedAt,
		PaidAt:            d.PaidAt,
		ReturnProposedAt:  d.ReturnProposedAt,
		ReturnReason:      d.ReturnReason,
		TenantResponse:    string(d.TenantResponse),
		TenantRespondedAt: d.TenantRespondedAt,
		ReturnedAt:        d.ReturnedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.ProposedReturnAmount != nil {
		proposed := d.ProposedReturnAmount.StringFixed(scale)
		resp.ProposedReturnAmount = &proposed
	}
	return resp
}

func toDepositListResponse(deposits []*models.Deposit) DepositListResponse {
	out := DepositListResponse{Deposits: make([]DepositResponse, 0, len(deposits))}
	for _, d := range deposits {
		out.Deposits = append(out.Deposits, toDepositResponse(d))
	}
	return out
}
