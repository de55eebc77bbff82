package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	"rentwise/internal/deposit/models"
	dErrors "rentwise/pkg/domain-errors"
)

// RequestDepositRequest is the body of POST /tenancies/{id}/deposits.
// amount accepts a JSON string ("1000.00") or number.
type RequestDepositRequest struct {
	Amount   *decimal.Decimal `json:"amount"`
	Currency string           `json:"currency"`
}

func (r *RequestDepositRequest) Validate() error {
	if r.Amount == nil {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	if err := models.CheckAmountBounds(*r.Amount); err != nil {
		return err
	}
	r.Currency = strings.TrimSpace(r.Currency)
	if r.Currency == "" {
		return dErrors.New(dErrors.CodeValidation, "currency is required")
	}
	return nil
}

// ProposeReturnRequest is the body of POST /deposits/{id}/propose-return.
type ProposeReturnRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Reason string           `json:"reason"`
}

func (r *ProposeReturnRequest) Validate() error {
	if r.Amount == nil {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	return nil
}

// RespondRequest is the body of POST /deposits/{id}/respond.
type RespondRequest struct {
	Response string `json:"response"`

	parsed models.Response
}

func (r *RespondRequest) Validate() error {
	response, err := models.ParseResponse(r.Response)
	if err != nil {
		return err
	}
	r.parsed = response
	return nil
}

func (r *RespondRequest) ParsedResponse() models.Response {
	return r.parsed
}

// parseStatusFilter splits ?status=paid,returned into statuses.
func parseStatusFilter(raw string) ([]models.Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	statuses := make([]models.Status, 0, len(parts))
	for _, p := range parts {
		st := models.Status(strings.ToLower(strings.TrimSpace(p)))
		if !st.IsValid() {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown deposit status "+p)
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}
