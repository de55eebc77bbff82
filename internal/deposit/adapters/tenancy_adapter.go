package adapters

import (
	"context"

	"rentwise/internal/deposit/models"
	tenancyModels "rentwise/internal/tenancy/models"
	id "rentwise/pkg/domain"
)

// tenancyFinder is the slice of the tenancy service the deposit module needs.
type tenancyFinder interface {
	FindTenancy(ctx context.Context, tenancyID id.TenancyID) (*tenancyModels.Tenancy, error)
}

// TenancyAdapter maps tenancies to deposit-local Parties at the boundary.
type TenancyAdapter struct {
	tenancies tenancyFinder
}

func NewTenancyAdapter(tenancies tenancyFinder) *TenancyAdapter {
	return &TenancyAdapter{tenancies: tenancies}
}

func (a *TenancyAdapter) LookupParties(ctx context.Context, tenancyID id.TenancyID) (*models.Parties, error) {
	t, err := a.tenancies.FindTenancy(ctx, tenancyID)
	if err != nil {
		return nil, err
	}
	return &models.Parties{
		TenancyID:  t.ID,
		LandlordID: t.LandlordID,
		TenantID:   t.TenantID,
		Active:     t.IsActive(),
	}, nil
}
