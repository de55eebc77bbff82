package ports

import (
	"context"

	"rentwise/internal/deposit/models"
	id "rentwise/pkg/domain"
)

// TenancyPort resolves who the parties to a tenancy are.
// Defined here so the deposit module does not depend on tenancy internals.
type TenancyPort interface {
	// LookupParties returns the tenancy's landlord, tenant and whether it is active.
	// Unknown tenancies fail with a not_found domain error.
	LookupParties(ctx context.Context, tenancyID id.TenancyID) (*models.Parties, error)
}
