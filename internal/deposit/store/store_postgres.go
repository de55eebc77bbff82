package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"rentwise/internal/deposit/models"
	"rentwise/internal/platform/postgres"
	id "rentwise/pkg/domain"
	"rentwise/pkg/platform/sentinel"
	txcontext "rentwise/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const depositColumns = `id, tenancy_id, landlord_id, tenant_id, amount, currency, status,
	requested_at, paid_at, return_proposed_at, proposed_return_amount, return_reason,
	tenant_response, tenant_responded_at, returned_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, d *models.Deposit) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO deposits (`+depositColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, uuid.UUID(d.ID), uuid.UUID(d.TenancyID), uuid.UUID(d.LandlordID), uuid.UUID(d.TenantID),
		d.Amount, d.Currency.String(), string(d.Status),
		d.RequestedAt, d.PaidAt, d.ReturnProposedAt, nullableDecimal(d.ProposedReturnAmount),
		nullableString(d.ReturnReason), nullableString(string(d.TenantResponse)),
		d.TenantRespondedAt, d.ReturnedAt, d.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert deposit: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, depositID id.DepositID) (*models.Deposit, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+depositColumns+` FROM deposits WHERE id = $1`, uuid.UUID(depositID))
	d, err := scanDeposit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find deposit: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListByTenancy(ctx context.Context, tenancyID id.TenancyID, statuses ...models.Status) ([]*models.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE tenancy_id = $1`
	args := []any{uuid.UUID(tenancyID)}
	if len(statuses) > 0 {
		filter := make([]string, len(statuses))
		for i, st := range statuses {
			filter[i] = string(st)
		}
		query += ` AND status = ANY($2)`
		args = append(args, pq.Array(filter))
	}
	query += ` ORDER BY requested_at ASC, id ASC`

	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Deposit, 0)
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deposit: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deposits: %w", err)
	}
	return out, nil
}

// UpdateIfStatus is a compare-and-set on status. Zero rows affected means
// another writer moved the deposit first, or it does not exist.
func (s *PostgresStore) UpdateIfStatus(ctx context.Context, d *models.Deposit, expected models.Status) error {
	exec := txcontext.Executor(ctx, s.db)
	res, err := exec.ExecContext(ctx, `
		UPDATE deposits
		SET status = $3, paid_at = $4, return_proposed_at = $5, proposed_return_amount = $6,
			return_reason = $7, tenant_response = $8, tenant_responded_at = $9,
			returned_at = $10, updated_at = $11
		WHERE id = $1 AND status = $2
	`, uuid.UUID(d.ID), string(expected), string(d.Status),
		d.PaidAt, d.ReturnProposedAt, nullableDecimal(d.ProposedReturnAmount),
		nullableString(d.ReturnReason), nullableString(string(d.TenantResponse)),
		d.TenantRespondedAt, d.ReturnedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update deposit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update deposit rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM deposits WHERE id = $1)`, uuid.UUID(d.ID)).Scan(&exists); err != nil {
		return fmt.Errorf("check deposit exists: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeposit(row rowScanner) (*models.Deposit, error) {
	var (
		d           models.Deposit
		depositID   uuid.UUID
		tenancyID   uuid.UUID
		landlordID  uuid.UUID
		tenantID    uuid.UUID
		currency    string
		status      string
		paidAt      sql.NullTime
		proposedAt  sql.NullTime
		proposed    decimal.NullDecimal
		reason      sql.NullString
		response    sql.NullString
		respondedAt sql.NullTime
		returnedAt  sql.NullTime
	)
	if err := row.Scan(&depositID, &tenancyID, &landlordID, &tenantID, &d.Amount, &currency, &status,
		&d.RequestedAt, &paidAt, &proposedAt, &proposed, &reason,
		&response, &respondedAt, &returnedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.ID = id.DepositID(depositID)
	d.TenancyID = id.TenancyID(tenancyID)
	d.LandlordID = id.UserID(landlordID)
	d.TenantID = id.UserID(tenantID)
	d.Currency = id.Currency(currency)
	d.Status = models.Status(status)
	d.PaidAt = timePtr(paidAt)
	d.ReturnProposedAt = timePtr(proposedAt)
	if proposed.Valid {
		amount := proposed.Decimal
		d.ProposedReturnAmount = &amount
	}
	d.ReturnReason = reason.String
	d.TenantResponse = models.Response(response.String)
	d.TenantRespondedAt = timePtr(respondedAt)
	d.ReturnedAt = timePtr(returnedAt)
	return &d, nil
}

func nullableDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
