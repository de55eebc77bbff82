package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rentwise/internal/platform/postgres"
	"rentwise/internal/tenancy/models"
	id "rentwise/pkg/domain"
	"rentwise/pkg/platform/sentinel"
	txcontext "rentwise/pkg/platform/tx"
)

// PostgresStore persists tenancies in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const tenancyColumns = `id, landlord_id, tenant_id, property_id, property_label, status,
	start_date, end_date, invite_token_hash, invite_expires_at,
	created_at, activated_at, ended_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, t *models.Tenancy) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO tenancies (`+tenancyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, uuid.UUID(t.ID), uuid.UUID(t.LandlordID), nullableUser(t.TenantID), uuid.UUID(t.PropertyID),
		t.PropertyLabel, string(t.Status), t.StartDate, t.EndDate,
		nullableString(t.InviteTokenHash), t.InviteExpiresAt,
		t.CreatedAt, t.ActivatedAt, t.EndedAt, t.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert tenancy: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenancyID id.TenancyID) (*models.Tenancy, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+tenancyColumns+` FROM tenancies WHERE id = $1`, uuid.UUID(tenancyID))
	t, err := scanTenancy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find tenancy: %w", err)
	}
	return t, nil
}

// UpdateIfStatus writes the mutable columns guarded by the expected status.
// Zero rows affected means the row is gone or its status moved on.
func (s *PostgresStore) UpdateIfStatus(ctx context.Context, t *models.Tenancy, expected models.Status) error {
	exec := txcontext.Executor(ctx, s.db)
	res, err := exec.ExecContext(ctx, `
		UPDATE tenancies
		SET tenant_id = $3, status = $4, invite_token_hash = $5, invite_expires_at = $6,
			activated_at = $7, ended_at = $8, updated_at = $9
		WHERE id = $1 AND status = $2
	`, uuid.UUID(t.ID), string(expected), nullableUser(t.TenantID), string(t.Status),
		nullableString(t.InviteTokenHash), t.InviteExpiresAt,
		t.ActivatedAt, t.EndedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update tenancy: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenancy rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tenancies WHERE id = $1)`, uuid.UUID(t.ID)).Scan(&exists); err != nil {
		return fmt.Errorf("check tenancy exists: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenancy(row rowScanner) (*models.Tenancy, error) {
	var (
		t          models.Tenancy
		tenancyID  uuid.UUID
		landlordID uuid.UUID
		tenantID   uuid.NullUUID
		propertyID uuid.UUID
		status     string
		inviteHash sql.NullString
		endDate    sql.NullTime
		expiresAt  sql.NullTime
		activated  sql.NullTime
		ended      sql.NullTime
	)
	if err := row.Scan(&tenancyID, &landlordID, &tenantID, &propertyID, &t.PropertyLabel, &status,
		&t.StartDate, &endDate, &inviteHash, &expiresAt,
		&t.CreatedAt, &activated, &ended, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.ID = id.TenancyID(tenancyID)
	t.LandlordID = id.UserID(landlordID)
	if tenantID.Valid {
		t.TenantID = id.UserID(tenantID.UUID)
	}
	t.PropertyID = id.PropertyID(propertyID)
	t.Status = models.Status(status)
	t.InviteTokenHash = inviteHash.String
	t.EndDate = timePtr(endDate)
	t.InviteExpiresAt = timePtr(expiresAt)
	t.ActivatedAt = timePtr(activated)
	t.EndedAt = timePtr(ended)
	return &t, nil
}

func nullableUser(u id.UserID) uuid.NullUUID {
	if u.IsNil() {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(u), Valid: true}
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
