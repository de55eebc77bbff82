package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"rentwise/internal/platform/postgres"
	"rentwise/internal/verification/models"
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

const attemptColumns = `id, user_id, document_type, document_image_ref, selfie_image_ref,
	document_is_valid, document_quality, document_confidence, document_notes,
	selfie_face_detected, selfie_quality, selfie_confidence, selfie_notes,
	status, notes, failure_reason, submitted_from, created_at, resolved_at`

func (s *PostgresStore) Create(ctx context.Context, a *models.Attempt) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO verification_attempts (`+attemptColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, uuid.UUID(a.ID), uuid.UUID(a.UserID), string(a.DocumentType), a.DocumentImageRef, a.SelfieImageRef,
		a.Document.IsValid, string(a.Document.Quality), a.Document.Confidence, a.Document.Notes,
		a.Selfie.FaceDetected, string(a.Selfie.Quality), a.Selfie.Confidence, a.Selfie.Notes,
		string(a.Status), a.Notes, a.FailureReason, a.SubmittedFrom, a.CreatedAt, a.ResolvedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert verification attempt: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, attemptID id.AttemptID) (*models.Attempt, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+attemptColumns+` FROM verification_attempts WHERE id = $1`, uuid.UUID(attemptID))
	a, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification attempt: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Attempt, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+attemptColumns+` FROM verification_attempts
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list verification attempts: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Attempt, 0)
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification attempt: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification attempts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindLatestByUser(ctx context.Context, userID id.UserID) (*models.Attempt, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+attemptColumns+` FROM verification_attempts
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, uuid.UUID(userID))
	a, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find latest verification attempt: %w", err)
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*models.Attempt, error) {
	var (
		a          models.Attempt
		attemptID  uuid.UUID
		userID     uuid.UUID
		docType    string
		docQuality string
		selfieQ    string
		status     string
		resolvedAt sql.NullTime
	)
	if err := row.Scan(&attemptID, &userID, &docType, &a.DocumentImageRef, &a.SelfieImageRef,
		&a.Document.IsValid, &docQuality, &a.Document.Confidence, &a.Document.Notes,
		&a.Selfie.FaceDetected, &selfieQ, &a.Selfie.Confidence, &a.Selfie.Notes,
		&status, &a.Notes, &a.FailureReason, &a.SubmittedFrom, &a.CreatedAt, &resolvedAt); err != nil {
		return nil, err
	}
	a.ID = id.AttemptID(attemptID)
	a.UserID = id.UserID(userID)
	a.DocumentType = models.DocumentType(docType)
	a.Document.Quality = models.Quality(docQuality)
	a.Selfie.Quality = models.Quality(selfieQ)
	a.Status = models.Status(status)
	a.CreatedAt = a.CreatedAt.UTC()
	if resolvedAt.Valid {
		t := resolvedAt.Time.UTC()
		a.ResolvedAt = &t
	}
	return &a, nil
}
