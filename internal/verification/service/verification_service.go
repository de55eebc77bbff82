package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"rentwise/internal/verification/analysis"
	"rentwise/internal/verification/decision"
	"rentwise/internal/verification/models"
	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
	"rentwise/pkg/requestcontext"
)

const maxImageRefLength = 2048

// SubmitRequest carries the images of one verification attempt.
type SubmitRequest struct {
	DocumentType     models.DocumentType
	DocumentImageRef string
	SelfieImageRef   string
}

func (r SubmitRequest) validate() error {
	if !r.DocumentType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "document_type must be one of passport, drivers_license, national_id, other")
	}
	if r.DocumentImageRef == "" || r.SelfieImageRef == "" {
		return dErrors.New(dErrors.CodeValidation, "document_image_ref and selfie_image_ref are required")
	}
	if len(r.DocumentImageRef) > maxImageRefLength || len(r.SelfieImageRef) > maxImageRefLength {
		return dErrors.New(dErrors.CodeValidation, "image references must be at most 2048 characters")
	}
	return nil
}

// analysisResult holds whatever the provider returned before a failure.
type analysisResult struct {
	document models.DocumentAnalysis
	selfie   models.SelfieAnalysis
	err      error
}

// SubmitVerification analyses both images, decides the outcome and records
// the attempt. A provider failure is absorbed into a pending attempt that
// names the failure category. If the caller goes away before the decision is
// recorded, nothing is persisted.
func (s *Service) SubmitVerification(ctx context.Context, caller id.UserID, req SubmitRequest) (attempt *models.Attempt, err error) {
	ctx, span := startSpan(ctx, "verification.Submit", attribute.String("document.type", string(req.DocumentType)))
	defer func() { endSpan(span, err) }()

	if err = requireCaller(caller); err != nil {
		return nil, err
	}
	if err = req.validate(); err != nil {
		return nil, err
	}

	result := s.analyze(ctx, req)
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = dErrors.Wrap(ctxErr, dErrors.CodeTimeout, "verification submission abandoned")
		return nil, err
	}

	var status models.Status
	var notes, failureReason string
	if result.err != nil {
		category := analysis.GetCategory(result.err)
		status = models.StatusPending
		notes = decision.FailureNotes(string(category))
		failureReason = string(category)
		s.metrics.IncAnalysisFailure(failureReason)
		failure := dErrors.Wrap(result.err, dErrors.CodeExternalAnalysisFailure, "automated analysis failed")
		span.RecordError(failure)
		if s.logger != nil {
			s.logger.WarnContext(ctx, "verification analysis failed",
				"user_id", caller,
				"category", category,
				"retryable", analysis.IsRetryable(result.err),
				"error", failure,
			)
		}
	} else {
		status, notes = decision.Decide(result.document, result.selfie)
	}

	sub := models.Submission{
		DocumentType:     req.DocumentType,
		DocumentImageRef: req.DocumentImageRef,
		SelfieImageRef:   req.SelfieImageRef,
		SubmittedFrom:    requestcontext.DeviceLabel(ctx),
	}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err := models.NewAttempt(id.NewAttemptID(), caller, sub, result.document, result.selfie,
			status, notes, failureReason, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.attempts.Create(txCtx, a); err != nil {
			return wrapAttemptErr(err, "record verification attempt")
		}
		if err := s.auditEmitter.emit(txCtx, a); err != nil {
			return err
		}
		attempt = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncDecision(string(attempt.Status))
	span.SetAttributes(attribute.String("verification.status", string(attempt.Status)))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "verification attempt recorded",
			"attempt_id", attempt.ID,
			"user_id", caller,
			"status", attempt.Status,
		)
	}
	return attempt, nil
}

// analyze runs the document and selfie analyses concurrently. The first
// failure cancels the other call.
func (s *Service) analyze(ctx context.Context, req SubmitRequest) analysisResult {
	start := time.Now()
	defer s.metrics.ObserveAnalysis(start)

	var res analysisResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := s.analyzer.AnalyzeDocument(gctx, req.DocumentImageRef, req.DocumentType)
		if err != nil {
			return err
		}
		res.document = doc
		return nil
	})
	g.Go(func() error {
		selfie, err := s.analyzer.AnalyzeSelfie(gctx, req.SelfieImageRef)
		if err != nil {
			return err
		}
		res.selfie = selfie
		return nil
	})
	res.err = g.Wait()
	return res
}

// GetAttempt returns one of the caller's own attempts.
func (s *Service) GetAttempt(ctx context.Context, caller id.UserID, attemptID id.AttemptID) (*models.Attempt, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	a, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, wrapAttemptErr(err, "load verification attempt")
	}
	if !a.IsOwnedBy(caller) {
		return nil, dErrors.New(dErrors.CodeNotAuthorized, "verification attempt belongs to another user")
	}
	return a, nil
}

// ListAttempts returns the caller's attempts, newest first.
func (s *Service) ListAttempts(ctx context.Context, caller id.UserID) ([]*models.Attempt, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	attempts, err := s.attempts.ListByUser(ctx, caller)
	if err != nil {
		return nil, wrapAttemptErr(err, "list verification attempts")
	}
	return attempts, nil
}

// LatestStatus returns the caller's most recent attempt, which carries their
// current verification status.
func (s *Service) LatestStatus(ctx context.Context, caller id.UserID) (*models.Attempt, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	a, err := s.attempts.FindLatestByUser(ctx, caller)
	if err != nil {
		return nil, wrapAttemptErr(err, "load latest verification attempt")
	}
	return a, nil
}
