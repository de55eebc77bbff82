// Package analysis turns image references into structured document and
// selfie analyses. Providers return *ProviderError on failure so callers can
// record a normalized category.
package analysis

import (
	"context"

	"rentwise/internal/verification/models"
)

// Analyzer is the vision-analysis capability.
type Analyzer interface {
	AnalyzeDocument(ctx context.Context, imageRef string, docType models.DocumentType) (models.DocumentAnalysis, error)
	AnalyzeSelfie(ctx context.Context, imageRef string) (models.SelfieAnalysis, error)
}
