package analysis

import (
	"context"
	"strings"

	"rentwise/internal/verification/models"
)

const staticProvider = "static"

// StaticAnalyzer answers without calling out, for local runs and tests. The
// outcome is chosen by markers in the image reference:
//
//	invalid   document not valid
//	noface    no face in selfie
//	blurry    poor quality
//	unsure    confidence 0.6 (in review)
//	lowconf   confidence 0.2 (rejected)
//	timeout   fails with a timeout
//	outage    fails with a provider outage
//	garbled   fails with bad data
//
// References without markers analyse as valid, good and 0.92 confident.
type StaticAnalyzer struct{}

func NewStaticAnalyzer() *StaticAnalyzer {
	return &StaticAnalyzer{}
}

func (a *StaticAnalyzer) AnalyzeDocument(ctx context.Context, imageRef string, _ models.DocumentType) (models.DocumentAnalysis, error) {
	ref := strings.ToLower(imageRef)
	if err := staticFailure(ctx, ref); err != nil {
		return models.DocumentAnalysis{}, err
	}
	return models.DocumentAnalysis{
		IsValid:    !strings.Contains(ref, "invalid"),
		Quality:    staticQuality(ref),
		Confidence: staticConfidence(ref),
		Notes:      "static analysis",
	}, nil
}

func (a *StaticAnalyzer) AnalyzeSelfie(ctx context.Context, imageRef string) (models.SelfieAnalysis, error) {
	ref := strings.ToLower(imageRef)
	if err := staticFailure(ctx, ref); err != nil {
		return models.SelfieAnalysis{}, err
	}
	return models.SelfieAnalysis{
		FaceDetected: !strings.Contains(ref, "noface"),
		Quality:      staticQuality(ref),
		Confidence:   staticConfidence(ref),
		Notes:        "static analysis",
	}, nil
}

func staticFailure(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch {
	case strings.Contains(ref, "timeout"):
		return NewProviderError(ErrorTimeout, staticProvider, "simulated timeout", nil)
	case strings.Contains(ref, "outage"):
		return NewProviderError(ErrorProviderOutage, staticProvider, "simulated outage", nil)
	case strings.Contains(ref, "garbled"):
		return NewProviderError(ErrorBadData, staticProvider, "simulated malformed answer", nil)
	}
	return nil
}

func staticQuality(ref string) models.Quality {
	if strings.Contains(ref, "blurry") {
		return models.QualityPoor
	}
	return models.QualityGood
}

func staticConfidence(ref string) float64 {
	switch {
	case strings.Contains(ref, "lowconf"):
		return 0.2
	case strings.Contains(ref, "unsure"):
		return 0.6
	}
	return 0.92
}
