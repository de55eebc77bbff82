package analysis

import (
	"strings"

	"github.com/tidwall/gjson"

	"rentwise/internal/verification/models"
)

// ParseDocumentAnalysis decodes a provider's JSON answer for an ID document.
// is_valid and quality are required; a missing confidence is read as 0.
func ParseDocumentAnalysis(provider, raw string) (models.DocumentAnalysis, error) {
	root, err := parseObject(provider, raw)
	if err != nil {
		return models.DocumentAnalysis{}, err
	}
	valid, err := requireBool(provider, root, "is_valid")
	if err != nil {
		return models.DocumentAnalysis{}, err
	}
	quality, err := requireQuality(provider, root)
	if err != nil {
		return models.DocumentAnalysis{}, err
	}
	confidence, err := optionalConfidence(provider, root)
	if err != nil {
		return models.DocumentAnalysis{}, err
	}
	return models.DocumentAnalysis{
		IsValid:    valid,
		Quality:    quality,
		Confidence: confidence,
		Notes:      root.Get("notes").String(),
	}, nil
}

// ParseSelfieAnalysis decodes a provider's JSON answer for a selfie.
func ParseSelfieAnalysis(provider, raw string) (models.SelfieAnalysis, error) {
	root, err := parseObject(provider, raw)
	if err != nil {
		return models.SelfieAnalysis{}, err
	}
	face, err := requireBool(provider, root, "face_detected")
	if err != nil {
		return models.SelfieAnalysis{}, err
	}
	quality, err := requireQuality(provider, root)
	if err != nil {
		return models.SelfieAnalysis{}, err
	}
	confidence, err := optionalConfidence(provider, root)
	if err != nil {
		return models.SelfieAnalysis{}, err
	}
	return models.SelfieAnalysis{
		FaceDetected: face,
		Quality:      quality,
		Confidence:   confidence,
		Notes:        root.Get("notes").String(),
	}, nil
}

// parseObject accepts a bare JSON object, optionally wrapped in a markdown
// code fence.
func parseObject(provider, raw string) (gjson.Result, error) {
	body := strings.TrimSpace(raw)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		body = strings.TrimSpace(body)
	}
	if !gjson.Valid(body) {
		return gjson.Result{}, NewProviderError(ErrorBadData, provider, "response is not valid JSON", nil)
	}
	root := gjson.Parse(body)
	if !root.IsObject() {
		return gjson.Result{}, NewProviderError(ErrorBadData, provider, "response is not a JSON object", nil)
	}
	return root, nil
}

func requireBool(provider string, root gjson.Result, field string) (bool, error) {
	v := root.Get(field)
	switch v.Type {
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	}
	return false, NewProviderError(ErrorBadData, provider, field+" must be a boolean", nil)
}

func requireQuality(provider string, root gjson.Result) (models.Quality, error) {
	v := root.Get("quality")
	if v.Type != gjson.String {
		return "", NewProviderError(ErrorBadData, provider, "quality must be a string", nil)
	}
	q := models.Quality(strings.ToLower(strings.TrimSpace(v.Str)))
	if !q.IsValid() {
		return "", NewProviderError(ErrorBadData, provider, "quality must be good, fair or poor", nil)
	}
	return q, nil
}

func optionalConfidence(provider string, root gjson.Result) (float64, error) {
	v := root.Get("confidence")
	switch v.Type {
	case gjson.Null:
		return 0, nil
	case gjson.Number:
		return models.ClampConfidence(v.Num), nil
	}
	return 0, NewProviderError(ErrorBadData, provider, "confidence must be a number", nil)
}
