package testutil

import (
	"context"
	"net/http"
	"time"

	id "rentwise/pkg/domain"
	"rentwise/pkg/requestcontext"
)

// WithUserID adds the caller to the request context, as the auth middleware would.
func WithUserID(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithDevice sets client metadata and the derived device label.
func WithDevice(req *http.Request, userAgent, label string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), "192.0.2.1", userAgent)
	ctx = requestcontext.WithDeviceLabel(ctx, label)
	return req.WithContext(ctx)
}

// FixedTime returns a context whose request time is t, for deterministic timestamps.
func FixedTime(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}
