package goIdentity

import "context"

type requestIDContextKey struct{}
type returnURLContextKey struct{}

// WithRequestID attaches a correlation identifier to ctx. The Client stamps
// it on audit events and terminal-error logs; when absent, a random UUID is
// generated per logical request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// WithReturnURL attaches the URL the user should land on after
// re-authentication. Session termination triggered under this ctx carries it
// to the login entry point as a query parameter, provided it passes the
// open-redirect check.
func WithReturnURL(ctx context.Context, returnURL string) context.Context {
	return context.WithValue(ctx, returnURLContextKey{}, returnURL)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}

func returnURLFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	returnURL, _ := ctx.Value(returnURLContextKey{}).(string)
	return returnURL
}
