// Package requestcontext carries per-request values (correlation ID, client
// metadata) through context.Context. Keys are unexported types so only this
// package can write them.
package requestcontext

import "context"

type requestIDKey struct{}

type clientMetadataKey struct{}

// ClientMetadata describes the connection-level facts about the caller that
// middleware extracts once per request.
type ClientMetadata struct {
	IP        string
	UserAgent string
	Host      string
}

// WithRequestID returns a context carrying the request correlation ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the correlation ID, or "" when none was set.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithClientMetadata returns a context carrying client connection metadata.
func WithClientMetadata(ctx context.Context, md ClientMetadata) context.Context {
	return context.WithValue(ctx, clientMetadataKey{}, md)
}

// GetClientMetadata returns the client metadata, or a zero value when unset.
func GetClientMetadata(ctx context.Context) ClientMetadata {
	if md, ok := ctx.Value(clientMetadataKey{}).(ClientMetadata); ok {
		return md
	}
	return ClientMetadata{}
}

// ClientIP is a convenience accessor for the extracted client IP.
func ClientIP(ctx context.Context) string {
	return GetClientMetadata(ctx).IP
}
