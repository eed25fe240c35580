package context

import "context"

type traceIDKey struct{}

// WithTraceID attaches a per-submission trace id. One id is minted when a
// conversation reaches the submit phase and follows it through the ledger,
// the provisioning calls, and the audit trail.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

func GetTraceID(ctx context.Context) string {
	if s, ok := ctx.Value(traceIDKey{}).(string); ok {
		return s
	}
	return ""
}
