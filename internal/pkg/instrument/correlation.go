package instrument

import "context"

// CorrelationHeader is the request/response header carrying the correlation id.
const CorrelationHeader = "X-Correlation-ID"

type correlationKey struct{}

// SetCorrelationID stores id in ctx.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// GetCorrelationID returns the correlation id stored in ctx, or "".
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
