// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// DefaultOperator is recorded as installed_by when no operator is configured.
const DefaultOperator = "SchemaPilot"

// OperatorKey is the context key for the operator identity.
type OperatorKey struct{}

// WithOperator returns a context carrying the operator identity.
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, OperatorKey{}, operator)
}

// OperatorFromContext returns the operator identity, or DefaultOperator if none is set.
func OperatorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(OperatorKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultOperator
}
