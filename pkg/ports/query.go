package ports

import (
	"context"

	"github.com/payflowkr/payflow/pkg/domain"
)

// QueryService is the SQL generation/execution boundary. It accepts a
// natural-language instruction that is self-contained (period, scope
// and prior run ids are interpolated by the caller) and returns either
// a result or a domain-level failure inside QueryResult.Err.
//
// Implementations must not return a Go error for domain-level failures
// (bad query, empty result); a Go error signals unrecoverable plumbing
// failure and leaves the scenario state untouched.
type QueryService interface {
	Run(ctx context.Context, instruction string) (*domain.QueryResult, error)
}

// QueryFunc adapts a plain function to the QueryService interface.
type QueryFunc func(ctx context.Context, instruction string) (*domain.QueryResult, error)

// Run implements QueryService.
func (f QueryFunc) Run(ctx context.Context, instruction string) (*domain.QueryResult, error) {
	return f(ctx, instruction)
}
