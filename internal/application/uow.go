package application

import "context"

// UnitOfWork provides a minimal transaction boundary using context propagation.
// Repository calls made with the context passed to fn commit or roll back as
// one atomic unit.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopUoW executes the function without starting a transaction.
type NoopUoW struct{}

func (NoopUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
