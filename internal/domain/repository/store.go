package repository

import "context"

// Store is the connection-level port: health checks, shutdown and
// transactions that creature writes and their outbox rows join.
type Store interface {
	Ping(ctx context.Context) error
	Close()
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
