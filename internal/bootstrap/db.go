package bootstrap

import (
	"context"

	"github.com/daffahilmyf/creature-catalog/internal/config"
	"github.com/daffahilmyf/creature-catalog/internal/infra/persistence"
)

// OpenDB connects the write/read pool and pings the primary within the
// configured connect timeout.
func OpenDB(ctx context.Context, cfg config.Config) (*persistence.DB, error) {
	conn, err := persistence.New(ctx, persistence.Config{
		WriteDSN:        cfg.Database.WriteDSN,
		ReadDSN:         cfg.Database.ReadDSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, err
	}

	pingCtx := ctx
	if cfg.Database.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
		defer cancel()
	}
	if err := conn.Ping(pingCtx); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
