package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Artexxx/HR-People-Analytics/library/yamlenv"
)

type PostgresConfig struct {
	Conn     *yamlenv.Env[string] `yaml:"conn"`
	MaxConns *yamlenv.Env[int32]  `yaml:"max_conns"`
}

type PG struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewPG(ctx context.Context, conn string, log zerolog.Logger) (*PG, error) {
	return NewPGWithConfig(ctx, PostgresConfig{Conn: yamlenv.New(conn)}, log)
}

func NewPGWithConfig(ctx context.Context, cfg PostgresConfig, log zerolog.Logger) (*PG, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Conn.Get(""))
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	if n := cfg.MaxConns.Get(0); n > 0 {
		poolCfg.MaxConns = n
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	log.Info().Str("host", poolCfg.ConnConfig.Host).Str("database", poolCfg.ConnConfig.Database).Msg("postgres connected")

	return &PG{pool: pool, log: log}, nil
}

func (p *PG) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *PG) Close() {
	if p == nil || p.pool == nil {
		return
	}
	p.pool.Close()
	p.log.Info().Msg("postgres pool closed")
}
