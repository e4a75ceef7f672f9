// Package app поднимает инфраструктуру, общую для сервера и CLI импорта.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Artexxx/HR-People-Analytics/internal/blob"
	"github.com/Artexxx/HR-People-Analytics/internal/config"
	"github.com/Artexxx/HR-People-Analytics/internal/dto"
	"github.com/Artexxx/HR-People-Analytics/internal/repository/people"
	"github.com/Artexxx/HR-People-Analytics/library/pg"
)

// PeopleStore это общий интерфейс обоих хранилищ записей.
type PeopleStore interface {
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, p dto.Person) (int64, error)
	BulkInsert(ctx context.Context, people []dto.Person) (int, error)
	All(ctx context.Context) ([]dto.Person, error)
	Page(ctx context.Context, page, perPage int) ([]dto.Person, int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type Storage struct {
	People PeopleStore
	// Pool равен nil для драйвера sqlite.
	Pool  *pgxpool.Pool
	close func()
}

func (s *Storage) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// OpenStorage подключает хранилище записей и создаёт схему.
func OpenStorage(ctx context.Context, cfg config.StorageConfig, pgCfg pg.PostgresConfig) (*Storage, error) {
	switch cfg.Driver.Value {
	case config.StoragePostgres:
		client, err := pg.NewPGWithConfig(ctx, pgCfg, log.Logger)
		if err != nil {
			return nil, fmt.Errorf("pg.NewPGWithConfig: %w", err)
		}
		repo := people.NewPgRepository(client.Pool())
		if err := repo.EnsureSchema(ctx); err != nil {
			client.Close()
			return nil, fmt.Errorf("people.EnsureSchema: %w", err)
		}
		return &Storage{People: repo, Pool: client.Pool(), close: client.Close}, nil

	case config.StorageSQLite:
		repo, err := people.OpenSQLite(ctx, cfg.SQLitePath.Value)
		if err != nil {
			return nil, fmt.Errorf("people.OpenSQLite(%s): %w", cfg.SQLitePath.Value, err)
		}
		return &Storage{People: repo, close: func() { _ = repo.Close() }}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver.Value)
}

// OpenArchive создаёт хранилище принятых файлов.
func OpenArchive(ctx context.Context, cfg config.UploadConfig) (blob.Store, error) {
	return blob.Open(ctx, blob.Options{
		Driver:    blob.Driver(cfg.Blob.Driver.Value),
		FSRoot:    cfg.Blob.FSRoot.Value,
		Bucket:    cfg.Blob.Bucket.Value,
		Region:    cfg.Blob.Region.Value,
		Endpoint:  cfg.Blob.Endpoint.Value,
		PathStyle: cfg.Blob.PathStyle.Value,
	})
}

// SetupLogging выставляет глобальный уровень zerolog, по умолчанию info.
func SetupLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
