package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artexxx/HR-People-Analytics/internal/blob"
	"github.com/Artexxx/HR-People-Analytics/internal/config"
	"github.com/Artexxx/HR-People-Analytics/internal/dto"
	"github.com/Artexxx/HR-People-Analytics/library/pg"
	"github.com/Artexxx/HR-People-Analytics/library/yamlenv"
)

func defaults(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestOpenStorage_SQLite(t *testing.T) {
	cfg := defaults(t)
	cfg.Storage.SQLitePath = yamlenv.New(filepath.Join(t.TempDir(), "data", "people.db"))

	st, err := OpenStorage(context.Background(), cfg.Storage, pg.PostgresConfig{})
	require.NoError(t, err)
	defer st.Close()

	assert.Nil(t, st.Pool)

	id, err := st.People.Insert(context.Background(), dto.Person{FirstName: "Анна", LastName: "Смирнова"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := defaults(t)
	cfg.Storage.Driver = yamlenv.New("mysql")

	_, err := OpenStorage(context.Background(), cfg.Storage, pg.PostgresConfig{})
	assert.Error(t, err)
}

func TestOpenArchive(t *testing.T) {
	cfg := defaults(t)
	cfg.Upload.Blob.Driver = yamlenv.New(config.BlobMemory)

	st, err := OpenArchive(context.Background(), cfg.Upload)
	require.NoError(t, err)
	assert.Equal(t, blob.DriverMemory, st.Driver())

	cfg.Upload.Blob.Driver = yamlenv.New(config.BlobFilesystem)
	cfg.Upload.Blob.FSRoot = yamlenv.New(t.TempDir())
	st, err = OpenArchive(context.Background(), cfg.Upload)
	require.NoError(t, err)
	assert.Equal(t, blob.DriverFilesystem, st.Driver())
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	SetupLogging("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetupLogging("loud")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
