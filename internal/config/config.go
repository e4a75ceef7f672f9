package config

import (
	"fmt"

	"github.com/Artexxx/HR-People-Analytics/library/pg"
	"github.com/Artexxx/HR-People-Analytics/library/yamlenv"
)

const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"

	BlobFilesystem = "fs"
	BlobS3         = "s3"
	BlobMemory     = "memory"

	DefaultMaxUploadBytes = 5 << 20 // 5 МиБ
)

type Config struct {
	Storage   StorageConfig     `yaml:"storage"`
	Postgres  pg.PostgresConfig `yaml:"postgres"`
	Upload    UploadConfig      `yaml:"upload"`
	Analytics AnalyticsConfig   `yaml:"analytics"`
	Kafka     KafkaConfig       `yaml:"kafka"`
	UserAPI   ApiConfig         `yaml:"userAPI"`
	Log       LogConfig         `yaml:"log"`
}

type StorageConfig struct {
	Driver     *yamlenv.Env[string] `yaml:"driver"`
	SQLitePath *yamlenv.Env[string] `yaml:"sqlite_path"`
}

type UploadConfig struct {
	MaxBytes *yamlenv.Env[int64] `yaml:"max_bytes"`
	Blob     struct {
		Driver    *yamlenv.Env[string] `yaml:"driver"`
		FSRoot    *yamlenv.Env[string] `yaml:"fs_root"`
		Bucket    *yamlenv.Env[string] `yaml:"s3_bucket"`
		Region    *yamlenv.Env[string] `yaml:"s3_region"`
		Endpoint  *yamlenv.Env[string] `yaml:"s3_endpoint"`
		PathStyle *yamlenv.Env[bool]   `yaml:"s3_path_style"`
	} `yaml:"blob"`
}

// AnalyticsConfig задаёт два значения пола для расчёта гендерного разрыва зарплат.
type AnalyticsConfig struct {
	ReferenceGender *yamlenv.Env[string] `yaml:"reference_gender"`
	ComparedGender  *yamlenv.Env[string] `yaml:"compared_gender"`
}

type KafkaConfig struct {
	Enabled          *yamlenv.Env[bool]   `yaml:"enabled"`
	Bootstrap        *yamlenv.Env[string] `yaml:"bootstrap"`
	ProducerClientID *yamlenv.Env[string] `yaml:"producer_client_id"`
	GroupID          *yamlenv.Env[string] `yaml:"group_id"`
	Topics           struct {
		Events *yamlenv.Env[string] `yaml:"people_events"`
		Intake *yamlenv.Env[string] `yaml:"people_intake"`
	} `yaml:"topics"`
}

type ApiConfig struct {
	Port *yamlenv.Env[int] `yaml:"port"`
}

type LogConfig struct {
	Level *yamlenv.Env[string] `yaml:"level"`
}

// Validate заполняет значения по умолчанию и отклоняет неизвестные драйверы.
func (c *Config) Validate() error {
	setDefault(&c.Storage.Driver, StorageSQLite)
	setDefault(&c.Storage.SQLitePath, "people.db")
	setDefault(&c.Postgres.Conn, "postgres://localhost:5432/people?sslmode=disable")
	setDefault(&c.Upload.MaxBytes, int64(DefaultMaxUploadBytes))
	setDefault(&c.Upload.Blob.Driver, BlobFilesystem)
	setDefault(&c.Upload.Blob.FSRoot, "uploads")
	setDefault(&c.Upload.Blob.Bucket, "")
	setDefault(&c.Upload.Blob.Region, "us-east-1")
	setDefault(&c.Upload.Blob.Endpoint, "")
	setDefault(&c.Upload.Blob.PathStyle, false)
	setDefault(&c.Analytics.ReferenceGender, "Мужчина")
	setDefault(&c.Analytics.ComparedGender, "Женщина")
	setDefault(&c.Kafka.Enabled, false)
	setDefault(&c.Kafka.Bootstrap, "localhost:9092")
	setDefault(&c.Kafka.ProducerClientID, "people-analytics")
	setDefault(&c.Kafka.GroupID, "people_intake")
	setDefault(&c.Kafka.Topics.Events, "people.events")
	setDefault(&c.Kafka.Topics.Intake, "people.intake")
	setDefault(&c.UserAPI.Port, 8080)
	setDefault(&c.Log.Level, "info")

	switch c.Storage.Driver.Value {
	case StorageSQLite, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver.Value)
	}

	switch c.Upload.Blob.Driver.Value {
	case BlobFilesystem, BlobMemory:
	case BlobS3:
		if c.Upload.Blob.Bucket.Value == "" {
			return fmt.Errorf("upload.blob.s3_bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Upload.Blob.Driver.Value)
	}

	if c.Upload.MaxBytes.Value <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes.Value)
	}

	if c.Kafka.Enabled.Value && c.Storage.Driver.Value != StoragePostgres {
		return fmt.Errorf("kafka intake requires the %q storage driver", StoragePostgres)
	}

	return nil
}

func setDefault[T any](field **yamlenv.Env[T], v T) {
	if *field == nil {
		*field = yamlenv.New(v)
	}
}
