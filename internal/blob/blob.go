// Package blob хранит архив принятых файлов за тонким S3-подобным интерфейсом
// с драйверами для файловой системы, S3 и памяти.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Driver задаёт реализацию хранилища.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // локальная ФС (по умолчанию)
	DriverS3         Driver = "s3"     // S3 или MinIO
	DriverMemory     Driver = "memory" // в памяти (тесты)
)

// PutOptions это необязательные параметры Put.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Info описывает сохранённый объект.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store это часть объектного хранилища, нужная архиву загрузок.
type Store interface {
	// Put сохраняет новый объект по ключу. Если ключ занят, возвращает ErrExists.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Delete возвращает (false, nil), если ключ не найден.
	Delete(ctx context.Context, key string) (bool, error)
	// List возвращает объекты с префиксом prefix, упорядоченные по ключу.
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

var (
	ErrExists   = errors.New("blob: key already exists")
	ErrNotFound = errors.New("blob: key not found")
	// ErrInvalidKey: ключ пустой, абсолютный или выходит за корень.
	ErrInvalidKey = errors.New("blob: invalid key")
)

// Options выбирает и настраивает драйвер.
type Options struct {
	Driver    Driver
	FSRoot    string
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// Open создаёт Store для драйвера opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverFilesystem, "":
		return NewFilesystem(opts.FSRoot)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:    opts.Bucket,
			Region:    opts.Region,
			Endpoint:  opts.Endpoint,
			PathStyle: opts.PathStyle,
		})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", opts.Driver)
	}
}

// sanitizeKey отклоняет ключи, которые могут выйти за корень хранилища.
func sanitizeKey(key string) (string, error) {
	key = strings.ReplaceAll(key, "\\", "/")
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: absolute", ErrInvalidKey)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: traversal", ErrInvalidKey)
		}
	}
	return key, nil
}

func cloneMetadata(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
