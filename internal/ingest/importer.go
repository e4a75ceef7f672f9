package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Artexxx/HR-People-Analytics/internal/blob"
	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

const ArchivePrefix = "uploads/"

type PeopleStore interface {
	BulkInsert(ctx context.Context, people []dto.Person) (int, error)
}

// Result описывает принятую загрузку.
type Result struct {
	Imported    int    `json:"imported"`
	ArtifactKey string `json:"artifact_key,omitempty"`
}

// Importer превращает загруженную таблицу в записи. Загрузка принимается
// целиком или не принимается вовсе.
type Importer struct {
	store    PeopleStore
	archive  blob.Store
	maxBytes int64
}

// NewImporter создаёт Importer. archive может быть nil, maxBytes <= 0 отключает проверку размера.
func NewImporter(store PeopleStore, archive blob.Store, maxBytes int64) *Importer {
	return &Importer{store: store, archive: archive, maxBytes: maxBytes}
}

func (im *Importer) Import(ctx context.Context, name string, r io.Reader) (Result, error) {
	data, err := im.read(r)
	if err != nil {
		return Result{}, err
	}

	t, err := Parse(name, data)
	if err != nil {
		return Result{}, err
	}
	if err = t.Validate(); err != nil {
		return Result{}, err
	}

	people, err := t.MapRows()
	if err != nil {
		return Result{}, err
	}
	if len(people) == 0 {
		return Result{}, nil
	}

	n, err := im.store.BulkInsert(ctx, people)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	res := Result{Imported: n}
	if im.archive != nil {
		key := ArchivePrefix + uuid.NewString() + "/" + safeName(name)
		_, err = im.archive.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{
			ContentType: contentType(name),
			Metadata:    map[string]string{"imported": fmt.Sprint(n)},
		})
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("archive upload artifact")
		} else {
			res.ArtifactKey = key
		}
	}

	log.Info().Str("file", name).Int("imported", res.Imported).Msg("upload imported")

	return res, nil
}

func (im *Importer) read(r io.Reader) ([]byte, error) {
	if im.maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, im.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	if int64(len(data)) > im.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

func safeName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "upload.csv"
	}
	return base
}

func contentType(name string) string {
	if strings.EqualFold(path.Ext(name), ".xlsx") {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}
