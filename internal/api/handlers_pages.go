package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
	"github.com/Artexxx/HR-People-Analytics/internal/ingest"
	"github.com/Artexxx/HR-People-Analytics/internal/repository/people"
)

func (s *Service) indexPage(ctx *fasthttp.RequestCtx) {
	render(ctx, fasthttp.StatusOK, "index", "Главная", nil)
}

func (s *Service) employeesPage(ctx *fasthttp.RequestCtx) {
	page, err := s.page(ctx, pageArg(ctx))
	if err != nil {
		serverError(ctx, err)
		return
	}

	render(ctx, fasthttp.StatusOK, "employees", "Сотрудники", page)
}

func (s *Service) page(ctx *fasthttp.RequestCtx, n int) (dto.Page, error) {
	items, total, err := s.people.Page(ctx, n, people.PerPage)
	if err != nil {
		return dto.Page{}, fmt.Errorf("peopleRepository.Page: %w", err)
	}

	return dto.NewPage(items, n, people.PerPage, total), nil
}

func (s *Service) deleteAllForm(ctx *fasthttp.RequestCtx) {
	n, err := s.deleteAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("delete all people")
		redirectWithFlash(ctx, "/employees", "danger", "Ошибка при удалении сотрудников")
		return
	}

	redirectWithFlash(ctx, "/employees", "success", fmt.Sprintf("Удалено %d сотрудников", n))
}

func (s *Service) deleteAll(ctx *fasthttp.RequestCtx) (int64, error) {
	n, err := s.people.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("peopleRepository.DeleteAll: %w", err)
	}

	s.metrics.Deleted(n)
	s.publish("people.deleted", func(p Producer) error { return p.PublishDeleted(ctx, n) })

	return n, nil
}

func (s *Service) addPage(ctx *fasthttp.RequestCtx) {
	render(ctx, fasthttp.StatusOK, "add", "Новый сотрудник", newPersonForm(nil, nil))
}

func (s *Service) addSubmit(ctx *fasthttp.RequestCtx) {
	p, values, errs := parsePersonForm(ctx.PostArgs())
	if len(errs) > 0 {
		render(ctx, fasthttp.StatusOK, "add", "Новый сотрудник", newPersonForm(values, errs))
		return
	}

	if _, err := s.create(ctx, p); err != nil {
		if errors.Is(err, dto.ErrConstraint) {
			render(ctx, fasthttp.StatusOK, "add", "Новый сотрудник", newPersonForm(values, []dto.FieldError{
				{Field: "first_name", Message: err.Error()},
			}))
			return
		}
		serverError(ctx, err)
		return
	}

	redirectWithFlash(ctx, "/employees", "success", "Запись добавлена")
}

func (s *Service) create(ctx *fasthttp.RequestCtx, p dto.Person) (dto.Person, error) {
	id, err := s.people.Insert(ctx, p)
	if err != nil {
		return dto.Person{}, fmt.Errorf("peopleRepository.Insert: %w", err)
	}
	p.ID = id

	s.publish("person.created", func(pr Producer) error { return pr.PublishCreated(ctx, p) })

	return p, nil
}

type uploadView struct {
	Required []string
	MaxMB    float64
}

func (s *Service) uploadPage(ctx *fasthttp.RequestCtx) {
	required := make([]string, 0, len(ingest.RequiredColumns))
	for _, c := range ingest.RequiredColumns {
		required = append(required, c.Label())
	}

	render(ctx, fasthttp.StatusOK, "upload", "Загрузка", uploadView{
		Required: required,
		MaxMB:    float64(s.maxBytes) / (1 << 20),
	})
}

func (s *Service) uploadSubmit(ctx *fasthttp.RequestCtx) {
	res, name, err := s.importUpload(ctx)
	if err != nil {
		redirectWithFlash(ctx, "/upload", "danger", uploadFailureMessage(err))
		return
	}

	log.Info().Str("file", name).Int("imported", res.Imported).Msg("upload accepted")
	redirectWithFlash(ctx, "/employees", "success", fmt.Sprintf("Файл импортирован успешно (%d записей).", res.Imported))
}

// importUpload передаёт multipart-поле "file" в импорт.
func (s *Service) importUpload(ctx *fasthttp.RequestCtx) (ingest.Result, string, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		s.metrics.ImportFailed("no_file")
		return ingest.Result{}, "", ErrNoFile
	}

	f, err := fh.Open()
	if err != nil {
		s.metrics.ImportFailed("unreadable")
		return ingest.Result{}, fh.Filename, fmt.Errorf("%w: %w", ingest.ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	res, err := s.importer.Import(ctx, fh.Filename, f)
	if err != nil {
		s.metrics.ImportFailed(failureReason(err))
		log.Warn().Err(err).Str("file", fh.Filename).Msg("upload rejected")
		return ingest.Result{}, fh.Filename, err
	}

	s.metrics.Imported(res.Imported)
	s.publish("people.imported", func(p Producer) error {
		return p.PublishImported(ctx, fh.Filename, res.Imported, res.ArtifactKey)
	})

	return res, fh.Filename, nil
}

func failureReason(err error) string {
	var missing *ingest.MissingColumnsError
	var rowErr *ingest.RowError
	switch {
	case errors.As(err, &missing):
		return "missing_columns"
	case errors.As(err, &rowErr):
		return "invalid_value"
	case errors.Is(err, ingest.ErrTooLarge):
		return "too_large"
	case errors.Is(err, ingest.ErrStorage):
		return "storage"
	default:
		return "unreadable"
	}
}

func uploadFailureMessage(err error) string {
	var missing *ingest.MissingColumnsError
	var rowErr *ingest.RowError
	switch {
	case errors.Is(err, ErrNoFile):
		return "Выберите файл для загрузки."
	case errors.As(err, &missing):
		names := make([]string, 0, len(missing.Columns))
		for _, c := range missing.Columns {
			names = append(names, c.Label())
		}
		return "В загруженном файле отсутствуют обязательные столбцы: " + strings.Join(names, ", ")
	case errors.As(err, &rowErr):
		return fmt.Sprintf("Строка %d, столбец «%s»: недопустимое значение %q.", rowErr.Row, rowErr.Column.Label(), rowErr.Value)
	case errors.Is(err, ingest.ErrTooLarge):
		return "Файл слишком большой."
	case errors.Is(err, ingest.ErrStorage):
		return "Ошибка при добавлении записей в базу."
	default:
		return "Не удалось прочитать файл: некорректный формат."
	}
}

func (s *Service) analyticsPage(ctx *fasthttp.RequestCtx) {
	view, err := s.analytics(ctx)
	if err != nil {
		if errors.Is(err, dto.ErrNoData) {
			redirectWithFlash(ctx, "/", "warning", "Нет данных для аналитики.")
			return
		}
		serverError(ctx, err)
		return
	}

	render(ctx, fasthttp.StatusOK, "analytics", "Аналитика", view)
}

func (s *Service) analytics(ctx *fasthttp.RequestCtx) (analyticsView, error) {
	all, err := s.people.All(ctx)
	if err != nil {
		return analyticsView{}, fmt.Errorf("peopleRepository.All: %w", err)
	}

	started := time.Now()
	b, err := s.engine.Compute(all)
	s.metrics.ObserveAnalytics(time.Since(started))
	if err != nil {
		return analyticsView{}, err
	}

	return newAnalyticsView(b)
}
