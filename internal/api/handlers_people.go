package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/Artexxx/HR-People-Analytics/internal/analytics"
	"github.com/Artexxx/HR-People-Analytics/internal/dto"
	"github.com/Artexxx/HR-People-Analytics/internal/ingest"
)

type analyticsView struct {
	B    *analytics.Bundle
	JSON template.JS
}

func newAnalyticsView(b *analytics.Bundle) (analyticsView, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return analyticsView{}, fmt.Errorf("json.Marshal: %w", err)
	}
	return analyticsView{B: b, JSON: template.JS(raw)}, nil
}

// @Summary Страница списка сотрудников (20 на страницу, по id)
// @Tags    People
// @Produce json
// @Param   page query int false "Номер страницы, с 1"
// @Success 200 {object} dto.Page
// @Router  /api/employees [get]
func (s *Service) listEmployees(ctx *fasthttp.RequestCtx) {
	page, err := s.page(ctx, pageArg(ctx))
	if err != nil {
		serverError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, page)
}

// @Summary Выгрузка всех сотрудников
// @Tags    People
// @Produce json
// @Success 200 {array} dto.Person
// @Router  /api/people [get]
func (s *Service) exportPeople(ctx *fasthttp.RequestCtx) {
	all, err := s.people.All(ctx)
	if err != nil {
		serverError(ctx, fmt.Errorf("peopleRepository.All: %w", err))
		return
	}
	if all == nil {
		all = []dto.Person{}
	}

	writeJSON(ctx, fasthttp.StatusOK, all)
}

// @Summary Выгрузка всех сотрудников в XLSX
// @Tags    People
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router  /api/people.xlsx [get]
func (s *Service) exportPeopleXLSX(ctx *fasthttp.RequestCtx) {
	all, err := s.people.All(ctx)
	if err != nil {
		serverError(ctx, fmt.Errorf("peopleRepository.All: %w", err))
		return
	}

	body, err := peopleWorkbook(all)
	if err != nil {
		serverError(ctx, err)
		return
	}

	ctx.SetContentType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="people.xlsx"`)
	ctx.SetBody(body)
}

// @Summary Добавить сотрудника
// @Tags    People
// @Accept  json
// @Produce json
// @Param   request body dto.Person true "Сотрудник"
// @Success 201 {object} dto.Person
// @Failure 400 {object} errorResponse "validation_error с ошибками по полям"
// @Router  /api/people [post]
func (s *Service) createPerson(ctx *fasthttp.RequestCtx) {
	var req dto.Person
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		badRequest(ctx, "invalid_json", "Некорректный JSON", nil)
		return
	}
	req.ID = 0
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if errs := dto.ValidatePerson(req); len(errs) > 0 {
		badRequest(ctx, "validation_error", "Ошибки валидации", errs)
		return
	}

	p, err := s.create(ctx, req)
	if err != nil {
		if errors.Is(err, dto.ErrConstraint) {
			badRequest(ctx, "constraint_violation", err.Error(), nil)
			return
		}
		serverError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusCreated, p)
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

// @Summary Удалить всех сотрудников
// @Tags    People
// @Produce json
// @Success 200 {object} deletedResponse
// @Router  /api/people [delete]
func (s *Service) deleteAllPeople(ctx *fasthttp.RequestCtx) {
	n, err := s.deleteAll(ctx)
	if err != nil {
		serverError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, deletedResponse{Deleted: n})
}

// @Summary Импорт сотрудников из CSV или XLSX (поле file)
// @Tags    People
// @Accept  multipart/form-data
// @Produce json
// @Success 200 {object} ingest.Result
// @Failure 400 {object} errorResponse "unreadable_file | missing_columns | invalid_value | no_file"
// @Failure 413 {object} errorResponse "file_too_large"
// @Failure 500 {object} errorResponse "storage_failure"
// @Router  /api/upload [post]
func (s *Service) uploadPeople(ctx *fasthttp.RequestCtx) {
	res, _, err := s.importUpload(ctx)
	if err == nil {
		writeJSON(ctx, fasthttp.StatusOK, res)
		return
	}

	var missing *ingest.MissingColumnsError
	var rowErr *ingest.RowError
	switch {
	case errors.Is(err, ErrNoFile):
		badRequest(ctx, "no_file", err.Error(), nil)
	case errors.As(err, &missing):
		badRequest(ctx, "missing_columns", err.Error(), missing.Columns)
	case errors.As(err, &rowErr):
		badRequest(ctx, "invalid_value", err.Error(), map[string]any{
			"row":    rowErr.Row,
			"column": rowErr.Column,
			"value":  rowErr.Value,
		})
	case errors.Is(err, ingest.ErrTooLarge):
		writeJSON(ctx, fasthttp.StatusRequestEntityTooLarge, errorResponse{Code: "file_too_large", Message: err.Error()})
	case errors.Is(err, ingest.ErrStorage):
		serverError(ctx, err)
	default:
		badRequest(ctx, "unreadable_file", err.Error(), nil)
	}
}

// @Summary Статистика по зарплатам
// @Tags    Analytics
// @Produce json
// @Success 200 {object} analytics.Bundle
// @Failure 404 {object} errorResponse "no_data: записей нет"
// @Router  /api/analytics [get]
func (s *Service) analyticsJSON(ctx *fasthttp.RequestCtx) {
	view, err := s.analytics(ctx)
	if err != nil {
		if errors.Is(err, dto.ErrNoData) {
			writeJSON(ctx, fasthttp.StatusNotFound, errorResponse{Code: "no_data", Message: "Нет данных для аналитики."})
			return
		}
		serverError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, view.B)
}
