package api

import (
	"fmt"

	"github.com/valyala/fasthttp"
)

// @Summary Проверка здоровья сервиса
// @Tags    Admin
// @Success 200 {object} okResponse
// @Router  /health [get]
func (s *Service) healthHandler(ctx *fasthttp.RequestCtx) {
	ok(ctx, "OK")
}

// @Summary Журнал обработанных сообщений intake-топика
// @Tags    Intake
// @Produce json
// @Success 200 {array} dto.IntakeEvent
// @Failure 501 {object} errorResponse
// @Router  /events [get]
func (s *Service) listEvents(ctx *fasthttp.RequestCtx) {
	if s.events == nil {
		notImplemented(ctx, "kafka_disabled", ErrKafkaDisabled.Error())
		return
	}

	rows, err := s.events.ListEvents(ctx)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("eventsRepository.ListEvents: %w", err))
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, rows)
}

// @Summary Отклонённые сообщения intake-топика
// @Tags    Intake
// @Produce json
// @Success 200 {array} dto.IntakeDLQ
// @Failure 501 {object} errorResponse
// @Router  /dlq [get]
func (s *Service) listDLQ(ctx *fasthttp.RequestCtx) {
	if s.events == nil {
		notImplemented(ctx, "kafka_disabled", ErrKafkaDisabled.Error())
		return
	}

	rows, err := s.events.ListDLQ(ctx)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("eventsRepository.ListDLQ: %w", err))
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, rows)
}

// @Summary Очистка журнала intake (события и DLQ)
// @Tags    Admin
// @Success 200 {object} okResponse
// @Failure 501 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router  /admin/reset [post]
func (s *Service) resetHandler(ctx *fasthttp.RequestCtx) {
	if s.events == nil {
		notImplemented(ctx, "kafka_disabled", ErrKafkaDisabled.Error())
		return
	}

	if err := s.events.ResetAll(ctx); err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("events.ResetAll: %w", err))
		return
	}

	ok(ctx, "Журнал intake очищен")
}
