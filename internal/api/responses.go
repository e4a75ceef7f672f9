package api

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

var (
	ErrNoFile        = errors.New("файл не передан (поле file)")
	ErrKafkaDisabled = errors.New("журнал Kafka отключён")
)

type okResponse struct {
	Status string `json:"status" example:"ok"`
	Msg    string `json:"msg" example:"Готово"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(ctx *fasthttp.RequestCtx, statusCode int, body any) {
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.SetStatusCode(statusCode)

	_ = json.NewEncoder(ctx).Encode(body)
}

func ok(ctx *fasthttp.RequestCtx, msg string) {
	writeJSON(ctx, fasthttp.StatusOK, okResponse{Status: "ok", Msg: msg})
}

func writeError(ctx *fasthttp.RequestCtx, httpStatus int, err error) {
	writeJSON(ctx, httpStatus, errorResponse{Code: fasthttp.StatusMessage(httpStatus), Message: err.Error()})
}

func badRequest(ctx *fasthttp.RequestCtx, code, msg string, details any) {
	writeJSON(ctx, fasthttp.StatusBadRequest, errorResponse{Code: code, Message: msg, Details: details})
}

func notImplemented(ctx *fasthttp.RequestCtx, code, msg string) {
	writeJSON(ctx, fasthttp.StatusNotImplemented, errorResponse{Code: code, Message: msg})
}

func serverError(ctx *fasthttp.RequestCtx, err error) {
	log.Error().Err(err).Str("url", ctx.URI().String()).Msg("request failed")
	writeJSON(ctx, fasthttp.StatusInternalServerError, errorResponse{Code: "internal", Message: "Внутренняя ошибка"})
}
