package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"path"

	"github.com/valyala/fasthttp"

	"github.com/Artexxx/HR-People-Analytics/internal/blob"
	"github.com/Artexxx/HR-People-Analytics/internal/ingest"
)

// @Summary Архив принятых файлов
// @Tags    Uploads
// @Produce json
// @Success 200 {array} blob.Info
// @Router  /api/uploads [get]
func (s *Service) listUploads(ctx *fasthttp.RequestCtx) {
	if s.archive == nil {
		writeJSON(ctx, fasthttp.StatusOK, []any{})
		return
	}

	infos, err := s.archive.List(ctx, ingest.ArchivePrefix)
	if err != nil {
		serverError(ctx, fmt.Errorf("archive.List: %w", err))
		return
	}
	if infos == nil {
		writeJSON(ctx, fasthttp.StatusOK, []any{})
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, infos)
}

// uploadKey переводит хвост маршрута в ключ архива.
func uploadKey(ctx *fasthttp.RequestCtx) string {
	tail, _ := ctx.UserValue("key").(string)
	return ingest.ArchivePrefix + tail
}

// @Summary Скачать принятый файл из архива
// @Tags    Uploads
// @Param   key path string true "ключ без префикса uploads/"
// @Success 200 {file} file
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router  /api/uploads/{key} [get]
func (s *Service) downloadUpload(ctx *fasthttp.RequestCtx) {
	if s.archive == nil {
		writeJSON(ctx, fasthttp.StatusNotFound, errorResponse{Code: "not_found", Message: "архив отключён"})
		return
	}

	info, rc, err := s.archive.Get(ctx, uploadKey(ctx))
	if err != nil {
		s.archiveError(ctx, "archive.Get", err)
		return
	}
	defer func() { _ = rc.Close() }()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.SetContentType(contentType)
	ctx.Response.Header.Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(info.Key)}))

	if _, err := io.Copy(ctx, rc); err != nil {
		serverError(ctx, fmt.Errorf("copy %s: %w", info.Key, err))
	}
}

// @Summary Удалить файл из архива
// @Tags    Uploads
// @Param   key path string true "ключ без префикса uploads/"
// @Success 200 {object} okResponse
// @Failure 404 {object} errorResponse
// @Router  /api/uploads/{key} [delete]
func (s *Service) deleteUpload(ctx *fasthttp.RequestCtx) {
	if s.archive == nil {
		writeJSON(ctx, fasthttp.StatusNotFound, errorResponse{Code: "not_found", Message: "архив отключён"})
		return
	}

	key := uploadKey(ctx)
	removed, err := s.archive.Delete(ctx, key)
	if err != nil {
		s.archiveError(ctx, "archive.Delete", err)
		return
	}
	if !removed {
		s.archiveError(ctx, "archive.Delete", blob.ErrNotFound)
		return
	}

	ok(ctx, "Файл удалён: "+key)
}

func (s *Service) archiveError(ctx *fasthttp.RequestCtx, call string, err error) {
	switch {
	case errors.Is(err, blob.ErrNotFound):
		writeJSON(ctx, fasthttp.StatusNotFound, errorResponse{Code: "not_found", Message: "файл не найден в архиве"})
	case errors.Is(err, blob.ErrInvalidKey):
		badRequest(ctx, "invalid_key", err.Error(), nil)
	default:
		serverError(ctx, fmt.Errorf("%s: %w", call, err))
	}
}
