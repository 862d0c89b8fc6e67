package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"order-exporter/internal/orderexporter/data"
	"order-exporter/internal/orderexporter/service"
	"order-exporter/pkg/logging"
)

const (
	formatParam = "format"
	fromParam   = "from"
	toParam     = "to"
)

type ExportService interface {
	Export(ctx context.Context, scope, format string, from, to time.Time) (service.Artifact, error)
}

type ExportHandler struct {
	service ExportService
	logger  *logging.ZapLogger
}

func NewExportHandler(service ExportService, logger *logging.ZapLogger) *ExportHandler {
	return &ExportHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, err := parseDay(query.Get(fromParam))
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, err, h.logger)
		return
	}
	to, err := parseDay(query.Get(toParam))
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, err, h.logger)
		return
	}

	artifact, err := h.service.Export(r.Context(), query.Get(scopeParam), chi.URLParam(r, formatParam), from, to)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownFormat):
			writeError(r.Context(), w, http.StatusNotFound, err, h.logger)
		case errors.Is(err, service.ErrInvalidScope):
			writeError(r.Context(), w, http.StatusBadRequest, err, h.logger)
		default:
			h.logger.ErrorCtx(r.Context(), "export failed", zap.Error(err))
			writeError(r.Context(), w, http.StatusInternalServerError, err, h.logger)
		}
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Body)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": artifact.Filename,
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Body); err != nil {
		h.logger.ErrorCtx(r.Context(), "Error writing response", zap.Error(err))
	}
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(data.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
