package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"order-exporter/internal/common/exportprotocol"
	"order-exporter/internal/orderexporter/service"
	"order-exporter/pkg/logging"
)

type ClearService interface {
	Clear(ctx context.Context, scope string) error
}

type ClearHandler struct {
	service ClearService
	logger  *logging.ZapLogger
}

func NewClearHandler(service ClearService, logger *logging.ZapLogger) *ClearHandler {
	return &ClearHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ClearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h.service.Clear(r.Context(), r.URL.Query().Get(scopeParam))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidScope):
			writeError(r.Context(), w, http.StatusBadRequest, err, h.logger)
		case errors.Is(err, service.ErrCaptureInProgress):
			writeError(r.Context(), w, http.StatusConflict, err, h.logger)
		default:
			h.logger.ErrorCtx(r.Context(), "clear failed", zap.Error(err))
			writeError(r.Context(), w, http.StatusInternalServerError, err, h.logger)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type NextPageService interface {
	NextPage(page io.Reader, pageURL string) (string, error)
}

type NextPageHandler struct {
	service NextPageService
	logger  *logging.ZapLogger
}

func NewNextPageHandler(service NextPageService, logger *logging.ZapLogger) *NextPageHandler {
	return &NextPageHandler{
		service: service,
		logger:  logger,
	}
}

func (h *NextPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	next, err := h.service.NextPage(http.MaxBytesReader(w, r.Body, maxPageBytes), r.URL.Query().Get(urlParam))
	if err != nil {
		writeError(r.Context(), w, captureErrorStatus(err), err, h.logger)
		return
	}
	if err := tryWriteResponseJSON(w, http.StatusOK, exportprotocol.NextPage{URL: next}); err != nil {
		h.logger.ErrorCtx(r.Context(), "Error writing response", zap.Error(err))
	}
}
