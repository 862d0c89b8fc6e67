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

type CaptureService interface {
	Capture(ctx context.Context, scope string, page io.Reader, pageURL string) (exportprotocol.CaptureReport, error)
}

// CaptureHandler accepts a rendered order-history page as the request body.
type CaptureHandler struct {
	service CaptureService
	logger  *logging.ZapLogger
}

func NewCaptureHandler(service CaptureService, logger *logging.ZapLogger) *CaptureHandler {
	return &CaptureHandler{
		service: service,
		logger:  logger,
	}
}

func (h *CaptureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	scope := r.URL.Query().Get(scopeParam)
	report, err := h.service.Capture(
		r.Context(),
		scope,
		http.MaxBytesReader(w, r.Body, maxPageBytes),
		r.URL.Query().Get(urlParam),
	)
	if err != nil {
		status := captureErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorCtx(r.Context(), "capture failed", zap.Error(err))
		} else {
			h.logger.DebugCtx(r.Context(), "capture rejected", zap.Error(err))
		}
		writeError(r.Context(), w, status, err, h.logger)
		return
	}

	if err := tryWriteResponseJSON(w, http.StatusOK, report); err != nil {
		h.logger.ErrorCtx(r.Context(), "Error writing response", zap.Error(err))
	}
}

func captureErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrInvalidScope),
		errors.Is(err, service.ErrInvalidPage),
		errors.Is(err, service.ErrInvalidPageURL):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoOrdersFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrCaptureInProgress):
		return http.StatusConflict
	case errors.Is(err, service.ErrCoolingDown):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrRunInterrupted):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
