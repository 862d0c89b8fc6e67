package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"order-exporter/internal/common/exportprotocol"
	"order-exporter/internal/orderexporter/service"
	"order-exporter/pkg/logging"
)

type ProgressService interface {
	Progress(scope string) (exportprotocol.Progress, error)
}

type ProgressHandler struct {
	service ProgressService
	logger  *logging.ZapLogger
}

func NewProgressHandler(service ProgressService, logger *logging.ZapLogger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.Progress(r.URL.Query().Get(scopeParam))
	if err != nil {
		if errors.Is(err, service.ErrInvalidScope) {
			writeError(r.Context(), w, http.StatusBadRequest, err, h.logger)
			return
		}
		h.logger.ErrorCtx(r.Context(), "Error getting progress", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if err := tryWriteResponseJSON(w, http.StatusOK, progress); err != nil {
		h.logger.ErrorCtx(r.Context(), "Error writing response", zap.Error(err))
	}
}
