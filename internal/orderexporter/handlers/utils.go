package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"order-exporter/internal/common/exportprotocol"
	"order-exporter/pkg/logging"
)

const (
	scopeParam = "scope"
	urlParam   = "url"

	maxPageBytes = 32 << 20
)

func closeBody(ctx context.Context, body io.ReadCloser, logger *logging.ZapLogger) {
	err := body.Close()
	if err != nil {
		logger.ErrorCtx(ctx, "failed to close body", zap.Error(err))
	}
}

func tryWriteResponseJSON(w http.ResponseWriter, status int, responseItem any) error {
	res, err := json.Marshal(responseItem)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(res)
	return err
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error, logger *logging.ZapLogger) {
	if writeErr := tryWriteResponseJSON(w, status, exportprotocol.Error{Error: err.Error()}); writeErr != nil {
		logger.ErrorCtx(ctx, "failed to write error response", zap.Error(writeErr))
	}
}
