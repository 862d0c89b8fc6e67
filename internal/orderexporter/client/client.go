package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"order-exporter/internal/common/exportprotocol"
	"order-exporter/internal/orderexporter/data"
	"order-exporter/pkg/logging"
)

var (
	ErrNoOrdersFound     = errors.New("no orders found on page")
	ErrCaptureInProgress = errors.New("capture already in progress")
	ErrCoolingDown       = errors.New("capture cooling down")
)

type Config struct {
	ServerAddress string
	Scope         string
	Timeout       time.Duration
}

type Artifact struct {
	Filename string
	Body     []byte
}

// Client talks to the order exporter HTTP API.
type Client struct {
	rest   *resty.Client
	cfg    Config
	logger *logging.ZapLogger
}

func New(cfg Config, logger *logging.ZapLogger) *Client {
	rest := resty.New().SetBaseURL(cfg.ServerAddress)
	if cfg.Timeout > 0 {
		rest.SetTimeout(cfg.Timeout)
	}
	return &Client{
		rest:   rest,
		cfg:    cfg,
		logger: logger,
	}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.rest.R().SetContext(ctx)
	if c.cfg.Scope != "" {
		req.SetQueryParam("scope", c.cfg.Scope)
	}
	return req
}

func (c *Client) Capture(ctx context.Context, page io.Reader, pageURL string) (exportprotocol.CaptureReport, error) {
	req := c.request(ctx).
		SetHeader("Content-Type", "text/html").
		SetBody(page)
	if pageURL != "" {
		req.SetQueryParam("url", pageURL)
	}
	resp, err := req.Post("/api/capture")
	if err != nil {
		return exportprotocol.CaptureReport{}, fmt.Errorf("post request failed: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return decode[exportprotocol.CaptureReport](ctx, resp, c.logger)
	case http.StatusUnprocessableEntity:
		return exportprotocol.CaptureReport{}, ErrNoOrdersFound
	case http.StatusConflict:
		return exportprotocol.CaptureReport{}, ErrCaptureInProgress
	case http.StatusTooManyRequests:
		return exportprotocol.CaptureReport{}, ErrCoolingDown
	}
	return exportprotocol.CaptureReport{}, unexpected(resp)
}

func (c *Client) Progress(ctx context.Context) (exportprotocol.Progress, error) {
	resp, err := c.request(ctx).Get("/api/progress")
	if err != nil {
		return exportprotocol.Progress{}, fmt.Errorf("get request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return exportprotocol.Progress{}, unexpected(resp)
	}
	return decode[exportprotocol.Progress](ctx, resp, c.logger)
}

// Export downloads an artifact. Zero bounds are left open.
func (c *Client) Export(ctx context.Context, format string, from, to time.Time) (Artifact, error) {
	req := c.request(ctx).SetPathParam("format", format)
	if !from.IsZero() {
		req.SetQueryParam("from", from.Format(data.DateLayout))
	}
	if !to.IsZero() {
		req.SetQueryParam("to", to.Format(data.DateLayout))
	}
	resp, err := req.Get("/api/export/{format}")
	if err != nil {
		return Artifact{}, fmt.Errorf("get request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Artifact{}, unexpected(resp)
	}
	res := Artifact{Body: resp.Body()}
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil {
		res.Filename = params["filename"]
	}
	c.logger.DebugCtx(ctx, "artifact downloaded", zap.String("filename", res.Filename), zap.Int("bytes", len(res.Body)))
	return res, nil
}

func (c *Client) Clear(ctx context.Context) error {
	resp, err := c.request(ctx).Delete("/api/state")
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusNoContent:
		return nil
	case http.StatusConflict:
		return ErrCaptureInProgress
	}
	return unexpected(resp)
}

func (c *Client) NextPage(ctx context.Context, page io.Reader, pageURL string) (string, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("url", pageURL).
		SetHeader("Content-Type", "text/html").
		SetBody(page).
		Post("/api/next-page")
	if err != nil {
		return "", fmt.Errorf("post request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", unexpected(resp)
	}
	next, err := decode[exportprotocol.NextPage](ctx, resp, c.logger)
	return next.URL, err
}

func decode[T any](ctx context.Context, resp *resty.Response, logger *logging.ZapLogger) (T, error) {
	var res T
	if err := json.Unmarshal(resp.Body(), &res); err != nil {
		logger.ErrorCtx(ctx, "Error unmarshalling response", zap.Error(err))
		return res, fmt.Errorf("error unmarshalling response: %w", err)
	}
	return res, nil
}

func unexpected(resp *resty.Response) error {
	var apiErr exportprotocol.Error
	if err := json.Unmarshal(resp.Body(), &apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("unexpected status code %v: %s", resp.StatusCode(), apiErr.Error)
	}
	return fmt.Errorf("unexpected status code %v", resp.StatusCode())
}
