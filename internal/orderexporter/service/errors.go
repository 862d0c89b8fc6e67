package service

import (
	"errors"

	"order-exporter/internal/orderexporter/capture"
	"order-exporter/internal/orderexporter/export"
)

var (
	ErrCaptureInProgress = errors.New("capture already in progress for scope")
	ErrCoolingDown       = errors.New("capture triggered too soon after the previous run")
	ErrInvalidScope      = errors.New("invalid scope")
	ErrInvalidPage       = errors.New("invalid page")
	ErrInvalidPageURL    = errors.New("invalid page url")

	ErrNoOrdersFound  = capture.ErrNoOrdersFound
	ErrRunInterrupted = capture.ErrRunInterrupted
	ErrUnknownFormat  = export.ErrUnknownFormat
)
