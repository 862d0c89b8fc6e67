package service

import (
	"context"
	"fmt"
	"time"

	"order-exporter/internal/orderexporter/data"
	"order-exporter/internal/orderexporter/export"
)

type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Export renders the orders of scope dated within [from, to]. Zero bounds are open.
func (s *CaptureService) Export(ctx context.Context, scope, format string, from, to time.Time) (Artifact, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return Artifact{}, err
	}
	scope, err = normalizeScope(scope)
	if err != nil {
		return Artifact{}, err
	}
	state, err := s.snapshot(ctx, scope)
	if err != nil {
		return Artifact{}, err
	}
	state = state.Window(from, to)

	var body []byte
	switch f {
	case export.JSONFormat:
		body, err = export.JSON(state)
	case export.CSVFormat:
		body = []byte(export.CSV(state))
	case export.XLSXFormat:
		body, err = export.XLSX(state)
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to export %s: %w", f, err)
	}
	return Artifact{
		Filename:    export.Filename(f, s.now()),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}

// snapshot reads the persisted state unless a run holds the scope, in which case the
// reconciler's copy is the one being merged into. It never replaces the reconciler's
// state, so a run starting meanwhile keeps what it merged.
func (s *CaptureService) snapshot(ctx context.Context, scope string) (data.CaptureState, error) {
	st := s.scope(scope)
	if s.running.Contains(scope) {
		return st.reconciler.Current(), nil
	}
	state, err := st.reconciler.Persisted(ctx)
	if err != nil {
		return data.CaptureState{}, fmt.Errorf("failed to load scope %s: %w", scope, err)
	}
	s.metrics.SetStateOrders(scope, state.Total)
	return state, nil
}
