package dashboard

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/eshaffer321/edition-dashboard/internal/adapters/editions"
	"github.com/eshaffer321/edition-dashboard/internal/domain/query"
	"github.com/eshaffer321/edition-dashboard/internal/domain/querystring"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/metrics"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/storage"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/tracing"
)

// Results fetches the page for the session's current query.
//
// If the query changed (or another fetch started) while this one was in
// flight the response is dropped and ErrStaleResult returned. A failed fetch
// discards the session's previous result and returns a *FetchError.
func (s *Service) Results(ctx context.Context, id string) (_ *Result, err error) {
	ctx, span := tracing.Tracer().Start(ctx, "dashboard.Results",
		trace.WithAttributes(attribute.String("session.id", id)))
	defer func() { endSpan(span, err) }()

	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	params := sess.store.Current()
	ticket := sess.tracker.Begin(params)
	sess.touchedAt = s.now()
	sess.mu.Unlock()

	span.SetAttributes(
		attribute.Int64("dashboard.generation", int64(ticket.Generation)),
		attribute.String("dashboard.query", params.String()))

	runID := s.startRun(storage.KindList, querystring.Stringify(params), id)
	page, fetchErr := s.api.List(ctx, params)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.tracker.IsCurrent(ticket) {
		s.discardRun(runID)
		s.metrics.ObserveFetch(metrics.FetchStale)
		s.logger.Debug("dropped stale result",
			"session_id", id,
			"generation", ticket.Generation,
			"current", sess.tracker.Generation())
		return nil, ErrStaleResult
	}

	if fetchErr != nil {
		sess.last = nil
		s.failRun(runID, fetchErr)
		s.metrics.ObserveFetch(metrics.FetchFailed)
		s.logger.Warn("failed to fetch publications",
			"session_id", id,
			"params", params.String(),
			"error", fetchErr)
		return nil, &FetchError{Cause: fetchErr}
	}

	sess.last = page
	sess.store.SetPageCount(page.PageCount)
	s.completeRun(runID, len(page.Items), page.TotalItems)
	s.metrics.ObserveFetch(metrics.FetchApplied)

	return &Result{
		SessionID:  id,
		Params:     params,
		Page:       page,
		PageInfo:   page.PageInfo(),
		Generation: ticket.Generation,
	}, nil
}

// List fetches one page outside any session.
func (s *Service) List(ctx context.Context, params query.Parameters) (_ *editions.Page, err error) {
	params = params.WithDefaults(s.defaultLimit)

	ctx, span := tracing.Tracer().Start(ctx, "dashboard.List",
		trace.WithAttributes(attribute.String("dashboard.query", params.String())))
	defer func() { endSpan(span, err) }()

	runID := s.startRun(storage.KindList, querystring.Stringify(params), "")
	page, err := s.api.List(ctx, params)
	if err != nil {
		s.failRun(runID, err)
		return nil, &FetchError{Cause: err}
	}
	s.completeRun(runID, len(page.Items), page.TotalItems)
	return page, nil
}

// Publication fetches one publication's details. A missing publication is
// returned as editions.ErrNotFound rather than a *FetchError.
func (s *Service) Publication(ctx context.Context, id string) (_ *editions.Publication, err error) {
	ctx, span := tracing.Tracer().Start(ctx, "dashboard.Publication",
		trace.WithAttributes(attribute.String("publication.id", id)))
	defer func() { endSpan(span, err) }()

	runID := s.startRun(storage.KindDetail, id, "")
	pub, err := s.api.Get(ctx, id)
	if err != nil {
		s.failRun(runID, err)
		if errors.Is(err, editions.ErrNotFound) || errors.Is(err, editions.ErrEmptyID) {
			return nil, err
		}
		return nil, &FetchError{Cause: err}
	}
	s.completeRun(runID, 1, 1)
	return pub, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// The fetch log is best effort: a storage failure never fails a fetch.

func (s *Service) startRun(kind, target, sessionID string) int64 {
	if s.runs == nil {
		return 0
	}
	id, err := s.runs.StartFetchRun(kind, target, sessionID)
	if err != nil {
		s.logger.Warn("failed to record fetch run", "kind", kind, "error", err)
		return 0
	}
	return id
}

func (s *Service) completeRun(runID int64, items, total int) {
	if s.runs == nil || runID == 0 {
		return
	}
	if err := s.runs.CompleteFetchRun(runID, items, total); err != nil {
		s.logger.Warn("failed to complete fetch run", "run_id", runID, "error", err)
	}
}

func (s *Service) failRun(runID int64, cause error) {
	if s.runs == nil || runID == 0 {
		return
	}
	if err := s.runs.FailFetchRun(runID, cause.Error()); err != nil {
		s.logger.Warn("failed to record fetch failure", "run_id", runID, "error", err)
	}
}

func (s *Service) discardRun(runID int64) {
	if s.runs == nil || runID == 0 {
		return
	}
	if err := s.runs.DiscardFetchRun(runID); err != nil {
		s.logger.Warn("failed to record stale fetch", "run_id", runID, "error", err)
	}
}
