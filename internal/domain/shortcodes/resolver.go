package shortcodes

import (
	"context"
	"errors"
	"strings"

	"github.com/brewvote/server/internal/domain/fault"
	"github.com/brewvote/server/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnresolved is the only failure Resolve reports. Malformed codes, unknown
// codes, codes of another kind and store failures are indistinguishable.
var ErrUnresolved = fault.NotFound("short_code_not_found", "Not found")

type Resolver struct {
	repo   Repository
	logger zerolog.Logger
}

func NewResolver(repo Repository, logger zerolog.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		logger: logger.With().Str("component", "shortcodes").Logger(),
	}
}

// Resolve maps code to the identifier registered under kind. It never
// writes.
func (r *Resolver) Resolve(ctx context.Context, code string, kind Kind) (uuid.UUID, error) {
	sc, err := r.lookup(ctx, code, kind)
	if err != nil {
		return uuid.Nil, err
	}
	metrics.ShortCodeLookups.WithLabelValues(string(kind), "hit").Inc()
	return sc.TargetID, nil
}

// ResolveInEvent is Resolve for codes minted for one event. A code bound to
// another event is unresolved; codes without an event are accepted.
func (r *Resolver) ResolveInEvent(ctx context.Context, code string, kind Kind, eventID uuid.UUID) (uuid.UUID, error) {
	sc, err := r.lookup(ctx, code, kind)
	if err != nil {
		return uuid.Nil, err
	}
	if sc.EventID != uuid.Nil && sc.EventID != eventID {
		metrics.ShortCodeLookups.WithLabelValues(string(kind), "wrong_event").Inc()
		r.logger.Debug().
			Str("kind", string(kind)).
			Str("event_id", eventID.String()).
			Str("code_event_id", sc.EventID.String()).
			Msg("short code belongs to another event")
		return uuid.Nil, ErrUnresolved
	}
	metrics.ShortCodeLookups.WithLabelValues(string(kind), "hit").Inc()
	return sc.TargetID, nil
}

// lookup counts misses and errors; callers count hits.
func (r *Resolver) lookup(ctx context.Context, code string, kind Kind) (ShortCode, error) {
	code = strings.TrimSpace(code)
	if code == "" || !kind.Valid() {
		metrics.ShortCodeLookups.WithLabelValues(string(kind), "miss").Inc()
		return ShortCode{}, ErrUnresolved
	}

	sc, err := r.repo.Lookup(ctx, code, kind)
	switch {
	case err == nil && sc.TargetID != uuid.Nil:
		return sc, nil
	case err == nil, errors.Is(err, ErrNotFound):
		metrics.ShortCodeLookups.WithLabelValues(string(kind), "miss").Inc()
	default:
		metrics.ShortCodeLookups.WithLabelValues(string(kind), "error").Inc()
		r.logger.Warn().Err(err).Str("kind", string(kind)).Msg("short code lookup failed")
	}
	return ShortCode{}, ErrUnresolved
}
