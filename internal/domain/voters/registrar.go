package voters

import (
	"context"
	"errors"

	"github.com/brewvote/server/internal/domain/fault"
	"github.com/brewvote/server/internal/metrics"
	"github.com/brewvote/server/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// Outcome records which step of GetOrCreate produced the voter.
type Outcome string

const (
	OutcomeExisting   Outcome = "existing"
	OutcomeCreated    Outcome = "created"
	OutcomeReconciled Outcome = "reconciled"
	OutcomeFailed     Outcome = "failed"
)

var ErrRegistrationFailed = fault.New(fault.KindInternal, "voter_registration_failed", "Failed to register voter")

// Registrar creates voters lazily. Concurrent first visits for the same voter
// code race on the insert; losers read back the winner's row.
type Registrar struct {
	repo   Repository
	logger zerolog.Logger
}

func NewRegistrar(repo Repository, logger zerolog.Logger) *Registrar {
	return &Registrar{
		repo:   repo,
		logger: logger.With().Str("component", "voters").Logger(),
	}
}

func (r *Registrar) GetOrCreate(ctx context.Context, voterID, eventID uuid.UUID) (Voter, error) {
	ctx, span := telemetry.StartSpan(ctx, "voters.GetOrCreate",
		attribute.String("voter.id", voterID.String()),
		attribute.String("event.id", eventID.String()),
	)

	voter, outcome, err := r.getOrCreate(ctx, voterID, eventID)
	metrics.VoterRegistrations.WithLabelValues(string(outcome)).Inc()
	span.SetAttributes(attribute.String("voter.outcome", string(outcome)))
	telemetry.EndSpan(span, err)
	return voter, err
}

func (r *Registrar) getOrCreate(ctx context.Context, voterID, eventID uuid.UUID) (Voter, Outcome, error) {
	existing, err := r.repo.GetVoter(ctx, voterID, eventID)
	if err == nil {
		return existing, OutcomeExisting, nil
	}
	if !errors.Is(err, ErrNotFound) {
		// the insert below decides; a failing store fails there too
		r.logger.Warn().Err(err).Str("voter_id", voterID.String()).Msg("voter lookup failed")
	}

	created, insertErr := r.repo.InsertVoter(ctx, voterID, eventID)
	if insertErr == nil {
		return created, OutcomeCreated, nil
	}

	// Lost a race, or the id is already registered. The id is the unique key,
	// so the re-read is by id alone.
	reconciled, err := r.repo.GetVoterByID(ctx, voterID)
	if err == nil {
		return reconciled, OutcomeReconciled, nil
	}

	r.logger.Error().
		Err(insertErr).
		AnErr("reconcile_error", err).
		Str("voter_id", voterID.String()).
		Str("event_id", eventID.String()).
		Msg("voter registration failed")
	return Voter{}, OutcomeFailed, fault.Wrap(fault.KindInternal, ErrRegistrationFailed.Code, ErrRegistrationFailed.Message, insertErr)
}
