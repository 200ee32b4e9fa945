package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/brewvote/server/internal/auth"
	"github.com/brewvote/server/internal/domain/fault"
	"github.com/brewvote/server/internal/metrics"
	"github.com/brewvote/server/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// Capability is what a caller asks to do with an event.
type Capability string

const (
	// CapabilityManage covers event-scoped mutations and the admin dashboard.
	// It requires an explicit assignment to the event.
	CapabilityManage Capability = "manage"
	// CapabilityView covers read access granted through organization ownership.
	CapabilityView Capability = "view"
)

var (
	// ErrForbidden is returned for every denial, unknown principals included.
	ErrForbidden     = fault.Forbidden("forbidden", "Not authorized")
	ErrEventNotFound = fault.NotFound("event_not_found", "Event not found")
	ErrLastAdmin     = fault.Invariant("last_admin", "Cannot remove yourself as the only admin")
	ErrNoAdminsLeft  = fault.Invariant("last_admin", "Cannot remove the only admin of this event")
)

type decision string

const (
	decisionAllowed       decision = "allowed"
	decisionUnknownCaller decision = "denied_principal"
	decisionNotAssigned   decision = "denied_assignment"
	decisionOtherOrg      decision = "denied_organization"
	decisionBadCapability decision = "denied_capability"
	decisionEventNotFound decision = "event_not_found"
	decisionLookupFailure decision = "error"
)

// Guard is the single authority for admin authorization. All checks are
// re-derived from the store on every call.
type Guard struct {
	repo   Repository
	logger zerolog.Logger
}

func NewGuard(repo Repository, logger zerolog.Logger) *Guard {
	return &Guard{
		repo:   repo,
		logger: logger.With().Str("component", "access").Logger(),
	}
}

// Authorize resolves the principal to an admin and checks capability on
// eventID. On success the acting admin is returned.
func (g *Guard) Authorize(ctx context.Context, principal auth.Principal, eventID uuid.UUID, capability Capability) (Admin, error) {
	ctx, span := telemetry.StartSpan(ctx, "access.Authorize",
		attribute.String("event.id", eventID.String()),
		attribute.String("access.capability", string(capability)),
	)

	admin, dec, err := g.authorize(ctx, principal, eventID, capability)
	metrics.AuthorizationDecisions.WithLabelValues(string(capability), string(dec)).Inc()
	span.SetAttributes(attribute.String("access.decision", string(dec)))
	telemetry.EndSpan(span, err)

	if dec != decisionAllowed {
		g.logger.Debug().
			Str("user_id", principal.UserID).
			Str("event_id", eventID.String()).
			Str("capability", string(capability)).
			Str("decision", string(dec)).
			Msg("authorization denied")
	}
	return admin, err
}

func (g *Guard) authorize(ctx context.Context, principal auth.Principal, eventID uuid.UUID, capability Capability) (Admin, decision, error) {
	if !principal.Authenticated() {
		return Admin{}, decisionUnknownCaller, ErrForbidden
	}

	admin, err := g.repo.AdminByUserID(ctx, principal.UserID)
	if errors.Is(err, ErrNotFound) {
		return Admin{}, decisionUnknownCaller, ErrForbidden
	}
	if err != nil {
		return Admin{}, decisionLookupFailure, g.internal("load admin", err)
	}

	switch capability {
	case CapabilityManage:
		return g.authorizeManage(ctx, admin, eventID)
	case CapabilityView:
		return g.authorizeView(ctx, admin, eventID)
	default:
		return Admin{}, decisionBadCapability, ErrForbidden
	}
}

func (g *Guard) authorizeManage(ctx context.Context, admin Admin, eventID uuid.UUID) (Admin, decision, error) {
	if admin.IsSuper() {
		if _, err := g.repo.EventOrganization(ctx, eventID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return Admin{}, decisionEventNotFound, ErrEventNotFound
			}
			return Admin{}, decisionLookupFailure, g.internal("load event", err)
		}
		return admin, decisionAllowed, nil
	}

	assigned, err := g.repo.IsAssigned(ctx, eventID, admin.ID)
	if err != nil {
		return Admin{}, decisionLookupFailure, g.internal("load assignment", err)
	}
	if !assigned {
		return Admin{}, decisionNotAssigned, ErrForbidden
	}
	return admin, decisionAllowed, nil
}

func (g *Guard) authorizeView(ctx context.Context, admin Admin, eventID uuid.UUID) (Admin, decision, error) {
	orgID, err := g.repo.EventOrganization(ctx, eventID)
	if errors.Is(err, ErrNotFound) {
		return Admin{}, decisionEventNotFound, ErrEventNotFound
	}
	if err != nil {
		return Admin{}, decisionLookupFailure, g.internal("load event", err)
	}
	if admin.IsSuper() {
		return admin, decisionAllowed, nil
	}
	if admin.OrganizationID == uuid.Nil || admin.OrganizationID != orgID {
		return Admin{}, decisionOtherOrg, ErrForbidden
	}
	return admin, decisionAllowed, nil
}

// CheckRemoval enforces that an event keeps at least one assigned admin. It
// reports whether the actor is removing themselves, in which case the caller
// should end the actor's view of the event.
//
// The count and the later delete are separate statements. Two admins removing
// themselves at the same moment can both pass.
func (g *Guard) CheckRemoval(ctx context.Context, actor Admin, eventID, targetAdminID uuid.UUID) (bool, error) {
	self := targetAdminID == actor.ID

	count, err := g.repo.CountEventAdmins(ctx, eventID)
	if err != nil {
		return self, g.internal("count event admins", err)
	}
	if count > 1 {
		return self, nil
	}
	if count == 0 {
		// nothing is assigned, so the delete removes nothing
		return self, nil
	}
	if self {
		return true, ErrLastAdmin
	}

	// super-admins act without an assignment and still may not remove the last one
	assigned, err := g.repo.IsAssigned(ctx, eventID, targetAdminID)
	if err != nil {
		return false, g.internal("load assignment", err)
	}
	if assigned {
		return false, ErrNoAdminsLeft
	}
	return false, nil
}

func (g *Guard) internal(op string, err error) error {
	g.logger.Error().Err(err).Str("op", op).Msg("authorization lookup failed")
	return fault.Internal("authorization_failed", fmt.Errorf("%s: %w", op, err))
}
