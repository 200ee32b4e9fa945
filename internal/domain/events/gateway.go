package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/brewvote/server/internal/audit"
	"github.com/brewvote/server/internal/auth"
	"github.com/brewvote/server/internal/domain/access"
	"github.com/brewvote/server/internal/domain/fault"
	"github.com/brewvote/server/internal/domain/shortcodes"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrBeerIDRequired       = fault.Validation("beer_id_required", "Beer ID is required")
	ErrBeerNotFound         = fault.NotFound("beer_not_found", "Beer not found")
	ErrAdminIDRequired      = fault.Validation("admin_id_required", "Admin ID is required")
	ErrAdminNotFound        = fault.NotFound("admin_not_found", "Admin not found")
	ErrAdminAlreadyAssigned = fault.Conflict("admin_already_assigned", "Admin is already assigned to this event")
)

// Authorizer is implemented by *access.Guard.
type Authorizer interface {
	Authorize(ctx context.Context, principal auth.Principal, eventID uuid.UUID, capability access.Capability) (access.Admin, error)
	CheckRemoval(ctx context.Context, actor access.Admin, eventID, targetAdminID uuid.UUID) (bool, error)
}

// CodeMinter is implemented by *shortcodes.Minter.
type CodeMinter interface {
	Mint(ctx context.Context, eventID uuid.UUID, count int) ([]shortcodes.ShortCode, error)
}

// RemovalResult tells the caller whether the actor removed themselves and
// should leave the event's admin view.
type RemovalResult struct {
	SelfRemoved bool
}

type Dashboard struct {
	Event          Event
	Beers          []Beer
	AssignedAdmins []AdminSummary
	AllAdmins      []AdminSummary
	CurrentAdminID uuid.UUID
}

// Gateway runs admin mutations. Every operation authorizes first and then
// performs one write scoped by the event.
type Gateway struct {
	repo   Repository
	guard  Authorizer
	minter CodeMinter
	audit  *audit.Logger
	logger zerolog.Logger
}

func NewGateway(repo Repository, guard Authorizer, minter CodeMinter, auditLogger *audit.Logger, logger zerolog.Logger) *Gateway {
	return &Gateway{
		repo:   repo,
		guard:  guard,
		minter: minter,
		audit:  auditLogger,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

func (g *Gateway) SetResultsVisible(ctx context.Context, principal auth.Principal, eventID uuid.UUID, visible bool) error {
	admin, err := g.guard.Authorize(ctx, principal, eventID, access.CapabilityManage)
	if err != nil {
		return err
	}

	err = g.repo.SetResultsVisible(ctx, eventID, visible)
	g.record(ctx, admin, "event.results_visibility.set", "event", eventID, eventID, err,
		map[string]string{"results_visible": strconv.FormatBool(visible)})
	if err != nil {
		return fault.Internal("results_visibility_update_failed", fmt.Errorf("update results visibility: %w", err))
	}
	return nil
}

func (g *Gateway) DeleteBeer(ctx context.Context, principal auth.Principal, eventID, beerID uuid.UUID) error {
	admin, err := g.guard.Authorize(ctx, principal, eventID, access.CapabilityManage)
	if err != nil {
		return err
	}
	if beerID == uuid.Nil {
		return ErrBeerIDRequired
	}

	inEvent, err := g.repo.BeerInEvent(ctx, beerID, eventID)
	if err != nil {
		return fault.Internal("beer_delete_failed", fmt.Errorf("check beer scope: %w", err))
	}
	if !inEvent {
		return ErrBeerNotFound
	}

	err = g.repo.DeleteBeer(ctx, beerID, eventID)
	g.record(ctx, admin, "event.beer.delete", "beer", beerID, eventID, err, nil)
	if err != nil {
		return fault.Internal("beer_delete_failed", fmt.Errorf("delete beer: %w", err))
	}
	return nil
}

func (g *Gateway) AddEventAdmin(ctx context.Context, principal auth.Principal, eventID, adminID uuid.UUID) error {
	actor, err := g.guard.Authorize(ctx, principal, eventID, access.CapabilityManage)
	if err != nil {
		return err
	}
	if adminID == uuid.Nil {
		return ErrAdminIDRequired
	}

	exists, err := g.repo.AdminExists(ctx, adminID)
	if err != nil {
		return fault.Internal("admin_add_failed", fmt.Errorf("load admin: %w", err))
	}
	if !exists {
		return ErrAdminNotFound
	}

	assigned, err := g.repo.IsAssigned(ctx, eventID, adminID)
	if err != nil {
		return fault.Internal("admin_add_failed", fmt.Errorf("load assignment: %w", err))
	}
	if assigned {
		return ErrAdminAlreadyAssigned
	}

	err = g.repo.AssignAdmin(ctx, eventID, adminID)
	if errors.Is(err, ErrAlreadyAssigned) {
		// a concurrent add won between the check and the insert
		return ErrAdminAlreadyAssigned
	}
	g.record(ctx, actor, "event.admin.add", "admin", adminID, eventID, err, nil)
	if err != nil {
		return fault.Internal("admin_add_failed", fmt.Errorf("assign admin: %w", err))
	}
	return nil
}

func (g *Gateway) RemoveEventAdmin(ctx context.Context, principal auth.Principal, eventID, adminID uuid.UUID) (RemovalResult, error) {
	actor, err := g.guard.Authorize(ctx, principal, eventID, access.CapabilityManage)
	if err != nil {
		return RemovalResult{}, err
	}
	if adminID == uuid.Nil {
		return RemovalResult{}, ErrAdminIDRequired
	}

	self, err := g.guard.CheckRemoval(ctx, actor, eventID, adminID)
	if err != nil {
		return RemovalResult{}, err
	}

	err = g.repo.UnassignAdmin(ctx, eventID, adminID)
	g.record(ctx, actor, "event.admin.remove", "admin", adminID, eventID, err,
		map[string]string{"self": strconv.FormatBool(self)})
	if err != nil {
		return RemovalResult{}, fault.Internal("admin_remove_failed", fmt.Errorf("unassign admin: %w", err))
	}
	return RemovalResult{SelfRemoved: self}, nil
}

func (g *Gateway) MintVoterCodes(ctx context.Context, principal auth.Principal, eventID uuid.UUID, count int) ([]shortcodes.ShortCode, error) {
	admin, err := g.guard.Authorize(ctx, principal, eventID, access.CapabilityManage)
	if err != nil {
		return nil, err
	}

	codes, err := g.minter.Mint(ctx, eventID, count)
	if fault.IsKind(err, fault.KindValidation) {
		return nil, err
	}
	g.record(ctx, admin, "event.voter_codes.mint", "event", eventID, eventID, err,
		map[string]string{"count": strconv.Itoa(count)})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// Dashboard loads the admin view of an event. Listing failures are logged and
// leave the list empty.
func (g *Gateway) Dashboard(ctx context.Context, principal auth.Principal, eventID uuid.UUID) (Dashboard, error) {
	admin, err := g.guard.Authorize(ctx, principal, eventID, access.CapabilityManage)
	if err != nil {
		return Dashboard{}, err
	}

	event, err := g.repo.GetEvent(ctx, eventID)
	if errors.Is(err, ErrNotFound) {
		return Dashboard{}, access.ErrEventNotFound
	}
	if err != nil {
		return Dashboard{}, fault.Internal("event_load_failed", fmt.Errorf("load event: %w", err))
	}

	d := Dashboard{Event: event, CurrentAdminID: admin.ID}
	var eg errgroup.Group
	eg.Go(func() error {
		beers, err := g.repo.ListBeers(ctx, eventID, OldestFirst)
		d.Beers = orEmpty(g.logger, "beers", beers, err)
		return nil
	})
	eg.Go(func() error {
		assigned, err := g.repo.ListEventAdmins(ctx, eventID)
		d.AssignedAdmins = orEmpty(g.logger, "event admins", assigned, err)
		return nil
	})
	eg.Go(func() error {
		all, err := g.repo.ListAdmins(ctx)
		d.AllAdmins = orEmpty(g.logger, "admins", all, err)
		return nil
	})
	_ = eg.Wait()
	return d, nil
}

// orEmpty logs a listing failure and substitutes an empty list.
func orEmpty[T any](logger zerolog.Logger, what string, items []T, err error) []T {
	if err != nil {
		logger.Error().Err(err).Str("list", what).Msg("listing failed")
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func (g *Gateway) record(ctx context.Context, actor access.Admin, action, resourceType string, resourceID, eventID uuid.UUID, err error, details map[string]string) {
	entry := audit.Entry{
		Action:       action,
		Actor:        actor.ID.String(),
		ResourceType: resourceType,
		ResourceID:   resourceID.String(),
		EventID:      eventID.String(),
		Status:       audit.StatusSuccess,
		Details:      details,
	}
	if err != nil {
		entry.Status = audit.StatusFailure
		g.logger.Error().Err(err).Str("action", action).Str("event_id", eventID.String()).Msg("admin action failed")
	}
	g.audit.Log(ctx, entry)
}
