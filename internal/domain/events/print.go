package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brewvote/server/internal/auth"
	"github.com/brewvote/server/internal/domain/access"
	"github.com/brewvote/server/internal/domain/fault"
	"github.com/brewvote/server/internal/domain/shortcodes"
	"github.com/brewvote/server/internal/validation"
)

var (
	ErrVoterCodesRequired = fault.Validation("voter_codes_required", "No voter codes specified")
	ErrTooManyVoterCodes  = fault.Validation("too_many_voter_codes", fmt.Sprintf("At most %d voter codes can be printed at once", shortcodes.MaxMintBatch))
)

type PrintPage struct {
	EventName  string
	LogoURL    string
	EventCode  string
	VoterCodes []string
}

// PrintSheet builds the printable voter code sheet. Any admin of the event's
// organization may print; assignment is not required.
type PrintSheet struct {
	repo     Repository
	resolver CodeResolver
	guard    Authorizer
}

func NewPrintSheet(repo Repository, resolver CodeResolver, guard Authorizer) *PrintSheet {
	return &PrintSheet{repo: repo, resolver: resolver, guard: guard}
}

func (p *PrintSheet) Print(ctx context.Context, principal auth.Principal, eventCode string, codes []string) (PrintPage, error) {
	eventID, err := p.resolver.Resolve(ctx, eventCode, shortcodes.KindEvent)
	if err != nil {
		return PrintPage{}, ErrEventCodeNotFound
	}

	if _, err := p.guard.Authorize(ctx, principal, eventID, access.CapabilityView); err != nil {
		return PrintPage{}, err
	}

	voterCodes := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			voterCodes = append(voterCodes, c)
		}
	}
	if len(voterCodes) == 0 {
		return PrintPage{}, ErrVoterCodesRequired
	}
	if len(voterCodes) > shortcodes.MaxMintBatch {
		return PrintPage{}, ErrTooManyVoterCodes
	}

	event, err := p.repo.GetEvent(ctx, eventID)
	if errors.Is(err, ErrNotFound) {
		return PrintPage{}, ErrEventCodeNotFound
	}
	if err != nil {
		return PrintPage{}, fault.Internal("event_load_failed", fmt.Errorf("load event: %w", err))
	}

	return PrintPage{
		EventName:  event.Name,
		LogoURL:    validation.LogoURL(event.LogoURL),
		EventCode:  strings.TrimSpace(eventCode),
		VoterCodes: voterCodes,
	}, nil
}
