package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/brewvote/server/internal/domain/fault"
	"github.com/brewvote/server/internal/domain/shortcodes"
	"github.com/brewvote/server/internal/domain/voters"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrVotingClosed is not a failure: the caller should send the voter to
	// the results page instead.
	ErrVotingClosed = errors.New("voting closed")

	ErrEventCodeNotFound = fault.NotFound("event_not_found", "Event not found")
	ErrInvalidVoterLink  = fault.NotFound("invalid_voter_link", "Invalid voter link")
)

// CodeResolver is implemented by *shortcodes.Resolver.
type CodeResolver interface {
	Resolve(ctx context.Context, code string, kind shortcodes.Kind) (uuid.UUID, error)
	ResolveInEvent(ctx context.Context, code string, kind shortcodes.Kind, eventID uuid.UUID) (uuid.UUID, error)
}

// VoterRegistrar is implemented by *voters.Registrar.
type VoterRegistrar interface {
	GetOrCreate(ctx context.Context, voterID, eventID uuid.UUID) (voters.Voter, error)
}

type BallotPage struct {
	Event     Event
	Voter     voters.Voter
	Beers     []Beer
	Votes     []Vote
	Feedback  []Feedback
	EventCode string
}

// BallotLoader serves the voter entry link /vote/{event_code}/{voter_code}.
type BallotLoader struct {
	repo      Repository
	resolver  CodeResolver
	registrar VoterRegistrar
	logger    zerolog.Logger
}

func NewBallotLoader(repo Repository, resolver CodeResolver, registrar VoterRegistrar, logger zerolog.Logger) *BallotLoader {
	return &BallotLoader{
		repo:      repo,
		resolver:  resolver,
		registrar: registrar,
		logger:    logger.With().Str("component", "ballot").Logger(),
	}
}

// Load resolves both codes, registers the voter on first visit and returns
// the ballot. A voter code minted for another event is an invalid link. Once reveal has started it returns ErrVotingClosed without
// registering anyone.
func (l *BallotLoader) Load(ctx context.Context, eventCode, voterCode string) (BallotPage, error) {
	eventID, err := l.resolver.Resolve(ctx, eventCode, shortcodes.KindEvent)
	if err != nil {
		return BallotPage{}, ErrEventCodeNotFound
	}
	voterID, err := l.resolver.ResolveInEvent(ctx, voterCode, shortcodes.KindVoter, eventID)
	if err != nil {
		return BallotPage{}, ErrInvalidVoterLink
	}

	event, err := l.repo.GetEvent(ctx, eventID)
	if errors.Is(err, ErrNotFound) {
		return BallotPage{}, ErrEventCodeNotFound
	}
	if err != nil {
		return BallotPage{}, fault.Internal("event_load_failed", fmt.Errorf("load event: %w", err))
	}
	if event.VotingClosed() {
		return BallotPage{}, ErrVotingClosed
	}

	voter, err := l.registrar.GetOrCreate(ctx, voterID, eventID)
	if err != nil {
		return BallotPage{}, err
	}

	page := BallotPage{Event: event, Voter: voter, EventCode: eventCode}
	var eg errgroup.Group
	eg.Go(func() error {
		beers, err := l.repo.ListBeers(ctx, eventID, NewestFirst)
		page.Beers = orEmpty(l.logger, "beers", beers, err)
		return nil
	})
	eg.Go(func() error {
		votes, err := l.repo.ListVotesByVoter(ctx, voter.ID)
		page.Votes = orEmpty(l.logger, "votes", votes, err)
		return nil
	})
	eg.Go(func() error {
		feedback, err := l.repo.ListFeedbackByVoter(ctx, voter.ID)
		page.Feedback = orEmpty(l.logger, "feedback", feedback, err)
		return nil
	})
	_ = eg.Wait()
	return page, nil
}
