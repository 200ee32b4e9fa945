package events

import (
	"context"
	"errors"
	"strings"

	"github.com/brewvote/server/internal/domain/fault"
	"github.com/brewvote/server/internal/domain/shortcodes"
	"github.com/brewvote/server/internal/sanitize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrInvalidFeedbackLink = fault.NotFound("invalid_feedback_link", "Invalid feedback link. Please check the URL and try again.")

type FeedbackPage struct {
	Beer     Beer
	Feedback []SharedFeedback
}

// BrewerFeedback shows brewers the notes voters chose to share.
type BrewerFeedback struct {
	repo     Repository
	resolver CodeResolver
	logger   zerolog.Logger
}

func NewBrewerFeedback(repo Repository, resolver CodeResolver, logger zerolog.Logger) *BrewerFeedback {
	return &BrewerFeedback{
		repo:     repo,
		resolver: resolver,
		logger:   logger.With().Str("component", "brewer_feedback").Logger(),
	}
}

func (b *BrewerFeedback) ByCode(ctx context.Context, code string) (FeedbackPage, error) {
	beerID, err := b.resolver.Resolve(ctx, code, shortcodes.KindBrewer)
	if err != nil {
		return FeedbackPage{}, ErrInvalidFeedbackLink
	}
	return b.load(ctx, beerID)
}

// ByToken serves links issued before brewer short codes existed.
func (b *BrewerFeedback) ByToken(ctx context.Context, token string) (FeedbackPage, error) {
	tokenID, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return FeedbackPage{}, ErrInvalidFeedbackLink
	}

	beerID, err := b.repo.BeerForBrewerToken(ctx, tokenID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			b.logger.Warn().Err(err).Msg("brewer token lookup failed")
		}
		return FeedbackPage{}, ErrInvalidFeedbackLink
	}
	return b.load(ctx, beerID)
}

func (b *BrewerFeedback) load(ctx context.Context, beerID uuid.UUID) (FeedbackPage, error) {
	beer, err := b.repo.GetBeer(ctx, beerID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			b.logger.Warn().Err(err).Str("beer_id", beerID.String()).Msg("beer lookup failed")
		}
		return FeedbackPage{}, ErrBeerNotFound
	}

	shared, err := b.repo.ListSharedFeedback(ctx, beerID)
	shared = orEmpty(b.logger, "shared feedback", shared, err)
	for i := range shared {
		shared[i].Notes = sanitize.PlainText(shared[i].Notes)
	}
	return FeedbackPage{Beer: beer, Feedback: shared}, nil
}
