package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/brewvote/server/internal/api/problem"
	"github.com/brewvote/server/internal/domain/events"
)

type BallotService interface {
	Load(ctx context.Context, eventCode, voterCode string) (events.BallotPage, error)
}

// VoteHandler serves the voter entry link. Opening it registers the voter.
type VoteHandler struct {
	ballots BallotService
	env     string
}

func NewVoteHandler(ballots BallotService, env string) *VoteHandler {
	return &VoteHandler{ballots: ballots, env: env}
}

func (h *VoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventCode := r.PathValue("event_code")
	voterCode := r.PathValue("voter_code")

	page, err := h.ballots.Load(r.Context(), eventCode, voterCode)
	if errors.Is(err, events.ErrVotingClosed) {
		http.Redirect(w, r, "/results/"+url.PathEscape(eventCode), http.StatusSeeOther)
		return
	}
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"event":      toEventView(page.Event),
		"voter_id":   page.Voter.ID,
		"event_code": page.EventCode,
		"beers":      toBeerViews(page.Beers),
		"votes":      toVoteViews(page.Votes),
		"feedback":   toFeedbackViews(page.Feedback),
	})
}
