package handlers

import (
	"time"

	"github.com/brewvote/server/internal/domain/events"
	"github.com/brewvote/server/internal/domain/shortcodes"
	"github.com/brewvote/server/internal/validation"
	"github.com/google/uuid"
)

type eventView struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	LogoURL        string    `json:"logo_url,omitempty"`
	RevealStage    int       `json:"reveal_stage"`
	ResultsVisible bool      `json:"results_visible"`
}

func toEventView(e events.Event) eventView {
	return eventView{
		ID:             e.ID,
		Name:           e.Name,
		LogoURL:        validation.LogoURL(e.LogoURL),
		RevealStage:    e.RevealStage,
		ResultsVisible: e.ResultsVisible,
	}
}

type beerView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Brewer    string    `json:"brewer"`
	Style     string    `json:"style"`
	CreatedAt time.Time `json:"created_at"`
}

func toBeerViews(beers []events.Beer) []beerView {
	out := make([]beerView, 0, len(beers))
	for _, b := range beers {
		out = append(out, beerView{ID: b.ID, Name: b.Name, Brewer: b.Brewer, Style: b.Style, CreatedAt: b.CreatedAt})
	}
	return out
}

type voteView struct {
	BeerID uuid.UUID `json:"beer_id"`
	Points int       `json:"points"`
}

func toVoteViews(votes []events.Vote) []voteView {
	out := make([]voteView, 0, len(votes))
	for _, v := range votes {
		out = append(out, voteView{BeerID: v.BeerID, Points: v.Points})
	}
	return out
}

type feedbackView struct {
	BeerID          uuid.UUID `json:"beer_id"`
	Notes           string    `json:"notes"`
	ShareWithBrewer bool      `json:"share_with_brewer"`
}

func toFeedbackViews(feedback []events.Feedback) []feedbackView {
	out := make([]feedbackView, 0, len(feedback))
	for _, f := range feedback {
		out = append(out, feedbackView{BeerID: f.BeerID, Notes: f.Notes, ShareWithBrewer: f.ShareWithBrewer})
	}
	return out
}

type sharedFeedbackView struct {
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func toSharedFeedbackViews(feedback []events.SharedFeedback) []sharedFeedbackView {
	out := make([]sharedFeedbackView, 0, len(feedback))
	for _, f := range feedback {
		out = append(out, sharedFeedbackView{Notes: f.Notes, CreatedAt: f.CreatedAt})
	}
	return out
}

type adminView struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

func toAdminViews(admins []events.AdminSummary) []adminView {
	out := make([]adminView, 0, len(admins))
	for _, a := range admins {
		out = append(out, adminView{ID: a.ID, Email: a.Email})
	}
	return out
}

func codeStrings(codes []shortcodes.ShortCode) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, c.Code)
	}
	return out
}
