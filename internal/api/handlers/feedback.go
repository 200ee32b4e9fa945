package handlers

import (
	"context"
	"net/http"

	"github.com/brewvote/server/internal/api/problem"
	"github.com/brewvote/server/internal/domain/events"
)

type FeedbackService interface {
	ByCode(ctx context.Context, code string) (events.FeedbackPage, error)
	ByToken(ctx context.Context, token string) (events.FeedbackPage, error)
}

type FeedbackHandler struct {
	feedback FeedbackService
	env      string
}

func NewFeedbackHandler(feedback FeedbackService, env string) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, env: env}
}

func (h *FeedbackHandler) ByCode(w http.ResponseWriter, r *http.Request) {
	page, err := h.feedback.ByCode(r.Context(), r.PathValue("code"))
	h.respond(w, r, page, err)
}

// ByToken serves brewer links issued before short codes existed.
func (h *FeedbackHandler) ByToken(w http.ResponseWriter, r *http.Request) {
	page, err := h.feedback.ByToken(r.Context(), r.PathValue("brewer_token"))
	h.respond(w, r, page, err)
}

func (h *FeedbackHandler) respond(w http.ResponseWriter, r *http.Request, page events.FeedbackPage, err error) {
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"beer": map[string]any{
			"id":     page.Beer.ID,
			"name":   page.Beer.Name,
			"brewer": page.Beer.Brewer,
			"style":  page.Beer.Style,
		},
		"feedback": toSharedFeedbackViews(page.Feedback),
	})
}
