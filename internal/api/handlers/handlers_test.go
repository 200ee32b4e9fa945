package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/brewvote/server/internal/auth"
	"github.com/brewvote/server/internal/domain/access"
	"github.com/brewvote/server/internal/domain/events"
	"github.com/brewvote/server/internal/domain/fault"
	"github.com/brewvote/server/internal/domain/shortcodes"
	"github.com/brewvote/server/internal/domain/voters"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubBallots struct {
	page events.BallotPage
	err  error
}

func (s stubBallots) Load(context.Context, string, string) (events.BallotPage, error) {
	return s.page, s.err
}

type stubFeedback struct {
	page      events.FeedbackPage
	err       error
	lastCode  string
	lastToken string
}

func (s *stubFeedback) ByCode(_ context.Context, code string) (events.FeedbackPage, error) {
	s.lastCode = code
	return s.page, s.err
}

func (s *stubFeedback) ByToken(_ context.Context, token string) (events.FeedbackPage, error) {
	s.lastToken = token
	return s.page, s.err
}

type stubGateway struct {
	err       error
	removal   events.RemovalResult
	dashboard events.Dashboard
	codes     []shortcodes.ShortCode

	principal auth.Principal
	eventID   uuid.UUID
	targetID  uuid.UUID
	visible   bool
	count     int
	calls     int
}

func (s *stubGateway) Dashboard(_ context.Context, p auth.Principal, eventID uuid.UUID) (events.Dashboard, error) {
	s.calls++
	s.principal, s.eventID = p, eventID
	return s.dashboard, s.err
}

func (s *stubGateway) SetResultsVisible(_ context.Context, p auth.Principal, eventID uuid.UUID, visible bool) error {
	s.calls++
	s.principal, s.eventID, s.visible = p, eventID, visible
	return s.err
}

func (s *stubGateway) DeleteBeer(_ context.Context, p auth.Principal, eventID, beerID uuid.UUID) error {
	s.calls++
	s.principal, s.eventID, s.targetID = p, eventID, beerID
	return s.err
}

func (s *stubGateway) AddEventAdmin(_ context.Context, p auth.Principal, eventID, adminID uuid.UUID) error {
	s.calls++
	s.principal, s.eventID, s.targetID = p, eventID, adminID
	return s.err
}

func (s *stubGateway) RemoveEventAdmin(_ context.Context, p auth.Principal, eventID, adminID uuid.UUID) (events.RemovalResult, error) {
	s.calls++
	s.principal, s.eventID, s.targetID = p, eventID, adminID
	return s.removal, s.err
}

func (s *stubGateway) MintVoterCodes(_ context.Context, p auth.Principal, eventID uuid.UUID, count int) ([]shortcodes.ShortCode, error) {
	s.calls++
	s.principal, s.eventID, s.count = p, eventID, count
	return s.codes, s.err
}

type stubPrint struct {
	page  events.PrintPage
	err   error
	codes []string
}

func (s *stubPrint) Print(_ context.Context, _ auth.Principal, _ string, codes []string) (events.PrintPage, error) {
	s.codes = codes
	return s.page, s.err
}

func newMux(vote *VoteHandler, fb *FeedbackHandler, admin *AdminEventsHandler) *http.ServeMux {
	mux := http.NewServeMux()
	if vote != nil {
		mux.HandleFunc("GET /api/v1/vote/{event_code}/{voter_code}", vote.Get)
	}
	if fb != nil {
		mux.HandleFunc("GET /api/v1/feedback/{code}", fb.ByCode)
		mux.HandleFunc("GET /api/v1/feedback/tokens/{brewer_token}", fb.ByToken)
	}
	if admin != nil {
		mux.HandleFunc("GET /api/v1/admin/events/{id}", admin.Dashboard)
		mux.HandleFunc("POST /api/v1/admin/events/{id}/results-visibility", admin.SetResultsVisible)
		mux.HandleFunc("POST /api/v1/admin/events/{id}/beers/delete", admin.DeleteBeer)
		mux.HandleFunc("POST /api/v1/admin/events/{id}/admins", admin.AddAdmin)
		mux.HandleFunc("POST /api/v1/admin/events/{id}/admins/remove", admin.RemoveAdmin)
		mux.HandleFunc("POST /api/v1/admin/events/{id}/voter-codes", admin.MintVoterCodes)
		mux.HandleFunc("GET /api/v1/admin/events/{code}/print", admin.Print)
	}
	return mux
}

func postForm(t *testing.T, h http.Handler, path string, values url.Values, principal auth.Principal) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestVoteReturnsBallot(t *testing.T) {
	eventID, voterID := uuid.New(), uuid.New()
	ballots := stubBallots{page: events.BallotPage{
		Event:     events.Event{ID: eventID, Name: "Spring"},
		Voter:     voters.Voter{ID: voterID, EventID: eventID},
		Beers:     []events.Beer{{ID: uuid.New(), Name: "Stout"}},
		EventCode: "EVT",
	}}
	mux := newMux(NewVoteHandler(ballots, "test"), nil, nil)

	rec := get(mux, "/api/v1/vote/EVT/VOTER")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	require.Equal(t, voterID.String(), body["voter_id"])
	require.Len(t, body["beers"], 1)
	require.Empty(t, body["votes"])
}

func TestVoteRedirectsWhenVotingClosed(t *testing.T) {
	mux := newMux(NewVoteHandler(stubBallots{err: events.ErrVotingClosed}, "test"), nil, nil)

	rec := get(mux, "/api/v1/vote/EVT/VOTER")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/results/EVT", rec.Header().Get("Location"))
}

func TestVoteMapsDomainErrors(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
		msg    string
	}{
		"unknown event":   {events.ErrEventCodeNotFound, http.StatusNotFound, "Event not found"},
		"bad voter link":  {events.ErrInvalidVoterLink, http.StatusNotFound, "Invalid voter link"},
		"store failure":   {fault.Internal("voter_registration_failed", errors.New("db")), http.StatusInternalServerError, "Internal server error"},
		"unclassified":    {errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
		"wrapped missing": {errors.Join(errors.New("ctx"), events.ErrEventCodeNotFound), http.StatusNotFound, "Event not found"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mux := newMux(NewVoteHandler(stubBallots{err: tc.err}, "production"), nil, nil)
			rec := get(mux, "/api/v1/vote/EVT/VOTER")
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.msg, decodeBody(t, rec)["error"])
		})
	}
}

func TestFeedbackRoutes(t *testing.T) {
	fb := &stubFeedback{page: events.FeedbackPage{
		Beer:     events.Beer{ID: uuid.New(), Name: "Porter"},
		Feedback: []events.SharedFeedback{{Notes: "roasty"}},
	}}
	mux := newMux(nil, NewFeedbackHandler(fb, "test"), nil)

	rec := get(mux, "/api/v1/feedback/BREW1234")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "BREW1234", fb.lastCode)
	require.Len(t, decodeBody(t, rec)["feedback"], 1)

	token := uuid.NewString()
	rec = get(mux, "/api/v1/feedback/tokens/"+token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, token, fb.lastToken)

	fb.err = events.ErrInvalidFeedbackLink
	rec = get(mux, "/api/v1/feedback/NOPE")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "invalid_feedback_link", decodeBody(t, rec)["code"])
}

func TestAdminDashboard(t *testing.T) {
	eventID, adminID := uuid.New(), uuid.New()
	gw := &stubGateway{dashboard: events.Dashboard{
		Event:          events.Event{ID: eventID, Name: "Spring"},
		AssignedAdmins: []events.AdminSummary{{ID: adminID, Email: "a@example.com"}},
		CurrentAdminID: adminID,
	}}
	mux := newMux(nil, nil, NewAdminEventsHandler(gw, &stubPrint{}, "test"))

	rec := get(mux, "/api/v1/admin/events/"+eventID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, adminID.String(), body["current_admin_id"])
	require.Len(t, body["assigned_admins"], 1)
	require.Equal(t, eventID, gw.eventID)

	rec = get(mux, "/api/v1/admin/events/not-a-uuid")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminMutationsPassPrincipalAndTargets(t *testing.T) {
	eventID, targetID := uuid.New(), uuid.New()
	principal := auth.Principal{UserID: "user-1"}
	gw := &stubGateway{}
	mux := newMux(nil, nil, NewAdminEventsHandler(gw, &stubPrint{}, "test"))
	base := "/api/v1/admin/events/" + eventID.String()

	rec := postForm(t, mux, base+"/results-visibility", url.Values{"results_visible": {"true"}}, principal)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, gw.visible)
	require.Equal(t, principal, gw.principal)

	rec = postForm(t, mux, base+"/results-visibility", url.Values{}, principal)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, gw.visible, "missing checkbox hides results")

	rec = postForm(t, mux, base+"/beers/delete", url.Values{"beerId": {targetID.String()}}, principal)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, targetID, gw.targetID)
	require.Equal(t, eventID, gw.eventID)

	rec = postForm(t, mux, base+"/admins", url.Values{"adminId": {targetID.String()}}, principal)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["success"])
}

func TestAdminEmptyIDReachesGateway(t *testing.T) {
	gw := &stubGateway{err: events.ErrBeerIDRequired}
	mux := newMux(nil, nil, NewAdminEventsHandler(gw, &stubPrint{}, "test"))

	rec := postForm(t, mux, "/api/v1/admin/events/"+uuid.NewString()+"/beers/delete", url.Values{}, auth.Principal{UserID: "u"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, uuid.Nil, gw.targetID)
	require.Equal(t, "beer_id_required", decodeBody(t, rec)["code"])
}

func TestAdminMalformedIDIsRejectedBeforeGateway(t *testing.T) {
	gw := &stubGateway{}
	mux := newMux(nil, nil, NewAdminEventsHandler(gw, &stubPrint{}, "test"))

	rec := postForm(t, mux, "/api/v1/admin/events/"+uuid.NewString()+"/admins", url.Values{"adminId": {"nope"}}, auth.Principal{UserID: "u"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, gw.calls)
	body := decodeBody(t, rec)
	require.Equal(t, "invalid_form", body["code"])
	require.Equal(t, map[string]any{"adminId": "uuid"}, body["errors"])
}

func TestAdminErrorsMapToStatus(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"forbidden":  {access.ErrForbidden, http.StatusForbidden},
		"not found":  {events.ErrBeerNotFound, http.StatusNotFound},
		"conflict":   {events.ErrAdminAlreadyAssigned, http.StatusBadRequest},
		"last admin": {access.ErrLastAdmin, http.StatusBadRequest},
		"internal":   {fault.Internal("admin_add_failed", errors.New("db")), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			gw := &stubGateway{err: tc.err}
			mux := newMux(nil, nil, NewAdminEventsHandler(gw, &stubPrint{}, "test"))
			rec := postForm(t, mux, "/api/v1/admin/events/"+uuid.NewString()+"/admins", url.Values{"adminId": {uuid.NewString()}}, auth.Principal{UserID: "u"})
			require.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRemoveAdminSelfRedirects(t *testing.T) {
	gw := &stubGateway{removal: events.RemovalResult{SelfRemoved: true}}
	mux := newMux(nil, nil, NewAdminEventsHandler(gw, &stubPrint{}, "test"))
	path := "/api/v1/admin/events/" + uuid.NewString() + "/admins/remove"

	rec := postForm(t, mux, path, url.Values{"adminId": {uuid.NewString()}}, auth.Principal{UserID: "u"})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin", rec.Header().Get("Location"))

	gw.removal = events.RemovalResult{}
	rec = postForm(t, mux, path, url.Values{"adminId": {uuid.NewString()}}, auth.Principal{UserID: "u"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMintVoterCodes(t *testing.T) {
	gw := &stubGateway{codes: []shortcodes.ShortCode{{Code: "AAAA1111"}, {Code: "BBBB2222"}}}
	mux := newMux(nil, nil, NewAdminEventsHandler(gw, &stubPrint{}, "test"))
	path := "/api/v1/admin/events/" + uuid.NewString() + "/voter-codes"

	rec := postForm(t, mux, path, url.Values{"count": {"2"}}, auth.Principal{UserID: "u"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 2, gw.count)
	require.Equal(t, []any{"AAAA1111", "BBBB2222"}, decodeBody(t, rec)["codes"])

	for _, bad := range []string{"0", "501", "many", ""} {
		rec = postForm(t, mux, path, url.Values{"count": {bad}}, auth.Principal{UserID: "u"})
		require.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestPrintSplitsCodes(t *testing.T) {
	sheets := &stubPrint{page: events.PrintPage{EventName: "Spring", EventCode: "EVT", VoterCodes: []string{"A", "B"}}}
	mux := newMux(nil, nil, NewAdminEventsHandler(&stubGateway{}, sheets, "test"))

	rec := get(mux, "/api/v1/admin/events/EVT/print?codes=A,%20B,,")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"A", "B"}, sheets.codes)
	require.Equal(t, "Spring", decodeBody(t, rec)["event_name"])

	sheets.err = events.ErrVoterCodesRequired
	rec = get(mux, "/api/v1/admin/events/EVT/print")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Nil(t, sheets.codes)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthEndpoints(t *testing.T) {
	healthy := NewHealthChecker(stubPinger{}, func() (uint, bool, error) { return 1, false, nil }, "1.0.0", "abc")

	require.Equal(t, http.StatusOK, get(healthy.Healthz(), "/healthz").Code)
	require.Equal(t, http.StatusOK, get(healthy.Readyz(), "/readyz").Code)

	rec := get(healthy.Health(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "healthy", decodeBody(t, rec)["status"])

	down := NewHealthChecker(stubPinger{err: errors.New("refused")}, func() (uint, bool, error) { return 1, true, nil }, "1.0.0", "abc")
	require.Equal(t, http.StatusOK, get(down.Healthz(), "/healthz").Code)
	require.Equal(t, http.StatusServiceUnavailable, get(down.Readyz(), "/readyz").Code)

	rec = get(down.Health(), "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	checks := decodeBody(t, rec)["checks"].(map[string]any)
	require.Equal(t, "fail", checks["database"].(map[string]any)["status"])
	require.Equal(t, "fail", checks["migrations"].(map[string]any)["status"])
}
