package events

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/brewvote/server/internal/domain/access"
	"github.com/brewvote/server/internal/domain/shortcodes"
	"github.com/brewvote/server/internal/domain/voters"
	"github.com/google/uuid"
)

type codeKey struct {
	code string
	kind shortcodes.Kind
}

type assignmentKey struct {
	eventID uuid.UUID
	adminID uuid.UUID
}

// memStore is an in-memory stand-in for the postgres store. It implements the
// repositories of every domain package so the real guard, resolver and
// registrar can run against it.
type memStore struct {
	mu           sync.Mutex
	clock        time.Time
	events       map[uuid.UUID]Event
	beers        map[uuid.UUID]Beer
	voters       map[uuid.UUID]voters.Voter
	votes        []Vote
	feedback     []Feedback
	brewerTokens map[uuid.UUID]uuid.UUID
	admins       map[uuid.UUID]access.Admin
	assignments  map[assignmentKey]bool
	codes        map[codeKey]uuid.UUID
	codeEvents   map[codeKey]uuid.UUID

	// fail makes the named method return the error
	fail map[string]error
	// afterIsAssigned runs after IsAssigned has read, outside the lock
	afterIsAssigned func(eventID, adminID uuid.UUID)
}

func newMemStore() *memStore {
	return &memStore{
		clock:        time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC),
		events:       map[uuid.UUID]Event{},
		beers:        map[uuid.UUID]Beer{},
		voters:       map[uuid.UUID]voters.Voter{},
		brewerTokens: map[uuid.UUID]uuid.UUID{},
		admins:       map[uuid.UUID]access.Admin{},
		assignments:  map[assignmentKey]bool{},
		codes:        map[codeKey]uuid.UUID{},
		codeEvents:   map[codeKey]uuid.UUID{},
		fail:         map[string]error{},
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

// shortcodes.Repository

func (s *memStore) Lookup(_ context.Context, code string, kind shortcodes.Kind) (shortcodes.ShortCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["Lookup"]; err != nil {
		return shortcodes.ShortCode{}, err
	}
	key := codeKey{code, kind}
	id, ok := s.codes[key]
	if !ok {
		return shortcodes.ShortCode{}, shortcodes.ErrNotFound
	}
	return shortcodes.ShortCode{Code: code, Kind: kind, TargetID: id, EventID: s.codeEvents[key]}, nil
}

func (s *memStore) InsertBatch(_ context.Context, batch []shortcodes.ShortCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range batch {
		if _, taken := s.codes[codeKey{c.Code, c.Kind}]; taken {
			return shortcodes.ErrCollision
		}
	}
	for _, c := range batch {
		s.codes[codeKey{c.Code, c.Kind}] = c.TargetID
		s.codeEvents[codeKey{c.Code, c.Kind}] = c.EventID
	}
	return nil
}

// voters.Repository

func (s *memStore) GetVoter(_ context.Context, id, eventID uuid.UUID) (voters.Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.voters[id]
	if !ok || v.EventID != eventID {
		return voters.Voter{}, voters.ErrNotFound
	}
	return v, nil
}

func (s *memStore) GetVoterByID(_ context.Context, id uuid.UUID) (voters.Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.voters[id]
	if !ok {
		return voters.Voter{}, voters.ErrNotFound
	}
	return v, nil
}

func (s *memStore) InsertVoter(_ context.Context, id, eventID uuid.UUID) (voters.Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.voters[id]; exists {
		return voters.Voter{}, errors.New("duplicate key")
	}
	v := voters.Voter{ID: id, EventID: eventID, CreatedAt: s.tick()}
	s.voters[id] = v
	return v, nil
}

// access.Repository

func (s *memStore) AdminByUserID(_ context.Context, userID string) (access.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.UserID == userID {
			return a, nil
		}
	}
	return access.Admin{}, access.ErrNotFound
}

func (s *memStore) EventOrganization(_ context.Context, eventID uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return uuid.Nil, access.ErrNotFound
	}
	return e.OrganizationID, nil
}

func (s *memStore) CountEventAdmins(_ context.Context, eventID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.assignments {
		if k.eventID == eventID {
			n++
		}
	}
	return n, nil
}

func (s *memStore) IsAssigned(_ context.Context, eventID, adminID uuid.UUID) (bool, error) {
	s.mu.Lock()
	assigned := s.assignments[assignmentKey{eventID, adminID}]
	hook := s.afterIsAssigned
	s.mu.Unlock()
	if hook != nil {
		hook(eventID, adminID)
	}
	return assigned, nil
}

// events.Repository

func (s *memStore) GetEvent(_ context.Context, id uuid.UUID) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return e, nil
}

func (s *memStore) SetResultsVisible(_ context.Context, eventID uuid.UUID, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["SetResultsVisible"]; err != nil {
		return err
	}
	e := s.events[eventID]
	e.ResultsVisible = visible
	s.events[eventID] = e
	return nil
}

func (s *memStore) GetBeer(_ context.Context, id uuid.UUID) (Beer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.beers[id]
	if !ok {
		return Beer{}, ErrNotFound
	}
	return b, nil
}

func (s *memStore) BeerInEvent(_ context.Context, beerID, eventID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.beers[beerID]
	return ok && b.EventID == eventID, nil
}

func (s *memStore) DeleteBeer(_ context.Context, beerID, eventID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.beers[beerID]; ok && b.EventID == eventID {
		delete(s.beers, beerID)
	}
	return nil
}

func (s *memStore) ListBeers(_ context.Context, eventID uuid.UUID, order SortOrder) ([]Beer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["ListBeers"]; err != nil {
		return nil, err
	}
	var out []Beer
	for _, b := range s.beers {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if order == NewestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memStore) ListVotesByVoter(_ context.Context, voterID uuid.UUID) ([]Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Vote
	for _, v := range s.votes {
		if v.VoterID == voterID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *memStore) ListFeedbackByVoter(_ context.Context, voterID uuid.UUID) ([]Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Feedback
	for _, f := range s.feedback {
		if f.VoterID == voterID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *memStore) ListSharedFeedback(_ context.Context, beerID uuid.UUID) ([]SharedFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []SharedFeedback
	for _, f := range s.feedback {
		if f.BeerID == beerID && f.ShareWithBrewer {
			out = append(out, SharedFeedback{ID: f.ID, Notes: f.Notes, CreatedAt: f.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) BeerForBrewerToken(_ context.Context, token uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.brewerTokens[token]
	if !ok {
		return uuid.Nil, ErrNotFound
	}
	return id, nil
}

func (s *memStore) AdminExists(_ context.Context, adminID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.admins[adminID]
	return ok, nil
}

func (s *memStore) AssignAdmin(_ context.Context, eventID, adminID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := assignmentKey{eventID, adminID}
	if s.assignments[k] {
		return ErrAlreadyAssigned
	}
	s.assignments[k] = true
	return nil
}

func (s *memStore) UnassignAdmin(_ context.Context, eventID, adminID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assignments, assignmentKey{eventID, adminID})
	return nil
}

func (s *memStore) ListEventAdmins(_ context.Context, eventID uuid.UUID) ([]AdminSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []AdminSummary
	for k := range s.assignments {
		if k.eventID == eventID {
			a := s.admins[k.adminID]
			out = append(out, AdminSummary{ID: a.ID, Email: a.Email})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *memStore) ListAdmins(_ context.Context) ([]AdminSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["ListAdmins"]; err != nil {
		return nil, err
	}
	out := make([]AdminSummary, 0, len(s.admins))
	for _, a := range s.admins {
		out = append(out, AdminSummary{ID: a.ID, Email: a.Email})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// seeding helpers

func (s *memStore) addEvent(code string, orgID uuid.UUID, revealStage int) Event {
	e := Event{ID: uuid.New(), OrganizationID: orgID, Name: "Spring Homebrew Cup", LogoURL: "https://example.com/logo.png", RevealStage: revealStage, CreatedAt: s.tick()}
	s.events[e.ID] = e
	s.codes[codeKey{code, shortcodes.KindEvent}] = e.ID
	return e
}

func (s *memStore) addBeer(eventID uuid.UUID, name string) Beer {
	b := Beer{ID: uuid.New(), EventID: eventID, Name: name, Brewer: "Sam", Style: "IPA", CreatedAt: s.tick()}
	s.beers[b.ID] = b
	return b
}

func (s *memStore) addVoterCode(code string) uuid.UUID {
	id := uuid.New()
	s.codes[codeKey{code, shortcodes.KindVoter}] = id
	return id
}

func (s *memStore) addVoterCodeFor(code string, eventID uuid.UUID) uuid.UUID {
	id := s.addVoterCode(code)
	s.codeEvents[codeKey{code, shortcodes.KindVoter}] = eventID
	return id
}

func (s *memStore) addAdmin(userID, email string, orgID uuid.UUID, super bool) access.Admin {
	a := access.Admin{ID: uuid.New(), UserID: userID, Email: email, OrganizationID: orgID, Role: "admin"}
	if super {
		a.Role = "super_admin"
	}
	s.admins[a.ID] = a
	return a
}

func (s *memStore) assign(eventID, adminID uuid.UUID) {
	s.assignments[assignmentKey{eventID, adminID}] = true
}
