package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyAssigned = errors.New("admin already assigned")
)

type Event struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	LogoURL        string
	// RevealStage > 0 means the results ceremony has started and voting is
	// closed for good.
	RevealStage    int
	ResultsVisible bool
	CreatedAt      time.Time
}

func (e Event) VotingClosed() bool {
	return e.RevealStage > 0
}

type Beer struct {
	ID        uuid.UUID
	EventID   uuid.UUID
	Name      string
	Brewer    string
	Style     string
	CreatedAt time.Time
}

type Vote struct {
	ID        uuid.UUID
	VoterID   uuid.UUID
	BeerID    uuid.UUID
	Points    int
	CreatedAt time.Time
}

type Feedback struct {
	ID              uuid.UUID
	VoterID         uuid.UUID
	BeerID          uuid.UUID
	Notes           string
	ShareWithBrewer bool
	CreatedAt       time.Time
}

// SharedFeedback is the brewer-facing projection of Feedback. It carries
// nothing that identifies the voter.
type SharedFeedback struct {
	ID        uuid.UUID
	Notes     string
	CreatedAt time.Time
}

type AdminSummary struct {
	ID    uuid.UUID
	Email string
}

type SortOrder int

const (
	OldestFirst SortOrder = iota
	NewestFirst
)

type Repository interface {
	GetEvent(ctx context.Context, id uuid.UUID) (Event, error)
	SetResultsVisible(ctx context.Context, eventID uuid.UUID, visible bool) error

	GetBeer(ctx context.Context, id uuid.UUID) (Beer, error)
	BeerInEvent(ctx context.Context, beerID, eventID uuid.UUID) (bool, error)
	DeleteBeer(ctx context.Context, beerID, eventID uuid.UUID) error
	ListBeers(ctx context.Context, eventID uuid.UUID, order SortOrder) ([]Beer, error)

	ListVotesByVoter(ctx context.Context, voterID uuid.UUID) ([]Vote, error)
	ListFeedbackByVoter(ctx context.Context, voterID uuid.UUID) ([]Feedback, error)
	// ListSharedFeedback returns feedback marked for the brewer, newest first.
	ListSharedFeedback(ctx context.Context, beerID uuid.UUID) ([]SharedFeedback, error)
	// BeerForBrewerToken resolves a legacy brewer token. ErrNotFound when unknown.
	BeerForBrewerToken(ctx context.Context, token uuid.UUID) (uuid.UUID, error)

	AdminExists(ctx context.Context, adminID uuid.UUID) (bool, error)
	IsAssigned(ctx context.Context, eventID, adminID uuid.UUID) (bool, error)
	// AssignAdmin returns ErrAlreadyAssigned when the assignment exists.
	AssignAdmin(ctx context.Context, eventID, adminID uuid.UUID) error
	UnassignAdmin(ctx context.Context, eventID, adminID uuid.UUID) error
	ListEventAdmins(ctx context.Context, eventID uuid.UUID) ([]AdminSummary, error)
	// ListAdmins returns every admin ordered by email.
	ListAdmins(ctx context.Context) ([]AdminSummary, error)
}
