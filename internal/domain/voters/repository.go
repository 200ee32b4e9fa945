package voters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("voter not found")

// Voter is an anonymous participant in one event. Its id comes from the voter
// short code mapping, never from registration.
type Voter struct {
	ID        uuid.UUID
	EventID   uuid.UUID
	CreatedAt time.Time
}

type Repository interface {
	GetVoter(ctx context.Context, id, eventID uuid.UUID) (Voter, error)
	GetVoterByID(ctx context.Context, id uuid.UUID) (Voter, error)
	// InsertVoter fails when a voter with id already exists. It must not
	// update existing rows.
	InsertVoter(ctx context.Context, id, eventID uuid.UUID) (Voter, error)
}
