package shortcodes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("short code not found")
	ErrCollision = errors.New("short code already taken")
)

// Kind scopes a short code to the entity type it identifies.
type Kind string

const (
	KindEvent  Kind = "event"
	KindBrewer Kind = "brewer"
	KindVoter  Kind = "voter"
)

func (k Kind) Valid() bool {
	switch k {
	case KindEvent, KindBrewer, KindVoter:
		return true
	}
	return false
}

// ShortCode maps a shareable code to an internal identifier. EventID is set
// for voter codes minted for an event.
type ShortCode struct {
	Code      string
	Kind      Kind
	TargetID  uuid.UUID
	EventID   uuid.UUID
	CreatedAt time.Time
}

type Repository interface {
	// Lookup returns ErrNotFound when no mapping exists for (code, kind).
	Lookup(ctx context.Context, code string, kind Kind) (ShortCode, error)
	// InsertBatch stores all codes or none. It returns ErrCollision when any
	// code is already taken.
	InsertBatch(ctx context.Context, codes []ShortCode) error
}
