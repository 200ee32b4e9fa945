package postgres

import (
	"context"
	"fmt"

	"github.com/brewvote/server/internal/domain/access"
	"github.com/brewvote/server/internal/domain/events"
	"github.com/brewvote/server/internal/domain/shortcodes"
	"github.com/brewvote/server/internal/domain/voters"
	"github.com/brewvote/server/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ storage.Repository = (*Repository)(nil)

// Repository implements storage.Repository with a PostgreSQL backend.
type Repository struct {
	pool *pgxpool.Pool

	shortCodes *ShortCodeRepository
	voters     *VoterRepository
	access     *AccessRepository
	events     *EventRepository
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{
		pool:       pool,
		shortCodes: &ShortCodeRepository{db: pool},
		voters:     &VoterRepository{db: pool},
		access:     &AccessRepository{db: pool},
		events:     &EventRepository{db: pool},
	}, nil
}

func (r *Repository) ShortCodes() shortcodes.Repository { return r.shortCodes }

func (r *Repository) Voters() voters.Repository { return r.voters }

func (r *Repository) Access() access.Repository { return r.access }

func (r *Repository) Events() events.Repository { return r.events }

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
