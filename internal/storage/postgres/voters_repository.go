package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brewvote/server/internal/domain/voters"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ voters.Repository = (*VoterRepository)(nil)

// VoterRepository never updates rows: registration relies on plain inserts
// and re-reads, not ON CONFLICT.
type VoterRepository struct {
	db queryer
}

func (r *VoterRepository) GetVoter(ctx context.Context, id, eventID uuid.UUID) (v voters.Voter, err error) {
	defer observe("voters.get", time.Now(), &err)

	err = r.db.QueryRow(ctx, `
SELECT id, event_id, created_at
  FROM voters
 WHERE id = $1
   AND event_id = $2
`, id, eventID).Scan(&v.ID, &v.EventID, &v.CreatedAt)
	return v, voterErr(err, "get voter")
}

func (r *VoterRepository) GetVoterByID(ctx context.Context, id uuid.UUID) (v voters.Voter, err error) {
	defer observe("voters.get_by_id", time.Now(), &err)

	err = r.db.QueryRow(ctx, `
SELECT id, event_id, created_at
  FROM voters
 WHERE id = $1
`, id).Scan(&v.ID, &v.EventID, &v.CreatedAt)
	return v, voterErr(err, "get voter by id")
}

func (r *VoterRepository) InsertVoter(ctx context.Context, id, eventID uuid.UUID) (v voters.Voter, err error) {
	defer observe("voters.insert", time.Now(), &err)

	err = r.db.QueryRow(ctx, `
INSERT INTO voters (id, event_id)
VALUES ($1, $2)
RETURNING id, event_id, created_at
`, id, eventID).Scan(&v.ID, &v.EventID, &v.CreatedAt)
	if err != nil {
		return voters.Voter{}, fmt.Errorf("insert voter: %w", err)
	}
	return v, nil
}

func voterErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return voters.ErrNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
