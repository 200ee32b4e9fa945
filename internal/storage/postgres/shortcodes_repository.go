package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brewvote/server/internal/domain/shortcodes"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ shortcodes.Repository = (*ShortCodeRepository)(nil)

type ShortCodeRepository struct {
	db queryer
}

func (r *ShortCodeRepository) Lookup(ctx context.Context, code string, kind shortcodes.Kind) (sc shortcodes.ShortCode, err error) {
	defer observe("short_codes.lookup", time.Now(), &err)

	var kindText string
	var eventID pgtype.UUID
	err = r.db.QueryRow(ctx, `
SELECT code, kind, target_id, event_id, created_at
  FROM short_codes
 WHERE code = $1
   AND kind = $2
`, code, string(kind)).Scan(&sc.Code, &kindText, &sc.TargetID, &eventID, &sc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return shortcodes.ShortCode{}, shortcodes.ErrNotFound
	}
	if err != nil {
		return shortcodes.ShortCode{}, fmt.Errorf("lookup short code: %w", err)
	}
	sc.Kind = shortcodes.Kind(kindText)
	sc.EventID = fromPgUUID(eventID)
	return sc, nil
}

// InsertBatch writes the whole batch in one statement, so a collision on any
// code leaves nothing behind.
func (r *ShortCodeRepository) InsertBatch(ctx context.Context, batch []shortcodes.ShortCode) (err error) {
	defer observe("short_codes.insert_batch", time.Now(), &err)

	if len(batch) == 0 {
		return nil
	}
	codes := make([]string, len(batch))
	kinds := make([]string, len(batch))
	targets := make([]pgtype.UUID, len(batch))
	eventIDs := make([]pgtype.UUID, len(batch))
	for i, c := range batch {
		codes[i] = c.Code
		kinds[i] = string(c.Kind)
		targets[i] = pgUUID(c.TargetID)
		eventIDs[i] = pgUUID(c.EventID)
	}

	_, err = r.db.Exec(ctx, `
INSERT INTO short_codes (code, kind, target_id, event_id)
SELECT * FROM unnest($1::text[], $2::text[], $3::uuid[], $4::uuid[])
`, codes, kinds, targets, eventIDs)
	if isUniqueViolation(err) {
		return shortcodes.ErrCollision
	}
	if err != nil {
		return fmt.Errorf("insert short codes: %w", err)
	}
	return nil
}

// pgUUID maps uuid.Nil to NULL.
func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: id != uuid.Nil}
}

func fromPgUUID(id pgtype.UUID) uuid.UUID {
	if !id.Valid {
		return uuid.Nil
	}
	return uuid.UUID(id.Bytes)
}
