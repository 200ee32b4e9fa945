package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brewvote/server/internal/domain/events"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	db queryer
}

func (r *EventRepository) GetEvent(ctx context.Context, id uuid.UUID) (e events.Event, err error) {
	defer observe("events.get", time.Now(), &err)

	var logo pgtype.Text
	err = r.db.QueryRow(ctx, `
SELECT id, organization_id, name, logo_url, reveal_stage, results_visible, created_at
  FROM events
 WHERE id = $1
`, id).Scan(&e.ID, &e.OrganizationID, &e.Name, &logo, &e.RevealStage, &e.ResultsVisible, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return events.Event{}, events.ErrNotFound
	}
	if err != nil {
		return events.Event{}, fmt.Errorf("get event: %w", err)
	}
	e.LogoURL = logo.String
	return e, nil
}

func (r *EventRepository) SetResultsVisible(ctx context.Context, eventID uuid.UUID, visible bool) (err error) {
	defer observe("events.set_results_visible", time.Now(), &err)

	if _, err = r.db.Exec(ctx, `UPDATE events SET results_visible = $2 WHERE id = $1`, eventID, visible); err != nil {
		return fmt.Errorf("update results visibility: %w", err)
	}
	return nil
}

const beerColumns = `id, event_id, name, brewer, style, created_at`

func scanBeer(row pgx.Row) (b events.Beer, err error) {
	err = row.Scan(&b.ID, &b.EventID, &b.Name, &b.Brewer, &b.Style, &b.CreatedAt)
	return b, err
}

func (r *EventRepository) GetBeer(ctx context.Context, id uuid.UUID) (b events.Beer, err error) {
	defer observe("beers.get", time.Now(), &err)

	b, err = scanBeer(r.db.QueryRow(ctx, `SELECT `+beerColumns+` FROM beers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return events.Beer{}, events.ErrNotFound
	}
	if err != nil {
		return events.Beer{}, fmt.Errorf("get beer: %w", err)
	}
	return b, nil
}

func (r *EventRepository) BeerInEvent(ctx context.Context, beerID, eventID uuid.UUID) (found bool, err error) {
	defer observe("beers.in_event", time.Now(), &err)

	err = r.db.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM beers WHERE id = $1 AND event_id = $2)
`, beerID, eventID).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check beer event: %w", err)
	}
	return found, nil
}

func (r *EventRepository) DeleteBeer(ctx context.Context, beerID, eventID uuid.UUID) (err error) {
	defer observe("beers.delete", time.Now(), &err)

	if _, err = r.db.Exec(ctx, `DELETE FROM beers WHERE id = $1 AND event_id = $2`, beerID, eventID); err != nil {
		return fmt.Errorf("delete beer: %w", err)
	}
	return nil
}

func (r *EventRepository) ListBeers(ctx context.Context, eventID uuid.UUID, order events.SortOrder) (beers []events.Beer, err error) {
	defer observe("beers.list", time.Now(), &err)

	direction := "ASC"
	if order == events.NewestFirst {
		direction = "DESC"
	}
	rows, err := r.db.Query(ctx, `
SELECT `+beerColumns+`
  FROM beers
 WHERE event_id = $1
 ORDER BY created_at `+direction+`, id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list beers: %w", err)
	}
	beers, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (events.Beer, error) {
		return scanBeer(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list beers: %w", err)
	}
	return beers, nil
}

func (r *EventRepository) ListVotesByVoter(ctx context.Context, voterID uuid.UUID) (votes []events.Vote, err error) {
	defer observe("votes.list_by_voter", time.Now(), &err)

	rows, err := r.db.Query(ctx, `
SELECT id, voter_id, beer_id, points, created_at
  FROM votes
 WHERE voter_id = $1
 ORDER BY created_at
`, voterID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	votes, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (v events.Vote, err error) {
		err = row.Scan(&v.ID, &v.VoterID, &v.BeerID, &v.Points, &v.CreatedAt)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return votes, nil
}

func (r *EventRepository) ListFeedbackByVoter(ctx context.Context, voterID uuid.UUID) (feedback []events.Feedback, err error) {
	defer observe("feedback.list_by_voter", time.Now(), &err)

	rows, err := r.db.Query(ctx, `
SELECT id, voter_id, beer_id, notes, share_with_brewer, created_at
  FROM feedback
 WHERE voter_id = $1
 ORDER BY created_at
`, voterID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	feedback, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (f events.Feedback, err error) {
		err = row.Scan(&f.ID, &f.VoterID, &f.BeerID, &f.Notes, &f.ShareWithBrewer, &f.CreatedAt)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return feedback, nil
}

func (r *EventRepository) ListSharedFeedback(ctx context.Context, beerID uuid.UUID) (shared []events.SharedFeedback, err error) {
	defer observe("feedback.list_shared", time.Now(), &err)

	rows, err := r.db.Query(ctx, `
SELECT id, notes, created_at
  FROM feedback
 WHERE beer_id = $1
   AND share_with_brewer
 ORDER BY created_at DESC
`, beerID)
	if err != nil {
		return nil, fmt.Errorf("list shared feedback: %w", err)
	}
	shared, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (f events.SharedFeedback, err error) {
		err = row.Scan(&f.ID, &f.Notes, &f.CreatedAt)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("list shared feedback: %w", err)
	}
	return shared, nil
}

func (r *EventRepository) BeerForBrewerToken(ctx context.Context, token uuid.UUID) (beerID uuid.UUID, err error) {
	defer observe("brewer_tokens.get", time.Now(), &err)

	var id pgtype.UUID
	err = r.db.QueryRow(ctx, `SELECT beer_id FROM brewer_tokens WHERE id = $1`, token).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && !id.Valid) {
		return uuid.Nil, events.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("get brewer token: %w", err)
	}
	return uuid.UUID(id.Bytes), nil
}

func (r *EventRepository) AdminExists(ctx context.Context, adminID uuid.UUID) (exists bool, err error) {
	defer observe("admins.exists", time.Now(), &err)

	err = r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admins WHERE id = $1)`, adminID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return exists, nil
}

func (r *EventRepository) IsAssigned(ctx context.Context, eventID, adminID uuid.UUID) (bool, error) {
	return isAssigned(ctx, r.db, eventID, adminID)
}

func (r *EventRepository) AssignAdmin(ctx context.Context, eventID, adminID uuid.UUID) (err error) {
	defer observe("event_admins.insert", time.Now(), &err)

	_, err = r.db.Exec(ctx, `INSERT INTO event_admins (event_id, admin_id) VALUES ($1, $2)`, eventID, adminID)
	if isUniqueViolation(err) {
		return events.ErrAlreadyAssigned
	}
	if err != nil {
		return fmt.Errorf("assign admin: %w", err)
	}
	return nil
}

func (r *EventRepository) UnassignAdmin(ctx context.Context, eventID, adminID uuid.UUID) (err error) {
	defer observe("event_admins.delete", time.Now(), &err)

	if _, err = r.db.Exec(ctx, `DELETE FROM event_admins WHERE event_id = $1 AND admin_id = $2`, eventID, adminID); err != nil {
		return fmt.Errorf("unassign admin: %w", err)
	}
	return nil
}

func (r *EventRepository) ListEventAdmins(ctx context.Context, eventID uuid.UUID) (admins []events.AdminSummary, err error) {
	defer observe("event_admins.list", time.Now(), &err)

	rows, err := r.db.Query(ctx, `
SELECT a.id, a.email
  FROM event_admins ea
  JOIN admins a ON a.id = ea.admin_id
 WHERE ea.event_id = $1
 ORDER BY a.email
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event admins: %w", err)
	}
	admins, err = pgx.CollectRows(rows, scanAdminSummary)
	if err != nil {
		return nil, fmt.Errorf("list event admins: %w", err)
	}
	return admins, nil
}

func (r *EventRepository) ListAdmins(ctx context.Context) (admins []events.AdminSummary, err error) {
	defer observe("admins.list", time.Now(), &err)

	rows, err := r.db.Query(ctx, `SELECT id, email FROM admins ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	admins, err = pgx.CollectRows(rows, scanAdminSummary)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

func scanAdminSummary(row pgx.CollectableRow) (a events.AdminSummary, err error) {
	err = row.Scan(&a.ID, &a.Email)
	return a, err
}
