package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brewvote/server/internal/auth"
	"github.com/brewvote/server/internal/domain/access"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ access.Repository = (*AccessRepository)(nil)

type AccessRepository struct {
	db queryer
}

func (r *AccessRepository) AdminByUserID(ctx context.Context, userID string) (a access.Admin, err error) {
	defer observe("admins.by_user_id", time.Now(), &err)

	var (
		orgID pgtype.UUID
		role  string
	)
	err = r.db.QueryRow(ctx, `
SELECT id, user_id, email, organization_id, role
  FROM admins
 WHERE user_id = $1
`, userID).Scan(&a.ID, &a.UserID, &a.Email, &orgID, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return access.Admin{}, access.ErrNotFound
	}
	if err != nil {
		return access.Admin{}, fmt.Errorf("get admin by user id: %w", err)
	}
	a.OrganizationID = fromPgUUID(orgID)
	a.Role = auth.NormalizeRole(role)
	return a, nil
}

func (r *AccessRepository) IsAssigned(ctx context.Context, eventID, adminID uuid.UUID) (bool, error) {
	return isAssigned(ctx, r.db, eventID, adminID)
}

func (r *AccessRepository) EventOrganization(ctx context.Context, eventID uuid.UUID) (orgID uuid.UUID, err error) {
	defer observe("events.organization", time.Now(), &err)

	err = r.db.QueryRow(ctx, `SELECT organization_id FROM events WHERE id = $1`, eventID).Scan(&orgID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, access.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("get event organization: %w", err)
	}
	return orgID, nil
}

func (r *AccessRepository) CountEventAdmins(ctx context.Context, eventID uuid.UUID) (count int, err error) {
	defer observe("event_admins.count", time.Now(), &err)

	err = r.db.QueryRow(ctx, `SELECT count(*) FROM event_admins WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count event admins: %w", err)
	}
	return count, nil
}

func isAssigned(ctx context.Context, db queryer, eventID, adminID uuid.UUID) (assigned bool, err error) {
	defer observe("event_admins.exists", time.Now(), &err)

	err = db.QueryRow(ctx, `
SELECT EXISTS (
  SELECT 1 FROM event_admins WHERE event_id = $1 AND admin_id = $2
)
`, eventID, adminID).Scan(&assigned)
	if err != nil {
		return false, fmt.Errorf("check event admin assignment: %w", err)
	}
	return assigned, nil
}
