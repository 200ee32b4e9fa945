package access

import (
	"context"
	"errors"

	"github.com/brewvote/server/internal/auth"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Admin is a principal allowed to manage events. OrganizationID is uuid.Nil
// for super-admins without an organization.
type Admin struct {
	ID             uuid.UUID
	UserID         string
	Email          string
	OrganizationID uuid.UUID
	Role           auth.Role
}

func (a Admin) IsSuper() bool {
	return a.Role == auth.RoleSuperAdmin
}

type Repository interface {
	// AdminByUserID returns ErrNotFound when no admin is linked to userID.
	AdminByUserID(ctx context.Context, userID string) (Admin, error)
	IsAssigned(ctx context.Context, eventID, adminID uuid.UUID) (bool, error)
	// EventOrganization returns ErrNotFound for unknown events.
	EventOrganization(ctx context.Context, eventID uuid.UUID) (uuid.UUID, error)
	CountEventAdmins(ctx context.Context, eventID uuid.UUID) (int, error)
}
