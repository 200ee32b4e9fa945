// Package storage declares the persistence boundary. Each domain package
// owns its repository interface; Repository groups them for wiring.
package storage

import (
	"context"

	"github.com/brewvote/server/internal/domain/access"
	"github.com/brewvote/server/internal/domain/events"
	"github.com/brewvote/server/internal/domain/shortcodes"
	"github.com/brewvote/server/internal/domain/voters"
)

type Repository interface {
	ShortCodes() shortcodes.Repository
	Voters() voters.Repository
	Access() access.Repository
	Events() events.Repository

	Ping(ctx context.Context) error
}
