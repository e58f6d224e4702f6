package db

import (
	"context"
	"errors"

	"github.com/ukydev/walkroutes/internal/models"
)

// ErrInvalidID is returned when a route identifier is not a valid ObjectID.
var ErrInvalidID = errors.New("invalid route ID")

// RouteCollection defines the interface for saved route operations.
type RouteCollection interface {
	InsertRoute(ctx context.Context, route models.Route) (models.Route, error)
	FindRoutes(ctx context.Context) ([]models.Route, error)
	// DeleteRoute reports whether a document was actually removed.
	DeleteRoute(ctx context.Context, id string) (bool, error)
	Ping(ctx context.Context) error
}
