// Package panel lists saved routes and lets the user load or delete them.
package panel

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/walkroutes/internal/directions"
	"github.com/ukydev/walkroutes/internal/models"
)

const (
	msgConfirmDelete = "Are you sure you want to delete this route?"
	msgDeleteFailed  = "Failed to delete route."
	msgLoading       = "Loading saved routes..."
	msgEmpty         = "No saved routes yet."
)

// RouteStore is the part of the route API the panel uses.
type RouteStore interface {
	ListRoutes(ctx context.Context) ([]models.Route, error)
	DeleteRoute(ctx context.Context, id string) error
}

// Loader puts a saved route back on the map.
type Loader interface {
	Load(route models.Route) error
}

// Dialog asks the user to confirm or tells them something went wrong.
type Dialog interface {
	Alert(msg string)
	Confirm(msg string) bool
}

// Panel is the saved routes list.
type Panel struct {
	store   RouteStore
	loader  Loader
	dialog  Dialog
	routes  []models.Route
	loading bool
}

// New creates a panel. Call Mount to fetch the list.
func New(store RouteStore, loader Loader, dialog Dialog) *Panel {
	return &Panel{store: store, loader: loader, dialog: dialog, loading: true}
}

// Mount fetches the saved routes.
func (p *Panel) Mount(ctx context.Context) {
	p.fetch(ctx)
}

// Refresh refetches the full list.
func (p *Panel) Refresh(ctx context.Context) {
	p.fetch(ctx)
}

func (p *Panel) fetch(ctx context.Context) {
	defer func() { p.loading = false }()
	routes, err := p.store.ListRoutes(ctx)
	if err != nil {
		log.WithError(err).Error("Error fetching routes")
		return
	}
	p.routes = routes
}

// Routes returns the routes as last fetched.
func (p *Panel) Routes() []models.Route {
	return p.routes
}

// Loading reports whether the first fetch is still outstanding.
func (p *Panel) Loading() bool {
	return p.loading
}

// Load hands the i-th listed route to the map.
func (p *Panel) Load(i int) error {
	if i < 0 || i >= len(p.routes) {
		return fmt.Errorf("no saved route %d", i+1)
	}
	return p.loader.Load(p.routes[i])
}

// Delete removes a route after confirmation and then refetches the list. It
// reports whether a delete was attempted and succeeded.
func (p *Panel) Delete(ctx context.Context, id string) bool {
	if !p.dialog.Confirm(msgConfirmDelete) {
		return false
	}
	if err := p.store.DeleteRoute(ctx, id); err != nil {
		log.WithError(err).WithField("route_id", id).Error("Error deleting route")
		p.dialog.Alert(msgDeleteFailed)
		return false
	}
	p.fetch(ctx)
	return true
}

// View renders the panel as text.
func (p *Panel) View() string {
	if p.loading {
		return msgLoading
	}
	if len(p.routes) == 0 {
		return msgEmpty
	}

	var b strings.Builder
	b.WriteString("Saved Routes\n")
	for i, r := range p.routes {
		fmt.Fprintf(&b, "%2d. %s", i+1, r.Name)
		var meta []string
		if r.Distance != 0 {
			meta = append(meta, "Distance: "+directions.FormatDistance(r.Distance)+" km")
		}
		if r.Duration != 0 {
			meta = append(meta, "Duration: "+directions.FormatDuration(r.Duration)+" min")
		}
		if len(meta) > 0 {
			b.WriteString("  (" + strings.Join(meta, ", ") + ")")
		}
		b.WriteString("\n")
	}
	return b.String()
}
