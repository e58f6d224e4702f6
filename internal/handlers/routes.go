package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/walkroutes/internal/db"
	"github.com/ukydev/walkroutes/internal/events"
	"github.com/ukydev/walkroutes/internal/middleware"
	"github.com/ukydev/walkroutes/internal/models"
)

const maxBodyBytes = 4 << 20

// RouteHandler serves the saved route endpoints.
type RouteHandler struct {
	routes    db.RouteCollection
	publisher events.Publisher
	now       func() time.Time
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(routes db.RouteCollection, publisher events.Publisher) *RouteHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RouteHandler{
		routes:    routes,
		publisher: publisher,
		now:       time.Now,
	}
}

// Register mounts the route endpoints on mux.
func (h *RouteHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /test", h.Test)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /routes", h.Create)
	mux.HandleFunc("GET /routes", h.List)
	mux.HandleFunc("DELETE /routes/{id}", h.Delete)
}

// Test is the connectivity check used by clients.
func (h *RouteHandler) Test(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Health reports whether the route store is reachable.
func (h *RouteHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.routes.Ping(ctx); err != nil {
		log.WithError(err).Warn("Health check failed")
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Create stores a new route. Fields are not validated beyond decoding.
func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var payload models.RoutePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	// Uncastable numbers fail like a storage validation error.
	in, err := payload.Input()
	if err != nil {
		log.WithError(err).Error("Error saving route")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	route, err := h.routes.InsertRoute(r.Context(), models.NewRoute(in, h.now()))
	if err != nil {
		log.WithError(err).Error("Error saving route")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	fields := log.Fields{"route_id": route.ID.Hex(), "name": route.Name}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		fields["uid"] = claims.UID
	}
	log.WithFields(fields).Info("Route saved")

	h.publish(r.Context(), events.Event{Type: events.RouteCreated, ID: route.ID.Hex(), Name: route.Name, At: route.CreatedAt})
	writeJSON(w, http.StatusCreated, route)
}

// List returns all routes, newest first.
func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.routes.FindRoutes(r.Context())
	if err != nil {
		log.WithError(err).Error("Error fetching routes")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if routes == nil {
		routes = []models.Route{}
	}
	writeJSON(w, http.StatusOK, routes)
}

// Delete removes a route. Deleting an id that does not exist still succeeds.
func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := h.routes.DeleteRoute(r.Context(), id)
	if err != nil {
		entry := log.WithError(err).WithField("route_id", id)
		if errors.Is(err, db.ErrInvalidID) {
			entry.Warn("Rejected route delete")
		} else {
			entry.Error("Error deleting route")
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if deleted {
		log.WithField("route_id", id).Info("Route deleted")
		h.publish(r.Context(), events.Event{Type: events.RouteDeleted, ID: id, At: h.now().UTC()})
	} else {
		log.WithField("route_id", id).Debug("Delete matched no route")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *RouteHandler) publish(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := h.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).WithField("event", event.Type).Warn("Failed to publish route event")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
