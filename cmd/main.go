package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/walkroutes/internal/auth"
	"github.com/ukydev/walkroutes/internal/config"
	"github.com/ukydev/walkroutes/internal/db"
	"github.com/ukydev/walkroutes/internal/events"
	"github.com/ukydev/walkroutes/internal/handlers"
	"github.com/ukydev/walkroutes/internal/middleware"
)

// newRouter wires the route endpoints behind logging, CORS, rate limiting and
// optional authorization of writes.
func newRouter(cfg *config.ServerConfig, routes db.RouteCollection, publisher events.Publisher, verifier auth.Verifier) (http.Handler, error) {
	mux := http.NewServeMux()
	handlers.NewRouteHandler(routes, publisher).Register(mux)

	limiter := middleware.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	if err := limiter.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier, cfg.AuthRequired)

	return middleware.Chain(mux,
		middleware.Logging,
		middleware.CORS,
		limiter.RateLimit,
		authMiddleware.RequireIdentity,
	), nil
}

// newVerifier picks how bearer tokens are checked. Google mode verifies ID
// tokens against Google's published keys; local mode trusts JWT_SECRET.
func newVerifier(ctx context.Context, cfg *config.ServerConfig) (auth.Verifier, error) {
	switch cfg.AuthMode {
	case "google":
		return auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.GoogleClientID)
	case "local", "":
		if cfg.AuthRequired {
			log.Warn("AUTH_MODE=local: tokens are signed with JWT_SECRET, use only for development")
		}
		return auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	default:
		return nil, fmt.Errorf("unknown AUTH_MODE %q", cfg.AuthMode)
	}
}

func newPublisher(cfg *config.ServerConfig) events.Publisher {
	if cfg.MQTTBroker == "" {
		return events.NopPublisher{}
	}
	hostname, _ := os.Hostname()
	p, err := events.NewMQTTPublisher(cfg.MQTTBroker, "walkroutes-api-"+hostname, cfg.MQTTTopicPrefix)
	if err != nil {
		log.WithError(err).Warn("MQTT unavailable, route events disabled")
		return events.NopPublisher{}
	}
	log.WithField("broker", cfg.MQTTBroker).Info("Publishing route events")
	return p
}

func main() {
	cfg := config.LoadServer()
	config.ConfigureLogging(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")

	routes := db.NewMongoRouteCollection(client.Database(cfg.MongoDB))
	if err := routes.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("Failed to create route indexes")
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up token verification")
	}
	if cfg.AuthRequired {
		log.WithField("auth_mode", cfg.AuthMode).Info("Route writes require a signed-in identity")
	}

	publisher := newPublisher(cfg)
	defer publisher.Close()

	router, err := newRouter(cfg, routes, publisher, verifier)
	if err != nil {
		log.WithError(err).Fatal("Invalid server configuration")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Shutdown failed")
		}
	}()

	log.WithField("port", cfg.Port).Info("HTTP server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("Server closed")
	}
	log.Info("Server stopped")
}
