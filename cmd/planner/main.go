package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/walkroutes/internal/auth"
	"github.com/ukydev/walkroutes/internal/canvas"
	"github.com/ukydev/walkroutes/internal/client"
	"github.com/ukydev/walkroutes/internal/config"
	"github.com/ukydev/walkroutes/internal/directions"
	"github.com/ukydev/walkroutes/internal/identity"
	"github.com/ukydev/walkroutes/internal/models"
	"github.com/ukydev/walkroutes/internal/panel"
)

const usage = `commands:
  click <lat> <lng>   place the next marker
  reset               clear markers and route
  save                save the current route
  routes              refresh and list saved routes
  load <n>            show saved route n
  delete <n>          delete saved route n
  login | logout      sign in or out
  whoami              show the signed-in user
  quit

Run "planner hash-passphrase" to create IDENTITY_PASSPHRASE_HASH.
`

// planner hosts the map canvas, the saved routes panel and the auth widget
// behind a line-oriented command loop.
type planner struct {
	term   *terminal
	canvas *canvas.Canvas
	panel  *panel.Panel
	widget *identity.Widget
	user   *models.Identity
}

func newDirections(cfg *config.PlannerConfig) (directions.Client, error) {
	switch cfg.DirectionsProvider {
	case "", "mapbox":
		if cfg.MapboxToken == "" && cfg.DirectionsBaseURL == "" {
			return nil, errors.New("MAPBOX_TOKEN is required for the mapbox provider")
		}
		return directions.NewMapboxClient(cfg.DirectionsBaseURL, cfg.MapboxToken), nil
	case "osrm":
		return directions.NewOSRMClient(cfg.DirectionsBaseURL), nil
	case "google":
		return directions.NewGoogleClient(cfg.GoogleMapsKey, cfg.DirectionsBaseURL)
	default:
		return nil, fmt.Errorf("unknown directions provider %q", cfg.DirectionsProvider)
	}
}

func newPlanner(term *terminal, dir directions.Client, api *client.Client, provider identity.Provider) *planner {
	p := &planner{term: term, widget: identity.NewWidget(provider)}
	api.SetTokenSource(func() string {
		if p.user == nil {
			return ""
		}
		return p.user.Token
	})
	p.canvas = canvas.New(term, term, dir, api)
	p.panel = panel.New(api, p.canvas, term)
	return p
}

// run executes one command line and reports whether the loop should continue.
func (p *planner) run(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "click":
		pt, err := parsePoint(args)
		if err != nil {
			p.term.Alert(err.Error())
			return true
		}
		if !p.canvas.Click(ctx, pt) {
			p.term.Alert("Both markers are placed. Reset to start over.")
		}
	case "reset":
		p.canvas.Reset()
	case "save":
		if _, err := p.canvas.Save(ctx); err == nil {
			p.panel.Refresh(ctx)
		}
	case "routes":
		p.panel.Refresh(ctx)
		p.term.printf("%s\n", strings.TrimRight(p.panel.View(), "\n"))
	case "load":
		i, err := parseIndex(args)
		if err != nil {
			p.term.Alert(err.Error())
			return true
		}
		if err := p.panel.Load(i); err != nil {
			log.WithError(err).Debug("Route not loaded")
			p.term.Alert("That route cannot be shown.")
		}
	case "delete":
		i, err := parseIndex(args)
		if err != nil || i >= len(p.panel.Routes()) {
			p.term.Alert("No such route.")
			return true
		}
		p.panel.Delete(ctx, p.panel.Routes()[i].ID.Hex())
	case "login":
		if id := p.widget.SignIn(ctx); id != nil {
			p.user = id
		}
		p.term.printf("%s\n", p.widget.View(p.user))
	case "logout":
		if err := p.widget.SignOut(ctx); err != nil {
			log.WithError(err).Error("Sign-out failed")
		}
		p.user = nil
		p.term.printf("%s\n", p.widget.View(p.user))
	case "whoami":
		p.term.printf("%s\n", p.widget.View(p.user))
	case "help":
		p.term.printf("%s", usage)
	case "quit", "exit":
		return false
	default:
		p.term.Alert("Unknown command " + cmd + ", try help.")
	}
	return true
}

// loop reads commands until quit or end of input.
func (p *planner) loop(ctx context.Context) {
	p.panel.Mount(ctx)
	for {
		p.term.printf("> ")
		line, ok := p.term.readLine()
		if !ok || !p.run(ctx, line) {
			return
		}
	}
}

func parsePoint(args []string) (orb.Point, error) {
	if len(args) == 1 {
		args = strings.Split(args[0], ",")
	}
	if len(args) != 2 {
		return orb.Point{}, errors.New("usage: click <lat> <lng>")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid latitude %q", args[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid longitude %q", args[1])
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return orb.Point{}, errors.New("coordinates out of range")
	}
	return orb.Point{lng, lat}, nil
}

// parseIndex converts the 1-based list position shown to users.
func parseIndex(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("a route number is required")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid route number %q", args[0])
	}
	return n - 1, nil
}

// newIdentityProvider returns the Google device-flow provider, or the local
// passphrase provider for development against an API in local auth mode.
func newIdentityProvider(ctx context.Context, cfg *config.PlannerConfig, term *terminal) (identity.Provider, error) {
	switch cfg.IdentityProvider {
	case "google":
		verifier, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.GoogleClientID)
		if err != nil {
			return nil, err
		}
		return identity.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, verifier, term), nil
	case "local", "":
		tokens, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
		if err != nil {
			return nil, err
		}
		return &identity.LocalProvider{
			Name:     cfg.IdentityName,
			PhotoURL: cfg.IdentityPhotoURL,
			Hash:     cfg.PassphraseHash,
			Tokens:   tokens,
			Prompter: term,
		}, nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", cfg.IdentityProvider)
	}
}

// hashPassphrase asks for a passphrase twice and prints the bcrypt hash to put
// in IDENTITY_PASSPHRASE_HASH.
func hashPassphrase(t *terminal) error {
	first, ok := t.PromptSecret("New passphrase:")
	if !ok {
		return identity.ErrCancelled
	}
	if first == "" {
		return errors.New("passphrase is empty")
	}
	second, ok := t.PromptSecret("Repeat passphrase:")
	if !ok {
		return identity.ErrCancelled
	}
	if first != second {
		return errors.New("passphrases do not match")
	}

	hash, err := auth.HashPassphrase(first)
	if err != nil {
		return err
	}
	t.printf("IDENTITY_PASSPHRASE_HASH=%s\n", hash)
	return nil
}

func start(ctx context.Context, cfg *config.PlannerConfig, in io.Reader, out io.Writer) error {
	dir, err := newDirections(cfg)
	if err != nil {
		return err
	}

	term := newTerminal(in, out)
	provider, err := newIdentityProvider(ctx, cfg, term)
	if err != nil {
		return err
	}

	api := client.New(cfg.APIBaseURL)
	if err := api.Ping(ctx); err != nil {
		log.WithError(err).WithField("api_url", cfg.APIBaseURL).Warn("Route API not reachable")
	}

	newPlanner(term, dir, api, provider).loop(ctx)
	return nil
}

func main() {
	cfg := config.LoadPlanner()
	config.ConfigureLogging(cfg.LogLevel, "text")

	if len(os.Args) > 1 && os.Args[1] == "hash-passphrase" {
		if err := hashPassphrase(newTerminal(os.Stdin, os.Stdout)); err != nil {
			log.WithError(err).Fatal("Failed to hash passphrase")
		}
		return
	}

	log.WithFields(log.Fields{
		"api_url":  cfg.APIBaseURL,
		"provider": cfg.DirectionsProvider,
	}).Info("Starting route planner")

	fmt.Print(usage)
	if err := start(context.Background(), cfg, os.Stdin, os.Stdout); err != nil {
		log.WithError(err).Fatal("Planner failed to start")
	}
}
