package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/walkroutes/internal/auth"
	"github.com/ukydev/walkroutes/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	GoogleDeviceAuthURL = "https://oauth2.googleapis.com/device/code"
	GoogleRevokeURL     = "https://oauth2.googleapis.com/revoke"
)

// Notifier tells the user where to approve a sign-in.
type Notifier interface {
	Alert(msg string)
}

// GoogleProvider signs users in with Google using the OAuth 2.0 device
// authorization grant. The ID token it returns is what the route API verifies.
type GoogleProvider struct {
	Config     *oauth2.Config
	Verifier   auth.Verifier
	Notifier   Notifier
	RevokeURL  string
	HTTPClient *http.Client

	token *oauth2.Token
}

// NewGoogleProvider creates a provider for an OAuth client of type
// "TVs and Limited Input devices".
func NewGoogleProvider(clientID, clientSecret string, verifier auth.Verifier, notifier Notifier) *GoogleProvider {
	endpoint := google.Endpoint
	if endpoint.DeviceAuthURL == "" {
		endpoint.DeviceAuthURL = GoogleDeviceAuthURL
	}
	return &GoogleProvider{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		Verifier:   verifier,
		Notifier:   notifier,
		RevokeURL:  GoogleRevokeURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// LoginLabel names the widget action.
func (p *GoogleProvider) LoginLabel() string { return ActionLogin }

// SignIn shows the verification URL and user code, then waits until the user
// approves the request on another device.
func (p *GoogleProvider) SignIn(ctx context.Context) (*models.Identity, error) {
	if p.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.HTTPClient)
	}

	da, err := p.Config.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device authorization failed: %w", err)
	}
	p.Notifier.Alert(fmt.Sprintf("Open %s and enter code %s", da.VerificationURI, da.UserCode))

	tok, err := p.Config.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, fmt.Errorf("device token: %w", err)
	}
	rawIDToken, _ := tok.Extra("id_token").(string)
	if rawIDToken == "" {
		return nil, errors.New("token response has no id_token")
	}

	claims, err := p.Verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}
	p.token = tok

	return &models.Identity{
		UID:         claims.UID,
		DisplayName: claims.DisplayName,
		PhotoURL:    claims.PhotoURL,
		Token:       rawIDToken,
	}, nil
}

// SignOut revokes the access token obtained at sign-in.
func (p *GoogleProvider) SignOut(ctx context.Context) error {
	tok := p.token
	p.token = nil
	if tok == nil || tok.AccessToken == "" || p.RevokeURL == "" {
		return nil
	}

	form := url.Values{"token": {tok.AccessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("token revocation failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token revocation status %d", resp.StatusCode)
	}
	log.Debug("Google token revoked")
	return nil
}
