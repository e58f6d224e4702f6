// Package identity wraps the sign-in flow of an identity provider.
package identity

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/walkroutes/internal/models"
)

// ErrCancelled is returned when the user abandons the sign-in flow.
var ErrCancelled = errors.New("sign-in cancelled")

// Provider is the identity provider capability. Implementations run their own
// interactive flow.
type Provider interface {
	SignIn(ctx context.Context) (*models.Identity, error)
	SignOut(ctx context.Context) error
}

// Widget presents sign-in state. It keeps no identity of its own; the caller
// holds the identity returned by SignIn and passes it to View.
type Widget struct {
	provider Provider
	label    string
}

// labeler is implemented by providers that name their own login action.
type labeler interface {
	LoginLabel() string
}

// NewWidget wraps provider.
func NewWidget(provider Provider) *Widget {
	label := ActionLogin
	if l, ok := provider.(labeler); ok {
		label = l.LoginLabel()
	}
	return &Widget{provider: provider, label: label}
}

// SignIn runs the provider flow. Failures are logged and yield nil.
func (w *Widget) SignIn(ctx context.Context) *models.Identity {
	id, err := w.provider.SignIn(ctx)
	if err != nil {
		log.WithError(err).Error("Sign-in failed")
		return nil
	}
	return id
}

// SignOut ends the provider session.
func (w *Widget) SignOut(ctx context.Context) error {
	return w.provider.SignOut(ctx)
}

// View is what the widget shows for an identity.
type View struct {
	AvatarURL   string
	DisplayName string
	Action      string
}

const (
	ActionLogin      = "Login with Google"
	ActionLocalLogin = "Login with dev passphrase"
	ActionLogout     = "Logout"
)

// View renders id, or the login action when id is nil.
func (w *Widget) View(id *models.Identity) View {
	if id == nil {
		return View{Action: w.label}
	}
	return View{AvatarURL: id.PhotoURL, DisplayName: id.DisplayName, Action: ActionLogout}
}

func (v View) String() string {
	if v.DisplayName == "" {
		return "[" + v.Action + "]"
	}
	s := v.DisplayName
	if v.AvatarURL != "" {
		s += " <" + v.AvatarURL + ">"
	}
	return s + " [" + v.Action + "]"
}
