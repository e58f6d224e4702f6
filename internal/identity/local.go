package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ukydev/walkroutes/internal/auth"
	"github.com/ukydev/walkroutes/internal/models"
)

// PassphrasePrompter asks the user for a secret without echoing it.
type PassphrasePrompter interface {
	PromptSecret(msg string) (string, bool)
}

// LocalProvider signs users in against a bcrypt passphrase hash and mints
// tokens with the API's shared secret. It is for development only: anyone
// holding the secret can mint tokens, so a deployed API should verify Google
// ID tokens instead.
type LocalProvider struct {
	Name     string
	PhotoURL string
	Hash     string
	Tokens   *auth.Service
	Prompter PassphrasePrompter
}

// SignIn asks for the passphrase and returns a signed identity.
func (p *LocalProvider) SignIn(ctx context.Context) (*models.Identity, error) {
	if p.Hash == "" {
		return nil, errors.New("no passphrase hash configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	passphrase, ok := p.Prompter.PromptSecret("Passphrase for " + p.Name + ":")
	if !ok {
		return nil, ErrCancelled
	}
	if err := auth.CheckPassphrase(passphrase, p.Hash); err != nil {
		return nil, err
	}

	id := &models.Identity{
		UID:         uidFor(p.Name),
		DisplayName: p.Name,
		PhotoURL:    p.PhotoURL,
	}
	token, err := p.Tokens.GenerateToken(*id)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	id.Token = token
	return id, nil
}

// LoginLabel marks the widget action as the development login.
func (p *LocalProvider) LoginLabel() string { return ActionLocalLogin }

// SignOut has nothing to revoke; issued tokens simply expire.
func (p *LocalProvider) SignOut(context.Context) error {
	return nil
}

func uidFor(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:8])
}
