// Package msauth acquires tokens for the directory service, either
// interactively via the device-code flow or app-only via client
// credentials. Acquired device tokens are cached on disk so repeated
// runs do not re-prompt.
package msauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/microsoft"

	"github.com/sap8899/reportly/internal/cliconfig"
	"github.com/sap8899/reportly/internal/config"
)

// PromptFunc displays the device-code instructions to the user.
type PromptFunc func(userCode, verificationURI string)

type Authenticator struct {
	cfg    config.AzureConfig
	prompt PromptFunc
}

func New(cfg config.AzureConfig, prompt PromptFunc) *Authenticator {
	return &Authenticator{cfg: cfg, prompt: prompt}
}

// TokenSource returns a reusable token source for the configured app
// registration. A configured client secret selects the app-only flow;
// otherwise the delegated device-code flow is used.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if a.cfg.ClientSecret != "" {
		cc := &clientcredentials.Config{
			ClientID:     a.cfg.ClientID,
			ClientSecret: a.cfg.ClientSecret,
			TokenURL:     microsoft.AzureADEndpoint(a.cfg.TenantID).TokenURL,
			Scopes:       []string{"https://graph.microsoft.com/.default"},
		}
		return cc.TokenSource(ctx), nil
	}
	return a.deviceTokenSource(ctx)
}

// Token acquires a single access token. Used by the token command to
// display the raw credential.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	ts, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return ts.Token()
}

func (a *Authenticator) deviceTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	ocfg := &oauth2.Config{
		ClientID: a.cfg.ClientID,
		Endpoint: microsoft.AzureADEndpoint(a.cfg.TenantID),
		Scopes:   a.cfg.Scopes,
	}

	if tok := a.cachedToken(); tok != nil && tok.Valid() {
		log.Debug().Msg("using cached directory token")
		return ocfg.TokenSource(ctx, tok), nil
	}

	resp, err := ocfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting device-code flow: %w", err)
	}
	if a.prompt != nil {
		a.prompt(resp.UserCode, resp.VerificationURI)
	}

	tok, err := ocfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("completing device-code flow: %w", err)
	}
	a.storeToken(tok)

	return ocfg.TokenSource(ctx, tok), nil
}

func (a *Authenticator) cachedToken() *oauth2.Token {
	cache, err := cliconfig.Load()
	if err != nil {
		return nil
	}
	tok, err := cache.GetToken(a.cfg.TenantID, a.cfg.ClientID)
	if err != nil {
		if !errors.Is(err, cliconfig.ErrTokenNotFound) {
			log.Warn().Err(err).Msg("reading token cache failed")
		}
		return nil
	}
	return tok
}

func (a *Authenticator) storeToken(tok *oauth2.Token) {
	cache, err := cliconfig.Load()
	if err != nil {
		cache = &cliconfig.CLIConfig{}
	}
	cache.SetToken(a.cfg.TenantID, a.cfg.ClientID, tok)
	if err := cliconfig.Save(cache); err != nil {
		log.Warn().Err(err).Msg("persisting token cache failed")
	}
}
