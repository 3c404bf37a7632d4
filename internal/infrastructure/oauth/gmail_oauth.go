package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// GmailOAuth authorises the reminder mailbox against Gmail
type GmailOAuth struct {
	config       *oauth2.Config
	refreshToken string
	logger       logger.Logger
}

// NewGmailOAuth creates a Gmail OAuth handler limited to sending mail
func NewGmailOAuth(clientID, clientSecret, refreshToken string, logger logger.Logger) *GmailOAuth {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}

	return &GmailOAuth{
		config:       config,
		refreshToken: refreshToken,
		logger:       logger,
	}
}

// Configured reports whether client credentials and a refresh token are present
func (o *GmailOAuth) Configured() bool {
	return o.config.ClientID != "" && o.config.ClientSecret != "" && o.refreshToken != ""
}

// GetTokenSource returns a refreshing token source for the Gmail API
func (o *GmailOAuth) GetTokenSource(ctx context.Context) oauth2.TokenSource {
	token := &oauth2.Token{
		RefreshToken: o.refreshToken,
		Expiry:       time.Now(), // Force refresh
	}

	return o.config.TokenSource(ctx, token)
}

// GenerateAuthURL builds the consent URL used once to obtain a refresh token
func (o *GmailOAuth) GenerateAuthURL(redirectURL, state string) string {
	cfg := *o.config
	cfg.RedirectURL = redirectURL
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode exchanges an authorization code for a token
func (o *GmailOAuth) ExchangeCode(ctx context.Context, redirectURL, code string) (*oauth2.Token, error) {
	cfg := *o.config
	cfg.RedirectURL = redirectURL

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	o.logger.Info("Gmail token obtained", "hasRefreshToken", token.RefreshToken != "")

	return token, nil
}
