package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kapu/yt-analytics-go/internal/util"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	ytanalytics "google.golang.org/api/youtubeanalytics/v2"
	ytdata "google.golang.org/api/youtube/v3"
)

// Scopes are what the report pipeline needs from a caller's bearer token.
var Scopes = []string{ytdata.YoutubeReadonlyScope, ytanalytics.YtAnalyticsReadonlyScope}

// Authorizer obtains and refreshes a developer token kept on disk.
// The server itself never uses it; it only accepts bearer tokens per request.
type Authorizer struct {
	config    *oauth2.Config
	tokenFile string
	logger    *zap.Logger
}

func NewAuthorizer(credentialsFile, tokenFile string, logger *zap.Logger) (*Authorizer, error) {
	credBytes, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(credBytes, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	return &Authorizer{
		config:    config,
		tokenFile: tokenFile,
		logger:    util.OrNop(logger),
	}, nil
}

func (a *Authorizer) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and stores it.
func (a *Authorizer) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token: %w", err)
	}
	if err := SaveToken(a.tokenFile, token); err != nil {
		return nil, fmt.Errorf("unable to save token: %w", err)
	}

	a.logger.Info("OAuth authorization complete", zap.String("token_file", a.tokenFile))
	return token, nil
}

// AccessToken returns a valid access token from the stored token, refreshing and re-saving it when expired.
func (a *Authorizer) AccessToken(ctx context.Context) (string, error) {
	stored, err := LoadToken(a.tokenFile)
	if err != nil {
		return "", fmt.Errorf("no stored token, authorize first: %w", err)
	}

	token, err := a.config.TokenSource(ctx, stored).Token()
	if err != nil {
		return "", fmt.Errorf("unable to refresh token: %w", err)
	}

	if token.AccessToken != stored.AccessToken {
		if err := SaveToken(a.tokenFile, token); err != nil {
			a.logger.Warn("Failed to persist refreshed token", zap.Error(err))
		} else {
			a.logger.Info("Access token refreshed", zap.Time("expiry", token.Expiry))
		}
	}
	return token.AccessToken, nil
}

func LoadToken(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}

func SaveToken(file string, token *oauth2.Token) error {
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
