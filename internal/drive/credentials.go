package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"
)

// ErrNoCredentials is returned when neither credential mode is configured.
var ErrNoCredentials = errors.New("Google Drive credentials not configured")

// Credentials holds the two supported credential modes for the Drive
// API. An API key grants access to public folders; a service-account
// key grants access to folders shared with the account. The API key
// wins when both are set.
type Credentials struct {
	APIKey             string
	ServiceAccountJSON string
}

// AccessToken resolves the raw credential used against the Drive API.
// For an API key it is returned as-is. For a service account the JWT
// grant is delegated to golang.org/x/oauth2/google, which signs and
// exchanges it for an OAuth2 bearer token.
func (c Credentials) AccessToken(ctx context.Context) (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}

	if c.ServiceAccountJSON != "" {
		cfg, err := google.JWTConfigFromJSON([]byte(c.ServiceAccountJSON), drivev3.DriveReadonlyScope)
		if err != nil {
			return "", fmt.Errorf("failed to parse service account JSON: %w", err)
		}
		tok, err := cfg.TokenSource(ctx).Token()
		if err != nil {
			return "", fmt.Errorf("failed to mint service account token: %w", err)
		}
		return tok.AccessToken, nil
	}

	return "", ErrNoCredentials
}

// IsAPIKey reports whether a resolved credential is a static API key
// rather than a bearer token. Signed tokens are dot-delimited; API
// keys never contain a dot.
func IsAPIKey(credential string) bool {
	return !strings.Contains(credential, ".")
}
