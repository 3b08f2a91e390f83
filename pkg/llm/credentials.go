// Package llm is the client for the remote text-generation service. It
// resolves the service credential from the environment, sends chat
// completion requests and retries transient failures with exponential
// backoff.
package llm

import (
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const (
	// TokenEnvVar holds the service access token.
	TokenEnvVar = "ENRICH_API_TOKEN"

	// ModelEnvVar optionally overrides the default model identifier. It is
	// read by the config layer and passed into New explicitly, never
	// consulted as a process-wide default.
	ModelEnvVar = "ENRICH_MODEL"
)

// ErrMissingCredential is returned when a remote call is requested but no
// token is available. Local-only and dry-run paths never resolve a token.
var ErrMissingCredential = errors.New("missing service credential: " + TokenEnvVar + " is not set")

// ResolveToken reads the service access token from the environment.
func ResolveToken() (string, error) {
	token := strings.TrimSpace(os.Getenv(TokenEnvVar))
	if token == "" {
		return "", ErrMissingCredential
	}
	return token, nil
}
