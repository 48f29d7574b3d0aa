package ragchat

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds the settings needed to reach the backend. It is built once by
// the caller and passed to the transport at construction.
type Config struct {
	// BackendURL is the base origin for both endpoints, e.g.
	// "https://rag.example.com".
	BackendURL string `env:"BACKEND_URL"`
}

// Validate checks that BackendURL is an absolute http or https URL.
func (c Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend URL is required: %w", ErrValidation)
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("backend URL %q: %v: %w", c.BackendURL, err, ErrValidation)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend URL %q must use http or https: %w", c.BackendURL, ErrValidation)
	}
	if u.Host == "" {
		return fmt.Errorf("backend URL %q has no host: %w", c.BackendURL, ErrValidation)
	}
	return nil
}

// Endpoint joins BackendURL and path, tolerating a trailing slash on the base.
func (c Config) Endpoint(path string) string {
	return strings.TrimRight(c.BackendURL, "/") + "/" + strings.TrimLeft(path, "/")
}
