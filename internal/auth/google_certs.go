package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// GoogleCertsURL serves Google's current ID token signing certificates as
	// a JSON object of key id to PEM certificate.
	GoogleCertsURL = "https://www.googleapis.com/oauth2/v1/certs"

	defaultCertsTTL  = time.Hour
	certsHTTPTimeout = 10 * time.Second
	// minRefetch bounds how often unknown key ids can trigger a fetch.
	minRefetch = time.Minute
)

// KeySource resolves the RSA public key for a token's key id.
type KeySource interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// GoogleCerts fetches and caches Google's signing certificates. The cache
// honours the response's max-age and is refreshed early when an unknown key
// id shows up, which is how Google key rotation surfaces.
type GoogleCerts struct {
	url    string
	client *http.Client
	now    func() time.Time

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
	expires time.Time
}

// NewGoogleCerts creates a certificate cache. A nil client gets a default with a timeout.
func NewGoogleCerts(client *http.Client) *GoogleCerts {
	if client == nil {
		client = &http.Client{Timeout: certsHTTPTimeout}
	}
	return &GoogleCerts{url: GoogleCertsURL, client: client, now: time.Now}
}

// Key returns the public key for kid.
func (g *GoogleCerts) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, fmt.Errorf("token has no key id")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	fresh := now.Before(g.expires)
	if key, ok := g.keys[kid]; ok && fresh {
		return key, nil
	}
	if !fresh || now.Sub(g.fetched) >= minRefetch {
		if err := g.refresh(ctx); err != nil {
			return nil, err
		}
	}
	key, ok := g.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown google key id %q", kid)
	}
	return key, nil
}

func (g *GoogleCerts) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch google certs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch google certs: status %d", resp.StatusCode)
	}

	var pems map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&pems); err != nil {
		return fmt.Errorf("decode google certs: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(pems))
	for kid, pem := range pems {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return fmt.Errorf("parse google cert %q: %w", kid, err)
		}
		keys[kid] = key
	}

	g.keys = keys
	g.fetched = g.now()
	g.expires = g.fetched.Add(maxAge(resp.Header.Get("Cache-Control")))
	return nil
}

// maxAge reads max-age from a Cache-Control header, defaulting to an hour.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultCertsTTL
}
