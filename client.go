package xfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Config holds client configuration.
type Config struct {
	// BaseURL overrides the GraphQL API base. Default: https://x.com/i/api/graphql
	BaseURL string

	// Proxy is an optional proxy URL for all requests.
	Proxy string
}

func (cfg *Config) defaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGraphQLBase
	}
}

// httpDoer abstracts the HTTP execution so tests can count and fake calls.
type httpDoer interface {
	Do(method, url string, headers map[string]string, body io.Reader) ([]byte, int, error)
}

// stealthDoer backs httpDoer with the browser-impersonating client.
type stealthDoer struct {
	bc *stealth.BrowserClient
}

func (d *stealthDoer) Do(method, url string, headers map[string]string, body io.Reader) ([]byte, int, error) {
	respBody, _, status, err := d.bc.DoWithHeaderOrder(method, url, headers, body, apiHeaderOrder)
	return respBody, status, err
}

// Client executes authenticated calls against the web GraphQL API. It performs
// no retries: request-level failures propagate to the caller, which owns the
// decision to re-prompt, retry, or keep stale data.
type Client struct {
	http  httpDoer
	creds *CredentialStore
	cfg   Config

	// sleep applies pre-request jitter; nil disables it.
	sleep func(context.Context) error
}

// NewClient creates a client reading credentials from store.
func NewClient(store *CredentialStore, cfg Config) (*Client, error) {
	cfg.defaults()

	opts := []stealth.ClientOption{
		stealth.WithHeaderOrder(apiHeaderOrder),
	}
	if cfg.Proxy != "" {
		opts = append(opts, stealth.WithProxy(cfg.Proxy))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}

	return &Client{
		http:  &stealthDoer{bc: bc},
		creds: store,
		cfg:   cfg,
		sleep: stealth.DefaultJitter.Sleep,
	}, nil
}

// get executes a read operation with variables and features in the query string.
func (c *Client) get(ctx context.Context, operation string, variables map[string]any) ([]byte, error) {
	return c.call(ctx, operation, variables, "GET")
}

// post executes a write operation with a JSON body carrying variables,
// features, and the query ID.
func (c *Client) post(ctx context.Context, operation string, variables map[string]any) ([]byte, error) {
	return c.call(ctx, operation, variables, "POST")
}

func (c *Client) call(ctx context.Context, operation string, variables map[string]any, method string) ([]byte, error) {
	ep, ok := Endpoints[operation]
	if !ok {
		return nil, fmt.Errorf("unknown operation: %s", operation)
	}
	if !c.creds.IsAuthenticated() {
		return nil, fmt.Errorf("%s: %w", operation, ErrNotAuthenticated)
	}

	// Anti-fingerprint jitter
	if c.sleep != nil {
		if err := c.sleep(ctx); err != nil {
			return nil, err
		}
	}

	url := ep.URL(c.cfg.BaseURL)
	var reqBody io.Reader
	if method == "GET" {
		url = addGraphQLParams(url, variables, gqlFeatures())
	} else {
		payload, err := json.Marshal(map[string]any{
			"variables": variables,
			"features":  gqlFeatures(),
			"queryId":   ep.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: marshal payload: %w", operation, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	ct0, authToken := c.creds.Tokens()
	body, status, err := c.http.Do(method, url, apiHeaders(ct0, authToken), reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", operation, ErrTransport, err)
	}

	if status < 200 || status > 299 {
		slog.Warn("api call failed",
			slog.String("operation", operation),
			slog.Int("status", status),
			slog.String("body", truncateBytes(body, 200)))
		return nil, newHTTPError(operation, status, body)
	}

	slog.Debug("api call ok", slog.String("operation", operation), slog.Int("bytes", len(body)))
	return body, nil
}

// decode unmarshals a response body, mapping JSON failures to ErrTransport.
func decode(operation string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s: %w: %v", operation, ErrTransport, err)
	}
	return nil
}

// addGraphQLParams builds the full URL with variables and features as
// percent-escaped JSON query parameters.
func addGraphQLParams(url string, variables, features map[string]any) string {
	v, _ := json.Marshal(variables)
	f, _ := json.Marshal(features)
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "variables=" + jsonEscape(v) + "&features=" + jsonEscape(f)
}

func jsonEscape(b []byte) string {
	var result strings.Builder
	for _, ch := range string(b) {
		switch ch {
		case ' ':
			result.WriteString("%20")
		case '"':
			result.WriteString("%22")
		case '{':
			result.WriteString("%7B")
		case '}':
			result.WriteString("%7D")
		case '[':
			result.WriteString("%5B")
		case ']':
			result.WriteString("%5D")
		case ':':
			result.WriteString("%3A")
		case ',':
			result.WriteString("%2C")
		case '\'':
			result.WriteString("%27")
		case '|':
			result.WriteString("%7C")
		default:
			result.WriteRune(ch)
		}
	}
	return result.String()
}
