// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mailbox

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/bureau-foundation/papersync/lib/clock"
)

const (
	// DefaultBaseURL is the public mail.tm API.
	DefaultBaseURL = "https://api.mail.tm"

	// MaxPollInterval is the longest allowed gap between inbox fetches.
	MaxPollInterval = 3 * time.Second

	defaultRequestTimeout = 15 * time.Second

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 4 << 20

	localPartLength = 10
	secretLength    = 12

	localPartAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	secretAlphabet    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Config holds configuration for a Client.
type Config struct {
	// BaseURL is the provider root. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// RequestTimeout bounds each HTTP request. Default 15s.
	RequestTimeout time.Duration

	// PollInterval is the gap between inbox fetches. Default and
	// maximum MaxPollInterval.
	PollInterval time.Duration

	// Clock drives the poll loop. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client talks to one mail provider.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	requestTimeout time.Duration
	pollInterval   time.Duration
	clock          clock.Clock
	logger         *slog.Logger
}

// NewClient creates a Client. Returns an error for an unusable base URL
// or a poll interval above MaxPollInterval.
func NewClient(config Config) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(baseURL, "https://") && !strings.HasPrefix(baseURL, "http://") {
		return nil, fmt.Errorf("mailbox: base URL must be http or https (got %q)", baseURL)
	}

	pollInterval := config.PollInterval
	if pollInterval <= 0 {
		pollInterval = MaxPollInterval
	}
	if pollInterval > MaxPollInterval {
		return nil, fmt.Errorf("mailbox: poll interval %s exceeds %s", pollInterval, MaxPollInterval)
	}

	client := &Client{
		baseURL:        baseURL,
		httpClient:     config.HTTPClient,
		requestTimeout: config.RequestTimeout,
		pollInterval:   pollInterval,
		clock:          config.Clock,
		logger:         config.Logger,
	}
	if client.httpClient == nil {
		client.httpClient = http.DefaultClient
	}
	if client.requestTimeout <= 0 {
		client.requestTimeout = defaultRequestTimeout
	}
	if client.clock == nil {
		client.clock = clock.Real()
	}
	if client.logger == nil {
		client.logger = slog.Default()
	}
	return client, nil
}

// Acquire provisions a new identity: picks the first active domain,
// generates a random address and secret, creates the account, and
// exchanges it for a bearer token.
func (client *Client) Acquire(ctx context.Context) (*Identity, error) {
	var domains collection[domain]
	if err := client.provisioningCall(ctx, StageDomains, http.MethodGet, "/domains", nil, "", &domains); err != nil {
		return nil, err
	}
	selected := selectDomain(domains.Members)
	if selected == "" {
		return nil, &ProvisioningError{Stage: StageDomains, Body: "no active domain available"}
	}

	localPart, err := randomString(localPartAlphabet, localPartLength)
	if err != nil {
		return nil, fmt.Errorf("mailbox: generating address: %w", err)
	}
	secret, err := randomString(secretAlphabet, secretLength)
	if err != nil {
		return nil, fmt.Errorf("mailbox: generating secret: %w", err)
	}
	identity := &Identity{
		Address: localPart + "@" + selected,
		Secret:  secret,
		Status:  Pending,
	}

	account := accountRequest{Address: identity.Address, Password: identity.Secret}
	if err := client.provisioningCall(ctx, StageAccount, http.MethodPost, "/accounts", account, "", nil); err != nil {
		return nil, err
	}

	var token tokenResponse
	if err := client.provisioningCall(ctx, StageToken, http.MethodPost, "/token", account, "", &token); err != nil {
		return nil, err
	}
	if token.Token == "" {
		return nil, &ProvisioningError{Stage: StageToken, Body: "provider returned an empty token"}
	}
	identity.token = token.Token

	client.logger.Info("acquired disposable identity", "address", identity.Address)
	return identity, nil
}

// Messages lists the identity's inbox.
func (client *Client) Messages(ctx context.Context, identity *Identity) ([]Summary, error) {
	var inbox collection[Summary]
	if err := client.call(ctx, http.MethodGet, "/messages", nil, identity.token, &inbox); err != nil {
		return nil, err
	}
	return inbox.Members, nil
}

// Message fetches one message in full.
func (client *Client) Message(ctx context.Context, identity *Identity, id string) (*Message, error) {
	var message Message
	if err := client.call(ctx, http.MethodGet, "/messages/"+id, nil, identity.token, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// provisioningCall is call with non-2xx responses converted to a
// ProvisioningError for stage.
func (client *Client) provisioningCall(ctx context.Context, stage, method, path string, requestBody any, token string, result any) error {
	err := client.call(ctx, method, path, requestBody, token, result)
	var status *statusError
	if errors.As(err, &status) {
		return &ProvisioningError{Stage: stage, StatusCode: status.StatusCode, Body: status.Body}
	}
	var syntax *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	if errors.As(err, &syntax) || errors.As(err, &typeError) {
		return &ProvisioningError{Stage: stage, Body: "malformed response: " + err.Error()}
	}
	return err
}

// call executes one request under the per-request timeout and decodes
// a JSON response into result when result is non-nil.
func (client *Client) call(ctx context.Context, method, path string, requestBody any, token string, result any) error {
	ctx, cancel := context.WithTimeout(ctx, client.requestTimeout)
	defer cancel()

	url := client.baseURL + path
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("mailbox: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("mailbox: creating request: %w", err)
	}
	request.Header.Set("Accept", "application/ld+json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return &TransportError{Method: method, URL: url, Err: err}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return &TransportError{Method: method, URL: url, Err: err}
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &statusError{StatusCode: response.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(body, result)
}

// selectDomain returns the first active domain. Providers that do not
// report activity get their first listed domain.
func selectDomain(domains []domain) string {
	for _, candidate := range domains {
		if candidate.IsActive && candidate.Domain != "" {
			return candidate.Domain
		}
	}
	for _, candidate := range domains {
		if candidate.Domain != "" {
			return candidate.Domain
		}
	}
	return ""
}

func randomString(alphabet string, length int) (string, error) {
	limit := big.NewInt(int64(len(alphabet)))
	var builder strings.Builder
	builder.Grow(length)
	for range length {
		index, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[index.Int64()])
	}
	return builder.String(), nil
}
