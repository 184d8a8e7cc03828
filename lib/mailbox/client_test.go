// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mailbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/papersync/lib/clock"
	"github.com/bureau-foundation/papersync/lib/testutil"
)

// fakeProvider is an in-memory mail.tm stand-in.
type fakeProvider struct {
	mu           sync.Mutex
	domains      []domain
	accountCode  int
	accounts     map[string]string
	inbox        func(call int) []Summary
	messages     map[string]Message
	// messageFailures is how many message fetches fail before one
	// succeeds.
	messageFailures int
	messageCalls    atomic.Int32
	inboxCalls      atomic.Int32
	lastAuthHead string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		domains:     []domain{{ID: "1", Domain: "inbox.test", IsActive: true}},
		accountCode: http.StatusCreated,
		accounts:    make(map[string]string),
		inbox:       func(int) []Summary { return nil },
		messages:    make(map[string]Message),
	}
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/domains":
		writeJSON(w, http.StatusOK, map[string]any{"hydra:member": p.domains})
	case r.Method == http.MethodPost && r.URL.Path == "/accounts":
		var account accountRequest
		json.NewDecoder(r.Body).Decode(&account)
		if p.accountCode >= 300 {
			writeJSON(w, p.accountCode, map[string]string{"detail": "address already used"})
			return
		}
		p.accounts[account.Address] = account.Password
		writeJSON(w, p.accountCode, map[string]string{"id": "acc", "address": account.Address})
	case r.Method == http.MethodPost && r.URL.Path == "/token":
		var account accountRequest
		json.NewDecoder(r.Body).Decode(&account)
		if p.accounts[account.Address] != account.Password {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials."})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "token-" + account.Address})
	case r.Method == http.MethodGet && r.URL.Path == "/messages":
		p.lastAuthHead = r.Header.Get("Authorization")
		call := int(p.inboxCalls.Add(1))
		writeJSON(w, http.StatusOK, map[string]any{"hydra:member": p.inbox(call)})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/messages/"):
		p.messageCalls.Add(1)
		if p.messageFailures > 0 {
			p.messageFailures--
			writeJSON(w, http.StatusBadGateway, map[string]string{"detail": "upstream unavailable"})
			return
		}
		message, ok := p.messages[strings.TrimPrefix(r.URL.Path, "/messages/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, message)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/ld+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(value)
}

func newTestClient(t *testing.T, server *httptest.Server, clk clock.Clock) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Clock:      clk,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClient_PollIntervalBound(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{PollInterval: 5 * time.Second}); err == nil {
		t.Fatal("expected error for poll interval above 3s")
	}
	client, err := NewClient(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if client.pollInterval != MaxPollInterval {
		t.Errorf("default poll interval = %s, want %s", client.pollInterval, MaxPollInterval)
	}
}

func TestNewClient_RejectsNonHTTP(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{BaseURL: "ftp://mail.example"}); err == nil {
		t.Fatal("expected error for ftp base URL")
	}
}

var addressPattern = regexp.MustCompile(`^[a-z0-9]{10}@inbox\.test$`)
var secretPattern = regexp.MustCompile(`^[A-Za-z0-9]{12}$`)

func TestAcquire(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	server := httptest.NewServer(provider)
	defer server.Close()
	client := newTestClient(t, server, clock.Real())

	identity, err := client.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !addressPattern.MatchString(identity.Address) {
		t.Errorf("Address = %q, want 10 lowercase alphanumerics at inbox.test", identity.Address)
	}
	if !secretPattern.MatchString(identity.Secret) {
		t.Errorf("Secret = %q, want 12 alphanumerics", identity.Secret)
	}
	if identity.Status != Pending {
		t.Errorf("Status = %q, want pending", identity.Status)
	}

	if _, err := client.Messages(context.Background(), identity); err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if want := "Bearer token-" + identity.Address; provider.lastAuthHead != want {
		t.Errorf("Authorization = %q, want %q", provider.lastAuthHead, want)
	}
}

func TestAcquire_SkipsInactiveDomain(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.domains = []domain{
		{ID: "1", Domain: "retired.test", IsActive: false},
		{ID: "2", Domain: "inbox.test", IsActive: true},
	}
	server := httptest.NewServer(provider)
	defer server.Close()

	identity, err := newTestClient(t, server, clock.Real()).Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !strings.HasSuffix(identity.Address, "@inbox.test") {
		t.Errorf("Address = %q, want the active domain", identity.Address)
	}
}

func TestAcquire_ProvisioningErrors(t *testing.T) {
	t.Parallel()

	t.Run("no domains", func(t *testing.T) {
		provider := newFakeProvider()
		provider.domains = nil
		server := httptest.NewServer(provider)
		defer server.Close()

		_, err := newTestClient(t, server, clock.Real()).Acquire(context.Background())
		var provisioning *ProvisioningError
		if !errors.As(err, &provisioning) || provisioning.Stage != StageDomains {
			t.Fatalf("Acquire = %v, want ProvisioningError at domains", err)
		}
	})

	t.Run("account rejected", func(t *testing.T) {
		provider := newFakeProvider()
		provider.accountCode = http.StatusUnprocessableEntity
		server := httptest.NewServer(provider)
		defer server.Close()

		_, err := newTestClient(t, server, clock.Real()).Acquire(context.Background())
		var provisioning *ProvisioningError
		if !errors.As(err, &provisioning) {
			t.Fatalf("Acquire = %v, want ProvisioningError", err)
		}
		if provisioning.Stage != StageAccount || provisioning.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("got stage %q status %d", provisioning.Stage, provisioning.StatusCode)
		}
		if !strings.Contains(provisioning.Body, "address already used") {
			t.Errorf("Body = %q", provisioning.Body)
		}
	})
}

func TestAcquire_TransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	client := newTestClient(t, server, clock.Real())
	server.Close()

	_, err := client.Acquire(context.Background())
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("Acquire = %v, want TransportError", err)
	}
}

func acquired(t *testing.T, client *Client) *Identity {
	t.Helper()
	identity, err := client.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	return identity
}

func TestPollForMessage_ZeroTimeoutFetchesOnce(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	server := httptest.NewServer(provider)
	defer server.Close()
	client := newTestClient(t, server, clock.Fake(time.Unix(0, 0)))
	identity := acquired(t, client)

	message, err := client.PollForMessage(context.Background(), identity, DefaultSubjectMatch, 0)
	if err != nil {
		t.Fatalf("PollForMessage: %v", err)
	}
	if message != nil {
		t.Errorf("message = %+v, want nil", message)
	}
	if calls := provider.inboxCalls.Load(); calls != 1 {
		t.Errorf("inbox fetched %d times, want 1", calls)
	}
	if identity.Status != TimedOut {
		t.Errorf("Status = %q, want timed_out", identity.Status)
	}
}

func TestPollForMessage_FindsMessageOnLaterTick(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.inbox = func(call int) []Summary {
		if call < 3 {
			return []Summary{{ID: "m0", Subject: "Welcome to the mail service"}}
		}
		return []Summary{
			{ID: "m0", Subject: "Welcome to the mail service"},
			{ID: "m1", Subject: "Please VERIFY your email address"},
		}
	}
	provider.messages["m1"] = Message{
		ID:      "m1",
		Subject: "Please VERIFY your email address",
		HTML:    []string{`<a href="https://www.overleaf.com/verify?token=abc&amp;user=1">Confirm</a>`},
	}
	server := httptest.NewServer(provider)
	defer server.Close()

	fake := clock.Fake(time.Unix(0, 0))
	client := newTestClient(t, server, fake)
	identity := acquired(t, client)

	type result struct {
		message *Message
		err     error
	}
	done := make(chan result, 1)
	go func() {
		message, err := client.PollForMessage(context.Background(), identity, DefaultSubjectMatch, time.Minute)
		done <- result{message, err}
	}()

	for range 2 {
		fake.WaitForTimers(1)
		fake.Advance(MaxPollInterval)
	}
	got := testutil.RequireReceive(t, done, 5*time.Second, "waiting for PollForMessage")
	if got.err != nil {
		t.Fatalf("PollForMessage: %v", got.err)
	}
	if got.message == nil || got.message.ID != "m1" {
		t.Fatalf("message = %+v, want m1", got.message)
	}
	if identity.Status != Verified {
		t.Errorf("Status = %q, want verified", identity.Status)
	}
	if calls := provider.inboxCalls.Load(); calls != 3 {
		t.Errorf("inbox fetched %d times, want 3", calls)
	}

	link, ok := ExtractActionLink(got.message, DefaultVerifyLinkPattern)
	if !ok || link != "https://www.overleaf.com/verify?token=abc&user=1" {
		t.Errorf("ExtractActionLink = %q, %v", link, ok)
	}
}

func TestPollForMessage_RetriesFailedMessageFetch(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.inbox = func(int) []Summary {
		return []Summary{{ID: "m1", Subject: "Verify your Overleaf account"}}
	}
	provider.messages["m1"] = Message{ID: "m1", Subject: "Verify your Overleaf account"}
	provider.messageFailures = 1
	server := httptest.NewServer(provider)
	defer server.Close()

	fake := clock.Fake(time.Unix(0, 0))
	client := newTestClient(t, server, fake)
	identity := acquired(t, client)

	type result struct {
		message *Message
		err     error
	}
	done := make(chan result, 1)
	go func() {
		message, err := client.PollForMessage(context.Background(), identity, DefaultSubjectMatch, time.Minute)
		done <- result{message, err}
	}()

	fake.WaitForTimers(1)
	fake.Advance(MaxPollInterval)
	got := testutil.RequireReceive(t, done, 5*time.Second, "waiting for PollForMessage")
	if got.err != nil {
		t.Fatalf("PollForMessage: %v, want the failed fetch retried", got.err)
	}
	if got.message == nil || got.message.ID != "m1" {
		t.Fatalf("message = %+v, want m1", got.message)
	}
	if identity.Status != Verified {
		t.Errorf("Status = %q, want verified", identity.Status)
	}
	if calls := provider.messageCalls.Load(); calls != 2 {
		t.Errorf("message fetched %d times, want 2", calls)
	}
}

func TestPollForMessage_TimesOut(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	server := httptest.NewServer(provider)
	defer server.Close()

	fake := clock.Fake(time.Unix(0, 0))
	client := newTestClient(t, server, fake)
	identity := acquired(t, client)

	done := make(chan *Message, 1)
	go func() {
		message, err := client.PollForMessage(context.Background(), identity, []string{"verify"}, 10*time.Second)
		if err != nil {
			t.Errorf("PollForMessage: %v", err)
		}
		done <- message
	}()

	for {
		select {
		case message := <-done:
			if message != nil {
				t.Fatalf("message = %+v, want nil", message)
			}
			if identity.Status != TimedOut {
				t.Errorf("Status = %q, want timed_out", identity.Status)
			}
			if calls := provider.inboxCalls.Load(); calls < 2 {
				t.Errorf("inbox fetched %d times, want repeated polling", calls)
			}
			return
		case <-time.After(time.Millisecond):
			if fake.PendingCount() > 0 {
				fake.Advance(MaxPollInterval)
			}
		}
	}
}

func TestPollForMessage_ContextCancelled(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	server := httptest.NewServer(provider)
	defer server.Close()

	fake := clock.Fake(time.Unix(0, 0))
	client := newTestClient(t, server, fake)
	identity := acquired(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.PollForMessage(ctx, identity, DefaultSubjectMatch, time.Hour)
		done <- err
	}()
	fake.WaitForTimers(1)
	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for cancellation"); !errors.Is(err, context.Canceled) {
		t.Errorf("PollForMessage = %v, want context.Canceled", err)
	}
}

func TestPollForMessage_RequiresTerms(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.PollForMessage(context.Background(), &Identity{}, []string{" "}, 0); err == nil {
		t.Fatal("expected error for empty subject terms")
	}
}
