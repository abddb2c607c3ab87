package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockResolver struct {
	ResolveSightingsFunc func(ctx context.Context, deviceIdentifier string) ([]domain.ResolvedSighting, error)
}

func (m *mockResolver) ResolveSightings(ctx context.Context, deviceIdentifier string) ([]domain.ResolvedSighting, error) {
	return m.ResolveSightingsFunc(ctx, deviceIdentifier)
}

type mockCompletionClient struct {
	CompleteFunc func(ctx context.Context, system, userMessage string) (string, error)
}

func (m *mockCompletionClient) Complete(ctx context.Context, system, userMessage string) (string, error) {
	return m.CompleteFunc(ctx, system, userMessage)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testOptions() Options {
	return Options{
		MaxMessageLength: 1000,
		RequestTimeout:   time.Second,
		MaxRetries:       2,
		RetryBaseDelay:   time.Millisecond,
	}
}

func newTestService(resolver *mockResolver, client completionClient) *Service {
	return NewService(slog.Default(), resolver, client, testOptions())
}

func oneSighting() []domain.ResolvedSighting {
	return []domain.ResolvedSighting{
		{
			Sighting: domain.Sighting{SightedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
			Fish:     fullFish(),
		},
	}
}

// providerError builds an API error the way the SDK produces one. Request
// and Response must be populated: (*anthropic.Error).Error() dereferences
// both, and Chat logs the error on every failed attempt.
func providerError(status int) *anthropic.Error {
	return &anthropic.Error{
		StatusCode: status,
		Request:    httptest.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil),
		Response:   &http.Response{StatusCode: status},
	}
}

func resolverReturning(sightings []domain.ResolvedSighting) *mockResolver {
	return &mockResolver{
		ResolveSightingsFunc: func(_ context.Context, _ string) ([]domain.ResolvedSighting, error) {
			return sightings, nil
		},
	}
}

// ---------------------------------------------------------------------------
// Input guard tests
// ---------------------------------------------------------------------------

func TestService_Chat_EmptyMessage(t *testing.T) {
	t.Parallel()

	resolveCalled := false
	resolver := &mockResolver{
		ResolveSightingsFunc: func(_ context.Context, _ string) ([]domain.ResolvedSighting, error) {
			resolveCalled = true
			return nil, nil
		},
	}

	svc := newTestService(resolver, &mockCompletionClient{})
	_, err := svc.Chat(context.Background(), "reef-cam-001", "   \n\t")

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "message", ve.Errors[0].Field)
	assert.False(t, resolveCalled, "validation must run before any I/O")
}

func TestService_Chat_MessageTooLong(t *testing.T) {
	t.Parallel()

	svc := newTestService(resolverReturning(oneSighting()), &mockCompletionClient{})
	_, err := svc.Chat(context.Background(), "reef-cam-001", strings.Repeat("a", 1001))

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "message", ve.Errors[0].Field)
	assert.Contains(t, ve.Errors[0].Message, "too long")
}

func TestService_Chat_MessageAtLimitAccepted(t *testing.T) {
	t.Parallel()

	client := &mockCompletionClient{
		CompleteFunc: func(_ context.Context, _, _ string) (string, error) {
			return "ok", nil
		},
	}

	svc := newTestService(resolverReturning(oneSighting()), client)
	reply, err := svc.Chat(context.Background(), "reef-cam-001", strings.Repeat("a", 1000))

	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestService_Chat_MarkupRejected(t *testing.T) {
	t.Parallel()

	clientCalled := false
	client := &mockCompletionClient{
		CompleteFunc: func(_ context.Context, _, _ string) (string, error) {
			clientCalled = true
			return "ok", nil
		},
	}

	svc := newTestService(resolverReturning(oneSighting()), client)
	_, err := svc.Chat(context.Background(), "reef-cam-001", `<script>alert("hi")</script>what fish?`)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "message", ve.Errors[0].Field)
	assert.False(t, clientCalled, "markup is rejected, never sanitized and forwarded")
}

// ---------------------------------------------------------------------------
// Resolution tests
// ---------------------------------------------------------------------------

func TestService_Chat_DeviceNotFound(t *testing.T) {
	t.Parallel()

	resolver := &mockResolver{
		ResolveSightingsFunc: func(_ context.Context, _ string) ([]domain.ResolvedSighting, error) {
			return nil, domain.ErrNotFound
		},
	}

	svc := newTestService(resolver, &mockCompletionClient{})
	_, err := svc.Chat(context.Background(), "ghost-cam", "what fish?")

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Chat_NoSightingData(t *testing.T) {
	t.Parallel()

	svc := newTestService(resolverReturning([]domain.ResolvedSighting{}), &mockCompletionClient{})
	_, err := svc.Chat(context.Background(), "reef-cam-001", "what fish?")

	require.ErrorIs(t, err, ErrNoSightingData)
}

func TestService_Chat_MissingCredential(t *testing.T) {
	t.Parallel()

	svc := newTestService(resolverReturning(oneSighting()), nil)
	_, err := svc.Chat(context.Background(), "reef-cam-001", "what fish?")

	require.ErrorIs(t, err, ErrProviderMisconfigured)
}

// ---------------------------------------------------------------------------
// Provider interaction tests
// ---------------------------------------------------------------------------

func TestService_Chat_ContextEmbeddedInSystemPrompt(t *testing.T) {
	t.Parallel()

	var capturedSystem, capturedUser string
	client := &mockCompletionClient{
		CompleteFunc: func(_ context.Context, system, userMessage string) (string, error) {
			capturedSystem = system
			capturedUser = userMessage
			return "You have seen a Clownfish.", nil
		},
	}

	svc := newTestService(resolverReturning(oneSighting()), client)
	reply, err := svc.Chat(context.Background(), "reef-cam-001", "what have I seen?")

	require.NoError(t, err)
	assert.Equal(t, "You have seen a Clownfish.", reply)
	assert.Equal(t, "what have I seen?", capturedUser, "the user message is forwarded verbatim")

	assert.Contains(t, capturedSystem, "Clownfish")
	assert.Contains(t, capturedSystem, "identified_on")
	assert.Contains(t, capturedSystem, "Strictly on-topic")
	assert.Contains(t, capturedSystem, "Decline off-topic")
}

func TestService_Chat_TransientFailureRetried(t *testing.T) {
	t.Parallel()

	attempts := 0
	client := &mockCompletionClient{
		CompleteFunc: func(_ context.Context, _, _ string) (string, error) {
			attempts++
			if attempts < 3 {
				return "", providerError(http.StatusTooManyRequests)
			}
			return "finally", nil
		},
	}

	svc := newTestService(resolverReturning(oneSighting()), client)
	reply, err := svc.Chat(context.Background(), "reef-cam-001", "what fish?")

	require.NoError(t, err)
	assert.Equal(t, "finally", reply)
	assert.Equal(t, 3, attempts)
}

func TestService_Chat_RetriesExhausted(t *testing.T) {
	t.Parallel()

	attempts := 0
	client := &mockCompletionClient{
		CompleteFunc: func(_ context.Context, _, _ string) (string, error) {
			attempts++
			return "", providerError(http.StatusServiceUnavailable)
		},
	}

	svc := newTestService(resolverReturning(oneSighting()), client)
	_, err := svc.Chat(context.Background(), "reef-cam-001", "what fish?")

	require.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, 3, attempts, "initial attempt plus MaxRetries")
}

func TestService_Chat_NonTransientFailureNotRetried(t *testing.T) {
	t.Parallel()

	attempts := 0
	client := &mockCompletionClient{
		CompleteFunc: func(_ context.Context, _, _ string) (string, error) {
			attempts++
			return "", providerError(http.StatusUnauthorized)
		},
	}

	svc := newTestService(resolverReturning(oneSighting()), client)
	_, err := svc.Chat(context.Background(), "reef-cam-001", "what fish?")

	require.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, 1, attempts)
}

func TestService_Chat_EmptyCompletion(t *testing.T) {
	t.Parallel()

	client := &mockCompletionClient{
		CompleteFunc: func(_ context.Context, _, _ string) (string, error) {
			return "  \n", nil
		},
	}

	svc := newTestService(resolverReturning(oneSighting()), client)
	_, err := svc.Chat(context.Background(), "reef-cam-001", "what fish?")

	require.ErrorIs(t, err, ErrAssistantEmpty)
}

// ---------------------------------------------------------------------------
// isTransient tests
// ---------------------------------------------------------------------------

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "rate limited", err: &anthropic.Error{StatusCode: http.StatusTooManyRequests}, want: true},
		{name: "request timeout", err: &anthropic.Error{StatusCode: http.StatusRequestTimeout}, want: true},
		{name: "server error", err: &anthropic.Error{StatusCode: http.StatusInternalServerError}, want: true},
		{name: "bad gateway", err: &anthropic.Error{StatusCode: http.StatusBadGateway}, want: true},
		{name: "unauthorized", err: &anthropic.Error{StatusCode: http.StatusUnauthorized}, want: false},
		{name: "bad request", err: &anthropic.Error{StatusCode: http.StatusBadRequest}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, isTransient(tc.err))
		})
	}
}

// ---------------------------------------------------------------------------
// validateMessage tests
// ---------------------------------------------------------------------------

func TestValidateMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		wantErr bool
	}{
		{name: "plain question", message: "What fish have I seen today?"},
		{name: "punctuation and unicode", message: "Скільки риб? 🐟"},
		{name: "multibyte at limit", message: strings.Repeat("魚", 1000)},
		{name: "multibyte over limit", message: strings.Repeat("魚", 1001), wantErr: true},
		{name: "empty", message: "", wantErr: true},
		{name: "whitespace", message: " \t\n", wantErr: true},
		{name: "html tag", message: "<b>bold</b>", wantErr: true},
		{name: "script tag", message: "<script>x</script>", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := validateMessage(tc.message, 1000)
			if tc.wantErr {
				var ve *domain.ValidationError
				require.ErrorAs(t, err, &ve)
				return
			}
			require.NoError(t, err)
		})
	}
}
