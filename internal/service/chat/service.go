// Package chat implements the constrained conversational assistant: it
// projects a device's sighting history into an LLM-safe context and
// answers user questions strictly within it.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/k3a/html2text"
	"github.com/sethvargo/go-retry"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

type sightingResolver interface {
	ResolveSightings(ctx context.Context, deviceIdentifier string) ([]domain.ResolvedSighting, error)
}

type completionClient interface {
	Complete(ctx context.Context, system, userMessage string) (string, error)
}

// Options bound the gateway's interaction with the provider.
type Options struct {
	MaxMessageLength int
	RequestTimeout   time.Duration
	MaxRetries       uint64
	RetryBaseDelay   time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxMessageLength <= 0 {
		o.MaxMessageLength = 1000
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = 500 * time.Millisecond
	}
	return o
}

// Service implements the assistant gateway. client is nil when no provider
// credential is configured; the gateway then fails fast with
// ErrProviderMisconfigured instead of attempting a call.
type Service struct {
	log      *slog.Logger
	resolver sightingResolver
	client   completionClient
	opts     Options
}

// NewService creates a new chat service.
func NewService(logger *slog.Logger, resolver sightingResolver, client completionClient, opts Options) *Service {
	return &Service{
		log:      logger.With("service", "chat"),
		resolver: resolver,
		client:   client,
		opts:     opts.withDefaults(),
	}
}

// Chat answers a user question about the device's sighting history. The
// question is validated before any I/O, the history is projected into the
// system prompt, and the user message is forwarded to the provider
// verbatim. Transient provider failures are retried with exponential
// backoff before surfacing as ErrProviderUnavailable.
func (s *Service) Chat(ctx context.Context, deviceIdentifier, userMessage string) (string, error) {
	if err := validateMessage(userMessage, s.opts.MaxMessageLength); err != nil {
		return "", err
	}

	resolved, err := s.resolver.ResolveSightings(ctx, deviceIdentifier)
	if err != nil {
		return "", fmt.Errorf("resolve sightings: %w", err)
	}
	if len(resolved) == 0 {
		return "", ErrNoSightingData
	}

	if s.client == nil {
		return "", ErrProviderMisconfigured
	}

	contextJSON, err := json.MarshalIndent(BuildContext(resolved), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal sighting context: %w", err)
	}

	system := systemPrompt(string(contextJSON))

	var reply string
	backoff := retry.WithMaxRetries(s.opts.MaxRetries, retry.NewExponential(s.opts.RetryBaseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()

		out, callErr := s.client.Complete(callCtx, system, userMessage)
		if callErr != nil {
			if isTransient(callErr) {
				s.log.WarnContext(ctx, "assistant call failed, retrying",
					slog.String("device_id", deviceIdentifier),
					slog.String("error", callErr.Error()),
				)
				return retry.RetryableError(callErr)
			}
			return callErr
		}

		reply = out
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "assistant call failed",
			slog.String("device_id", deviceIdentifier),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if strings.TrimSpace(reply) == "" {
		return "", ErrAssistantEmpty
	}

	return reply, nil
}

// validateMessage rejects empty, oversized or markup-bearing input. Markup
// is rejected outright rather than stripped: a sanitized message no longer
// says what the user typed.
func validateMessage(message string, maxLen int) error {
	if strings.TrimSpace(message) == "" {
		return domain.NewValidationError("message", "required")
	}

	if utf8.RuneCountInString(message) > maxLen {
		return domain.NewValidationError("message", fmt.Sprintf("too long (max %d)", maxLen))
	}

	if html2text.HTML2Text(message) != message {
		return domain.NewValidationError("message", "markup is not allowed")
	}

	return nil
}

func systemPrompt(contextJSON string) string {
	return fmt.Sprintf(`You are a specialized assistant for FishTracker.
Your sole purpose is to answer questions based only on the fish detection data provided to you.

Here is the data for all fish detected by the user's device (in JSON format):
%s

Your instructions:
1. Strictly on-topic: only use the fish data provided above to answer the user.
2. Decline off-topic: politely decline any questions about other topics, general knowledge, or fish that are not in the list.
3. Be conversational: answer clearly and naturally. You can summarize data, count fish, or describe specific fish based on the provided details.
4. Use context: you can use the "identified_on" field to answer questions about when a fish was seen.
5. Do not refer to "the JSON" or "the provided data" in your response. Speak as if you are the device's built-in assistant.`, contextJSON)
}
