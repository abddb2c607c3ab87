package chat

import "errors"

// Failure taxonomy for the assistant gateway. Device-not-found and
// validation failures reuse the domain errors; everything specific to the
// assistant flow is enumerated here so transport can map each case.
var (
	// ErrProviderMisconfigured means the assistant cannot be reached because
	// no API credential is configured. Detected before any provider call.
	ErrProviderMisconfigured = errors.New("assistant provider is not configured")

	// ErrProviderUnavailable means the provider kept failing after retries.
	ErrProviderUnavailable = errors.New("assistant provider is unavailable")

	// ErrAssistantEmpty means the provider answered with no usable text.
	ErrAssistantEmpty = errors.New("no response from assistant")

	// ErrNoSightingData means the device exists but has recorded nothing,
	// so there is no material for the assistant to talk about.
	ErrNoSightingData = errors.New("no sighting data for device")
)
