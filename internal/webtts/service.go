package webtts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/book-expert/logger"

	"github.com/book-expert/webtts-service/internal/core"
)

// Static validation errors. They are surfaced to the caller before any
// network call is attempted and are never retried.
var (
	// ErrBaseURLMissing indicates no base URL has been configured.
	ErrBaseURLMissing = errors.New("base URL is not configured")
	// ErrTextEmpty indicates the text is empty after trimming.
	ErrTextEmpty = errors.New("text cannot be empty")
	// ErrUnsupportedVoice indicates the requested voice is outside the
	// fixed supported set.
	ErrUnsupportedVoice = errors.New("unsupported voice")
	// ErrUnsupportedFormat indicates the requested audio format is not
	// codec-compatible with any supported format.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Service is the synthesis entry point. It validates a request against the
// static capability tables and then drives the cloud client. Each call is
// independent; there is no shared mutable state, so a single Service may be
// used concurrently.
type Service struct {
	baseURL string
	cloud   core.CloudAPI
	log     *logger.Logger
}

// NewService creates a synthesis service for the given base URL. An empty
// base URL is a valid construction state; synthesis will fail fast until one
// is configured.
func NewService(baseURL string, cloud core.CloudAPI, log *logger.Logger) *Service {
	return &Service{
		baseURL: baseURL,
		cloud:   cloud,
		log:     log,
	}
}

// Synthesize converts text to an audio stream using the given voice and
// requested format. Validation happens before any network call: base URL
// present, trimmed text non-empty, voice in the supported set, format
// codec-compatible. On success the caller owns the returned stream and must
// close it after consuming the audio.
func (s *Service) Synthesize(
	ctx context.Context,
	text string,
	voice core.Voice,
	requested core.AudioFormat,
) (*core.AudioStream, error) {
	trimmed, validationErr := s.validateRequest(text, voice, requested)
	if validationErr != nil {
		return nil, validationErr
	}

	requestURL := s.cloud.BuildRequestURL(s.baseURL, trimmed, voice.Locale, requested.Codec)

	body, fetchErr := s.cloud.FetchAudio(ctx, requestURL)
	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch audio: %w", fetchErr)
	}

	return &core.AudioStream{
		ReadCloser: body,
		Format:     FormatMP3,
	}, nil
}

// AvailableLocales returns the fixed supported locale tags. The query is
// pure; it returns the same set on every call.
func (s *Service) AvailableLocales() []string {
	return s.cloud.AvailableLocales()
}

// AvailableVoices returns the voices available for the given locale.
func (s *Service) AvailableVoices(locale string) []core.Voice {
	return s.cloud.AvailableVoices(locale)
}

// SupportedFormats returns the fixed supported audio formats.
func (s *Service) SupportedFormats() []core.AudioFormat {
	return s.cloud.AvailableFormats()
}

// validateRequest applies the validation chain in its contract order and
// returns the trimmed text for the outbound request.
func (s *Service) validateRequest(
	text string,
	voice core.Voice,
	requested core.AudioFormat,
) (string, error) {
	if s.baseURL == "" {
		return "", ErrBaseURLMissing
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrTextEmpty
	}

	if !s.voiceSupported(voice) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedVoice, voice.UID)
	}

	if !s.formatSupported(requested) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, requested.Codec)
	}

	return trimmed, nil
}

func (s *Service) voiceSupported(voice core.Voice) bool {
	for _, candidate := range s.cloud.AvailableVoices(voice.Locale) {
		if candidate.UID == voice.UID {
			return true
		}
	}

	return false
}

func (s *Service) formatSupported(requested core.AudioFormat) bool {
	for _, supported := range s.cloud.AvailableFormats() {
		if supported.IsCompatible(requested) {
			return true
		}
	}

	return false
}
