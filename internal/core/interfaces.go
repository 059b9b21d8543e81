// Package core defines the domain types and interfaces for the webtts-service.
package core

import (
	"context"
	"io"
	"strings"
)

// Voice identifies one synthetic voice offered by the cloud service.
// The UID follows the "webtts:<locale>" convention so that a voice can be
// addressed by a single string in job events and configuration.
type Voice struct {
	UID    string
	Label  string
	Locale string
}

// AudioFormat describes an audio encoding the service can produce or a
// caller can request. SampleRateHz and BitDepth are informational; format
// compatibility is decided by codec alone.
type AudioFormat struct {
	Codec        string
	SampleRateHz int
	BitDepth     int
}

// IsCompatible reports whether a requested format can be served by this
// format. An empty requested codec acts as a wildcard. Sample rate and bit
// depth differences never block a request.
func (f AudioFormat) IsCompatible(requested AudioFormat) bool {
	if requested.Codec == "" {
		return true
	}

	return strings.EqualFold(f.Codec, requested.Codec)
}

// AudioStream is an open audio payload returned by a successful synthesis.
// Ownership of the underlying stream passes to the caller, which must fully
// consume it and then close it.
type AudioStream struct {
	io.ReadCloser

	Format AudioFormat
}

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// CloudAPI is the single capability set of the remote text-to-speech cloud
// service: request URL construction, audio retrieval, and the static
// capability tables used to populate voice-selection surfaces.
type CloudAPI interface {
	BuildRequestURL(baseURL, text, locale, codec string) string
	FetchAudio(ctx context.Context, url string) (io.ReadCloser, error)
	AvailableLocales() []string
	AvailableVoices(locale string) []Voice
	AvailableFormats() []AudioFormat
}

// SpeechSynthesizer defines the synthesis entry point consumed by the worker
// and the client CLI.
type SpeechSynthesizer interface {
	Synthesize(
		ctx context.Context,
		text string,
		voice Voice,
		requested AudioFormat,
	) (*AudioStream, error)
}
