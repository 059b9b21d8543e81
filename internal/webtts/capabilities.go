// Package webtts implements the client for the WebTTS cloud service: request
// URL construction, response classification, and the synthesis entry point
// with its validation chain.
package webtts

import (
	"strings"

	"github.com/book-expert/webtts-service/internal/core"
)

// Voice UID conventions.
const (
	voiceUIDPrefix = "webtts:"
	voiceLabel     = "WebTTS"
)

// MP3 is the only audio format the service produces: MPEG-1 Layer III at a
// fixed 44000 Hz sample rate and 16-bit depth, no container.
const (
	CodecMP3        = "MP3"
	mp3SampleRateHz = 44000
	mp3BitDepth     = 16
)

// FormatMP3 is the single supported output format.
var FormatMP3 = core.AudioFormat{
	Codec:        CodecMP3,
	SampleRateHz: mp3SampleRateHz,
	BitDepth:     mp3BitDepth,
}

// supportedLocales is the fixed set of locales the service accepts. The
// tables are static; they are never negotiated with the remote service.
var supportedLocales = []string{
	"en-us",
	"en-gb",
	"de-de",
	"es-es",
	"fr-fr",
	"it-it",
}

// DefaultLocale is used when a job does not name a voice.
const DefaultLocale = "en-us"

// SupportedLocales returns the fixed set of supported locale tags.
// The result is a copy; callers cannot mutate the table.
func SupportedLocales() []string {
	locales := make([]string, len(supportedLocales))
	copy(locales, supportedLocales)

	return locales
}

// SupportedVoices returns the fixed voice set: exactly one synthetic voice
// per supported locale.
func SupportedVoices() []core.Voice {
	voices := make([]core.Voice, 0, len(supportedLocales))
	for _, locale := range supportedLocales {
		voices = append(voices, voiceForLocale(locale))
	}

	return voices
}

// VoicesForLocale returns the voices available for the given locale tag.
// The lookup is case-insensitive. An unsupported locale yields an empty set.
func VoicesForLocale(locale string) []core.Voice {
	for _, supported := range supportedLocales {
		if strings.EqualFold(supported, locale) {
			return []core.Voice{voiceForLocale(supported)}
		}
	}

	return nil
}

// VoiceByUID resolves a voice UID of the form "webtts:<locale>". It reports
// false for UIDs outside the fixed voice set.
func VoiceByUID(uid string) (core.Voice, bool) {
	locale, found := strings.CutPrefix(strings.ToLower(uid), voiceUIDPrefix)
	if !found {
		return core.Voice{}, false
	}

	voices := VoicesForLocale(locale)
	if len(voices) == 0 {
		return core.Voice{}, false
	}

	return voices[0], true
}

// SupportedFormats returns the fixed set of audio formats, currently MP3 only.
func SupportedFormats() []core.AudioFormat {
	return []core.AudioFormat{FormatMP3}
}

func voiceForLocale(locale string) core.Voice {
	return core.Voice{
		UID:    voiceUIDPrefix + locale,
		Label:  voiceLabel,
		Locale: locale,
	}
}
