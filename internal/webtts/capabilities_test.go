package webtts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/webtts-service/internal/webtts"
)

func TestSupportedVoices_OnePerLocale(t *testing.T) {
	t.Parallel()

	voices := webtts.SupportedVoices()
	require.Len(t, voices, len(webtts.SupportedLocales()))

	seen := make(map[string]struct{}, len(voices))
	for _, voice := range voices {
		assert.Equal(t, "WebTTS", voice.Label)
		assert.Equal(t, "webtts:"+voice.Locale, voice.UID)

		_, duplicate := seen[voice.Locale]
		assert.False(t, duplicate, "locale %s listed twice", voice.Locale)

		seen[voice.Locale] = struct{}{}
	}
}

func TestVoicesForLocale_CaseInsensitive(t *testing.T) {
	t.Parallel()

	voices := webtts.VoicesForLocale("EN-US")
	require.Len(t, voices, 1)
	assert.Equal(t, "en-us", voices[0].Locale)
}

func TestVoicesForLocale_Unsupported(t *testing.T) {
	t.Parallel()

	assert.Empty(t, webtts.VoicesForLocale("ja-jp"))
}

func TestVoiceByUID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		uid        string
		wantLocale string
		wantFound  bool
	}{
		{name: "known voice", uid: "webtts:de-de", wantLocale: "de-de", wantFound: true},
		{name: "mixed case", uid: "WebTTS:EN-GB", wantLocale: "en-gb", wantFound: true},
		{name: "unknown locale", uid: "webtts:ja-jp", wantLocale: "", wantFound: false},
		{name: "foreign prefix", uid: "polly:en-us", wantLocale: "", wantFound: false},
		{name: "empty", uid: "", wantLocale: "", wantFound: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			voice, found := webtts.VoiceByUID(testCase.uid)
			require.Equal(t, testCase.wantFound, found)

			if found {
				assert.Equal(t, testCase.wantLocale, voice.Locale)
			}
		})
	}
}

func TestSupportedFormats_MP3Only(t *testing.T) {
	t.Parallel()

	formats := webtts.SupportedFormats()
	require.Len(t, formats, 1)

	assert.Equal(t, "MP3", formats[0].Codec)
	assert.Equal(t, 44000, formats[0].SampleRateHz)
	assert.Equal(t, 16, formats[0].BitDepth)
}
