package main

import (
	"strings"
	"testing"
)

// TestValidateFlags verifies the business logic for required and conflicting
// arguments.
func TestValidateFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		expectedError string
		flags         appFlags
		wantErr       bool
	}{
		{
			name: "success with text flag",
			flags: appFlags{
				text:    "some text",
				chunks:  "",
				locale:  "en-us",
				output:  "",
				verbose: false,
				list:    false,
			},
			wantErr:       false,
			expectedError: "",
		},
		{
			name: "success with chunks flag",
			flags: appFlags{
				text:    "",
				chunks:  "file.json",
				locale:  "en-us",
				output:  "",
				verbose: false,
				list:    false,
			},
			wantErr:       false,
			expectedError: "",
		},
		{
			name: "error with both flags",
			flags: appFlags{
				text:    "some text",
				chunks:  "file.json",
				locale:  "en-us",
				output:  "",
				verbose: false,
				list:    false,
			},
			wantErr:       true,
			expectedError: errCannotSpecifyBoth,
		},
		{
			name: "error with no flags",
			flags: appFlags{
				text:    "",
				chunks:  "",
				locale:  "en-us",
				output:  "",
				verbose: false,
				list:    false,
			},
			wantErr:       true,
			expectedError: errEitherTextOrChunks,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := validateFlags(testCase.flags)

			if !testCase.wantErr {
				if err != nil {
					t.Errorf("Did not expect an error, but got: %v", err)
				}

				return
			}

			if err == nil {
				t.Error("Expected an error but got none")

				return
			}

			if !strings.Contains(err.Error(), testCase.expectedError) {
				t.Errorf(
					"Expected error to contain %q, but got %q",
					testCase.expectedError,
					err.Error(),
				)
			}
		})
	}
}

// TestResolveVoice verifies locale-to-voice resolution for the client.
func TestResolveVoice(t *testing.T) {
	t.Parallel()

	voice, err := resolveVoice("fr-fr")
	if err != nil {
		t.Fatalf("resolveVoice failed: %v", err)
	}

	if voice.UID != "webtts:fr-fr" {
		t.Errorf("Expected voice UID webtts:fr-fr, got %q", voice.UID)
	}

	_, err = resolveVoice("ja-jp")
	if err == nil {
		t.Error("Expected error for unsupported locale")
	}

	if err != nil && !strings.Contains(err.Error(), errUnsupportedLocale) {
		t.Errorf("Expected unsupported locale error, got: %v", err)
	}
}
