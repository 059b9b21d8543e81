package webtts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/webtts-service/internal/core"
)

// Query parameter names of the cloud service.
const (
	queryParamLocale  = "lng"
	queryParamMessage = "msg"
)

// HTTP headers and content types.
const (
	headerContentType    = "Content-Type"
	contentTypeTextPlain = "text/plain"
)

// errorBodyLimit caps how much of an in-band error body is read for the
// error message. Shorter bodies are decoded as-is, without padding or
// waiting for more bytes.
const errorBodyLimit = 256

// Static errors.
var (
	// ErrTransport indicates the service answered with a non-OK HTTP status.
	ErrTransport = errors.New("service returned non-OK status")
	// ErrRemoteService indicates the service answered HTTP 200 but signaled
	// an error in-band via a text/plain body.
	ErrRemoteService = errors.New("service returned an error")
)

// CloudClient talks to the WebTTS cloud endpoint. It implements
// core.CloudAPI and is the only concrete implementation of that capability
// set.
type CloudClient struct {
	httpClient *http.Client
	log        *logger.Logger
}

// NewCloudClient creates a client for the cloud service. A zero timeout
// disables the request deadline; the remote contract itself has none.
func NewCloudClient(timeout time.Duration, log *logger.Logger) *CloudClient {
	return &CloudClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// NewCloudClientWithHTTPClient creates a client around a caller-supplied
// *http.Client. This constructor is primarily for testing purposes, allowing
// injection of a recording transport.
func NewCloudClientWithHTTPClient(
	httpClient *http.Client,
	log *logger.Logger,
) *CloudClient {
	return &CloudClient{
		httpClient: httpClient,
		log:        log,
	}
}

// BuildRequestURL constructs the request URL for the cloud service. The
// text is URL-encoded (UTF-8) because it travels as a query parameter.
//
// The codec argument is accepted for interface compatibility but is not part
// of the query; the service only honors lng and msg. Do not add it.
func (c *CloudClient) BuildRequestURL(baseURL, text, locale, _ string) string {
	encodedMsg := url.QueryEscape(text)

	return baseURL +
		"?" + queryParamLocale + "=" + locale +
		"&" + queryParamMessage + "=" + encodedMsg
}

// FetchAudio issues a GET request to the given URL and classifies the
// response. The service ALWAYS answers HTTP 200; errors are signaled with a
// text/plain content type and the message in the body. Any other status is a
// transport failure.
//
// On success the open response body is returned; the caller owns it and must
// close it after consuming the audio. On every failure path the body is
// closed here.
func (c *CloudClient) FetchAudio(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	c.log.Info("Calling %s", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call service: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeBody(resp.Body, c.log)
		c.log.Error("Call %s returned HTTP %d", rawURL, resp.StatusCode)

		return nil, fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
	}

	contentType := resp.Header.Get(headerContentType)
	if strings.Contains(contentType, contentTypeTextPlain) {
		return nil, c.readInBandError(resp.Body)
	}

	return resp.Body, nil
}

// AvailableLocales returns the fixed supported locale tags.
func (c *CloudClient) AvailableLocales() []string {
	return SupportedLocales()
}

// AvailableVoices returns the voices for the given locale.
func (c *CloudClient) AvailableVoices(locale string) []core.Voice {
	return VoicesForLocale(locale)
}

// AvailableFormats returns the fixed supported audio formats.
func (c *CloudClient) AvailableFormats() []core.AudioFormat {
	return SupportedFormats()
}

// readInBandError extracts the error message that the service delivered
// despite the OK status. At most errorBodyLimit bytes are decoded; the body
// is closed before the error is returned.
func (c *CloudClient) readInBandError(body io.ReadCloser) error {
	message, readErr := io.ReadAll(io.LimitReader(body, errorBodyLimit))

	closeBody(body, c.log)

	if readErr != nil {
		return fmt.Errorf("%w: failed to read error body: %w", ErrRemoteService, readErr)
	}

	return fmt.Errorf("%w: %s", ErrRemoteService, string(message))
}

func closeBody(body io.ReadCloser, log *logger.Logger) {
	closeErr := body.Close()
	if closeErr != nil {
		log.Warn("Failed to close response body: %v", closeErr)
	}
}
