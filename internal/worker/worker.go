// Package worker provides a NATS worker that processes speech synthesis jobs.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/webtts-service/internal/core"
	"github.com/book-expert/webtts-service/internal/webtts"
)

const handleMessageTimeout = 30 * time.Second

const audioFileExtension = ".mp3"

// ErrUnknownVoice indicates the event named a voice UID outside the fixed
// supported set.
var ErrUnknownVoice = errors.New("unknown voice")

// NatsWorker listens for synthesis jobs on a NATS subject and processes them.
type NatsWorker struct {
	natsConnection   *nats.Conn
	jetstreamContext nats.JetStreamContext
	subject          string
	store            core.ObjectStore
	synthesizer      core.SpeechSynthesizer
	log              *logger.Logger
}

// NewNatsWorker creates a new instance of a NATS worker.
func NewNatsWorker(
	natsConnection *nats.Conn,
	jetstreamContext nats.JetStreamContext,
	subject string,
	store core.ObjectStore,
	synthesizer core.SpeechSynthesizer,
	log *logger.Logger,
) (*NatsWorker, error) {
	return &NatsWorker{
		natsConnection:   natsConnection,
		jetstreamContext: jetstreamContext,
		subject:          subject,
		store:            store,
		synthesizer:      synthesizer,
		log:              log,
	}, nil
}

// Run starts the worker and begins listening for messages.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	event, err := w.parseEvent(msg)
	if err != nil {
		w.log.Error("Failed to parse event: %v", err)

		return
	}

	audioKey, processErr := w.processSynthesisJob(ctx, event)
	if processErr != nil {
		w.log.Error(
			"Failed to process synthesis job for workflow %s: %v",
			event.Header.WorkflowID,
			processErr,
		)

		return
	}

	replyEvent := &events.AudioChunkCreatedEvent{
		Header:     event.Header,
		AudioKey:   audioKey,
		PageNumber: event.PageNumber,
		TotalPages: event.TotalPages,
	}

	err = w.publishReplyEvent(msg, replyEvent)
	if err != nil {
		w.log.Error(
			"Failed to publish reply event for workflow %s: %v",
			event.Header.WorkflowID,
			err,
		)
	}
}

// processSynthesisJob downloads the text, synthesizes it through the cloud
// service, and uploads the resulting MP3.
func (w *NatsWorker) processSynthesisJob(
	ctx context.Context,
	event *events.TextProcessedEvent,
) (string, error) {
	voice, voiceErr := resolveVoice(event.Voice)
	if voiceErr != nil {
		return "", voiceErr
	}

	textData, err := w.store.Download(ctx, event.TextKey)
	if err != nil {
		return "", fmt.Errorf("failed to download text data for key '%s': %w", event.TextKey, err)
	}

	audioData, synthErr := w.synthesize(ctx, string(textData), voice)
	if synthErr != nil {
		return "", synthErr
	}

	audioKey := uuid.NewString() + audioFileExtension

	err = w.store.Upload(ctx, audioKey, audioData)
	if err != nil {
		return "", fmt.Errorf("failed to upload audio data for key '%s': %w", audioKey, err)
	}

	return audioKey, nil
}

// synthesize runs one synthesis call and drains the audio stream. The
// stream is closed on every path.
func (w *NatsWorker) synthesize(
	ctx context.Context,
	text string,
	voice core.Voice,
) ([]byte, error) {
	stream, synthErr := w.synthesizer.Synthesize(ctx, text, voice, webtts.FormatMP3)
	if synthErr != nil {
		return nil, fmt.Errorf("failed to synthesize text: %w", synthErr)
	}

	audioData, readErr := io.ReadAll(stream)

	closeErr := stream.Close()
	if closeErr != nil {
		w.log.Warn("Failed to close audio stream: %v", closeErr)
	}

	if readErr != nil {
		return nil, fmt.Errorf("failed to read audio stream: %w", readErr)
	}

	return audioData, nil
}

// publishReplyEvent marshals and responds with the AudioChunkCreatedEvent.
func (w *NatsWorker) publishReplyEvent(msg *nats.Msg, replyEvent *events.AudioChunkCreatedEvent) error {
	replyData, err := json.Marshal(replyEvent)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}

func (w *NatsWorker) parseEvent(msg *nats.Msg) (*events.TextProcessedEvent, error) {
	var event events.TextProcessedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &event, nil
}

// resolveVoice maps the event's voice UID to a supported voice. An empty
// UID selects the default locale's voice.
func resolveVoice(uid string) (core.Voice, error) {
	if uid == "" {
		return webtts.VoicesForLocale(webtts.DefaultLocale)[0], nil
	}

	voice, found := webtts.VoiceByUID(uid)
	if !found {
		return core.Voice{}, fmt.Errorf("%w: %q", ErrUnknownVoice, uid)
	}

	return voice, nil
}
