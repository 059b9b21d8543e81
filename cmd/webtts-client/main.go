package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/webtts-service/internal/config"
	"github.com/book-expert/webtts-service/internal/core"
	"github.com/book-expert/webtts-service/internal/webtts"
)

// Flag descriptions.
const (
	flagTextDesc    = "Text to convert to speech"
	flagChunksDesc  = "JSON file containing text chunks to process"
	flagLocaleDesc  = "Locale tag for the voice (e.g. en-us)"
	flagOutputDesc  = "Output file path (.mp3) or directory for chunks"
	flagVerboseDesc = "Enable verbose logging"
	flagListDesc    = "List supported locales and voices and exit"
)

// Flag names.
const (
	flagText    = "text"
	flagChunks  = "chunks"
	flagLocale  = "locale"
	flagOutput  = "output"
	flagVerbose = "verbose"
	flagList    = "list"
)

// Error and log messages.
const (
	errEitherTextOrChunks = "Either --text or --chunks must be provided"
	errCannotSpecifyBoth  = "Cannot specify both --text and --chunks"
	errUnsupportedLocale  = "unsupported locale"
)

// File names.
const (
	logFileNameDefault = "webtts-client.log"
	logFileNameVerbose = "webtts-client-verbose.log"
	defaultOutputFile  = "output.mp3"
)

const synthesisTimeout = 60 * time.Second

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	text    string
	chunks  string
	locale  string
	output  string
	verbose bool
	list    bool
}

func main() {
	err := run()
	if err != nil {
		// A logger might not be initialized yet, so use the standard log package.
		log.Fatalf("Error: %v", err)
	}
}

// run is the main application entry point, returning an error on failure.
func run() error {
	flags := parseFlags()

	if flags.list {
		printCapabilities()

		return nil
	}

	validationErr := validateFlags(flags)
	if validationErr != nil {
		flag.Usage()

		return validationErr
	}

	cfg, appLogger, err := setup(flags.verbose)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := appLogger.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	voice, voiceErr := resolveVoice(flags.locale)
	if voiceErr != nil {
		return voiceErr
	}

	timeout := time.Duration(cfg.WebTTS.TimeoutSeconds) * time.Second
	cloud := webtts.NewCloudClient(timeout, appLogger)
	service := webtts.NewService(cfg.WebTTS.BaseURL, cloud, appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), synthesisTimeout)
	defer cancel()

	if flags.text != "" {
		return processSingleText(ctx, service, cfg, appLogger, voice, flags)
	}

	return processChunks(ctx, service, cfg, appLogger, voice, flags)
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags
	flag.StringVar(&flags.text, flagText, "", flagTextDesc)
	flag.StringVar(&flags.chunks, flagChunks, "", flagChunksDesc)
	flag.StringVar(&flags.locale, flagLocale, webtts.DefaultLocale, flagLocaleDesc)
	flag.StringVar(&flags.output, flagOutput, "", flagOutputDesc)
	flag.BoolVar(&flags.verbose, flagVerbose, false, flagVerboseDesc)
	flag.BoolVar(&flags.list, flagList, false, flagListDesc)
	flag.Parse()

	return flags
}

// validateFlags enforces that exactly one input mode is selected.
func validateFlags(flags appFlags) error {
	if flags.text == "" && flags.chunks == "" {
		return errors.New(errEitherTextOrChunks)
	}

	if flags.text != "" && flags.chunks != "" {
		return errors.New(errCannotSpecifyBoth)
	}

	return nil
}

// setup loads config and initializes the logger.
func setup(verbose bool) (*config.Config, *logger.Logger, error) {
	bootstrapLog, err := logger.New(os.TempDir(), "webtts-client-bootstrap.log")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create bootstrap logger: %w", err)
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logFileName := logFileNameDefault
	if verbose {
		logFileName = logFileNameVerbose
	}

	appLogger, err := logger.New(cfg.Paths.BaseLogsDir, logFileName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, appLogger, nil
}

// resolveVoice maps the locale flag to the locale's single voice.
func resolveVoice(locale string) (core.Voice, error) {
	voices := webtts.VoicesForLocale(locale)
	if len(voices) == 0 {
		return core.Voice{}, fmt.Errorf("%s: %q", errUnsupportedLocale, locale)
	}

	return voices[0], nil
}

// printCapabilities writes the fixed capability tables to stdout.
func printCapabilities() {
	fmt.Println("Supported locales and voices:")

	for _, locale := range webtts.SupportedLocales() {
		for _, voice := range webtts.VoicesForLocale(locale) {
			fmt.Printf("  %s  %s (%s)\n", locale, voice.Label, voice.UID)
		}
	}

	fmt.Println("Supported formats:")

	for _, format := range webtts.SupportedFormats() {
		fmt.Printf(
			"  %s %d Hz %d-bit\n",
			format.Codec,
			format.SampleRateHz,
			format.BitDepth,
		)
	}
}

// processSingleText synthesizes one text string into a single MP3 file.
func processSingleText(
	ctx context.Context,
	service *webtts.Service,
	cfg *config.Config,
	appLogger *logger.Logger,
	voice core.Voice,
	flags appFlags,
) error {
	outputPath := flags.output
	if outputPath == "" {
		outputPath = filepath.Join(cfg.Paths.OutputDir, defaultOutputFile)
	}

	appLogger.Info("Processing single text to: %s", outputPath)

	stream, err := service.Synthesize(ctx, flags.text, voice, webtts.FormatMP3)
	if err != nil {
		appLogger.Error("Failed to synthesize text: %v", err)

		return fmt.Errorf("failed to synthesize text: %w", err)
	}

	writeErr := writeStream(stream, outputPath, appLogger)
	if writeErr != nil {
		return writeErr
	}

	appLogger.Info("Successfully generated speech: %s", outputPath)
	fmt.Printf("Generated: %s\n", outputPath)

	return nil
}

// processChunks synthesizes a JSON file of text chunks into a directory of
// MP3 files.
func processChunks(
	ctx context.Context,
	service *webtts.Service,
	cfg *config.Config,
	appLogger *logger.Logger,
	voice core.Voice,
	flags appFlags,
) error {
	outputDir := flags.output
	if outputDir == "" {
		outputDir = cfg.Paths.OutputDir
	}

	appLogger.Info("Processing chunks from: %s", flags.chunks)
	appLogger.Info("Output directory: %s", outputDir)

	engine := webtts.NewEngine(service, voice, cfg.WebTTS.Workers, appLogger)

	err := engine.ProcessChunks(ctx, flags.chunks, outputDir)
	if err != nil {
		appLogger.Error("Failed to process chunks: %v", err)

		return fmt.Errorf("failed to process chunks: %w", err)
	}

	appLogger.Info("Successfully processed all chunks")
	fmt.Printf("Generated audio files in: %s\n", outputDir)

	return nil
}

// writeStream drains an audio stream into a file, closing the stream on
// every path.
func writeStream(stream io.ReadCloser, outputPath string, appLogger *logger.Logger) error {
	audioData, readErr := io.ReadAll(stream)

	closeErr := stream.Close()
	if closeErr != nil {
		appLogger.Warn("Failed to close audio stream: %v", closeErr)
	}

	if readErr != nil {
		return fmt.Errorf("failed to read audio stream: %w", readErr)
	}

	mkdirErr := os.MkdirAll(filepath.Dir(outputPath), 0o750)
	if mkdirErr != nil {
		return fmt.Errorf("failed to create output directory: %w", mkdirErr)
	}

	writeErr := os.WriteFile(outputPath, audioData, 0o600)
	if writeErr != nil {
		return fmt.Errorf("failed to write audio file: %w", writeErr)
	}

	return nil
}
