package webtts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/book-expert/logger"

	"github.com/book-expert/webtts-service/internal/core"
)

const (
	// File and directory permissions.
	filePermissions = 0o600
	dirPermissions  = 0o750
)

// Static errors.
var (
	ErrChunksPathEmpty = errors.New("chunks path cannot be empty")
	ErrOutputDirEmpty  = errors.New("output directory cannot be empty")
	ErrOutputPathEmpty = errors.New("output path cannot be empty")
	ErrNoChunksFound   = errors.New("no chunks found")
)

func newNoChunksFoundError(path string) error {
	return fmt.Errorf("%w in %s", ErrNoChunksFound, path)
}

const (
	outputFileFormat  = "chunk_%04d.mp3"
	errFmtChunkFailed = "chunk %d failed: %w"
)

// Engine drives batch synthesis: it reads a JSON file of text chunks,
// synthesizes each chunk through the Service, and writes sequentially named
// MP3 files. Chunks are processed in parallel with a bounded worker pool;
// failures of individual chunks do not stop the remaining work.
type Engine struct {
	synthesizer core.SpeechSynthesizer
	voice       core.Voice
	workers     int
	log         *logger.Logger
}

// NewEngine creates a batch engine that synthesizes with the given voice.
// A worker count below one is treated as one.
func NewEngine(
	synthesizer core.SpeechSynthesizer,
	voice core.Voice,
	workers int,
	log *logger.Logger,
) *Engine {
	if workers < 1 {
		workers = 1
	}

	return &Engine{
		synthesizer: synthesizer,
		voice:       voice,
		workers:     workers,
		log:         log,
	}
}

// ProcessChunks reads a JSON array of text chunks and synthesizes each one
// to outputDir. Output files are named sequentially (chunk_0001.mp3,
// chunk_0002.mp3, ...). Errors from individual chunks are logged and the
// last one is returned after all chunks have been attempted.
func (e *Engine) ProcessChunks(ctx context.Context, chunksPath, outputDir string) error {
	inputErr := e.validateChunkInputs(chunksPath, outputDir)
	if inputErr != nil {
		return inputErr
	}

	chunks, prepErr := e.prepareChunkProcessing(chunksPath, outputDir)
	if prepErr != nil {
		return prepErr
	}

	e.log.Info("Processing %d chunks with %d workers", len(chunks), e.workers)

	return e.processChunksParallel(ctx, chunks, outputDir)
}

// ProcessSingleChunk synthesizes one text string and writes the audio to
// outputPath, creating the parent directory if needed.
func (e *Engine) ProcessSingleChunk(ctx context.Context, text, outputPath string) error {
	if outputPath == "" {
		return ErrOutputPathEmpty
	}

	dirErr := os.MkdirAll(filepath.Dir(outputPath), dirPermissions)
	if dirErr != nil {
		return fmt.Errorf("failed to create output directory: %w", dirErr)
	}

	audioData, synthErr := e.synthesizeChunk(ctx, text)
	if synthErr != nil {
		return synthErr
	}

	writeErr := os.WriteFile(outputPath, audioData, filePermissions)
	if writeErr != nil {
		return fmt.Errorf("failed to write audio file: %w", writeErr)
	}

	e.log.Info("Generated audio: %s (%d bytes)", outputPath, len(audioData))

	return nil
}

func (e *Engine) validateChunkInputs(chunksPath, outputDir string) error {
	if chunksPath == "" {
		return ErrChunksPathEmpty
	}

	if outputDir == "" {
		return ErrOutputDirEmpty
	}

	return nil
}

func (e *Engine) prepareChunkProcessing(
	chunksPath, outputDir string,
) ([]string, error) {
	chunks, chunksErr := e.readChunksFile(chunksPath)
	if chunksErr != nil {
		return nil, fmt.Errorf("failed to read chunks: %w", chunksErr)
	}

	dirErr := os.MkdirAll(outputDir, dirPermissions)
	if dirErr != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", dirErr)
	}

	return chunks, nil
}

// synthesizeChunk runs one synthesis call and drains the resulting stream.
// The stream is closed on every path.
func (e *Engine) synthesizeChunk(ctx context.Context, text string) ([]byte, error) {
	stream, synthErr := e.synthesizer.Synthesize(ctx, text, e.voice, FormatMP3)
	if synthErr != nil {
		return nil, fmt.Errorf("failed to synthesize chunk: %w", synthErr)
	}

	audioData, readErr := io.ReadAll(stream)

	closeErr := stream.Close()
	if closeErr != nil {
		e.log.Warn("Failed to close audio stream: %v", closeErr)
	}

	if readErr != nil {
		return nil, fmt.Errorf("failed to read audio stream: %w", readErr)
	}

	return audioData, nil
}

// readChunksFile reads and parses a JSON file containing an array of text
// chunks to synthesize.
func (e *Engine) readChunksFile(chunksPath string) ([]string, error) {
	data, err := os.ReadFile(chunksPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var chunks []string

	err = parseJSON(data, &chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chunks JSON: %w", err)
	}

	if len(chunks) == 0 {
		return nil, newNoChunksFoundError(chunksPath)
	}

	return chunks, nil
}

// processChunksParallel synthesizes chunks concurrently with a bounded
// worker pool so the cloud service is not overwhelmed.
func (e *Engine) processChunksParallel(
	ctx context.Context,
	chunks []string,
	outputDir string,
) error {
	var (
		waitGroup sync.WaitGroup
		mutex     sync.Mutex
		lastError error
	)

	workerPool := make(chan struct{}, e.workers)

	for chunkIndex, chunk := range chunks {
		waitGroup.Add(1)

		go func(index int, text string) {
			defer waitGroup.Done()

			workerPool <- struct{}{}

			defer func() { <-workerPool }()

			outputPath := filepath.Join(
				outputDir,
				fmt.Sprintf(outputFileFormat, index+1),
			)

			err := e.ProcessSingleChunk(ctx, text, outputPath)
			if err != nil {
				mutex.Lock()

				lastError = fmt.Errorf(errFmtChunkFailed, index+1, err)

				mutex.Unlock()
				e.log.Error("Failed to process chunk %d: %v", index+1, err)

				return
			}

			e.log.Info("Processed chunk %d/%d", index+1, len(chunks))
		}(chunkIndex, chunk)
	}

	waitGroup.Wait()
	close(workerPool)

	return lastError
}
