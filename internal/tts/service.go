// Package tts runs the full synthesis pipeline: prompt framing, token
// generation, codec demultiplexing and waveform decoding, producing one
// complete audio result per request.
package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/go-maya-tts/internal/audio"
	"github.com/example/go-maya-tts/internal/codec"
	"github.com/example/go-maya-tts/internal/config"
	"github.com/example/go-maya-tts/internal/model"
	"github.com/example/go-maya-tts/internal/onnx"
	"github.com/example/go-maya-tts/internal/prompt"
	"github.com/example/go-maya-tts/internal/tokenizer"
)

// ErrEmptyText is returned when a synthesis request carries no text.
var ErrEmptyText = errors.New("synthesis text must not be empty")

// Capabilities describes the output contract of the service and the compute
// device it runs on.
type Capabilities struct {
	Streaming   bool   `json:"streaming"`
	SampleRate  int    `json:"sample_rate"`
	NumChannels int    `json:"num_channels"`
	Device      string `json:"device"`
}

// SynthesizedAudio is one complete synthesis result. Data holds little-endian
// 16-bit PCM; it is empty when generation produced no codec frames.
type SynthesizedAudio struct {
	RequestID   string
	Data        []byte
	SampleRate  int
	NumChannels int
}

// Duration reports the audio length.
func (a SynthesizedAudio) Duration() time.Duration {
	if a.SampleRate < 1 || a.NumChannels < 1 {
		return 0
	}

	samples := len(a.Data) / 2 / a.NumChannels

	return time.Duration(samples) * time.Second / time.Duration(a.SampleRate)
}

// Service drives the synthesis pipeline. The neural components load lazily
// on first use; a failed load is reported to the caller and retried on the
// next request rather than being cached.
type Service struct {
	cfg config.Config

	initMu sync.Mutex
	inited bool

	tok       tokenizer.Tokenizer
	generator model.Generator
	decoder   model.CodecDecoder
	device    model.Device
	closers   []func()

	// The codec decoder session is not safe for concurrent Run calls.
	decodeMu sync.Mutex

	hooks []audio.Hook
}

// NewService builds a service around the given configuration. No model
// loading happens until the first synthesis call.
func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

// NewServiceWith builds a service with pre-constructed pipeline components.
// Intended for tests and embedders that manage model loading themselves.
func NewServiceWith(cfg config.Config, tok tokenizer.Tokenizer, gen model.Generator, dec model.CodecDecoder) *Service {
	return &Service{
		cfg:       cfg,
		inited:    true,
		tok:       tok,
		generator: gen,
		decoder:   dec,
		device:    model.DeviceCPU,
	}
}

// SetHooks installs the audio post-processing chain applied to decoded
// samples before quantization.
func (s *Service) SetHooks(hooks ...audio.Hook) {
	s.hooks = hooks
}

// Capabilities implements the capability contract: non-streaming, 24 kHz
// mono output. Device reports the active compute target once the pipeline
// has loaded, and the configured preference before that.
func (s *Service) Capabilities() Capabilities {
	s.initMu.Lock()
	device := string(s.device)
	s.initMu.Unlock()

	if device == "" {
		device = s.cfg.Runtime.Device
	}

	return Capabilities{
		Streaming:   false,
		SampleRate:  audio.ExpectedSampleRate,
		NumChannels: audio.ExpectedChannels,
		Device:      device,
	}
}

// Synthesize produces one complete audio result for the text using the
// configured voice.
func (s *Service) Synthesize(ctx context.Context, text string) (SynthesizedAudio, error) {
	return s.SynthesizeVoice(ctx, text, s.cfg.TTS.Voice)
}

// SynthesizeVoice produces one complete audio result for the text using the
// given voice preset name or raw descriptor.
func (s *Service) SynthesizeVoice(ctx context.Context, text, voice string) (SynthesizedAudio, error) {
	if text == "" {
		return SynthesizedAudio{}, ErrEmptyText
	}

	if err := s.ensureInit(); err != nil {
		return SynthesizedAudio{}, err
	}

	requestID := uuid.NewString()
	start := time.Now()
	descriptor := ResolveVoice(voice)

	framer := prompt.Framer{Strict: s.cfg.TTS.StrictDescriptor}
	promptIDs, err := framer.Frame(s.tok, descriptor, text)
	if err != nil {
		return SynthesizedAudio{}, fmt.Errorf("frame prompt: %w", err)
	}

	mask := make([]int64, len(promptIDs))
	for i := range mask {
		mask[i] = 1
	}

	sequence, err := s.generator.Generate(ctx, model.GenerateRequest{
		InputIDs:      promptIDs,
		AttentionMask: mask,
		Temperature:   s.cfg.TTS.Temperature,
		TopP:          s.cfg.TTS.TopP,
		MaxNewTokens:  s.cfg.TTS.MaxNewTokens,
		PadTokenID:    prompt.TextEOTID,
	})
	if err != nil {
		return SynthesizedAudio{}, fmt.Errorf("generate tokens: %w", err)
	}

	if len(sequence) < len(promptIDs) {
		return SynthesizedAudio{}, fmt.Errorf("generator returned %d tokens for a %d token prompt",
			len(sequence), len(promptIDs))
	}

	continuation := sequence[len(promptIDs):]
	codes := codec.ExtractCodes(continuation)
	streams := codec.Demux(codes)

	result := SynthesizedAudio{
		RequestID:   requestID,
		SampleRate:  audio.ExpectedSampleRate,
		NumChannels: audio.ExpectedChannels,
	}

	// No complete frames means silence; the decoder is never invoked.
	if streams.Empty() {
		slog.Info("synthesis produced no audio frames",
			"request_id", requestID,
			"text_chars", len(text),
			"continuation_tokens", len(continuation),
		)

		return result, nil
	}

	s.decodeMu.Lock()
	samples, err := s.decoder.Decode(ctx, streams)
	s.decodeMu.Unlock()
	if err != nil {
		return SynthesizedAudio{}, fmt.Errorf("decode codes: %w", err)
	}

	samples = audio.ApplyHooks(samples, s.hooks...)
	result.Data = audio.EncodePCM16(samples)

	slog.Info("synthesis complete",
		"request_id", requestID,
		"text_chars", len(text),
		"frames", streams.Frames(),
		"samples", len(samples),
		"audio_ms", result.Duration().Milliseconds(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

// SynthesizeWAV runs SynthesizeVoice and wraps the result in a WAV
// container.
func (s *Service) SynthesizeWAV(ctx context.Context, text, voice string) ([]byte, SynthesizedAudio, error) {
	res, err := s.SynthesizeVoice(ctx, text, voice)
	if err != nil {
		return nil, SynthesizedAudio{}, err
	}

	data, err := audio.EncodeWAVFromPCM16(res.Data)
	if err != nil {
		return nil, SynthesizedAudio{}, fmt.Errorf("encode WAV: %w", err)
	}

	return data, res, nil
}

// ensureInit loads the tokenizer and the two ONNX sessions. Success is
// sticky; failure leaves the service uninitialized so the next call retries.
func (s *Service) ensureInit() error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.inited {
		return nil
	}

	start := time.Now()

	runtimeInfo, err := onnx.Bootstrap(s.cfg.Runtime)
	if err != nil {
		return fmt.Errorf("bootstrap ONNX runtime: %w", err)
	}

	device, err := model.SelectDevice(s.cfg.Runtime.Device)
	if err != nil {
		return err
	}

	tok, err := tokenizer.NewSentencePieceTokenizer(s.cfg.Paths.TokenizerModel)
	if err != nil {
		return fmt.Errorf("load tokenizer: %w", err)
	}

	sessions, err := onnx.NewSessionManager(s.cfg.Paths.ONNXManifest)
	if err != nil {
		return fmt.Errorf("load ONNX manifest: %w", err)
	}

	runnerCfg := onnx.RunnerConfig{
		LibraryPath:        runtimeInfo.LibraryPath,
		IntraOpThreads:     s.cfg.Runtime.Threads,
		ExecutionProviders: model.ExecutionProviders(device),
	}

	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	genMeta, ok := sessions.Session(model.GeneratorGraph)
	if !ok {
		return fmt.Errorf("manifest has no %q graph", model.GeneratorGraph)
	}

	genRunner, err := onnx.NewRunner(genMeta, runnerCfg)
	if err != nil {
		return fmt.Errorf("create generator session: %w", err)
	}
	closers = append(closers, genRunner.Close)

	decMeta, ok := sessions.Session(model.DecoderGraph)
	if !ok {
		cleanup()
		return fmt.Errorf("manifest has no %q graph", model.DecoderGraph)
	}

	decRunner, err := onnx.NewRunner(decMeta, runnerCfg)
	if err != nil {
		cleanup()
		return fmt.Errorf("create codec decoder session: %w", err)
	}
	closers = append(closers, decRunner.Close)

	s.tok = tok
	s.generator = model.NewONNXGenerator(genRunner)
	s.decoder = model.NewONNXCodecDecoder(decRunner)
	s.device = device
	s.closers = closers
	s.inited = true

	slog.Info("synthesis pipeline loaded",
		"device", string(device),
		"ort_library", runtimeInfo.LibraryPath,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// Close releases the loaded ONNX sessions. The service can be reused; the
// next synthesis call reloads.
func (s *Service) Close() {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	for _, c := range s.closers {
		c()
	}

	s.closers = nil
	s.inited = false
}
