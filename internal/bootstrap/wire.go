package bootstrap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/exec"

	"ashasphere/internal/audio"
	"ashasphere/internal/config"
	"ashasphere/internal/history"
	"ashasphere/internal/logging"
	"ashasphere/internal/ports"
	"ashasphere/internal/providers/companion"
	"ashasphere/internal/providers/deepgram"
	"ashasphere/internal/rules"
	"ashasphere/internal/store"
	"ashasphere/internal/usecase"
)

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// Capabilities records which devices were usable at startup. They are
// computed once and never re-probed.
type Capabilities struct {
	Capture  bool
	Playback bool
}

// Services is the assembled runtime graph.
type Services struct {
	Session      *usecase.Session
	Profile      *usecase.Profile
	History      *usecase.History
	Gateway      *history.Gateway
	Config       config.Config
	Logger       logging.Logger
	Capabilities Capabilities

	closer io.Closer
}

// Close releases the store.
func (s Services) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Storage is the persistence half of the graph, enough for read-only tools.
type Storage struct {
	Gateway *history.Gateway
	Profile *usecase.Profile
	History *usecase.History
	Config  config.Config
	Logger  logging.Logger

	closer io.Closer
}

func (s Storage) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// OpenStorage loads configuration and opens the configured store.
func OpenStorage(logOutput io.Writer) (Storage, error) {
	cfg, err := config.Load()
	if err != nil {
		return Storage{}, err
	}
	logger := logging.New(logOutput, cfg.Log.Level, cfg.Log.Format)
	return openStorage(cfg, logger)
}

func openStorage(cfg config.Config, logger logging.Logger) (Storage, error) {
	kv, err := store.NewByEngine(cfg.Store.Engine, cfg.Store.Path)
	if err != nil {
		return Storage{}, err
	}
	gateway := history.NewGateway(kv, logger)
	storage := Storage{
		Gateway: gateway,
		Profile: usecase.NewProfile(gateway, nil),
		History: usecase.NewHistory(gateway, nil),
		Config:  cfg,
		Logger:  logger,
	}
	if closer, ok := kv.(io.Closer); ok {
		storage.closer = closer
	}
	return storage, nil
}

// Build wires every backend dependency for the desktop runtime.
func Build(eventSink ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	rulesEngine, err := rules.Load(cfg.Rules.Path)
	if err != nil {
		return Services{}, err
	}

	storage, err := openStorage(cfg, logger)
	if err != nil {
		return Services{}, err
	}

	mic := audio.NewMicrophone(audio.MicrophoneConfig{Command: cfg.Audio.RecorderCommand}, logger)
	provider := deepgram.NewProvider(deepgram.Config{
		APIKey:         cfg.Deepgram.APIKey,
		APIBaseURL:     cfg.Deepgram.APIBaseURL,
		Model:          cfg.Deepgram.Model,
		Language:       cfg.Deepgram.Language,
		SmartFormat:    cfg.Deepgram.SmartFormat,
		Endpointing:    int(cfg.Deepgram.Endpointing.Milliseconds()),
		UtteranceEndMS: cfg.Deepgram.UtteranceEndMS,
	}, logger)
	speaker := audio.NewCommandSpeaker(audio.SpeakerConfig{
		Command: cfg.Playback.Command,
		Voice:   cfg.Playback.Voice,
		Rate:    cfg.Playback.Rate,
	}, logger)

	caps := probe(mic, provider, speaker)
	ctx := context.Background()
	if !caps.Capture {
		logger.Warn(ctx, "speech capture unavailable", "recorder", mic.Command(), "deepgram_key", provider.Available())
	}
	if !caps.Playback {
		logger.Warn(ctx, "speech playback unavailable", "synthesizer", speaker.Command())
	}
	logger.Info(ctx, "loaded transcript rules", "count", rulesEngine.Len())

	capture := usecase.NewCaptureCoordinator(
		mic,
		provider,
		rulesEngine,
		logger,
		usecase.CaptureConfig{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Streaming: ports.StreamingConfig{
				SampleRate:     cfg.Audio.SampleRate,
				Channels:       cfg.Audio.Channels,
				Encoding:       "linear16",
				InterimResults: true,
			},
			ChunkSize:     cfg.Session.ChunkSize,
			MaxCapture:    cfg.Session.MaxCapture,
			FinishTimeout: cfg.Session.StreamingGrace,
		},
		caps.Capture,
	)
	player := usecase.NewPlaybackCoordinator(speaker, logger, caps.Playback)
	replies := companion.NewClient(companion.Config{
		BaseURL: cfg.Reply.BaseURL,
		Path:    cfg.Reply.Path,
		Timeout: cfg.Reply.Timeout,
	}, &http.Client{}, logger)

	session := usecase.NewSession(capture, player, replies, storage.Gateway, eventSink, logger)

	return Services{
		Session:      session,
		Profile:      storage.Profile,
		History:      storage.History,
		Gateway:      storage.Gateway,
		Config:       cfg,
		Logger:       logger,
		Capabilities: caps,
		closer:       storage.closer,
	}, nil
}

type commander interface {
	Command() string
}

func probe(mic commander, provider *deepgram.Provider, speaker commander) Capabilities {
	return Capabilities{
		Capture:  provider.Available() && onPath(mic),
		Playback: onPath(speaker),
	}
}

func onPath(c commander) bool {
	_, err := lookPath(c.Command())
	return err == nil || errors.Is(err, exec.ErrDot)
}
