package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration for the journaling app.
type Config struct {
	Reply    ReplyConfig
	Deepgram DeepgramConfig
	Audio    AudioConfig
	Playback PlaybackConfig
	Store    StoreConfig
	Rules    RulesConfig
	Session  SessionConfig
	Log      LogConfig
}

type ReplyConfig struct {
	BaseURL string
	Path    string
	Timeout time.Duration
}

type DeepgramConfig struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool

	// Endpointing is the trailing silence that ends an utterance.
	Endpointing    time.Duration
	UtteranceEndMS int
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type PlaybackConfig struct {
	Command string
	Voice   string
	Rate    float64
}

type StoreConfig struct {
	Engine string
	Path   string
}

type RulesConfig struct {
	Path string
}

type SessionConfig struct {
	ChunkSize      int
	StreamingGrace time.Duration
	MaxCapture     time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// Load resolves configuration from an optional .env file, environment
// variables and defaults. Values already in the environment win over .env.
func Load() (Config, error) {
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}
	dataDir := filepath.Join(home, ".config", "ashasphere")

	engine := strings.ToLower(envOrDefault("ASHA_STORE", "sqlite"))

	cfg := Config{
		Reply: ReplyConfig{
			BaseURL: strings.TrimRight(envOrDefault("ASHA_API_BASE_URL", "http://localhost:8000"), "/"),
			Path:    envOrDefault("ASHA_REPLY_PATH", "/api/get-response"),
			Timeout: time.Duration(envOrDefaultInt("ASHA_REPLY_TIMEOUT_MS", 20000)) * time.Millisecond,
		},
		Deepgram: DeepgramConfig{
			APIKey:         strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:     envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:          envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			Language:       envOrDefault("DEEPGRAM_LANGUAGE", "en-IN"),
			SmartFormat:    envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
			Endpointing:    time.Duration(envOrDefaultInt("DEEPGRAM_ENDPOINTING_MS", 1200)) * time.Millisecond,
			UtteranceEndMS: envOrDefaultInt("DEEPGRAM_UTTERANCE_END_MS", 0),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("ASHA_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("ASHA_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("ASHA_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("ASHA_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("ASHA_CHANNELS", 1),
		},
		Playback: PlaybackConfig{
			Command: envOrDefault("ASHA_TTS_COMMAND", "espeak-ng"),
			Voice:   envOrDefault("ASHA_TTS_VOICE", "en-in"),
			Rate:    envOrDefaultFloat("ASHA_TTS_RATE", 0.9),
		},
		Store: StoreConfig{
			Engine: engine,
			Path:   envOrDefault("ASHA_DATA_FILE", defaultDataFile(dataDir, engine)),
		},
		Rules: RulesConfig{
			Path: envOrDefault("ASHA_RULES_FILE", filepath.Join(dataDir, "substitutions.rules")),
		},
		Session: SessionConfig{
			ChunkSize:      envOrDefaultInt("ASHA_AUDIO_CHUNK_SIZE", 4096),
			StreamingGrace: time.Duration(envOrDefaultInt("ASHA_STREAMING_GRACE_MS", 4000)) * time.Millisecond,
			MaxCapture:     time.Duration(envOrDefaultInt("ASHA_MAX_CAPTURE_MS", 60000)) * time.Millisecond,
		},
		Log: LogConfig{
			Level:  envOrDefault("ASHA_LOG_LEVEL", "info"),
			Format: envOrDefault("ASHA_LOG_FORMAT", "text"),
		},
	}

	if cfg.Reply.Timeout <= 0 {
		cfg.Reply.Timeout = 20 * time.Second
	}
	if !strings.HasPrefix(cfg.Reply.Path, "/") {
		cfg.Reply.Path = "/" + cfg.Reply.Path
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Playback.Rate <= 0 {
		cfg.Playback.Rate = 0.9
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 4096
	}
	if cfg.Session.StreamingGrace <= 0 {
		cfg.Session.StreamingGrace = 4 * time.Second
	}
	if cfg.Deepgram.Endpointing < 0 {
		cfg.Deepgram.Endpointing = 0
	}
	if cfg.Deepgram.UtteranceEndMS < 0 {
		cfg.Deepgram.UtteranceEndMS = 0
	}
	if cfg.Session.MaxCapture <= 0 {
		cfg.Session.MaxCapture = time.Minute
	}

	return cfg, nil
}

func defaultDataFile(dir string, engine string) string {
	switch engine {
	case "json":
		return filepath.Join(dir, "journal.json")
	default:
		return filepath.Join(dir, "journal.db")
	}
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
