package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"ASHA_API_BASE_URL", "ASHA_REPLY_PATH", "ASHA_REPLY_TIMEOUT_MS", "ASHA_STORE",
		"ASHA_DATA_FILE", "ASHA_RULES_FILE", "ASHA_TTS_COMMAND", "ASHA_TTS_VOICE",
		"ASHA_TTS_RATE", "ASHA_MAX_CAPTURE_MS", "ASHA_LOG_LEVEL", "ASHA_LOG_FORMAT",
		"DEEPGRAM_LANGUAGE", "DEEPGRAM_ENDPOINTING_MS", "DEEPGRAM_UTTERANCE_END_MS", "ASHA_STREAMING_GRACE_MS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Reply.BaseURL != "http://localhost:8000" || cfg.Reply.Path != "/api/get-response" {
		t.Fatalf("unexpected reply config: %+v", cfg.Reply)
	}
	if cfg.Reply.Timeout != 20*time.Second {
		t.Fatalf("unexpected reply timeout: %s", cfg.Reply.Timeout)
	}
	if cfg.Store.Engine != "sqlite" || cfg.Store.Path != filepath.Join(home, ".config", "ashasphere", "journal.db") {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Rules.Path != filepath.Join(home, ".config", "ashasphere", "substitutions.rules") {
		t.Fatalf("unexpected rules path: %q", cfg.Rules.Path)
	}
	if cfg.Playback.Command != "espeak-ng" || cfg.Playback.Voice != "en-in" || cfg.Playback.Rate != 0.9 {
		t.Fatalf("unexpected playback config: %+v", cfg.Playback)
	}
	if cfg.Deepgram.Language != "en-IN" || cfg.Deepgram.Endpointing != 1200*time.Millisecond || cfg.Deepgram.UtteranceEndMS != 0 {
		t.Fatalf("unexpected deepgram config: %+v", cfg.Deepgram)
	}
	if cfg.Session.MaxCapture != time.Minute {
		t.Fatalf("unexpected max capture: %s", cfg.Session.MaxCapture)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadRespectsOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ASHA_API_BASE_URL", "https://reply.example.com/")
	t.Setenv("ASHA_REPLY_PATH", "v2/reply")
	t.Setenv("ASHA_REPLY_TIMEOUT_MS", "1500")
	t.Setenv("ASHA_STORE", "JSON")
	t.Setenv("ASHA_DATA_FILE", "")
	t.Setenv("DEEPGRAM_API_KEY", "test-key")
	t.Setenv("DEEPGRAM_MODEL", "nova-3")
	t.Setenv("DEEPGRAM_SMART_FORMAT", "false")
	t.Setenv("DEEPGRAM_ENDPOINTING_MS", "800")
	t.Setenv("DEEPGRAM_UTTERANCE_END_MS", "1500")
	t.Setenv("ASHA_FFMPEG_COMMAND", "my-ffmpeg")
	t.Setenv("ASHA_AUDIO_INPUT_FORMAT", "alsa")
	t.Setenv("ASHA_AUDIO_INPUT_DEVICE", "mic0")
	t.Setenv("ASHA_SAMPLE_RATE", "22050")
	t.Setenv("ASHA_CHANNELS", "2")
	t.Setenv("ASHA_TTS_COMMAND", "say")
	t.Setenv("ASHA_TTS_RATE", "1.2")
	t.Setenv("ASHA_AUDIO_CHUNK_SIZE", "512")
	t.Setenv("ASHA_STREAMING_GRACE_MS", "25")
	t.Setenv("ASHA_MAX_CAPTURE_MS", "3000")
	t.Setenv("ASHA_LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Reply.BaseURL != "https://reply.example.com" || cfg.Reply.Path != "/v2/reply" || cfg.Reply.Timeout != 1500*time.Millisecond {
		t.Fatalf("unexpected reply config: %+v", cfg.Reply)
	}
	if cfg.Store.Engine != "json" || cfg.Store.Path != filepath.Join(home, ".config", "ashasphere", "journal.json") {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Deepgram.APIKey != "test-key" || cfg.Deepgram.Model != "nova-3" || cfg.Deepgram.SmartFormat || cfg.Deepgram.Endpointing != 800*time.Millisecond || cfg.Deepgram.UtteranceEndMS != 1500 {
		t.Fatalf("unexpected deepgram config: %+v", cfg.Deepgram)
	}
	if cfg.Audio.RecorderCommand != "my-ffmpeg" || cfg.Audio.InputFormat != "alsa" || cfg.Audio.InputDevice != "mic0" {
		t.Fatalf("unexpected audio config: %+v", cfg.Audio)
	}
	if cfg.Audio.SampleRate != 22050 || cfg.Audio.Channels != 2 {
		t.Fatalf("unexpected sample/channels: %+v", cfg.Audio)
	}
	if cfg.Playback.Command != "say" || cfg.Playback.Rate != 1.2 {
		t.Fatalf("unexpected playback config: %+v", cfg.Playback)
	}
	if cfg.Session.ChunkSize != 512 || cfg.Session.StreamingGrace != 25*time.Millisecond || cfg.Session.MaxCapture != 3*time.Second {
		t.Fatalf("unexpected session config: %+v", cfg.Session)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("unexpected log format: %q", cfg.Log.Format)
	}
}

func TestLoadInvalidNumericValuesFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ASHA_SAMPLE_RATE", "bad")
	t.Setenv("ASHA_CHANNELS", "-1")
	t.Setenv("ASHA_REPLY_TIMEOUT_MS", "-5")
	t.Setenv("ASHA_TTS_RATE", "fast")
	t.Setenv("ASHA_AUDIO_CHUNK_SIZE", "5")
	t.Setenv("ASHA_STREAMING_GRACE_MS", "bad")
	t.Setenv("ASHA_MAX_CAPTURE_MS", "0")
	t.Setenv("DEEPGRAM_SMART_FORMAT", "not-bool")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Audio.SampleRate != 16000 {
		t.Fatalf("expected default sample rate, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels != 1 {
		t.Fatalf("expected default channels, got %d", cfg.Audio.Channels)
	}
	if cfg.Reply.Timeout != 20*time.Second {
		t.Fatalf("expected default reply timeout, got %s", cfg.Reply.Timeout)
	}
	if cfg.Playback.Rate != 0.9 {
		t.Fatalf("expected default rate, got %v", cfg.Playback.Rate)
	}
	if cfg.Session.ChunkSize != 4096 {
		t.Fatalf("expected chunk size fallback, got %d", cfg.Session.ChunkSize)
	}
	if cfg.Session.StreamingGrace != 4*time.Second {
		t.Fatalf("expected default grace, got %s", cfg.Session.StreamingGrace)
	}
	if cfg.Session.MaxCapture != time.Minute {
		t.Fatalf("expected default max capture, got %s", cfg.Session.MaxCapture)
	}
	if !cfg.Deepgram.SmartFormat {
		t.Fatalf("expected default smart format true")
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	// Registered so the original value is restored after godotenv sets it.
	t.Setenv("ASHA_TTS_VOICE", "placeholder")
	if err := os.Unsetenv("ASHA_TTS_VOICE"); err != nil {
		t.Fatalf("unsetenv failed: %v", err)
	}
	t.Setenv("ASHA_LOG_LEVEL", "error")

	env := "ASHA_TTS_VOICE=en-gb\nASHA_LOG_LEVEL=debug\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Playback.Voice != "en-gb" {
		t.Fatalf("expected voice from .env, got %q", cfg.Playback.Voice)
	}
	if cfg.Log.Level != "error" {
		t.Fatalf("expected environment to win over .env, got %q", cfg.Log.Level)
	}
}
