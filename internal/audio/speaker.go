package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"ashasphere/internal/logging"
)

// baseWordsPerMinute is espeak-ng's default speed; Rate scales it.
const baseWordsPerMinute = 175

// SpeakerConfig selects the synthesizer and its voice.
type SpeakerConfig struct {
	Command string
	Voice   string
	Rate    float64
}

// CommandSpeaker reads text aloud through an espeak-compatible command line
// synthesizer. Each Speak runs one child process.
type CommandSpeaker struct {
	cfg    SpeakerConfig
	logger logging.Logger
}

func NewCommandSpeaker(cfg SpeakerConfig, logger logging.Logger) *CommandSpeaker {
	if cfg.Command == "" {
		cfg.Command = "espeak-ng"
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &CommandSpeaker{cfg: cfg, logger: logger.With("component", "speaker")}
}

// Command returns the synthesizer binary so callers can probe for it.
func (s *CommandSpeaker) Command() string {
	return s.cfg.Command
}

// Speak blocks until the utterance finishes. Cancelling ctx kills the
// synthesizer and is not reported as an error.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, s.cfg.Command, speakArgs(s.cfg, text)...)
	stderr := &tailBuffer{limit: stderrTailSize}
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if ctx.Err() != nil {
		s.logger.Debug(ctx, "utterance interrupted")
		return nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.String() != "" {
			return fmt.Errorf("speak: %w: %s", err, stderr.String())
		}
		return fmt.Errorf("speak: %w", err)
	}
	return nil
}

func speakArgs(cfg SpeakerConfig, text string) []string {
	var args []string
	if cfg.Voice != "" {
		args = append(args, "-v", cfg.Voice)
	}
	wpm := int(math.Round(baseWordsPerMinute * cfg.Rate))
	if wpm < 80 {
		wpm = 80
	}
	args = append(args, "-s", strconv.Itoa(wpm), "--", text)
	return args
}
