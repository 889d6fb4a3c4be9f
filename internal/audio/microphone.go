package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"ashasphere/internal/logging"
	"ashasphere/internal/ports"
)

const (
	defaultStartupGrace = 250 * time.Millisecond
	defaultStopTimeout  = 1200 * time.Millisecond
	stderrTailSize      = 4096
	// waitDelay bounds how long Wait lingers on pipes held by grandchildren.
	waitDelay = 500 * time.Millisecond
)

// MicrophoneConfig names the recorder binary and its timing.
type MicrophoneConfig struct {
	Command string
	// StartupGrace is how long the recorder must stay alive before the
	// session counts as started.
	StartupGrace time.Duration
	// StopTimeout bounds the wait after an interrupt before the recorder is
	// killed.
	StopTimeout time.Duration
}

// Microphone streams 16-bit little-endian PCM from an ffmpeg child process.
type Microphone struct {
	cfg    MicrophoneConfig
	logger logging.Logger
}

func NewMicrophone(cfg MicrophoneConfig, logger logging.Logger) *Microphone {
	if cfg.Command == "" {
		cfg.Command = "ffmpeg"
	}
	if cfg.StartupGrace <= 0 {
		cfg.StartupGrace = defaultStartupGrace
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = defaultStopTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Microphone{cfg: cfg, logger: logger.With("component", "microphone")}
}

// Command returns the recorder binary so callers can probe for it.
func (m *Microphone) Command() string {
	return m.cfg.Command
}

func (m *Microphone) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	cmd := exec.CommandContext(ctx, m.cfg.Command, captureArgs(cfg)...)
	stderr := &tailBuffer{limit: stderrTailSize}
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("recorder stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start recorder: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	timer := time.NewTimer(m.cfg.StartupGrace)
	defer timer.Stop()
	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("recorder exited before capture started: %w: %s", err, stderr.String())
		}
		return nil, errors.New("recorder exited before capture started")
	case <-timer.C:
	}

	m.logger.Debug(ctx, "microphone open", "pid", cmd.Process.Pid, "device", cfg.InputDevice)
	return &micSession{
		stdout:      stdout,
		stderr:      stderr,
		process:     cmd.Process,
		waitErr:     waitErr,
		stopTimeout: m.cfg.StopTimeout,
	}, nil
}

// captureArgs builds the ffmpeg invocation, filling defaults for unset
// fields.
func captureArgs(cfg ports.AudioConfig) []string {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	}
}

type micSession struct {
	stdout io.ReadCloser
	stderr *tailBuffer

	process     *os.Process
	waitErr     <-chan error
	stopTimeout time.Duration

	stopOnce sync.Once
	stopErr  error
}

func (s *micSession) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *micSession) Close() error {
	return s.Stop()
}

// Stop interrupts the recorder so it flushes, kills it if it lingers, and
// closes the pipe. Safe to call more than once.
func (s *micSession) Stop() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		timer := time.NewTimer(s.stopTimeout)
		defer timer.Stop()
		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = ignoreExitStatus(err)
			}
		case <-timer.C:
			if s.process != nil {
				_ = s.process.Kill()
			}
			if err, ok := <-s.waitErr; ok {
				s.stopErr = ignoreExitStatus(err)
			}
		}

		if err := s.stdout.Close(); err != nil && !errors.Is(err, os.ErrClosed) && s.stopErr == nil {
			s.stopErr = err
		}
		if s.stopErr != nil {
			if tail := s.stderr.String(); tail != "" {
				s.stopErr = fmt.Errorf("%w: %s", s.stopErr, tail)
			}
		}
	})
	return s.stopErr
}

// ignoreExitStatus drops the non-zero exit an interrupted recorder reports.
func ignoreExitStatus(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// tailBuffer keeps the last limit bytes written to it. exec writes stderr from
// its own goroutine, so access is locked.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.buf))
}
