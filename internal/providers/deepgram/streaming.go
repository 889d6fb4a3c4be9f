package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"ashasphere/internal/domain"
	"ashasphere/internal/logging"
	"ashasphere/internal/ports"
)

const defaultAPIBaseURL = "https://api.deepgram.com/v1"

// ErrMissingAPIKey is returned when streaming is attempted without a key.
var ErrMissingAPIKey = errors.New("DEEPGRAM_API_KEY is not configured")

var errSendClosed = errors.New("audio stream is already closed")

// Config controls the listen connection.
type Config struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
	// Endpointing is the silence in milliseconds after which Deepgram marks
	// speech final. Zero keeps the server default.
	Endpointing int
	// UtteranceEndMS enables UtteranceEnd messages. Zero disables them.
	UtteranceEndMS int
}

// Provider implements ports.TranscriptionProvider for Deepgram.
type Provider struct {
	cfg    Config
	dialer *websocket.Dialer
	logger logging.Logger
}

func NewProvider(cfg Config, logger logging.Logger) *Provider {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Provider{cfg: cfg, dialer: websocket.DefaultDialer, logger: logger.With("component", "deepgram")}
}

// Available reports whether an API key is configured.
func (p *Provider) Available() bool {
	return strings.TrimSpace(p.cfg.APIKey) != ""
}

func (p *Provider) StartStreaming(ctx context.Context, cfg ports.StreamingConfig) (ports.StreamingSession, error) {
	if !p.Available() {
		return nil, ErrMissingAPIKey
	}

	listenURL, err := buildListenURL(p.cfg, cfg)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+p.cfg.APIKey)

	conn, resp, err := p.dialer.DialContext(ctx, listenURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connect to deepgram (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("connect to deepgram: %w", err)
	}
	p.logger.Debug(ctx, "listen connection open", "model", p.cfg.Model, "language", p.cfg.Language)

	session := newStreamingSession(conn, p.logger)
	go func() {
		select {
		case <-ctx.Done():
			_ = session.Close()
		case <-session.done:
		}
	}()
	return session, nil
}

type streamingSession struct {
	conn   *websocket.Conn
	logger logging.Logger

	events  chan domain.TranscriptEvent
	audio   chan []byte
	closing chan struct{}
	done    chan struct{}

	wg sync.WaitGroup

	errMu sync.Mutex
	err   error

	closeSendOnce sync.Once
	closeOnce     sync.Once
	sendMu        sync.RWMutex
	sendClosed    bool
}

func newStreamingSession(conn *websocket.Conn, logger logging.Logger) *streamingSession {
	s := &streamingSession{
		conn:    conn,
		logger:  logger,
		events:  make(chan domain.TranscriptEvent, 64),
		audio:   make(chan []byte, 32),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	s.wg.Add(2)
	go s.readLoop()
	go s.writeLoop()
	go func() {
		s.wg.Wait()
		close(s.events)
		close(s.done)
		_ = conn.Close()
	}()
	return s
}

func (s *streamingSession) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.sendClosed {
		return errSendClosed
	}

	copied := append([]byte(nil), chunk...)
	select {
	case s.audio <- copied:
		return nil
	case <-s.done:
		if err := s.waitErr(); err != nil {
			return err
		}
		return errors.New("listen connection closed")
	}
}

// CloseSend flushes queued audio and asks Deepgram to finalize. Results keep
// arriving on Events until the server closes the connection.
func (s *streamingSession) CloseSend() error {
	s.closeSendOnce.Do(func() {
		s.sendMu.Lock()
		s.sendClosed = true
		close(s.audio)
		s.sendMu.Unlock()
	})
	return nil
}

func (s *streamingSession) Events() <-chan domain.TranscriptEvent {
	return s.events
}

func (s *streamingSession) Wait() error {
	<-s.done
	return s.waitErr()
}

// Close tears the connection down without waiting for final results.
func (s *streamingSession) Close() error {
	s.closeOnce.Do(func() {
		close(s.closing)
		_ = s.conn.Close()
		_ = s.CloseSend()
	})
	<-s.done
	return s.waitErr()
}

func (s *streamingSession) waitErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *streamingSession) setErr(err error) {
	if err == nil {
		return
	}
	if isNormalClose(err) {
		return
	}
	if s.isClosing() {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// isNormalClose reports whether err, possibly wrapped, is the server ending
// the stream after CloseStream.
func isNormalClose(err error) bool {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		return false
	}
	switch closeErr.Code {
	case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
		return true
	default:
		return false
	}
}

func (s *streamingSession) isClosing() bool {
	if s.closing == nil {
		return false
	}
	select {
	case <-s.closing:
		return true
	default:
		return false
	}
}

func (s *streamingSession) writeLoop() {
	defer s.wg.Done()

	for {
		select {
		case chunk, ok := <-s.audio:
			if !ok {
				if err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
					s.setErr(fmt.Errorf("finalize stream: %w", err))
				}
				return
			}
			if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
				s.setErr(fmt.Errorf("send audio: %w", err))
				s.drainAudio()
				return
			}
		case <-s.closing:
			s.drainAudio()
			return
		}
	}
}

// drainAudio unblocks senders once nothing will write to the connection.
func (s *streamingSession) drainAudio() {
	go func() {
		for range s.audio {
		}
	}()
}

func (s *streamingSession) readLoop() {
	defer s.wg.Done()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.setErr(fmt.Errorf("read listen message: %w", err))
			return
		}

		event, ok, err := decodeMessage(payload)
		if err != nil {
			s.setErr(err)
			return
		}
		if !ok {
			continue
		}
		if !s.emit(event) {
			return
		}
	}
}

// emit blocks until the consumer takes the event so no final text is lost.
// It reports false once the session is being torn down.
func (s *streamingSession) emit(event domain.TranscriptEvent) bool {
	select {
	case s.events <- event:
		return true
	case <-s.closing:
		s.logger.Debug(context.Background(), "dropping transcript event after close", "kind", event.Kind)
		return false
	}
}

type alternative struct {
	Transcript string `json:"transcript"`
}

type listenMessage struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	Description string `json:"description"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []alternative `json:"alternatives"`
	} `json:"channel"`
}

// decodeMessage maps one listen message to a transcript event. ok is false
// for messages that carry nothing to report (metadata, empty results).
func decodeMessage(payload []byte) (domain.TranscriptEvent, bool, error) {
	var msg listenMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return domain.TranscriptEvent{}, false, nil
	}

	switch strings.ToLower(msg.Type) {
	case "error":
		detail := strings.TrimSpace(msg.Description)
		if detail == "" {
			detail = strings.TrimSpace(msg.Message)
		}
		if detail == "" {
			detail = "unknown error"
		}
		return domain.TranscriptEvent{}, false, fmt.Errorf("deepgram: %s", detail)
	case "utteranceend":
		return domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, IsSpeechFinal: true}, true, nil
	case "", "results":
	default:
		return domain.TranscriptEvent{}, false, nil
	}

	text := ""
	if len(msg.Channel.Alternatives) > 0 {
		text = strings.TrimSpace(msg.Channel.Alternatives[0].Transcript)
	}
	if text == "" && !msg.SpeechFinal {
		return domain.TranscriptEvent{}, false, nil
	}

	event := domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: text, IsSpeechFinal: msg.SpeechFinal}
	if msg.IsFinal || msg.SpeechFinal {
		event.Kind = domain.TranscriptKindFinal
	}
	return event, true, nil
}

func buildListenURL(providerCfg Config, streamCfg ports.StreamingConfig) (string, error) {
	base := strings.TrimSpace(providerCfg.APIBaseURL)
	if base == "" {
		base = defaultAPIBaseURL
	}
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid deepgram base URL: %w", err)
	}

	if streamCfg.Encoding == "" {
		streamCfg.Encoding = "linear16"
	}
	if streamCfg.SampleRate <= 0 {
		streamCfg.SampleRate = 16000
	}
	if streamCfg.Channels <= 0 {
		streamCfg.Channels = 1
	}

	query := listenURL.Query()
	query.Set("model", providerCfg.Model)
	query.Set("encoding", streamCfg.Encoding)
	query.Set("sample_rate", strconv.Itoa(streamCfg.SampleRate))
	query.Set("channels", strconv.Itoa(streamCfg.Channels))
	query.Set("interim_results", strconv.FormatBool(streamCfg.InterimResults))
	query.Set("smart_format", strconv.FormatBool(providerCfg.SmartFormat))
	query.Set("punctuate", "true")
	if providerCfg.Language != "" {
		query.Set("language", providerCfg.Language)
	}
	if providerCfg.Endpointing > 0 {
		query.Set("endpointing", strconv.Itoa(providerCfg.Endpointing))
	}
	if providerCfg.UtteranceEndMS > 0 {
		query.Set("utterance_end_ms", strconv.Itoa(providerCfg.UtteranceEndMS))
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}
