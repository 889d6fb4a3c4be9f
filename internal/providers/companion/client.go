package companion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"ashasphere/internal/domain"
	"ashasphere/internal/logging"
)

// FallbackText is shown whenever the reply service cannot be reached or
// answers with something unusable.
const FallbackText = "Sorry, I'm having trouble connecting. Please try again later."

const (
	defaultBaseURL = "http://localhost:8000"
	defaultPath    = "/api/get-response"
	defaultTimeout = 20 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config controls the reply endpoint.
type Config struct {
	BaseURL string
	Path    string
	Timeout time.Duration
}

// Client implements ports.ReplyService over HTTP. It makes exactly one
// request per call and never retries.
type Client struct {
	baseURL    string
	path       string
	timeout    time.Duration
	httpClient *http.Client
	logger     logging.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger logging.Logger) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = defaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		baseURL:    baseURL,
		path:       path,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		logger:     logger.With("component", "companion"),
	}
}

type replyRequest struct {
	Transcript string `json:"transcript"`
}

type replyResponse struct {
	Response  string   `json:"response"`
	Sentiment *string  `json:"sentiment"`
	Mood      *float64 `json:"mood"`
}

// GetReply asks the service for a reply. Transport and protocol failures are
// absorbed into a degraded fallback reply that keeps the prior sentiment and
// mood. An error is returned only for a blank transcript or when ctx itself
// was cancelled by the caller.
func (c *Client) GetReply(ctx context.Context, transcript string, prior domain.MoodSample) (domain.Reply, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return domain.Reply{}, domain.ErrEmptyTranscript
	}

	reply, err := c.request(ctx, transcript, prior)
	if err == nil {
		return reply, nil
	}
	if ctx.Err() != nil {
		return domain.Reply{}, ctx.Err()
	}

	c.logger.Warn(ctx, "reply service failed, using fallback", "error", err)
	return Fallback(prior), nil
}

// Fallback builds the degraded reply for prior.
func Fallback(prior domain.MoodSample) domain.Reply {
	sentiment := prior.Sentiment
	if !sentiment.Valid() {
		sentiment = domain.SentimentNeutral
	}
	mood := prior.Mood
	if mood == 0 {
		mood = domain.DefaultMood
	}
	return domain.Reply{
		Text:      FallbackText,
		Sentiment: sentiment,
		Mood:      domain.ClampMood(mood),
		Degraded:  true,
	}
}

func (c *Client) request(ctx context.Context, transcript string, prior domain.MoodSample) (domain.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(replyRequest{Transcript: transcript})
	if err != nil {
		return domain.Reply{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.path, bytes.NewReader(body))
	if err != nil {
		return domain.Reply{}, fmt.Errorf("%w: %v", domain.ErrReplyTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("%w: %v", domain.ErrReplyTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Reply{}, fmt.Errorf("%w: read body: %v", domain.ErrReplyTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Reply{}, fmt.Errorf("%w: status=%d body=%s", domain.ErrReplyTransport, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return parseReply(respBody, prior)
}

func parseReply(raw []byte, prior domain.MoodSample) (domain.Reply, error) {
	var payload replyResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.Reply{}, fmt.Errorf("%w: decode body: %v", domain.ErrReplyTransport, err)
	}

	text := strings.TrimSpace(payload.Response)
	if text == "" {
		return domain.Reply{}, fmt.Errorf("%w: empty response text", domain.ErrReplyTransport)
	}

	fallback := Fallback(prior)
	reply := domain.Reply{Text: text, Sentiment: fallback.Sentiment, Mood: fallback.Mood}

	if payload.Sentiment != nil {
		sentiment := domain.Sentiment(strings.ToLower(strings.TrimSpace(*payload.Sentiment)))
		if !sentiment.Valid() {
			return domain.Reply{}, fmt.Errorf("%w: unknown sentiment %q", domain.ErrReplyTransport, *payload.Sentiment)
		}
		reply.Sentiment = sentiment
	}
	if payload.Mood != nil {
		mood := math.Round(*payload.Mood)
		mood = math.Max(domain.MinMood, math.Min(domain.MaxMood, mood))
		reply.Mood = int(mood)
	}
	return reply, nil
}
