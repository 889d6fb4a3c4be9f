package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ashasphere/internal/domain"
	"ashasphere/internal/logging"
	"ashasphere/internal/ports"
)

const (
	// CaptureFailedNotice is shown after a capture session ends without text.
	CaptureFailedNotice = "Sorry, I couldn't hear that. Please try again."
	// ReplyFailedNotice is shown when no reply could be produced at all.
	ReplyFailedNotice = "Sorry, I'm having trouble connecting. Please try again later."
	// SaveFailedNotice is shown when a journal write fails.
	SaveFailedNotice = "Sorry, your entry could not be saved."
)

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator replaces the UUIDv7 id source.
func WithIDGenerator(newID func() string) SessionOption {
	return func(s *Session) { s.newID = newID }
}

// WithWisdom replaces the built-in community wisdom catalog.
func WithWisdom(cards []domain.WisdomCard) SessionOption {
	return func(s *Session) { s.catalog = cards }
}

// Session is the journaling state machine. Every transition runs under mu;
// device coordinators and the reply service are always called with mu
// released, and their callbacks re-enter through the same transitions.
// Late callbacks are matched against the attempt counter (and, for
// playback, the utterance token) and dropped when stale.
type Session struct {
	capture ports.Capturer
	player  ports.Player
	replies ports.ReplyService
	journal ports.JournalWriter
	events  ports.EventSink
	logger  logging.Logger
	now     func() time.Time
	newID   func() string
	catalog []domain.WisdomCard

	mu          sync.Mutex
	ctx         context.Context
	stage       domain.Stage
	attempt     uint64
	playToken   uint64
	playing     bool
	cancelReply context.CancelFunc

	transcript string
	reply      *domain.Reply
	sentiment  domain.Sentiment
	mood       int
	entryID    string
	replyAt    time.Time
	draft      *domain.Feedback
	saved      bool
	notice     string
	wisdom     []domain.WisdomCard

	// writeMu orders gateway writes by the transition that issued them. It
	// is taken while mu is held and released after the write, outside mu.
	writeMu sync.Mutex
}

func NewSession(
	capture ports.Capturer,
	player ports.Player,
	replies ports.ReplyService,
	journal ports.JournalWriter,
	events ports.EventSink,
	logger logging.Logger,
	opts ...SessionOption,
) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Session{
		capture: capture,
		player:  player,
		replies: replies,
		journal: journal,
		events:  events,
		logger:  logger.With("component", "session"),
		now:     time.Now,
		newID:   newUUIDv7,
		catalog: domain.CommunityWisdom,
		ctx:     context.Background(),
		stage:   domain.StageIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Status returns a snapshot of the session for the UI.
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() domain.Status {
	status := domain.Status{
		Stage:             s.stage,
		Transcript:        s.transcript,
		Sentiment:         s.sentiment,
		Mood:              s.mood,
		Playing:           s.playing,
		Saved:             s.saved,
		Notice:            s.notice,
		CaptureAvailable:  s.capture.Available(),
		PlaybackAvailable: s.player.Available(),
		Attempt:           s.attempt,
	}
	if s.reply != nil {
		reply := *s.reply
		status.Reply = &reply
		status.Tip = domain.DailyTip(s.sentiment)
	}
	if s.draft != nil {
		draft := *s.draft
		status.Draft = &draft
	}
	if len(s.wisdom) > 0 {
		status.Wisdom = append([]domain.WisdomCard(nil), s.wisdom...)
	}
	return status
}

// BeginCapture starts listening. Only valid while idle.
func (s *Session) BeginCapture(ctx context.Context) error {
	s.mu.Lock()
	if s.stage != domain.StageIdle {
		s.mu.Unlock()
		return domain.ErrInvalidState
	}
	if !s.capture.Available() {
		s.mu.Unlock()
		return domain.ErrCaptureUnavailable
	}
	s.ctx = context.WithoutCancel(ctx)
	s.attempt++
	attempt := s.attempt
	s.clearTurnLocked()
	s.notice = ""
	s.setStageLocked(domain.StageCapturing, domain.StageReasonCaptureStarted)
	runCtx := s.ctx
	s.mu.Unlock()

	err := s.capture.Start(runCtx, func(event domain.CaptureEvent) {
		s.onCapture(attempt, event)
	})
	if err == nil {
		// A Reset that landed while Start ran found nothing to cancel.
		s.mu.Lock()
		superseded := s.attempt != attempt
		s.mu.Unlock()
		if superseded {
			s.logger.Debug(runCtx, "capture started after reset, cancelling", "attempt", attempt)
			s.capture.Cancel()
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt == attempt && s.stage == domain.StageCapturing {
		s.logger.Warn(runCtx, "capture did not start", "attempt", attempt, "error", err)
		s.notice = CaptureFailedNotice
		s.events.SessionError(domain.ErrorCodeCapture, err.Error())
		s.setStageLocked(domain.StageIdle, domain.StageReasonCaptureFailed)
	}
	return err
}

func (s *Session) onCapture(attempt uint64, event domain.CaptureEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt != s.attempt || s.stage != domain.StageCapturing {
		return
	}

	switch event.Kind {
	case domain.CaptureEventInterim:
		s.transcript = event.Text
		s.events.InterimTranscript(event.Text)
	case domain.CaptureEventFailed:
		detail := "capture failed"
		if event.Err != nil {
			detail = event.Err.Error()
		}
		s.logger.Info(s.ctx, "capture failed", "attempt", attempt, "detail", detail)
		s.transcript = ""
		s.notice = CaptureFailedNotice
		s.events.SessionError(domain.ErrorCodeCapture, detail)
		s.setStageLocked(domain.StageIdle, domain.StageReasonCaptureFailed)
	case domain.CaptureEventFinal:
		s.transcript = event.Text
		s.events.FinalTranscript(event.Text)
		s.setStageLocked(domain.StageAwaitingReply, domain.StageReasonTranscriptReady)

		replyCtx, cancel := context.WithCancel(s.ctx)
		s.cancelReply = cancel
		prior := domain.MoodSample{Sentiment: s.sentiment, Mood: s.mood}
		go s.fetchReply(replyCtx, attempt, event.Text, prior)
	}
}

func (s *Session) fetchReply(ctx context.Context, attempt uint64, transcript string, prior domain.MoodSample) {
	reply, err := s.replies.GetReply(ctx, transcript, prior)
	s.onReply(attempt, reply, err)
}

func (s *Session) onReply(attempt uint64, reply domain.Reply, err error) {
	s.mu.Lock()
	if attempt != s.attempt || s.stage != domain.StageAwaitingReply {
		s.mu.Unlock()
		s.logger.Debug(context.Background(), "dropping stale reply", "attempt", attempt)
		return
	}
	if s.cancelReply != nil {
		s.cancelReply()
		s.cancelReply = nil
	}
	ctx := s.ctx

	if err != nil {
		s.logger.Error(ctx, "reply could not be produced", "attempt", attempt, "error", err)
		s.transcript = ""
		s.notice = ReplyFailedNotice
		s.events.SessionError(domain.ErrorCodeReply, err.Error())
		s.setStageLocked(domain.StageIdle, domain.StageReasonReplyFailed)
		s.mu.Unlock()
		return
	}

	s.replyAt = s.now()
	s.reply = &reply
	s.sentiment = reply.Sentiment
	s.mood = reply.Mood
	s.entryID = s.newID()
	s.saved = false
	s.events.ReplyReady(reply)
	reason := domain.StageReasonReplyReady
	if reply.Degraded {
		reason = domain.StageReasonReplyDegraded
	}
	s.setStageLocked(domain.StageResponding, reason)

	var commit func() error
	if !reply.Degraded {
		sample := domain.MoodData{
			Date:      s.replyAt.Format(domain.DayLayout),
			Mood:      reply.Mood,
			Sentiment: reply.Sentiment,
		}
		commit = s.persistLocked(func() error {
			return s.journal.UpsertMood(ctx, sample)
		})
	}
	token, play := s.nextPlaybackLocked()
	s.mu.Unlock()

	if commit != nil {
		if err := commit(); err != nil {
			s.reportStorageError(ctx, "mood sample not saved", err)
		}
	}
	if play {
		s.startPlayback(ctx, attempt, token, reply.Text)
	}
}

// nextPlaybackLocked claims a new utterance token when playback is possible.
func (s *Session) nextPlaybackLocked() (uint64, bool) {
	if !s.player.Available() {
		return 0, false
	}
	s.playToken++
	return s.playToken, true
}

func (s *Session) startPlayback(ctx context.Context, attempt uint64, token uint64, text string) {
	err := s.player.Play(ctx, text, func(kind domain.PlaybackEventKind) {
		s.onPlayback(attempt, token, kind)
	})
	if err != nil {
		s.logger.Warn(ctx, "playback did not start", "attempt", attempt, "error", err)
		s.events.SessionError(domain.ErrorCodePlayback, err.Error())
	}
}

func (s *Session) onPlayback(attempt uint64, token uint64, kind domain.PlaybackEventKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt != s.attempt || token != s.playToken {
		return
	}

	switch kind {
	case domain.PlaybackStarted:
		s.setPlayingLocked(true)
	case domain.PlaybackEnded:
		s.setPlayingLocked(false)
		if s.stage == domain.StageResponding {
			s.setStageLocked(domain.StageCollectingFeedback, domain.StageReasonPlaybackEnded)
		}
	}
}

// Replay speaks the current reply again without asking for a new one.
func (s *Session) Replay(ctx context.Context) error {
	s.mu.Lock()
	if s.stage != domain.StageResponding || s.reply == nil {
		s.mu.Unlock()
		return domain.ErrInvalidState
	}
	token, ok := s.nextPlaybackLocked()
	if !ok {
		s.mu.Unlock()
		return domain.ErrPlaybackUnavailable
	}
	attempt := s.attempt
	text := s.reply.Text
	s.setStageLocked(domain.StageResponding, domain.StageReasonReplaying)
	runCtx := s.ctx
	s.mu.Unlock()

	s.logger.Debug(ctx, "replaying reply", "attempt", attempt)
	return s.player.Play(runCtx, text, func(kind domain.PlaybackEventKind) {
		s.onPlayback(attempt, token, kind)
	})
}

// ContinueToFeedback leaves the response stage without waiting for the
// utterance to finish, e.g. when playback is unavailable.
func (s *Session) ContinueToFeedback() error {
	s.mu.Lock()
	if s.stage != domain.StageResponding {
		s.mu.Unlock()
		return domain.ErrInvalidState
	}
	wasPlaying := s.playing
	s.playToken++
	s.setPlayingLocked(false)
	s.setStageLocked(domain.StageCollectingFeedback, domain.StageReasonFeedbackAsked)
	s.mu.Unlock()

	if wasPlaying {
		s.player.Stop()
	}
	return nil
}

// SaveEntry appends the current exchange to the journal without feedback.
// It is allowed once per reply while responding.
func (s *Session) SaveEntry(ctx context.Context) (domain.JournalEntry, error) {
	s.mu.Lock()
	if s.stage != domain.StageResponding || s.reply == nil || s.saved {
		s.mu.Unlock()
		return domain.JournalEntry{}, domain.ErrInvalidState
	}
	attempt := s.attempt
	entry := s.entryLocked(s.newID(), s.now(), nil)
	s.saved = true
	commit := s.persistLocked(func() error {
		return s.journal.AppendJournal(ctx, entry)
	})
	s.mu.Unlock()

	if err := commit(); err != nil {
		s.mu.Lock()
		if s.attempt == attempt {
			s.saved = false
			s.notice = SaveFailedNotice
		}
		s.mu.Unlock()
		s.reportStorageError(ctx, "journal entry not saved", err)
		return domain.JournalEntry{}, err
	}
	s.logger.Info(ctx, "journal entry saved", "id", entry.ID)
	return entry, nil
}

// SelectFeedback records the slider position as the feedback draft.
func (s *Session) SelectFeedback(position float64) (domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != domain.StageCollectingFeedback {
		return domain.Feedback{}, domain.ErrInvalidState
	}
	option := domain.EmojiForSlider(position)
	s.draft = &domain.Feedback{Emoji: option.Emoji, Rating: option.Rating}
	return *s.draft, nil
}

// SubmitFeedback completes the draft with helpfulness, appends the journal
// entry and the feedback record, and moves on to wisdom cards.
func (s *Session) SubmitFeedback(ctx context.Context, helpfulness int) error {
	if helpfulness < domain.MinHelpfulness || helpfulness > domain.MaxHelpfulness {
		return domain.ErrInvalidHelpfulness
	}

	s.mu.Lock()
	if s.stage != domain.StageCollectingFeedback || s.reply == nil {
		s.mu.Unlock()
		return domain.ErrInvalidState
	}
	if s.draft == nil {
		s.mu.Unlock()
		return domain.ErrNoFeedbackSelection
	}

	now := s.now()
	feedback := domain.Feedback{Emoji: s.draft.Emoji, Rating: s.draft.Rating, Helpfulness: helpfulness}
	entry := s.entryLocked(s.entryID, s.replyAt, &feedback)
	record := domain.FeedbackData{
		ID:          s.newID(),
		Emoji:       feedback.Emoji,
		Rating:      feedback.Rating,
		Helpfulness: feedback.Helpfulness,
		Date:        now.Format(domain.TimestampLayout),
		Sentiment:   s.sentiment,
	}

	s.draft = nil
	s.wisdom = domain.WisdomFor(s.catalog, s.mood)
	s.setStageLocked(domain.StageBrowsingWisdom, domain.StageReasonFeedbackSaved)
	commit := s.persistLocked(func() error {
		if err := s.journal.AppendJournal(ctx, entry); err != nil {
			return err
		}
		return s.journal.AppendFeedback(ctx, record)
	})
	s.mu.Unlock()

	if err := commit(); err != nil {
		s.mu.Lock()
		s.notice = SaveFailedNotice
		s.mu.Unlock()
		s.reportStorageError(ctx, "feedback not saved", err)
		return err
	}
	s.logger.Info(ctx, "feedback saved", "entry", entry.ID, "rating", feedback.Rating)
	return nil
}

// SkipFeedback returns to idle without writing anything.
func (s *Session) SkipFeedback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != domain.StageCollectingFeedback {
		return domain.ErrInvalidState
	}
	s.clearTurnLocked()
	s.setStageLocked(domain.StageIdle, domain.StageReasonFeedbackSkipped)
	return nil
}

// Done leaves the wisdom stage.
func (s *Session) Done() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != domain.StageBrowsingWisdom {
		return domain.ErrInvalidState
	}
	s.clearTurnLocked()
	s.setStageLocked(domain.StageIdle, domain.StageReasonSessionCompleted)
	return nil
}

// Reset abandons whatever is in flight from any stage. A pending reply is
// cancelled and discarded if it still arrives.
func (s *Session) Reset() {
	s.mu.Lock()
	s.attempt++
	s.playToken++
	if s.cancelReply != nil {
		s.cancelReply()
		s.cancelReply = nil
	}
	wasCapturing := s.stage == domain.StageCapturing
	wasPlaying := s.playing
	s.clearTurnLocked()
	s.sentiment = ""
	s.mood = 0
	s.notice = ""
	s.setPlayingLocked(false)
	s.setStageLocked(domain.StageIdle, domain.StageReasonReset)
	s.mu.Unlock()

	if wasCapturing {
		s.capture.Cancel()
	}
	if wasPlaying {
		s.player.Stop()
	}
}

func (s *Session) entryLocked(id string, at time.Time, feedback *domain.Feedback) domain.JournalEntry {
	return domain.JournalEntry{
		ID:         id,
		Date:       at.Format(domain.DayLayout),
		Time:       at.Format(domain.ClockLayout),
		Transcript: s.transcript,
		Response:   s.reply.Text,
		Sentiment:  s.sentiment,
		Mood:       s.mood,
		Feedback:   feedback,
	}
}

// clearTurnLocked drops the in-flight exchange but keeps the current
// sentiment and mood, which seed the fallback of the next reply.
func (s *Session) clearTurnLocked() {
	s.transcript = ""
	s.reply = nil
	s.entryID = ""
	s.replyAt = time.Time{}
	s.draft = nil
	s.saved = false
	s.wisdom = nil
}

func (s *Session) setStageLocked(stage domain.Stage, reason domain.StageReason) {
	s.stage = stage
	s.events.StageChanged(stage, reason)
}

func (s *Session) setPlayingLocked(playing bool) {
	if s.playing == playing {
		return
	}
	s.playing = playing
	s.events.PlaybackChanged(playing)
}

// persistLocked reserves the next write slot. The returned func performs
// the write and must be called after mu is released.
func (s *Session) persistLocked(write func() error) func() error {
	s.writeMu.Lock()
	return func() error {
		defer s.writeMu.Unlock()
		return write()
	}
}

func (s *Session) reportStorageError(ctx context.Context, msg string, err error) {
	s.logger.Error(ctx, msg, "error", err)
	s.events.SessionError(domain.ErrorCodeStorage, fmt.Sprintf("%s: %v", msg, err))
}
