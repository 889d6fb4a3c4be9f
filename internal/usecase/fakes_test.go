package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"ashasphere/internal/domain"
	"ashasphere/internal/ports"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitForStage(t *testing.T, session *Session, stage domain.Stage) domain.Status {
	t.Helper()
	var status domain.Status
	waitFor(t, "stage "+string(stage), func() bool {
		status = session.Status()
		return status.Stage == stage
	})
	return status
}

// Device-level fakes for the capture coordinator.

type fakeAudioCapture struct {
	mu       sync.Mutex
	sessions []ports.AudioSession
	err      error
	calls    int
}

func (f *fakeAudioCapture) Start(_ context.Context, _ ports.AudioConfig) (ports.AudioSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.sessions) {
		return nil, errors.New("no audio session configured")
	}
	session := f.sessions[f.calls]
	f.calls++
	return session, nil
}

type fakeAudioSession struct {
	mu        sync.Mutex
	chunks    [][]byte
	index     int
	readErr   error
	hold      bool
	stopped   chan struct{}
	stopCalls int
}

func newFakeAudioSession(chunks ...[]byte) *fakeAudioSession {
	return &fakeAudioSession{chunks: chunks, stopped: make(chan struct{})}
}

// newHeldAudioSession keeps the microphone open after its chunks until Stop.
func newHeldAudioSession(chunks ...[]byte) *fakeAudioSession {
	session := newFakeAudioSession(chunks...)
	session.hold = true
	return session
}

func (f *fakeAudioSession) Read(p []byte) (int, error) {
	f.mu.Lock()
	if f.index < len(f.chunks) {
		n := copy(p, f.chunks[f.index])
		f.index++
		f.mu.Unlock()
		return n, nil
	}
	if f.readErr != nil {
		err := f.readErr
		f.mu.Unlock()
		return 0, err
	}
	hold := f.hold
	f.mu.Unlock()
	if hold {
		<-f.stopped
	}
	return 0, io.EOF
}

func (f *fakeAudioSession) Close() error { return f.Stop() }

func (f *fakeAudioSession) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	if f.stopCalls == 1 {
		close(f.stopped)
	}
	return nil
}

func (f *fakeAudioSession) stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls
}

type fakeProvider struct {
	mu       sync.Mutex
	sessions []ports.StreamingSession
	err      error
	calls    int
}

func (f *fakeProvider) StartStreaming(_ context.Context, _ ports.StreamingConfig) (ports.StreamingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.sessions) {
		return nil, errors.New("no stream session configured")
	}
	session := f.sessions[f.calls]
	f.calls++
	return session, nil
}

type fakeStreamingSession struct {
	mu         sync.Mutex
	events     chan domain.TranscriptEvent
	waitErr    error
	sent       int
	closeSend  int
	closeCalls int
	closed     bool
}

func newFakeStreamingSession(events ...domain.TranscriptEvent) *fakeStreamingSession {
	session := &fakeStreamingSession{events: make(chan domain.TranscriptEvent, 16)}
	for _, event := range events {
		session.events <- event
	}
	return session
}

func (f *fakeStreamingSession) SendAudio(_ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
	return nil
}

func (f *fakeStreamingSession) CloseSend() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeSend++
	f.closeLocked()
	return nil
}

func (f *fakeStreamingSession) Events() <-chan domain.TranscriptEvent { return f.events }

func (f *fakeStreamingSession) Wait() error {
	time.Sleep(5 * time.Millisecond)
	return f.waitErr
}

func (f *fakeStreamingSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	f.closeLocked()
	return nil
}

func (f *fakeStreamingSession) closeLocked() {
	if !f.closed {
		close(f.events)
		f.closed = true
	}
}

type fakeRules struct {
	transform string
	err       error
}

func (f *fakeRules) Apply(text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.transform != "" {
		return f.transform, nil
	}
	return text, nil
}

type captureRecorder struct {
	mu     sync.Mutex
	events []domain.CaptureEvent
}

func (r *captureRecorder) listen(event domain.CaptureEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *captureRecorder) snapshot() []domain.CaptureEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.CaptureEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *captureRecorder) last() (domain.CaptureEvent, bool) {
	events := r.snapshot()
	if len(events) == 0 {
		return domain.CaptureEvent{}, false
	}
	return events[len(events)-1], true
}

// Scripted coordinator fakes for the session machine.

type fakeCapturer struct {
	mu        sync.Mutex
	available bool
	startErr  error
	listener  ports.CaptureListener
	starts    int
	cancels   int
	// gate, when set, holds Start until the test closes it.
	gate chan struct{}
}

func (f *fakeCapturer) Available() bool { return f.available }

func (f *fakeCapturer) Start(_ context.Context, listener ports.CaptureListener) error {
	f.mu.Lock()
	f.starts++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.listener = listener
	return nil
}

func (f *fakeCapturer) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeCapturer) emit(event domain.CaptureEvent) {
	f.mu.Lock()
	listener := f.listener
	f.mu.Unlock()
	listener(event)
}

func (f *fakeCapturer) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.cancels
}

type fakePlay struct {
	text     string
	listener ports.PlaybackListener
}

// fakePlayer reports started synchronously and ended when the test calls
// finish.
type fakePlayer struct {
	mu        sync.Mutex
	available bool
	err       error
	plays     []fakePlay
	stops     int
}

func (f *fakePlayer) Available() bool { return f.available }

func (f *fakePlayer) Play(_ context.Context, text string, listener ports.PlaybackListener) error {
	f.mu.Lock()
	if f.err != nil {
		f.mu.Unlock()
		return f.err
	}
	f.plays = append(f.plays, fakePlay{text: text, listener: listener})
	f.mu.Unlock()
	listener(domain.PlaybackStarted)
	return nil
}

func (f *fakePlayer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakePlayer) finish(index int) {
	f.mu.Lock()
	play := f.plays[index]
	f.mu.Unlock()
	play.listener(domain.PlaybackEnded)
}

func (f *fakePlayer) snapshot() ([]fakePlay, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fakePlay, len(f.plays))
	copy(out, f.plays)
	return out, f.stops
}

type fakeReplies struct {
	mu      sync.Mutex
	reply   domain.Reply
	err     error
	release chan struct{}
	priors  []domain.MoodSample
	calls   int
}

func (f *fakeReplies) GetReply(ctx context.Context, transcript string, prior domain.MoodSample) (domain.Reply, error) {
	f.mu.Lock()
	f.calls++
	f.priors = append(f.priors, prior)
	release := f.release
	reply, err := f.reply, f.err
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return domain.Reply{}, ctx.Err()
		}
	}
	return reply, err
}

func (f *fakeReplies) set(reply domain.Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = reply
}

func (f *fakeReplies) snapshot() (int, []domain.MoodSample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, append([]domain.MoodSample(nil), f.priors...)
}

type failingJournal struct {
	err error
}

func (f failingJournal) UpsertMood(context.Context, domain.MoodData) error         { return f.err }
func (f failingJournal) AppendJournal(context.Context, domain.JournalEntry) error  { return f.err }
func (f failingJournal) AppendFeedback(context.Context, domain.FeedbackData) error { return f.err }

type fakeEventSink struct {
	mu sync.Mutex

	stages   []stageEvent
	interims []string
	finals   []string
	replies  []domain.Reply
	playing  []bool
	errors   []errEvent
}

type stageEvent struct {
	stage  domain.Stage
	reason domain.StageReason
}

type errEvent struct {
	code   domain.ErrorCode
	detail string
}

func (f *fakeEventSink) StageChanged(stage domain.Stage, reason domain.StageReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages = append(f.stages, stageEvent{stage: stage, reason: reason})
}

func (f *fakeEventSink) InterimTranscript(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interims = append(f.interims, text)
}

func (f *fakeEventSink) FinalTranscript(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finals = append(f.finals, text)
}

func (f *fakeEventSink) ReplyReady(reply domain.Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, reply)
}

func (f *fakeEventSink) PlaybackChanged(playing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = append(f.playing, playing)
}

func (f *fakeEventSink) SessionError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errEvent{code: code, detail: detail})
}

func (f *fakeEventSink) snapshotStages() []stageEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]stageEvent, len(f.stages))
	copy(out, f.stages)
	return out
}

func (f *fakeEventSink) snapshotErrors() []errEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]errEvent, len(f.errors))
	copy(out, f.errors)
	return out
}
