package usecase

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"ashasphere/internal/domain"
)

func notStopped() bool { return false }

func TestPumpAudioChunksReturnsSendError(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioSession([]byte("abc"))
	stream := &sendErrStream{err: errors.New("send failed")}

	err := pumpAudioChunks(audio, stream, 256, notStopped)
	if err == nil || !errors.Is(err, stream.err) {
		t.Fatalf("expected send error, got %v", err)
	}
	if stream.closeSendCalls() != 1 {
		t.Fatalf("expected CloseSend after pump exit")
	}
}

func TestPumpAudioChunksReturnsReadError(t *testing.T) {
	t.Parallel()

	audio := &errorAudioSession{err: errors.New("read failed")}
	stream := &sendErrStream{}

	if err := pumpAudioChunks(audio, stream, 256, notStopped); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestPumpAudioChunksIgnoresReadErrorAfterStop(t *testing.T) {
	t.Parallel()

	audio := &errorAudioSession{err: errors.New("file already closed")}
	stream := &sendErrStream{}

	if err := pumpAudioChunks(audio, stream, 256, func() bool { return true }); err != nil {
		t.Fatalf("expected nil after stop, got %v", err)
	}
}

func TestPumpAudioChunksSendsUntilEOF(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioSession([]byte("a"), []byte("b"), []byte("c"))
	stream := newFakeStreamingSession()

	if err := pumpAudioChunks(audio, stream, 16, notStopped); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stream.mu.Lock()
	defer stream.mu.Unlock()
	if stream.sent != 3 || stream.closeSend != 1 {
		t.Fatalf("expected 3 chunks and one CloseSend, got %d/%d", stream.sent, stream.closeSend)
	}
}

func TestWaitForStreamTimeoutClosesSession(t *testing.T) {
	t.Parallel()

	stream := &blockingWaitStream{done: make(chan struct{}), waitErr: errors.New("closed")}
	err := waitForStream(stream, 10*time.Millisecond)
	if err == nil || err.Error() != "closed" {
		t.Fatalf("expected closed error, got %v", err)
	}
	if stream.closeCalls == 0 {
		t.Fatalf("expected close to be called on timeout")
	}
}

type sendErrStream struct {
	err error

	mu        sync.Mutex
	closeSend int
}

func (s *sendErrStream) SendAudio(_ []byte) error { return s.err }
func (s *sendErrStream) CloseSend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeSend++
	return nil
}
func (s *sendErrStream) Events() <-chan domain.TranscriptEvent {
	ch := make(chan domain.TranscriptEvent)
	close(ch)
	return ch
}
func (s *sendErrStream) Wait() error  { return nil }
func (s *sendErrStream) Close() error { return nil }

func (s *sendErrStream) closeSendCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeSend
}

type errorAudioSession struct {
	err error
}

func (s *errorAudioSession) Read(_ []byte) (int, error) { return 0, s.err }
func (s *errorAudioSession) Close() error               { return nil }
func (s *errorAudioSession) Stop() error                { return nil }

type blockingWaitStream struct {
	done       chan struct{}
	waitErr    error
	closeCalls int
}

func (s *blockingWaitStream) SendAudio(_ []byte) error { return nil }
func (s *blockingWaitStream) CloseSend() error         { return nil }
func (s *blockingWaitStream) Events() <-chan domain.TranscriptEvent {
	ch := make(chan domain.TranscriptEvent)
	close(ch)
	return ch
}
func (s *blockingWaitStream) Wait() error {
	<-s.done
	return s.waitErr
}
func (s *blockingWaitStream) Close() error {
	s.closeCalls++
	close(s.done)
	return nil
}

var _ io.ReadCloser = (*errorAudioSession)(nil)
