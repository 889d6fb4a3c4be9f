package usecase

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"ashasphere/internal/ports"
)

// pumpAudioChunks copies microphone audio into the stream until the
// microphone ends, then half-closes the stream so the provider flushes its
// last results. Read errors after stopped reports true are expected and
// ignored.
func pumpAudioChunks(
	audio ports.AudioSession,
	stream ports.StreamingSession,
	chunkSize int,
	stopped func() bool,
) error {
	defer func() { _ = stream.CloseSend() }()

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if sendErr := stream.SendAudio(buf[:n]); sendErr != nil {
				return fmt.Errorf("failed to stream audio: %w", sendErr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) || stopped() {
				return nil
			}
			return fmt.Errorf("audio capture error: %w", err)
		}
	}
}

func waitForStream(session ports.StreamingSession, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		_ = session.Close()
		return <-done
	}
}
