package usecase

import (
	"strings"
	"sync"

	"ashasphere/internal/domain"
)

// transcriptAggregator folds provider events into one running transcript:
// every finalized segment, followed by the segment still being recognized.
type transcriptAggregator struct {
	mu      sync.Mutex
	finals  []string
	pending string
}

func newTranscriptAggregator() *transcriptAggregator {
	return &transcriptAggregator{}
}

// Add records event and reports whether the running transcript changed.
func (a *transcriptAggregator) Add(event domain.TranscriptEvent) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	text := strings.TrimSpace(event.Text)
	if text == "" {
		return false
	}
	if event.Kind == domain.TranscriptKindFinal {
		a.finals = append(a.finals, text)
		a.pending = ""
		return true
	}
	if text == a.pending {
		return false
	}
	a.pending = text
	return true
}

// Text returns the full transcript so far.
func (a *transcriptAggregator) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	parts := a.finals
	if a.pending != "" {
		parts = append(parts[:len(parts):len(parts)], a.pending)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
