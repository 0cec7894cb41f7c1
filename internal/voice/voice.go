// Package voice tracks the speech capture and synthesis state the browser
// reports for each session. Both directions are single-stream.
package voice

import (
	"errors"
	"strings"
	"sync"

	"interview-coach/internal/domain"
	"interview-coach/internal/logger"

	"go.uber.org/zap"
)

// ErrNotListening is returned when a transcript arrives while capture is off.
var ErrNotListening = errors.New(domain.MsgSpeechNotStarted)

// Listener accumulates a continuous recognition transcript. Final results
// are committed; an interim result is shown after them until replaced.
type Listener struct {
	mu        sync.Mutex
	listening bool
	committed []string
	interim   string
}

// Start begins capture. It reports false and changes nothing when capture
// is already active.
func (l *Listener) Start() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listening {
		return false
	}
	l.listening = true
	l.committed = nil
	l.interim = ""
	return true
}

// Stop ends capture and keeps the transcript. The pending interim text is
// committed as is.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.listening {
		return
	}
	l.listening = false
	if t := strings.TrimSpace(l.interim); t != "" {
		l.committed = append(l.committed, t)
	}
	l.interim = ""
}

// Push records a recognition result.
func (l *Listener) Push(text string, final bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.listening {
		return ErrNotListening
	}
	text = strings.TrimSpace(text)
	if !final {
		l.interim = text
		return nil
	}
	if text != "" {
		l.committed = append(l.committed, text)
	}
	l.interim = ""
	return nil
}

// Listening reports whether capture is active.
func (l *Listener) Listening() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.listening
}

// Transcript returns the committed text followed by the interim text.
func (l *Listener) Transcript() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	parts := l.committed
	if l.interim != "" {
		parts = append(parts[:len(parts):len(parts)], l.interim)
	}
	return strings.Join(parts, " ")
}

// Utterance is one synthesis request.
type Utterance struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Speaker allows at most one active utterance.
type Speaker struct {
	mu      sync.Mutex
	seq     int
	current *Utterance
}

// Speak replaces any in-flight utterance with a new one. The cancelled
// utterance, if any, is returned so the client can stop it.
func (s *Speaker) Speak(text string) (next Utterance, cancelled *Utterance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancelled = s.current
	s.seq++
	next = Utterance{ID: s.seq, Text: text}
	s.current = &next
	return next, cancelled
}

// Done marks utterance id as finished. Stale IDs are ignored.
func (s *Speaker) Done(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != id {
		return false
	}
	s.current = nil
	return true
}

// Current returns the active utterance.
func (s *Speaker) Current() *Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// Channel is the voice state of one session.
type Channel struct {
	Listener Listener
	Speaker  Speaker
}

// Hub holds a Channel per session.
type Hub struct {
	mu       sync.Mutex
	channels map[string]*Channel
}

func NewHub() *Hub {
	return &Hub{channels: make(map[string]*Channel)}
}

// Channel returns the session's channel, creating it on first use.
func (h *Hub) Channel(sessionID string) *Channel {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.channels[sessionID]
	if !ok {
		ch = &Channel{}
		h.channels[sessionID] = ch
		logger.Get().Debug("Voice channel opened", zap.String("session_id", sessionID))
	}
	return ch
}

// Close drops the session's channel.
func (h *Hub) Close(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.channels, sessionID)
}
