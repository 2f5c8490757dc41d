package game

import (
	"slices"
	"strings"
	"sync"
)

const messageHistory = 50

// MessageLog collects the text shown to the player. Messages added since the
// last Begin form the current turn's line.
type MessageLog struct {
	mu      sync.Mutex
	current []string
	history []string
}

// Begin starts a new turn's line.
func (m *MessageLog) Begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current[:0]
}

// Add appends msg to the current line. Empty messages are ignored.
func (m *MessageLog) Add(msg string) {
	if msg == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = append(m.current, msg)
	m.history = append(m.history, msg)
	if over := len(m.history) - messageHistory; over > 0 {
		m.history = slices.Delete(m.history, 0, over)
	}
}

// Current returns the current line.
func (m *MessageLog) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.current, " | ")
}

// Recent returns up to n of the latest messages, oldest first.
func (m *MessageLog) Recent(n int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := max(0, len(m.history)-n)
	return slices.Clone(m.history[start:])
}
