package storage

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is the in-memory Store used in tests and as a fallback when
// no database path is configured.
type MemoryStore struct {
	mu        sync.Mutex
	profile   *Profile
	digits    map[int]string
	history   []HistoryEntry // most recent first
	inputMode string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{digits: make(map[int]string)}
}

func newProfileID() string {
	return "CGP-" + strings.ToUpper(uuid.NewString()[:8])
}

func (m *MemoryStore) EnsureProfile() (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		m.profile = &Profile{ID: newProfileID()}
	}
	return *m.profile, nil
}

func (m *MemoryStore) SetName(name string) error {
	if _, err := m.EnsureProfile(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile.Name = name
	return nil
}

func (m *MemoryStore) Digits() (map[int]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int]string, len(m.digits))
	for k, v := range m.digits {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) SetDigit(dayID int, digits string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.digits[dayID] = digits
	return nil
}

func (m *MemoryStore) FinalCode(dayIDs []int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sb strings.Builder
	for _, id := range dayIDs {
		d, ok := m.digits[id]
		if !ok || d == "" {
			return "", nil
		}
		sb.WriteString(d)
	}
	return sb.String(), nil
}

func (m *MemoryStore) AddHistory(entry HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append([]HistoryEntry{entry}, m.history...)
	return nil
}

func (m *MemoryStore) History() ([]HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]HistoryEntry, len(m.history))
	copy(out, m.history)
	return out, nil
}

func (m *MemoryStore) InputMode() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputMode, nil
}

func (m *MemoryStore) SetInputMode(mode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
	return nil
}

func (m *MemoryStore) ResetAll() error {
	m.mu.Lock()
	m.profile = nil
	m.digits = make(map[int]string)
	m.history = nil
	m.inputMode = ""
	m.mu.Unlock()
	_, err := m.EnsureProfile()
	return err
}
