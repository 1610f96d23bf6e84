package state

import (
	"sync"
	"time"
)

// DefaultTTL время жизни незавершённого диалога
const DefaultTTL = 30 * time.Minute

// Manager хранит состояния диалогов в памяти процесса
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*session // telegramID -> session
	ttl      time.Duration
	now      func() time.Time
}

// NewManager создаёт новый менеджер состояний
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		sessions: make(map[int64]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetState получает текущее состояние пользователя. Просроченный диалог считается завершённым.
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	s, ok := sm.sessions[telegramID]
	if !ok || sm.expired(s) {
		return StateNone
	}
	return s.State
}

// SetState устанавливает состояние пользователя
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.sessions, telegramID)
		return
	}

	s := sm.sessionLocked(telegramID)
	s.State = state
}

// GetData получает временные данные пользователя
func (sm *Manager) GetData(telegramID int64, key string) (any, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	s, ok := sm.sessions[telegramID]
	if !ok || sm.expired(s) {
		return nil, false
	}
	value, ok := s.Data[key]
	return value, ok
}

// SetData устанавливает временные данные пользователя
func (sm *Manager) SetData(telegramID int64, key string, value any) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.sessionLocked(telegramID).Data[key] = value
}

// ClearState очищает состояние и данные пользователя
func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.sessions, telegramID)
}

// Sweep удаляет просроченные диалоги, возвращает число удалённых
func (sm *Manager) Sweep() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	for id, s := range sm.sessions {
		if sm.expired(s) {
			delete(sm.sessions, id)
			removed++
		}
	}
	return removed
}

func (sm *Manager) sessionLocked(telegramID int64) *session {
	s, ok := sm.sessions[telegramID]
	if !ok || sm.expired(s) {
		s = &session{Data: make(map[string]any)}
		sm.sessions[telegramID] = s
	}
	s.UpdatedAt = sm.now()
	return s
}

func (sm *Manager) expired(s *session) bool {
	return sm.now().Sub(s.UpdatedAt) > sm.ttl
}
