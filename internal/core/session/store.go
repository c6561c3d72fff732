package session

import (
	"sync"
	"time"

	"chefs-fridge/internal/infrastructure/config"
	"chefs-fridge/internal/pkg/common"

	"go.uber.org/zap"
)

// EvictFunc 會話結束（刪除或過期）時的回呼
type EvictFunc func(s *State)

// Store 記憶體會話儲存
type Store struct {
	config   config.SessionConfig
	mu       sync.RWMutex
	sessions map[string]*State
	onEvict  EvictFunc
	stop     chan struct{}
	once     sync.Once
}

// NewStore 建立會話儲存並啟動過期清理
func NewStore(cfg config.SessionConfig, onEvict EvictFunc) *Store {
	s := &Store{
		config:   cfg,
		sessions: make(map[string]*State),
		onEvict:  onEvict,
		stop:     make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go s.startCleanup()
	}
	return s
}

// Create 建立新會話
func (s *Store) Create() *State {
	st := newState()

	s.mu.Lock()
	s.sessions[st.ID] = st
	s.mu.Unlock()

	common.LogInfo("會話已建立", zap.String("session_id", st.ID))
	return st
}

// Get 取得會話
func (s *Store) Get(id string) (*State, error) {
	s.mu.RLock()
	st, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	return st, nil
}

// Delete 結束會話；若會話正在處理請求，會等到請求結束才清除快取
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	st, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return common.ErrSessionNotFound
	}
	s.evict(st)
	common.LogInfo("會話已結束", zap.String("session_id", id))
	return nil
}

// Len 目前會話數
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// evict 等待進行中的請求釋放會話鎖後才執行回呼
func (s *Store) evict(st *State) {
	st.Lock()
	defer st.Unlock()
	st.ended = true
	if s.onEvict != nil {
		s.onEvict(st)
	}
}

// startCleanup 定期清除閒置過久的會話
func (s *Store) startCleanup() {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Cleanup(time.Now())
		case <-s.stop:
			return
		}
	}
}

// Cleanup 移除在 now 之前已超過 TTL 的會話，回傳移除數量
func (s *Store) Cleanup(now time.Time) int {
	var expired []*State

	s.mu.Lock()
	for id, st := range s.sessions {
		// 正在處理請求的會話跳過
		if !st.mu.TryLock() {
			continue
		}
		if now.Sub(st.LastAccess) > s.config.TTL {
			delete(s.sessions, id)
			expired = append(expired, st)
		}
		st.mu.Unlock()
	}
	s.mu.Unlock()

	for _, st := range expired {
		s.evict(st)
	}
	if len(expired) > 0 {
		common.LogInfo("Cleaned up expired sessions",
			zap.Int("count", len(expired)),
			zap.Int("remaining", s.Len()),
		)
	}
	return len(expired)
}

// Close 停止清理協程
func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
}
